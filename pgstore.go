package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// Postgres-backed implementations of the store interfaces. Plain SQL over
// database/sql; every multi-statement write goes through withTx.

type pgProfileStore struct {
	db *sql.DB
}

func newPGProfileStore(db *sql.DB) *pgProfileStore { return &pgProfileStore{db: db} }

func (s *pgProfileStore) GetProfile(ctx context.Context, userID int) (*Profile, error) {
	p := &Profile{}
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, first_name, last_name,
		       COALESCE(age, 0), COALESCE(city, ''), COALESCE(bio, ''),
		       COALESCE(search_goals, ''), COALESCE(avatar_file, '')
		FROM profiles
		WHERE user_id = $1
	`, userID).Scan(&p.UserID, &p.FirstName, &p.LastName, &p.Age, &p.City, &p.Bio, &p.SearchGoals, &p.AvatarFile)
	if err == sql.ErrNoRows {
		return nil, notFoundf("profile for user %d", userID)
	} else if err != nil {
		return nil, err
	}

	if p.Interests, err = s.loadInterests(ctx, userID); err != nil {
		return nil, err
	}
	if p.Skills, err = s.loadSkills(ctx, userID); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *pgProfileStore) loadInterests(ctx context.Context, userID int) ([]Interest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT i.id, i.name, COALESCE(i.category, '')
		FROM interests i
		JOIN profile_interests pi ON pi.interest_id = i.id
		WHERE pi.user_id = $1
		ORDER BY i.name
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Interest, 0, 8)
	for rows.Next() {
		var it Interest
		if err := rows.Scan(&it.ID, &it.Name, &it.Category); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *pgProfileStore) loadSkills(ctx context.Context, userID int) ([]Skill, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sk.id, sk.name, COALESCE(sk.category, '')
		FROM skills sk
		JOIN profile_skills ps ON ps.skill_id = sk.id
		WHERE ps.user_id = $1
		ORDER BY sk.name
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Skill, 0, 8)
	for rows.Next() {
		var sk Skill
		if err := rows.Scan(&sk.ID, &sk.Name, &sk.Category); err != nil {
			return nil, err
		}
		items = append(items, sk)
	}
	return items, rows.Err()
}

func (s *pgProfileStore) ListProfiles(ctx context.Context, excluding map[int]struct{}) ([]*Profile, error) {
	excluded := make([]int64, 0, len(excluding))
	for id := range excluding {
		excluded = append(excluded, int64(id))
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, first_name, last_name,
		       COALESCE(age, 0), COALESCE(city, ''), COALESCE(bio, ''),
		       COALESCE(search_goals, ''), COALESCE(avatar_file, '')
		FROM profiles
		WHERE NOT (user_id = ANY($1::bigint[]))
		ORDER BY user_id
	`, pq.Array(excluded))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[int]*Profile)
	profiles := make([]*Profile, 0, 64)
	for rows.Next() {
		p := &Profile{Interests: []Interest{}, Skills: []Skill{}}
		if err := rows.Scan(&p.UserID, &p.FirstName, &p.LastName, &p.Age, &p.City, &p.Bio, &p.SearchGoals, &p.AvatarFile); err != nil {
			return nil, err
		}
		byID[p.UserID] = p
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Attach interests and skills in two batch queries instead of 2N
	// per-profile lookups.
	irows, err := s.db.QueryContext(ctx, `
		SELECT pi.user_id, i.id, i.name, COALESCE(i.category, '')
		FROM profile_interests pi
		JOIN interests i ON i.id = pi.interest_id
		WHERE NOT (pi.user_id = ANY($1::bigint[]))
		ORDER BY i.name
	`, pq.Array(excluded))
	if err != nil {
		return nil, err
	}
	defer irows.Close()
	for irows.Next() {
		var uid int
		var it Interest
		if err := irows.Scan(&uid, &it.ID, &it.Name, &it.Category); err != nil {
			return nil, err
		}
		if p, ok := byID[uid]; ok {
			p.Interests = append(p.Interests, it)
		}
	}
	if err := irows.Err(); err != nil {
		return nil, err
	}

	srows, err := s.db.QueryContext(ctx, `
		SELECT ps.user_id, sk.id, sk.name, COALESCE(sk.category, '')
		FROM profile_skills ps
		JOIN skills sk ON sk.id = ps.skill_id
		WHERE NOT (ps.user_id = ANY($1::bigint[]))
		ORDER BY sk.name
	`, pq.Array(excluded))
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var uid int
		var sk Skill
		if err := srows.Scan(&uid, &sk.ID, &sk.Name, &sk.Category); err != nil {
			return nil, err
		}
		if p, ok := byID[uid]; ok {
			p.Skills = append(p.Skills, sk)
		}
	}
	return profiles, srows.Err()
}

func (s *pgProfileStore) SearchByName(ctx context.Context, query string, limit int) ([]*Profile, error) {
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, first_name, last_name,
		       COALESCE(age, 0), COALESCE(city, ''), COALESCE(bio, ''),
		       COALESCE(search_goals, ''), COALESCE(avatar_file, '')
		FROM profiles
		WHERE first_name ILIKE '%' || $1 || '%' OR last_name ILIKE '%' || $1 || '%'
		ORDER BY user_id
		LIMIT $2
	`, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]*Profile, 0, limit)
	for rows.Next() {
		p := &Profile{}
		if err := rows.Scan(&p.UserID, &p.FirstName, &p.LastName, &p.Age, &p.City, &p.Bio, &p.SearchGoals, &p.AvatarFile); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

type pgDecisionStore struct {
	db *sql.DB
}

func newPGDecisionStore(db *sql.DB) *pgDecisionStore { return &pgDecisionStore{db: db} }

func (s *pgDecisionStore) GetDecision(ctx context.Context, actorID, targetID int) (*Decision, error) {
	d := &Decision{ActorID: actorID, TargetID: targetID}
	err := s.db.QueryRowContext(ctx, `
		SELECT verdict, decided_at FROM decisions
		WHERE actor_id = $1 AND target_id = $2
	`, actorID, targetID).Scan(&d.Verdict, &d.DecidedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return d, nil
}

func (s *pgDecisionStore) ListDecidedTargets(ctx context.Context, actorID int) (map[int]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT target_id FROM decisions WHERE actor_id = $1
	`, actorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	decided := make(map[int]struct{})
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		decided[id] = struct{}{}
	}
	return decided, rows.Err()
}

// ApplyDecision upserts the verdict and reconciles both match rows in one
// transaction. The whole transition is serialized per pair with a
// transaction-scoped advisory lock on the normalized (low, high) id pair:
// row locks alone cannot serialize two first decisions, since neither
// decision row exists yet and there is nothing for FOR UPDATE to grab.
// With the lock held, two near-simultaneous decisions resolve
// last-writer-wins and the mutual recompute never reads a verdict
// mid-write from the other side.
func (s *pgDecisionStore) ApplyDecision(ctx context.Context, actorID, targetID int, verdict Verdict, score float64) (*DecisionOutcome, error) {
	var out *DecisionOutcome
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`
			SELECT pg_advisory_xact_lock(least($1, $2), greatest($1, $2))
		`, actorID, targetID); err != nil {
			return err
		}

		rows, err := tx.Query(`
			SELECT actor_id, verdict FROM decisions
			WHERE (actor_id = $1 AND target_id = $2)
			   OR (actor_id = $2 AND target_id = $1)
		`, actorID, targetID)
		if err != nil {
			return err
		}
		reciprocalLike := false
		for rows.Next() {
			var decidedBy int
			var v Verdict
			if err := rows.Scan(&decidedBy, &v); err != nil {
				rows.Close()
				return err
			}
			if decidedBy == targetID && v == VerdictLike {
				reciprocalLike = true
			}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()

		if _, err := tx.Exec(`
			INSERT INTO decisions (actor_id, target_id, verdict, decided_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (actor_id, target_id)
			DO UPDATE SET verdict = EXCLUDED.verdict, decided_at = NOW()
		`, actorID, targetID, string(verdict)); err != nil {
			return err
		}

		if verdict == VerdictLike {
			mutual := reciprocalLike
			m := &Match{}
			err := tx.QueryRow(`
				INSERT INTO matches (actor_id, target_id, score, mutual)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (actor_id, target_id)
				DO UPDATE SET score = EXCLUDED.score, mutual = EXCLUDED.mutual, updated_at = NOW()
				RETURNING actor_id, target_id, score, mutual, created_at, updated_at
			`, actorID, targetID, score, mutual).Scan(&m.ActorID, &m.TargetID, &m.Score, &m.Mutual, &m.CreatedAt, &m.UpdatedAt)
			if err != nil {
				return err
			}
			// The other side's match view, if they liked us, flips mutual too.
			if _, err := tx.Exec(`
				UPDATE matches SET mutual = $3, updated_at = NOW()
				WHERE actor_id = $1 AND target_id = $2
			`, targetID, actorID, mutual); err != nil {
				return err
			}
			out = &DecisionOutcome{Match: m, Mutual: mutual}
			return nil
		}

		// Dislike: a match requires an active like, so the actor's row goes
		// away and the reciprocal row can no longer be mutual.
		if _, err := tx.Exec(`
			DELETE FROM matches WHERE actor_id = $1 AND target_id = $2
		`, actorID, targetID); err != nil {
			return err
		}
		if _, err := tx.Exec(`
			UPDATE matches SET mutual = FALSE, updated_at = NOW()
			WHERE actor_id = $2 AND target_id = $1
		`, actorID, targetID); err != nil {
			return err
		}
		out = &DecisionOutcome{}
		return nil
	})
	if err != nil {
		return nil, mapPQError(err)
	}
	return out, nil
}

type pgMatchStore struct {
	db *sql.DB
}

func newPGMatchStore(db *sql.DB) *pgMatchStore { return &pgMatchStore{db: db} }

func (s *pgMatchStore) ListMatches(ctx context.Context, actorID int) ([]*Match, error) {
	return s.list(ctx, `
		SELECT actor_id, target_id, score, mutual, created_at, updated_at
		FROM matches
		WHERE actor_id = $1
		ORDER BY score DESC, target_id ASC
	`, actorID)
}

func (s *pgMatchStore) ListMutualMatches(ctx context.Context, actorID int) ([]*Match, error) {
	return s.list(ctx, `
		SELECT actor_id, target_id, score, mutual, created_at, updated_at
		FROM matches
		WHERE actor_id = $1 AND mutual = TRUE
		ORDER BY score DESC, target_id ASC
	`, actorID)
}

func (s *pgMatchStore) list(ctx context.Context, query string, actorID int) ([]*Match, error) {
	rows, err := s.db.QueryContext(ctx, query, actorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*Match, 0, 16)
	for rows.Next() {
		m := &Match{}
		if err := rows.Scan(&m.ActorID, &m.TargetID, &m.Score, &m.Mutual, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// mapPQError turns retryable postgres failures into ErrConflict so callers
// can distinguish "try again" from a hard failure.
func mapPQError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return fmt.Errorf("%w: %v", ErrConflict, err)
		}
	}
	return err
}
