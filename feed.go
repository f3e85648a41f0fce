package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	defaultFeedLimit = 10
	maxScoreWorkers  = 8
)

// Engine is the recommendation and match decision core. It holds no
// cross-request state: every feed is computed fresh from the stores, so a
// decision recorded by anyone is visible to the next request.
type Engine struct {
	profiles  ProfileStore
	decisions DecisionStore
	matches   MatchStore
	weights   ScoreWeights
	log       zerolog.Logger
}

func NewEngine(profiles ProfileStore, decisions DecisionStore, matches MatchStore, weights ScoreWeights, log zerolog.Logger) *Engine {
	return &Engine{
		profiles:  profiles,
		decisions: decisions,
		matches:   matches,
		weights:   weights,
		log:       log,
	}
}

// Recommendations builds the ranked candidate feed for an actor.
//
// The pool is every profile except the actor and anyone the actor has
// already decided on. Optional filters narrow it further, then every
// remaining candidate is scored against the actor and the result is sorted
// by score descending with candidate id ascending as the tiebreak, so an
// unchanged pool always yields the same ordering. limit <= 0 falls back to
// the default feed size.
//
// Scoring runs across a bounded worker group and stops early when ctx is
// canceled; nothing is returned until the whole pool is scored.
func (e *Engine) Recommendations(ctx context.Context, actorID int, filters *SearchFilters, limit int) ([]Recommendation, error) {
	actor, err := e.profiles.GetProfile(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("load actor profile: %w", err)
	}

	decided, err := e.decisions.ListDecidedTargets(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("list decided targets: %w", err)
	}
	excluded := make(map[int]struct{}, len(decided)+1)
	for id := range decided {
		excluded[id] = struct{}{}
	}
	excluded[actorID] = struct{}{}

	pool, err := e.profiles.ListProfiles(ctx, excluded)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	pool = applyFilters(pool, filters)

	recs := make([]Recommendation, len(pool))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxScoreWorkers)
	for i, cand := range pool {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			recs[i] = newRecommendation(cand, compatibilityScore(e.weights, actor, cand))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].UserID < recs[j].UserID
	})

	if limit <= 0 {
		limit = defaultFeedLimit
	}
	if len(recs) > limit {
		recs = recs[:limit]
	}

	e.log.Debug().
		Int("actor_id", actorID).
		Int("pool", len(pool)).
		Int("returned", len(recs)).
		Msg("feed built")

	return recs, nil
}

// Matches returns the actor's one-sided and mutual matches.
func (e *Engine) Matches(ctx context.Context, actorID int) ([]*Match, error) {
	return e.matches.ListMatches(ctx, actorID)
}

// MutualMatches returns only the matches where both sides currently like
// each other.
func (e *Engine) MutualMatches(ctx context.Context, actorID int) ([]*Match, error) {
	return e.matches.ListMutualMatches(ctx, actorID)
}
