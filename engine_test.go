package main

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// In-memory store implementations used across the engine tests. They follow
// the same contracts as the postgres stores in pgstore.go, including the
// pair-level atomicity of ApplyDecision.

type memProfileStore struct {
	mu       sync.RWMutex
	profiles map[int]*Profile
}

func newMemProfileStore(profiles ...*Profile) *memProfileStore {
	s := &memProfileStore{profiles: make(map[int]*Profile, len(profiles))}
	for _, p := range profiles {
		s.profiles[p.UserID] = p
	}
	return s
}

func (s *memProfileStore) GetProfile(_ context.Context, userID int) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, notFoundf("profile %d", userID)
	}
	return p, nil
}

func (s *memProfileStore) ListProfiles(_ context.Context, excluding map[int]struct{}) ([]*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Profile, 0, len(s.profiles))
	for id, p := range s.profiles {
		if _, skip := excluding[id]; skip {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *memProfileStore) SearchByName(_ context.Context, query string, limit int) ([]*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Profile, 0)
	for _, p := range s.profiles {
		if len(out) >= limit && limit > 0 {
			break
		}
		if containsFold(p.FirstName, query) || containsFold(p.LastName, query) {
			out = append(out, p)
		}
	}
	return out, nil
}

type pairKey struct{ actor, target int }

type memDecisionStore struct {
	mu        sync.Mutex
	locks     map[pairKey]*sync.Mutex
	decisions map[pairKey]*Decision
	matches   map[pairKey]*Match
}

func newMemDecisionStore() *memDecisionStore {
	return &memDecisionStore{
		locks:     make(map[pairKey]*sync.Mutex),
		decisions: make(map[pairKey]*Decision),
		matches:   make(map[pairKey]*Match),
	}
}

// pairLock serializes transitions per normalized pair, the same unit the
// postgres store locks with pg_advisory_xact_lock.
func (s *memDecisionStore) pairLock(a, b int) *sync.Mutex {
	if a > b {
		a, b = b, a
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[pairKey{a, b}]
	if !ok {
		l = &sync.Mutex{}
		s.locks[pairKey{a, b}] = l
	}
	return l
}

func (s *memDecisionStore) GetDecision(_ context.Context, actorID, targetID int) (*Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.decisions[pairKey{actorID, targetID}]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (s *memDecisionStore) ListDecidedTargets(_ context.Context, actorID int) (map[int]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int]struct{})
	for k := range s.decisions {
		if k.actor == actorID {
			out[k.target] = struct{}{}
		}
	}
	return out, nil
}

func (s *memDecisionStore) ApplyDecision(_ context.Context, actorID, targetID int, verdict Verdict, score float64) (*DecisionOutcome, error) {
	lock := s.pairLock(actorID, targetID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	fwd := pairKey{actorID, targetID}
	rev := pairKey{targetID, actorID}

	s.decisions[fwd] = &Decision{ActorID: actorID, TargetID: targetID, Verdict: verdict}

	if verdict == VerdictDislike {
		delete(s.matches, fwd)
		if rm, ok := s.matches[rev]; ok {
			rm.Mutual = false
		}
		return &DecisionOutcome{}, nil
	}

	reciprocal := s.decisions[rev]
	mutual := reciprocal != nil && reciprocal.Verdict == VerdictLike
	s.matches[fwd] = &Match{ActorID: actorID, TargetID: targetID, Score: score, Mutual: mutual}
	if mutual {
		if rm, ok := s.matches[rev]; ok {
			rm.Mutual = true
		}
	}
	cp := *s.matches[fwd]
	return &DecisionOutcome{Match: &cp, Mutual: mutual}, nil
}

func (s *memDecisionStore) ListMatches(_ context.Context, actorID int) ([]*Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Match, 0)
	for k, m := range s.matches {
		if k.actor == actorID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memDecisionStore) ListMutualMatches(_ context.Context, actorID int) ([]*Match, error) {
	all, _ := s.ListMatches(nil, actorID)
	out := make([]*Match, 0)
	for _, m := range all {
		if m.Mutual {
			out = append(out, m)
		}
	}
	return out, nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// --- Fixtures ---

func testProfiles() []*Profile {
	return []*Profile{
		{
			UserID: 1, FirstName: "Alice", LastName: "Nguyen", Age: 28, City: "Berlin",
			Bio: "I love hiking and photography",
			Interests: []Interest{{ID: 1, Name: "Music"}, {ID: 2, Name: "Technology"}},
			Skills:    []Skill{{ID: 1, Name: "Go"}, {ID: 2, Name: "Design"}},
		},
		{
			UserID: 2, FirstName: "Bob", LastName: "Meier", Age: 30, City: "Berlin",
			Bio: "hiking on weekends, coffee on weekdays",
			Interests: []Interest{{ID: 1, Name: "Music"}, {ID: 3, Name: "Art"}},
			Skills:    []Skill{{ID: 1, Name: "Go"}},
		},
		{
			UserID: 3, FirstName: "Carol", LastName: "Smith", Age: 45, City: "Munich",
			Interests: []Interest{{ID: 4, Name: "Sports"}},
			Skills:    []Skill{{ID: 3, Name: "Marketing"}},
		},
		{
			UserID: 4, FirstName: "Dave", LastName: "Brown",
			// no age, no city, no bio
		},
	}
}

func newTestEngine(profiles ...*Profile) (*Engine, *memProfileStore, *memDecisionStore) {
	if len(profiles) == 0 {
		profiles = testProfiles()
	}
	ps := newMemProfileStore(profiles...)
	ds := newMemDecisionStore()
	eng := NewEngine(ps, ds, ds, defaultScoreWeights(), zerolog.Nop())
	return eng, ps, ds
}
