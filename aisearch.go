package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sparkmatch/backend/nlsearch"
)

// POST /ai-search {"query": "...", "limit": N}
// Natural-language people search. The interpreter resolves the query to
// either structured constraints (fed through the regular search pipeline)
// or a ranked id list. Interpreter failures surface as 503, never as an
// empty success, so the client can distinguish "no matches" from "search is
// down".
func aiSearchHandler(eng *Engine, interp nlsearch.Interpreter, timeout time.Duration) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		actorID := actorFromContext(r.Context())

		var req struct {
			Query string `json:"query"`
			Limit int    `json:"limit"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		res, err := interp.Interpret(ctx, req.Query, req.Limit)
		switch {
		case errors.Is(err, nlsearch.ErrEmptyQuery):
			writeEngineError(w, validationf("query must not be empty"))
			return
		case err != nil:
			writeEngineError(w, fmt.Errorf("%w: %v", ErrUnavailable, err))
			return
		}

		var recs []Recommendation
		if len(res.CandidateIDs) > 0 {
			recs, err = eng.scoreCandidates(r.Context(), actorID, res.CandidateIDs, req.Limit)
		} else {
			recs, err = eng.Recommendations(r.Context(), actorID, searchFiltersFrom(res.Filters), req.Limit)
		}
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string][]Recommendation{"results": recs})
	})
}

func searchFiltersFrom(f *nlsearch.Filters) *SearchFilters {
	if f == nil {
		return nil
	}
	return &SearchFilters{
		City:      f.City,
		MinAge:    f.MinAge,
		MaxAge:    f.MaxAge,
		Interests: f.Interests,
		Skills:    f.Skills,
	}
}

// scoreCandidates scores an interpreter-ranked id list against the actor,
// preserving the given order. Unknown ids and the actor themself are
// skipped rather than failing the search.
func (e *Engine) scoreCandidates(ctx context.Context, actorID int, ids []int, limit int) ([]Recommendation, error) {
	actor, err := e.profiles.GetProfile(ctx, actorID)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultFeedLimit
	}
	recs := make([]Recommendation, 0, limit)
	for _, id := range ids {
		if id == actorID || len(recs) >= limit {
			continue
		}
		cand, err := e.profiles.GetProfile(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		} else if err != nil {
			return nil, err
		}
		recs = append(recs, newRecommendation(cand, compatibilityScore(e.weights, actor, cand)))
	}
	return recs, nil
}
