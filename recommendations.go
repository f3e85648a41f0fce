package main

import (
	"net/http"
	"strconv"
	"strings"
)

// GET /recommendations?limit=N
// Ranked candidate feed for the logged in user: everyone they have not
// decided on yet, best compatibility first.
func recommendationsHandler(eng *Engine) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		actorID := actorFromContext(r.Context())

		limit, err := parseLimit(r.URL.Query().Get("limit"))
		if err != nil {
			writeEngineError(w, err)
			return
		}

		recs, err := eng.Recommendations(r.Context(), actorID, nil, limit)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string][]Recommendation{"recommendations": recs})
	})
}

// GET /recommendations/search?city=&min_age=&max_age=&interests=a,b&skills=c&limit=N
// Same feed, narrowed by explicit constraints. Contradictory age bounds are
// a valid (if useless) query and return an empty list.
func searchRecommendationsHandler(eng *Engine) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		actorID := actorFromContext(r.Context())
		q := r.URL.Query()

		filters := &SearchFilters{
			City:      strings.TrimSpace(q.Get("city")),
			Interests: splitTerms(q.Get("interests")),
			Skills:    splitTerms(q.Get("skills")),
		}

		var err error
		if filters.MinAge, err = parseOptionalInt(q.Get("min_age")); err != nil {
			writeEngineError(w, validationf("min_age must be a number"))
			return
		}
		if filters.MaxAge, err = parseOptionalInt(q.Get("max_age")); err != nil {
			writeEngineError(w, validationf("max_age must be a number"))
			return
		}
		limit, err := parseLimit(q.Get("limit"))
		if err != nil {
			writeEngineError(w, err)
			return
		}

		recs, err := eng.Recommendations(r.Context(), actorID, filters, limit)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string][]Recommendation{"recommendations": recs})
	})
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, validationf("limit must be a non-negative number")
	}
	return n, nil
}

func parseOptionalInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, strconv.ErrSyntax
	}
	return n, nil
}

func splitTerms(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	terms := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			terms = append(terms, p)
		}
	}
	return terms
}
