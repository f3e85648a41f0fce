package main

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// POST /matches/like/{id} and POST /matches/dislike/{id}
// A swipe. The engine rejects self-targeting and unknown candidates, and
// the response carries the resulting match (if any) plus the mutual flag so
// the client can celebrate immediately.
func decideHandler(eng *Engine, verdict Verdict) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		actorID := actorFromContext(r.Context())

		targetID, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}

		out, err := eng.RecordDecision(r.Context(), actorID, targetID, verdict)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	})
}

// GET /matches - every candidate the user has liked, with profile summaries.
func listMatchesHandler(eng *Engine, db *sql.DB) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		serveMatchList(w, r, db, eng.Matches)
	})
}

// GET /matches/mutual - only reciprocal likes.
func listMutualMatchesHandler(eng *Engine, db *sql.DB) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		serveMatchList(w, r, db, eng.MutualMatches)
	})
}

func serveMatchList(w http.ResponseWriter, r *http.Request, db *sql.DB, list func(context.Context, int) ([]*Match, error)) {
	actorID := actorFromContext(r.Context())

	matches, err := list(r.Context(), actorID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	ids := make([]int, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.TargetID)
	}
	summaries, err := loadProfileSummaries(r.Context(), db, ids)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	views := make([]MatchView, 0, len(matches))
	for _, m := range matches {
		views = append(views, MatchView{Match: *m, Target: summaries[m.TargetID]})
	}
	writeJSON(w, http.StatusOK, map[string][]MatchView{"matches": views})
}
