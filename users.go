package main

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Profile and catalog plumbing around the engine: the engine only ever
// reads profiles, these handlers are how they get there.

// GET /me/profile
func getMyProfileHandler(profiles ProfileStore) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		me := actorFromContext(r.Context())
		p, err := profiles.GetProfile(r.Context(), me)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	})
}

// PUT /me/profile - create or update the caller's profile fields.
// Interest and skill membership is managed through the dedicated endpoints.
func putMyProfileHandler(db *sql.DB) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		me := actorFromContext(r.Context())

		var req struct {
			FirstName   string `json:"first_name"`
			LastName    string `json:"last_name"`
			Age         int    `json:"age"`
			City        string `json:"city"`
			Bio         string `json:"bio"`
			SearchGoals string `json:"search_goals"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		req.FirstName = strings.TrimSpace(req.FirstName)
		if req.FirstName == "" {
			writeError(w, http.StatusBadRequest, "missing_first_name")
			return
		}
		if req.Age < 0 {
			writeError(w, http.StatusBadRequest, "invalid_age")
			return
		}

		_, err := db.ExecContext(r.Context(), `
			INSERT INTO profiles (user_id, first_name, last_name, age, city, bio, search_goals)
			VALUES ($1, $2, $3, NULLIF($4, 0), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''))
			ON CONFLICT (user_id) DO UPDATE SET
				first_name = EXCLUDED.first_name,
				last_name = EXCLUDED.last_name,
				age = EXCLUDED.age,
				city = EXCLUDED.city,
				bio = EXCLUDED.bio,
				search_goals = EXCLUDED.search_goals,
				updated_at = NOW()
		`, me, req.FirstName, strings.TrimSpace(req.LastName), req.Age,
			strings.TrimSpace(req.City), strings.TrimSpace(req.Bio), strings.TrimSpace(req.SearchGoals))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"saved": true})
	})
}

// GET /interests and GET /skills - the shared catalogs.
func catalogHandler(db *sql.DB, table string) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		rows, err := db.QueryContext(r.Context(),
			`SELECT id, name, COALESCE(category, '') FROM `+table+` ORDER BY name`)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		defer rows.Close()

		type entry struct {
			ID       int    `json:"id"`
			Name     string `json:"name"`
			Category string `json:"category,omitempty"`
		}
		items := make([]entry, 0, 64)
		for rows.Next() {
			var e entry
			if err := rows.Scan(&e.ID, &e.Name, &e.Category); err != nil {
				writeEngineError(w, err)
				return
			}
			items = append(items, e)
		}
		writeJSON(w, http.StatusOK, map[string][]entry{table: items})
	})
}

// POST /interests and POST /skills - user-coined catalog entries land in
// the reserved "Custom" category. Renaming or deleting existing entries is
// not supported; catalog terms are immutable once created.
func createCustomTermHandler(db *sql.DB, table string) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "missing_name")
			return
		}

		var id int
		err := db.QueryRowContext(r.Context(), `
			INSERT INTO `+table+` (name, category) VALUES ($1, $2)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id
		`, req.Name, CategoryCustom).Scan(&id)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"id": id, "name": req.Name, "category": CategoryCustom})
	})
}

// POST /me/interests/{id}, DELETE /me/interests/{id} (same for skills):
// membership in the many-to-many catalog tables.
func membershipHandler(db *sql.DB, joinTable, refColumn, refTable string) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		me := actorFromContext(r.Context())
		id, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}

		if r.Method == http.MethodDelete {
			_, err := db.ExecContext(r.Context(),
				`DELETE FROM `+joinTable+` WHERE user_id = $1 AND `+refColumn+` = $2`, me, id)
			if err != nil {
				writeEngineError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]bool{"removed": true})
			return
		}

		var exists bool
		if err := db.QueryRowContext(r.Context(),
			`SELECT EXISTS (SELECT 1 FROM `+refTable+` WHERE id = $1)`, id).Scan(&exists); err != nil {
			writeEngineError(w, err)
			return
		}
		if !exists {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}

		_, err = db.ExecContext(r.Context(), `
			INSERT INTO `+joinTable+` (user_id, `+refColumn+`) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, me, id)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]bool{"added": true})
	})
}

// GET /users/search?q=ann - plain substring name search, separate from the
// recommendation pipeline.
func userSearchHandler(profiles ProfileStore) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		if q == "" {
			writeError(w, http.StatusBadRequest, "missing_query")
			return
		}
		limit, err := parseLimit(r.URL.Query().Get("limit"))
		if err != nil {
			writeEngineError(w, err)
			return
		}

		found, err := profiles.SearchByName(r.Context(), q, limit)
		if err != nil {
			writeEngineError(w, err)
			return
		}

		summaries := make([]ProfileSummary, 0, len(found))
		for _, p := range found {
			summaries = append(summaries, ProfileSummary{
				UserID:     p.UserID,
				FirstName:  p.FirstName,
				LastName:   p.LastName,
				City:       p.City,
				AvatarFile: p.AvatarFile,
			})
		}
		writeJSON(w, http.StatusOK, map[string][]ProfileSummary{"users": summaries})
	})
}

// GET /users/{id} - another user's public profile.
func getUserProfileHandler(profiles ProfileStore) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		p, err := profiles.GetProfile(r.Context(), id)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		// Search goals are private to the owner.
		public := *p
		public.SearchGoals = ""
		writeJSON(w, http.StatusOK, &public)
	})
}
