package main

import (
	"database/sql"
	"net/http"
)

// Read-only aggregates over the decision and match data. Consumers only;
// nothing here writes.

// GET /analytics/user
func userAnalyticsHandler(db *sql.DB) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		me := actorFromContext(r.Context())
		ctx := r.Context()

		var out struct {
			TotalMatches         int      `json:"total_matches"`
			MutualMatches        int      `json:"mutual_matches"`
			AverageCompatibility float64  `json:"average_compatibility"`
			TopInterests         []string `json:"top_interests"`
			TopSkills            []string `json:"top_skills"`
			ProfileCompletion    float64  `json:"profile_completion_percentage"`
		}
		out.TopInterests = []string{}
		out.TopSkills = []string{}

		err := db.QueryRowContext(ctx, `
			SELECT COUNT(*),
			       COUNT(*) FILTER (WHERE mutual),
			       COALESCE(AVG(score), 0)
			FROM matches
			WHERE actor_id = $1
		`, me).Scan(&out.TotalMatches, &out.MutualMatches, &out.AverageCompatibility)
		if err != nil {
			writeEngineError(w, err)
			return
		}

		rows, err := db.QueryContext(ctx, `
			SELECT i.name FROM interests i
			JOIN profile_interests pi ON pi.interest_id = i.id
			WHERE pi.user_id = $1
			ORDER BY i.name
			LIMIT 5
		`, me)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		defer rows.Close()
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err == nil {
				out.TopInterests = append(out.TopInterests, name)
			}
		}

		srows, err := db.QueryContext(ctx, `
			SELECT sk.name FROM skills sk
			JOIN profile_skills ps ON ps.skill_id = sk.id
			WHERE ps.user_id = $1
			ORDER BY sk.name
			LIMIT 5
		`, me)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		defer srows.Close()
		for srows.Next() {
			var name string
			if err := srows.Scan(&name); err == nil {
				out.TopSkills = append(out.TopSkills, name)
			}
		}

		// Completion: share of the six display fields that are filled in.
		var filled int
		err = db.QueryRowContext(ctx, `
			SELECT (first_name <> '')::int + (last_name <> '')::int
			     + (age IS NOT NULL)::int + (COALESCE(city, '') <> '')::int
			     + (COALESCE(bio, '') <> '')::int + (COALESCE(avatar_file, '') <> '')::int
			FROM profiles WHERE user_id = $1
		`, me).Scan(&filled)
		if err == nil {
			out.ProfileCompletion = float64(filled) / 6 * 100
		} else if err != sql.ErrNoRows {
			writeEngineError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, out)
	})
}

// GET /analytics/platform
func platformAnalyticsHandler(db *sql.DB) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		type namedCount struct {
			Name     string `json:"name"`
			Category string `json:"category,omitempty"`
			Count    int    `json:"count"`
		}
		type cityCount struct {
			City  string `json:"city"`
			Count int    `json:"count"`
		}
		var out struct {
			TotalUsers       int          `json:"total_users"`
			TotalMatches     int          `json:"total_matches"`
			PopularInterests []namedCount `json:"popular_interests"`
			PopularSkills    []namedCount `json:"popular_skills"`
			Cities           []cityCount  `json:"geographic_distribution"`
		}
		out.PopularInterests = []namedCount{}
		out.PopularSkills = []namedCount{}
		out.Cities = []cityCount{}

		if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&out.TotalUsers); err != nil {
			writeEngineError(w, err)
			return
		}
		if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM matches`).Scan(&out.TotalMatches); err != nil {
			writeEngineError(w, err)
			return
		}

		rows, err := db.QueryContext(ctx, `
			SELECT i.name, COALESCE(i.category, ''), COUNT(*) AS cnt
			FROM interests i
			JOIN profile_interests pi ON pi.interest_id = i.id
			GROUP BY i.name, i.category
			ORDER BY cnt DESC, i.name ASC
			LIMIT 10
		`)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		defer rows.Close()
		for rows.Next() {
			var nc namedCount
			if err := rows.Scan(&nc.Name, &nc.Category, &nc.Count); err == nil {
				out.PopularInterests = append(out.PopularInterests, nc)
			}
		}

		srows, err := db.QueryContext(ctx, `
			SELECT sk.name, COALESCE(sk.category, ''), COUNT(*) AS cnt
			FROM skills sk
			JOIN profile_skills ps ON ps.skill_id = sk.id
			GROUP BY sk.name, sk.category
			ORDER BY cnt DESC, sk.name ASC
			LIMIT 10
		`)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		defer srows.Close()
		for srows.Next() {
			var nc namedCount
			if err := srows.Scan(&nc.Name, &nc.Category, &nc.Count); err == nil {
				out.PopularSkills = append(out.PopularSkills, nc)
			}
		}

		crows, err := db.QueryContext(ctx, `
			SELECT city, COUNT(*) AS cnt
			FROM profiles
			WHERE city IS NOT NULL AND city <> ''
			GROUP BY city
			ORDER BY cnt DESC, city ASC
			LIMIT 20
		`)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		defer crows.Close()
		for crows.Next() {
			var cc cityCount
			if err := crows.Scan(&cc.City, &cc.Count); err == nil {
				out.Cities = append(out.Cities, cc)
			}
		}

		writeJSON(w, http.StatusOK, out)
	})
}
