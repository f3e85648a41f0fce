package main

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver
)

var db *sql.DB

func initDB(cfg *Config) error {
	var err error
	db, err = sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	if err := ensureSchema(db); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// ensureSchema creates the tables on first boot. Identity (who issues user
// ids, passwords, sessions) lives outside this service; profiles key
// directly on the external user id.
func ensureSchema(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS profiles (
	user_id      INT PRIMARY KEY,
	first_name   TEXT NOT NULL,
	last_name    TEXT NOT NULL DEFAULT '',
	age          INT,
	city         TEXT,
	bio          TEXT,
	search_goals TEXT,
	avatar_file  TEXT,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS interests (
	id         SERIAL PRIMARY KEY,
	name       TEXT UNIQUE NOT NULL,
	category   TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS skills (
	id         SERIAL PRIMARY KEY,
	name       TEXT UNIQUE NOT NULL,
	category   TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS profile_interests (
	user_id     INT NOT NULL REFERENCES profiles(user_id) ON DELETE CASCADE,
	interest_id INT NOT NULL REFERENCES interests(id) ON DELETE CASCADE,
	PRIMARY KEY (user_id, interest_id)
);

CREATE TABLE IF NOT EXISTS profile_skills (
	user_id  INT NOT NULL REFERENCES profiles(user_id) ON DELETE CASCADE,
	skill_id INT NOT NULL REFERENCES skills(id) ON DELETE CASCADE,
	PRIMARY KEY (user_id, skill_id)
);

CREATE TABLE IF NOT EXISTS decisions (
	actor_id   INT NOT NULL,
	target_id  INT NOT NULL,
	verdict    TEXT NOT NULL CHECK (verdict IN ('like', 'dislike')),
	decided_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (actor_id, target_id)
);

CREATE TABLE IF NOT EXISTS matches (
	actor_id   INT NOT NULL,
	target_id  INT NOT NULL,
	score      DOUBLE PRECISION NOT NULL,
	mutual     BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (actor_id, target_id)
);

CREATE TABLE IF NOT EXISTS messages (
	id           BIGSERIAL PRIMARY KEY,
	sender_id    INT NOT NULL,
	recipient_id INT NOT NULL,
	body         TEXT NOT NULL,
	is_read      BOOLEAN NOT NULL DEFAULT FALSE,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_decisions_actor ON decisions (actor_id);
CREATE INDEX IF NOT EXISTS idx_matches_actor ON matches (actor_id, mutual);
CREATE INDEX IF NOT EXISTS idx_messages_pair ON messages (sender_id, recipient_id, created_at);
`
	if _, err := db.Exec(schema); err != nil {
		return err
	}
	return seedCatalogs(db)
}

// seedCatalogs inserts the starter interest and skill catalogs. Users can
// extend them with "Custom"-category entries at runtime.
func seedCatalogs(db *sql.DB) error {
	seedInterests := map[string][]string{
		"hobbies":    {"Cooking", "Photography", "Reading", "Travel", "Gaming"},
		"sports":     {"Running", "Yoga", "Football", "Cycling", "Climbing"},
		"technology": {"Programming", "Robotics", "AI"},
		"arts":       {"Music", "Painting", "Dancing", "Writing"},
	}
	seedSkills := map[string][]string{
		"technical": {"Software Development", "Data Analysis", "DevOps"},
		"creative":  {"Graphic Design", "Photography", "Copywriting"},
		"business":  {"Marketing", "Project Management", "Sales"},
	}

	for category, names := range seedInterests {
		for _, name := range names {
			if _, err := db.Exec(`
				INSERT INTO interests (name, category) VALUES ($1, $2)
				ON CONFLICT (name) DO NOTHING
			`, name, category); err != nil {
				return err
			}
		}
	}
	for category, names := range seedSkills {
		for _, name := range names {
			if _, err := db.Exec(`
				INSERT INTO skills (name, category) VALUES ($1, $2)
				ON CONFLICT (name) DO NOTHING
			`, name, category); err != nil {
				return err
			}
		}
	}
	return nil
}
