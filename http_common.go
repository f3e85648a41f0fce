package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
)

// --- Response helpers ---
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeEngineError maps the engine's error taxonomy to HTTP statuses in one
// place. ErrUnavailable deliberately gets its own code so clients can tell
// "search failed" apart from "no matches".
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		writeError(w, http.StatusBadRequest, "validation_error")
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "search_unavailable")
	case errors.Is(err, ErrConflict):
		writeError(w, http.StatusConflict, "conflict_retry")
	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful to write.
	default:
		log.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
	}
}

// withTx wraps a function in a database transaction.
// - Ensures COMMIT on success, ROLLBACK on errors or panics.
// - Keeps handler bodies tiny and all state changes atomic.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}

	defer func() {
		// If the callback panics, make sure to rollback before re-panicking
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
