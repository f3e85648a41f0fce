package main

import (
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const avatarRoot = "./uploads/avatars"

// POST /me/avatar (multipart form, field name: "file"), DELETE /me/avatar
func myAvatarHandler(db *sql.DB) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		me := actorFromContext(r.Context())

		if r.Method == http.MethodDelete {
			if err := removeAvatar(db, me); err != nil {
				writeError(w, http.StatusInternalServerError, "remove_failed")
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
			return
		}

		// Limit to ~3MB
		r.Body = http.MaxBytesReader(w, r.Body, 3<<20)
		if err := r.ParseMultipartForm(4 << 20); err != nil {
			writeError(w, http.StatusRequestEntityTooLarge, "file_too_large_or_missing")
			return
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "missing_file")
			return
		}
		defer f.Close()

		// Sniff MIME from the first bytes
		head := make([]byte, 512)
		n, _ := f.Read(head)
		if http.DetectContentType(head[:n]) != "image/jpeg" {
			writeError(w, http.StatusBadRequest, "only_jpeg_allowed")
			return
		}
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			writeError(w, http.StatusInternalServerError, "seek_failed")
			return
		}

		if err := os.MkdirAll(avatarRoot, 0o755); err != nil {
			writeError(w, http.StatusInternalServerError, "mkdir_failed")
			return
		}

		// Random suffix so a re-upload gets a fresh URL (busts browser caches).
		filename := fmt.Sprintf("%d_%s.jpg", me, uuid.NewString())
		dst := filepath.Join(avatarRoot, filename)
		tmp := dst + ".tmp"

		out, err := os.Create(tmp)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "save_failed")
			return
		}
		if _, err := io.Copy(out, f); err != nil {
			out.Close()
			writeError(w, http.StatusInternalServerError, "save_failed")
			return
		}
		out.Close()
		if err := os.Rename(tmp, dst); err != nil {
			writeError(w, http.StatusInternalServerError, "save_failed")
			return
		}

		// Record the new file and clean up the previous one.
		var previous sql.NullString
		err = db.QueryRow(`SELECT avatar_file FROM profiles WHERE user_id = $1`, me).Scan(&previous)
		if err == sql.ErrNoRows {
			_ = os.Remove(dst)
			writeError(w, http.StatusNotFound, "profile_not_found")
			return
		} else if err != nil {
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}
		if _, err := db.Exec(`
			UPDATE profiles SET avatar_file = $2, updated_at = NOW() WHERE user_id = $1
		`, me, filename); err != nil {
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}
		if previous.Valid && previous.String != "" && previous.String != filename {
			_ = os.Remove(filepath.Join(avatarRoot, previous.String))
		}

		writeJSON(w, http.StatusCreated, map[string]string{"profile_picture": filename})
	})
}

func removeAvatar(db *sql.DB, userID int) error {
	var current sql.NullString
	err := db.QueryRow(`SELECT avatar_file FROM profiles WHERE user_id = $1`, userID).Scan(&current)
	if err == sql.ErrNoRows {
		return nil
	} else if err != nil {
		return err
	}
	if _, err := db.Exec(`UPDATE profiles SET avatar_file = NULL, updated_at = NOW() WHERE user_id = $1`, userID); err != nil {
		return err
	}
	if current.Valid && current.String != "" {
		_ = os.Remove(filepath.Join(avatarRoot, current.String))
	}
	return nil
}

// GET /avatars/{id} - serves the user's current avatar file.
func getUserAvatarHandler(db *sql.DB) http.HandlerFunc {
	return authenticate(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			http.NotFound(w, r)
			return
		}

		var file sql.NullString
		err = db.QueryRow(`SELECT avatar_file FROM profiles WHERE user_id = $1`, id).Scan(&file)
		if err != nil || !file.Valid || file.String == "" {
			http.NotFound(w, r)
			return
		}

		// Guard against a doctored filename in the database.
		clean := filepath.Base(file.String)
		http.ServeFile(w, r, filepath.Join(avatarRoot, clean))
	})
}
