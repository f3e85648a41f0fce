package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithCORS(t *testing.T) {
	allowed := []string{"http://localhost:3001", "http://localhost:5173"}
	handler := withCORS(allowed)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	serve := func(method, origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/", nil)
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("Allowed origin is echoed back", func(t *testing.T) {
		rec := serve("GET", "http://localhost:5173")
		assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Origin", rec.Header().Get("Vary"))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Unknown origin falls back to the first configured one", func(t *testing.T) {
		rec := serve("GET", "http://evil.example")
		assert.Equal(t, "http://localhost:3001", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, rec.Header().Get("Vary"))
	})

	t.Run("Preflight short-circuits with 204", func(t *testing.T) {
		rec := serve("OPTIONS", "http://localhost:3001")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, corsAllowMethods, rec.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, corsAllowHeaders, rec.Header().Get("Access-Control-Allow-Headers"))
	})
}
