package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sparkmatch/backend/nlsearch"
)

func main() {
	cfg, err := loadConfig("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	setupLogger(cfg.Log.Level)

	jwtSecret = []byte(cfg.JWT.Secret)

	if err := initDB(cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.Close()
	log.Info().Msg("database connection established")

	profiles := newPGProfileStore(db)
	decisions := newPGDecisionStore(db)
	matches := newPGMatchStore(db)
	eng := NewEngine(profiles, decisions, matches, defaultScoreWeights(), log.Logger)

	interp := buildInterpreter(cfg)
	nlTimeout := time.Duration(cfg.Gemini.TimeoutSeconds) * time.Second
	if nlTimeout <= 0 {
		nlTimeout = 10 * time.Second
	}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(withCORS(cfg.Server.AllowedOrigins))

	// Profile & catalogs
	r.Get("/me/profile", getMyProfileHandler(profiles))
	r.Put("/me/profile", putMyProfileHandler(db))
	r.Get("/interests", catalogHandler(db, "interests"))
	r.Post("/interests", createCustomTermHandler(db, "interests"))
	r.Get("/skills", catalogHandler(db, "skills"))
	r.Post("/skills", createCustomTermHandler(db, "skills"))
	r.Post("/me/interests/{id}", membershipHandler(db, "profile_interests", "interest_id", "interests"))
	r.Delete("/me/interests/{id}", membershipHandler(db, "profile_interests", "interest_id", "interests"))
	r.Post("/me/skills/{id}", membershipHandler(db, "profile_skills", "skill_id", "skills"))
	r.Delete("/me/skills/{id}", membershipHandler(db, "profile_skills", "skill_id", "skills"))

	// Recommendations & search
	r.Get("/recommendations", recommendationsHandler(eng))
	r.Get("/recommendations/search", searchRecommendationsHandler(eng))
	r.Post("/ai-search", aiSearchHandler(eng, interp, nlTimeout))
	r.Get("/users/search", userSearchHandler(profiles))
	r.Get("/users/{id}", getUserProfileHandler(profiles))

	// Decisions & matches
	r.Post("/matches/like/{id}", decideHandler(eng, VerdictLike))
	r.Post("/matches/dislike/{id}", decideHandler(eng, VerdictDislike))
	r.Get("/matches", listMatchesHandler(eng, db))
	r.Get("/matches/mutual", listMutualMatchesHandler(eng, db))

	// Chat
	r.Get("/ws/chat", wsChatHandler(db))
	r.Get("/chats/summary", chatSummaryHandler(db))
	r.Post("/chats/read", chatsMarkReadHandler(db))
	r.Get("/chats/{peerID}", chatHistoryHandler(db))

	// Avatars
	r.Post("/me/avatar", myAvatarHandler(db))
	r.Delete("/me/avatar", myAvatarHandler(db))
	r.Get("/avatars/{id}", getUserAvatarHandler(db))

	// Analytics
	r.Get("/analytics/user", userAnalyticsHandler(db))
	r.Get("/analytics/platform", platformAnalyticsHandler(db))

	// Health check endpoint for Docker
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("starting sparkmatch backend")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}

// buildInterpreter picks the NL search backend: Gemini when an API key is
// configured, the offline keyword parser otherwise.
func buildInterpreter(cfg *Config) nlsearch.Interpreter {
	if cfg.Gemini.APIKey == "" {
		log.Info().Msg("no gemini api key configured, using keyword search interpreter")
		return nlsearch.NewKeyword()
	}
	gen, err := nlsearch.NewGenerator(context.Background(), cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		log.Warn().Err(err).Msg("gemini unavailable, falling back to keyword interpreter")
		return nlsearch.NewKeyword()
	}
	return nlsearch.NewGemini(gen)
}

func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
