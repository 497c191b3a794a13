// Command moviepick serves the MoviePick movie discovery API. The movie
// catalog is loaded once from a local dataset before the server starts
// listening; user data lives in SQLite.
package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/moviepick/moviepick/handlers"
	"github.com/moviepick/moviepick/lib/auth"
	"github.com/moviepick/moviepick/lib/catalog"
	"github.com/moviepick/moviepick/lib/config"
	"github.com/moviepick/moviepick/lib/db"
	"github.com/moviepick/moviepick/lib/health"
	"github.com/moviepick/moviepick/lib/mail"
	"github.com/moviepick/moviepick/lib/query"
	"github.com/moviepick/moviepick/lib/recommend"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	gdb, err := db.Open(cfg.DatabasePath, logger)
	if err != nil {
		logger.Error("Failed to open database", slog.Any("error", err))
		os.Exit(1)
	}

	// A broken dataset is fatal: no partial catalog is ever served.
	genres, index, err := catalog.LoadFile(cfg.DatasetPath, cfg.DatasetSeed, logger)
	if err != nil {
		logger.Error("Failed to load movie catalog", slog.Any("error", err))
		os.Exit(1)
	}

	engine := query.New(index, logger)
	recommender := recommend.New(index, logger)
	authSvc := auth.New(cfg.SessionSecret, cfg.SessionTTL)
	mailClient := mail.New(cfg.SendGridAPIKey, cfg.SendGridFrom, cfg.BaseURL, logger)

	api := handlers.New(gdb, genres, engine, recommender, authSvc, mailClient, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", health.Check(gdb, index, genres))
	r.Mount("/api", api.Routes())

	// Serve the built SPA when present; API-only otherwise.
	if info, err := os.Stat(cfg.StaticDir); err == nil && info.IsDir() {
		fileServer := http.FileServer(http.Dir(cfg.StaticDir))
		r.Handle("/*", fileServer)
		logger.Info("Serving static files", slog.String("dir", cfg.StaticDir))
	}

	logger.Info("Starting server", slog.String("port", cfg.Port))
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		logger.Error("Server failed", slog.Any("error", err))
		os.Exit(1)
	}
}
