// Package handlers implements the JSON API consumed by the MoviePick web
// client.
package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	gojson "github.com/goccy/go-json"
	"gorm.io/gorm"

	"github.com/moviepick/moviepick/lib/auth"
	"github.com/moviepick/moviepick/lib/catalog"
	"github.com/moviepick/moviepick/lib/mail"
	"github.com/moviepick/moviepick/lib/query"
	"github.com/moviepick/moviepick/lib/recommend"
)

// API bundles the collaborators every handler needs.
type API struct {
	db          *gorm.DB
	genres      *catalog.GenreRegistry
	query       *query.Engine
	recommender *recommend.Recommender
	auth        *auth.Service
	mail        *mail.Client
	logger      *slog.Logger
}

// New returns the API handler set.
func New(db *gorm.DB, genres *catalog.GenreRegistry, engine *query.Engine, recommender *recommend.Recommender, authSvc *auth.Service, mailClient *mail.Client, logger *slog.Logger) *API {
	return &API{
		db:          db,
		genres:      genres,
		query:       engine,
		recommender: recommender,
		auth:        authSvc,
		mail:        mailClient,
		logger:      logger,
	}
}

// Routes returns the router for everything under /api.
func (a *API) Routes() chi.Router {
	r := chi.NewRouter()

	// Credential endpoints get a tight per-IP rate limit.
	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(10, time.Minute))
		r.Post("/auth/register", a.handleRegister)
		r.Post("/auth/login", a.handleLogin)
		r.Post("/auth/forgot-password", a.handleForgotPassword)
		r.Post("/auth/reset-password", a.handleResetPassword)
	})
	r.Post("/auth/logout", a.handleLogout)
	r.Get("/auth/me", a.handleMe)

	r.Get("/genres", a.handleGenres)
	r.Get("/movies/popular", a.handlePopularMovies)
	r.Get("/movies/top-rated", a.handleTopRatedMovies)
	r.Get("/movies/search", a.handleSearchMovies)
	r.Get("/movies/by-genre/{genreId}", a.handleMoviesByGenre)
	r.Get("/movies/{id}", a.handleMovieDetails)
	r.Get("/movies/{id}/similar", a.handleSimilarMovies)

	r.Route("/user", func(r chi.Router) {
		r.Use(a.auth.RequireAuth)
		r.Get("/preferences", a.handleGetPreferences)
		r.Post("/preferences", a.handleUpdatePreferences)
		r.Get("/ratings", a.handleGetRatings)
		r.Get("/ratings/{movieId}", a.handleGetRating)
		r.Post("/ratings", a.handleUpsertRating)
		r.Get("/watchlist", a.handleGetWatchlist)
		r.Get("/watchlist/check/{movieId}", a.handleCheckWatchlist)
		r.Post("/watchlist", a.handleAddToWatchlist)
		r.Delete("/watchlist/{movieId}", a.handleRemoveFromWatchlist)
		r.Get("/recommendations", a.handleRecommendations)
	})

	// Playlist reads are public so shared links work; visibility of private
	// playlists is checked per handler.
	r.Get("/playlists/public", a.handlePublicPlaylists)
	r.Get("/playlists/{id}", a.handleGetPlaylist)
	r.Get("/playlists/{id}/items", a.handleGetPlaylistItems)

	r.Group(func(r chi.Router) {
		r.Use(a.auth.RequireAuth)
		r.Get("/playlists", a.handleGetPlaylists)
		r.Post("/playlists", a.handleCreatePlaylist)
		r.Put("/playlists/{id}", a.handleUpdatePlaylist)
		r.Delete("/playlists/{id}", a.handleDeletePlaylist)
		r.Post("/playlists/{id}/items", a.handleAddPlaylistItem)
		r.Delete("/playlists/{id}/items/{movieId}", a.handleRemovePlaylistItem)
		r.Put("/playlists/{id}/items/{movieId}/notes", a.handleUpdatePlaylistItemNotes)
		r.Put("/playlists/{id}/reorder", a.handleReorderPlaylist)
	})

	return r
}

// writeJSON writes v as a JSON response with the given status code.
func (a *API) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := gojson.NewEncoder(w).Encode(v); err != nil {
		a.logger.Error("Failed to encode response", slog.Any("error", err))
	}
}

// writeMessage writes a plain {"message": ...} response.
func (a *API) writeMessage(w http.ResponseWriter, status int, message string) {
	a.writeJSON(w, status, map[string]string{"message": message})
}

// urlInt parses an integer URL parameter.
func urlInt(r *http.Request, name string) (int, error) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return v, nil
}
