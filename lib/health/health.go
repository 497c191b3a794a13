// Package health exposes the health check endpoint.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	gojson "github.com/goccy/go-json"
	"gorm.io/gorm"
)

// Health is the health check response. Catalog reports the number of movies
// served; it is fixed after startup since the catalog never reloads.
type Health struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	DB        struct {
		Status  string `json:"status"`
		Message string `json:"message,omitempty"`
	} `json:"db"`
	Catalog struct {
		Movies int `json:"movies"`
		Genres int `json:"genres"`
	} `json:"catalog"`
}

// Sizer reports catalog sizes for the health response.
type Sizer interface {
	Len() int
}

// Check returns a handler reporting database connectivity and catalog size.
func Check(db *gorm.DB, movies, genres Sizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := Health{
			Status:    "ok",
			Timestamp: time.Now(),
		}
		health.Catalog.Movies = movies.Len()
		health.Catalog.Genres = genres.Len()

		sqlDB, err := db.DB()
		if err != nil {
			health.Status = "degraded"
			health.DB.Status = "error"
			health.DB.Message = "Failed to get database connection"
			writeHealth(w, health, http.StatusServiceUnavailable)
			return
		}

		if err := sqlDB.PingContext(ctx); err != nil {
			health.Status = "degraded"
			health.DB.Status = "error"
			health.DB.Message = "Database ping failed"
			writeHealth(w, health, http.StatusServiceUnavailable)
			return
		}

		health.DB.Status = "ok"
		writeHealth(w, health, http.StatusOK)
	}
}

// writeHealth writes the health check response to the HTTP response writer.
func writeHealth(w http.ResponseWriter, health Health, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := gojson.NewEncoder(w).Encode(health); err != nil {
		slog.Error("Failed to encode health response", slog.Any("error", err))
	}
}
