package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"gorm.io/gorm"

	"github.com/moviepick/moviepick/lib/auth"
	"github.com/moviepick/moviepick/lib/recommend"
	"github.com/moviepick/moviepick/lib/validation"
	"github.com/moviepick/moviepick/models"
)

// sessionUser returns the authenticated user id; RequireAuth guarantees it
// is present on these routes.
func (a *API) sessionUser(r *http.Request) uint {
	userID, _ := auth.UserID(r.Context())
	return userID
}

type preferencesResponse struct {
	GenreIDs    models.IntList `json:"genreIds"`
	ActorIDs    models.IntList `json:"actorIds"`
	DirectorIDs models.IntList `json:"directorIds"`
}

func (a *API) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	userID := a.sessionUser(r)

	var prefs models.UserPreference
	err := a.db.Where("user_id = ?", userID).First(&prefs).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		a.writeJSON(w, http.StatusOK, preferencesResponse{
			GenreIDs:    models.IntList{},
			ActorIDs:    models.IntList{},
			DirectorIDs: models.IntList{},
		})
		return
	}
	if err != nil {
		a.logger.Error("Failed to get preferences", slog.Any("error", err))
		a.writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	a.writeJSON(w, http.StatusOK, prefs)
}

type preferencesRequest struct {
	GenreIDs    []int `json:"genreIds" validate:"dive,gt=0"`
	ActorIDs    []int `json:"actorIds" validate:"dive,gt=0"`
	DirectorIDs []int `json:"directorIds" validate:"dive,gt=0"`
}

func (a *API) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID := a.sessionUser(r)

	var req preferencesRequest
	if err := validation.DecodeJSON(r, &req); err != nil {
		validation.WriteError(w, err, http.StatusBadRequest)
		return
	}

	var prefs models.UserPreference
	err := a.db.Where("user_id = ?", userID).First(&prefs).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		a.logger.Error("Failed to get preferences", slog.Any("error", err))
		a.writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	prefs.UserID = userID
	prefs.GenreIDs = models.IntList(req.GenreIDs)
	prefs.ActorIDs = models.IntList(req.ActorIDs)
	prefs.DirectorIDs = models.IntList(req.DirectorIDs)
	if err := a.db.Save(&prefs).Error; err != nil {
		a.logger.Error("Failed to save preferences", slog.Any("error", err))
		a.writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	a.writeJSON(w, http.StatusOK, prefs)
}

func (a *API) handleGetRatings(w http.ResponseWriter, r *http.Request) {
	userID := a.sessionUser(r)

	ratings := []models.UserRating{}
	if err := a.db.Where("user_id = ?", userID).Find(&ratings).Error; err != nil {
		a.logger.Error("Failed to get ratings", slog.Any("error", err))
		a.writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	a.writeJSON(w, http.StatusOK, ratings)
}

func (a *API) handleGetRating(w http.ResponseWriter, r *http.Request) {
	userID := a.sessionUser(r)

	movieID, err := urlInt(r, "movieId")
	if err != nil {
		validation.WriteError(w, errors.New("Invalid movie ID"), http.StatusBadRequest)
		return
	}

	var rating models.UserRating
	if err := a.db.Where("user_id = ? AND movie_id = ?", userID, movieID).First(&rating).Error; err != nil {
		a.writeMessage(w, http.StatusNotFound, "Rating not found")
		return
	}

	a.writeJSON(w, http.StatusOK, rating)
}

type ratingRequest struct {
	MovieID int `json:"movieId" validate:"required,gt=0"`
	Rating  int `json:"rating" validate:"required,min=1,max=10"`
}

func (a *API) handleUpsertRating(w http.ResponseWriter, r *http.Request) {
	userID := a.sessionUser(r)

	var req ratingRequest
	if err := validation.DecodeJSON(r, &req); err != nil {
		validation.WriteError(w, err, http.StatusBadRequest)
		return
	}

	var rating models.UserRating
	err := a.db.Where("user_id = ? AND movie_id = ?", userID, req.MovieID).First(&rating).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		a.logger.Error("Failed to get rating", slog.Any("error", err))
		a.writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	rating.UserID = userID
	rating.MovieID = req.MovieID
	rating.Rating = req.Rating
	if err := a.db.Save(&rating).Error; err != nil {
		a.logger.Error("Failed to save rating", slog.Any("error", err))
		a.writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	a.writeJSON(w, http.StatusOK, rating)
}

func (a *API) handleGetWatchlist(w http.ResponseWriter, r *http.Request) {
	userID := a.sessionUser(r)

	items := []models.WatchlistItem{}
	if err := a.db.Where("user_id = ?", userID).Find(&items).Error; err != nil {
		a.logger.Error("Failed to get watchlist", slog.Any("error", err))
		a.writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	a.writeJSON(w, http.StatusOK, items)
}

func (a *API) handleCheckWatchlist(w http.ResponseWriter, r *http.Request) {
	userID := a.sessionUser(r)

	movieID, err := urlInt(r, "movieId")
	if err != nil {
		validation.WriteError(w, errors.New("Invalid movie ID"), http.StatusBadRequest)
		return
	}

	var count int64
	if err := a.db.Model(&models.WatchlistItem{}).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Count(&count).Error; err != nil {
		a.logger.Error("Failed to check watchlist", slog.Any("error", err))
		a.writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	a.writeJSON(w, http.StatusOK, map[string]bool{"isInWatchlist": count > 0})
}

type watchlistRequest struct {
	MovieID int `json:"movieId" validate:"required,gt=0"`
}

func (a *API) handleAddToWatchlist(w http.ResponseWriter, r *http.Request) {
	userID := a.sessionUser(r)

	var req watchlistRequest
	if err := validation.DecodeJSON(r, &req); err != nil {
		validation.WriteError(w, err, http.StatusBadRequest)
		return
	}

	// Adding an already-listed movie is a no-op returning the existing row.
	var item models.WatchlistItem
	err := a.db.Where("user_id = ? AND movie_id = ?", userID, req.MovieID).First(&item).Error
	if err == nil {
		a.writeJSON(w, http.StatusOK, item)
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		a.logger.Error("Failed to check watchlist", slog.Any("error", err))
		a.writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	item = models.WatchlistItem{UserID: userID, MovieID: req.MovieID}
	if err := a.db.Create(&item).Error; err != nil {
		a.logger.Error("Failed to add to watchlist", slog.Any("error", err))
		a.writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	a.writeJSON(w, http.StatusOK, item)
}

func (a *API) handleRemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	userID := a.sessionUser(r)

	movieID, err := urlInt(r, "movieId")
	if err != nil {
		validation.WriteError(w, errors.New("Invalid movie ID"), http.StatusBadRequest)
		return
	}

	if err := a.db.Where("user_id = ? AND movie_id = ?", userID, movieID).
		Delete(&models.WatchlistItem{}).Error; err != nil {
		a.logger.Error("Failed to remove from watchlist", slog.Any("error", err))
		a.writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	a.writeMessage(w, http.StatusOK, "Movie removed from watchlist")
}

func (a *API) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	userID := a.sessionUser(r)
	page := validation.ParsePage(r)

	var prefs models.UserPreference
	err := a.db.Where("user_id = ?", userID).First(&prefs).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		a.logger.Error("Failed to get preferences", slog.Any("error", err))
		a.writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	var ratedMovieIDs []int
	if err := a.db.Model(&models.UserRating{}).
		Where("user_id = ?", userID).
		Pluck("movie_id", &ratedMovieIDs).Error; err != nil {
		a.logger.Error("Failed to get rated movies", slog.Any("error", err))
		a.writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	movies := a.recommender.Recommend(
		recommend.NewIDSet(prefs.GenreIDs...),
		recommend.NewIDSet(ratedMovieIDs...),
		page,
	)
	a.writeJSON(w, http.StatusOK, movies)
}
