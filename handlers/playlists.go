package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/moviepick/moviepick/lib/validation"
	"github.com/moviepick/moviepick/models"
)

// playlistByID loads a playlist, writing a 404 and returning false when it
// does not exist.
func (a *API) playlistByID(w http.ResponseWriter, r *http.Request) (models.Playlist, bool) {
	playlistID, err := urlInt(r, "id")
	if err != nil {
		validation.WriteError(w, errors.New("Invalid playlist ID"), http.StatusBadRequest)
		return models.Playlist{}, false
	}

	var playlist models.Playlist
	if err := a.db.First(&playlist, playlistID).Error; err != nil {
		a.writeMessage(w, http.StatusNotFound, "Playlist not found")
		return models.Playlist{}, false
	}
	return playlist, true
}

// ownedPlaylist loads a playlist and verifies the session user owns it.
func (a *API) ownedPlaylist(w http.ResponseWriter, r *http.Request) (models.Playlist, bool) {
	playlist, ok := a.playlistByID(w, r)
	if !ok {
		return models.Playlist{}, false
	}
	if playlist.UserID != a.sessionUser(r) {
		a.writeMessage(w, http.StatusForbidden, "You don't have permission to modify this playlist")
		return models.Playlist{}, false
	}
	return playlist, true
}

// canViewPlaylist applies the visibility rule: public playlists are open,
// private ones are owner-only.
func (a *API) canViewPlaylist(r *http.Request, playlist models.Playlist) bool {
	if playlist.IsPublic {
		return true
	}
	userID, ok := a.auth.SessionUserID(r)
	return ok && userID == playlist.UserID
}

func (a *API) handleGetPlaylists(w http.ResponseWriter, r *http.Request) {
	userID := a.sessionUser(r)

	playlists := []models.Playlist{}
	if err := a.db.Where("user_id = ?", userID).Order("created_at").Find(&playlists).Error; err != nil {
		a.logger.Error("Failed to get playlists", slog.Any("error", err))
		a.writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	a.writeJSON(w, http.StatusOK, playlists)
}

func (a *API) handlePublicPlaylists(w http.ResponseWriter, r *http.Request) {
	playlists := []models.Playlist{}
	if err := a.db.Where("is_public = ?", true).Order("created_at desc").Find(&playlists).Error; err != nil {
		a.logger.Error("Failed to get public playlists", slog.Any("error", err))
		a.writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	a.writeJSON(w, http.StatusOK, playlists)
}

func (a *API) handleGetPlaylist(w http.ResponseWriter, r *http.Request) {
	playlist, ok := a.playlistByID(w, r)
	if !ok {
		return
	}

	if !a.canViewPlaylist(r, playlist) {
		a.writeMessage(w, http.StatusForbidden, "You don't have permission to view this playlist")
		return
	}

	a.writeJSON(w, http.StatusOK, playlist)
}

type createPlaylistRequest struct {
	Name        string `json:"name" validate:"required,max=128"`
	Description string `json:"description" validate:"max=1024"`
	IsPublic    bool   `json:"isPublic"`
}

func (a *API) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	userID := a.sessionUser(r)

	var req createPlaylistRequest
	if err := validation.DecodeJSON(r, &req); err != nil {
		validation.WriteError(w, err, http.StatusBadRequest)
		return
	}

	playlist := models.Playlist{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    req.IsPublic,
		ShareToken:  uuid.NewString(),
	}
	if err := a.db.Create(&playlist).Error; err != nil {
		a.logger.Error("Failed to create playlist", slog.Any("error", err))
		a.writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	a.writeJSON(w, http.StatusCreated, playlist)
}

type updatePlaylistRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=128"`
	Description *string `json:"description" validate:"omitempty,max=1024"`
	IsPublic    *bool   `json:"isPublic"`
}

func (a *API) handleUpdatePlaylist(w http.ResponseWriter, r *http.Request) {
	playlist, ok := a.ownedPlaylist(w, r)
	if !ok {
		return
	}

	var req updatePlaylistRequest
	if err := validation.DecodeJSON(r, &req); err != nil {
		validation.WriteError(w, err, http.StatusBadRequest)
		return
	}

	if req.Name != nil {
		playlist.Name = *req.Name
	}
	if req.Description != nil {
		playlist.Description = *req.Description
	}
	if req.IsPublic != nil {
		playlist.IsPublic = *req.IsPublic
	}
	if err := a.db.Save(&playlist).Error; err != nil {
		a.logger.Error("Failed to update playlist", slog.Any("error", err))
		a.writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	a.writeJSON(w, http.StatusOK, playlist)
}

func (a *API) handleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	playlist, ok := a.ownedPlaylist(w, r)
	if !ok {
		return
	}

	if err := a.db.Where("playlist_id = ?", playlist.ID).Delete(&models.PlaylistItem{}).Error; err != nil {
		a.logger.Error("Failed to delete playlist items", slog.Any("error", err))
		a.writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if err := a.db.Delete(&playlist).Error; err != nil {
		a.logger.Error("Failed to delete playlist", slog.Any("error", err))
		a.writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	a.writeMessage(w, http.StatusOK, "Playlist deleted successfully")
}

func (a *API) handleGetPlaylistItems(w http.ResponseWriter, r *http.Request) {
	playlist, ok := a.playlistByID(w, r)
	if !ok {
		return
	}

	if !a.canViewPlaylist(r, playlist) {
		a.writeMessage(w, http.StatusForbidden, "You don't have permission to view this playlist")
		return
	}

	items := []models.PlaylistItem{}
	if err := a.db.Where("playlist_id = ?", playlist.ID).Order("position").Find(&items).Error; err != nil {
		a.logger.Error("Failed to get playlist items", slog.Any("error", err))
		a.writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	a.writeJSON(w, http.StatusOK, items)
}

type playlistItemRequest struct {
	MovieID int    `json:"movieId" validate:"required,gt=0"`
	Notes   string `json:"notes" validate:"max=1024"`
}

func (a *API) handleAddPlaylistItem(w http.ResponseWriter, r *http.Request) {
	playlist, ok := a.ownedPlaylist(w, r)
	if !ok {
		return
	}

	var req playlistItemRequest
	if err := validation.DecodeJSON(r, &req); err != nil {
		validation.WriteError(w, err, http.StatusBadRequest)
		return
	}

	// Re-adding an existing movie returns the existing item unchanged.
	var item models.PlaylistItem
	err := a.db.Where("playlist_id = ? AND movie_id = ?", playlist.ID, req.MovieID).First(&item).Error
	if err == nil {
		a.writeJSON(w, http.StatusOK, item)
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		a.logger.Error("Failed to check playlist item", slog.Any("error", err))
		a.writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	var count int64
	if err := a.db.Model(&models.PlaylistItem{}).Where("playlist_id = ?", playlist.ID).Count(&count).Error; err != nil {
		a.logger.Error("Failed to count playlist items", slog.Any("error", err))
		a.writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	item = models.PlaylistItem{
		PlaylistID: playlist.ID,
		MovieID:    req.MovieID,
		Position:   int(count),
		Notes:      req.Notes,
	}
	if err := a.db.Create(&item).Error; err != nil {
		a.logger.Error("Failed to add playlist item", slog.Any("error", err))
		a.writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	a.writeJSON(w, http.StatusCreated, item)
}

func (a *API) handleRemovePlaylistItem(w http.ResponseWriter, r *http.Request) {
	playlist, ok := a.ownedPlaylist(w, r)
	if !ok {
		return
	}

	movieID, err := urlInt(r, "movieId")
	if err != nil {
		validation.WriteError(w, errors.New("Invalid movie ID"), http.StatusBadRequest)
		return
	}

	if err := a.db.Where("playlist_id = ? AND movie_id = ?", playlist.ID, movieID).
		Delete(&models.PlaylistItem{}).Error; err != nil {
		a.logger.Error("Failed to remove playlist item", slog.Any("error", err))
		a.writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	a.writeMessage(w, http.StatusOK, "Item removed from playlist")
}

type playlistNotesRequest struct {
	Notes *string `json:"notes" validate:"required,max=1024"`
}

func (a *API) handleUpdatePlaylistItemNotes(w http.ResponseWriter, r *http.Request) {
	playlist, ok := a.ownedPlaylist(w, r)
	if !ok {
		return
	}

	movieID, err := urlInt(r, "movieId")
	if err != nil {
		validation.WriteError(w, errors.New("Invalid movie ID"), http.StatusBadRequest)
		return
	}

	var req playlistNotesRequest
	if err := validation.DecodeJSON(r, &req); err != nil {
		validation.WriteError(w, err, http.StatusBadRequest)
		return
	}

	var item models.PlaylistItem
	if err := a.db.Where("playlist_id = ? AND movie_id = ?", playlist.ID, movieID).First(&item).Error; err != nil {
		a.writeMessage(w, http.StatusNotFound, "Item not found in playlist")
		return
	}

	item.Notes = *req.Notes
	if err := a.db.Save(&item).Error; err != nil {
		a.logger.Error("Failed to update playlist item notes", slog.Any("error", err))
		a.writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	a.writeJSON(w, http.StatusOK, item)
}

type reorderRequest struct {
	ItemIDs []uint `json:"itemIds" validate:"required,min=1,dive,gt=0"`
}

func (a *API) handleReorderPlaylist(w http.ResponseWriter, r *http.Request) {
	playlist, ok := a.ownedPlaylist(w, r)
	if !ok {
		return
	}

	var req reorderRequest
	if err := validation.DecodeJSON(r, &req); err != nil {
		validation.WriteError(w, err, http.StatusBadRequest)
		return
	}

	for position, itemID := range req.ItemIDs {
		if err := a.db.Model(&models.PlaylistItem{}).
			Where("id = ? AND playlist_id = ?", itemID, playlist.ID).
			Update("position", position).Error; err != nil {
			a.logger.Error("Failed to reorder playlist items", slog.Any("error", err))
			a.writeMessage(w, http.StatusInternalServerError, "Internal server error")
			return
		}
	}

	a.writeMessage(w, http.StatusOK, "Playlist items reordered successfully")
}
