// Package models defines the persisted user-data records. Movie and genre
// data live in the in-memory catalog, not the database; these tables only
// reference catalog movie ids.
package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	gojson "github.com/goccy/go-json"
)

// IntList stores a list of integer ids as a JSON text column.
type IntList []int

// Value implements driver.Valuer.
func (l IntList) Value() (driver.Value, error) {
	if l == nil {
		l = IntList{}
	}
	b, err := gojson.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal id list: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *IntList) Scan(src any) error {
	if src == nil {
		*l = IntList{}
		return nil
	}

	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported id list type %T", src)
	}

	if err := gojson.Unmarshal(raw, l); err != nil {
		return fmt.Errorf("failed to unmarshal id list: %w", err)
	}
	return nil
}

// User is an account. Passwords are stored as bcrypt hashes only.
type User struct {
	ID               uint       `gorm:"primarykey" json:"id"`
	Username         string     `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash     string     `gorm:"not null" json:"-"`
	Name             string     `json:"name"`
	Avatar           string     `json:"avatar"`
	ResetToken       *string    `gorm:"index" json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"-"`
}

// UserPreference holds the discovery preferences driving recommendations.
// Actor and director ids are kept for parity with the client but only genre
// ids feed the recommendation engine.
type UserPreference struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	UserID      uint      `gorm:"uniqueIndex;not null" json:"userId"`
	GenreIDs    IntList   `gorm:"type:text" json:"genreIds"`
	ActorIDs    IntList   `gorm:"type:text" json:"actorIds"`
	DirectorIDs IntList   `gorm:"type:text" json:"directorIds"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// UserRating is one user's rating of one catalog movie. At most one row per
// (user, movie); re-rating updates in place.
type UserRating struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_ratings_user_movie" json:"userId"`
	MovieID   int       `gorm:"not null;uniqueIndex:idx_ratings_user_movie" json:"movieId"`
	Rating    int       `gorm:"not null" json:"rating"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}

// WatchlistItem marks a movie a user wants to watch.
type WatchlistItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_watchlist_user_movie" json:"userId"`
	MovieID   int       `gorm:"not null;uniqueIndex:idx_watchlist_user_movie" json:"movieId"`
	CreatedAt time.Time `json:"addedAt"`
	UpdatedAt time.Time `json:"-"`
}

// Playlist is a named, orderable collection of movies. Public playlists are
// visible to everyone and carry a share token for link sharing.
type Playlist struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"userId"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`
	IsPublic    bool      `gorm:"index" json:"isPublic"`
	ShareToken  string    `gorm:"uniqueIndex" json:"shareToken"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PlaylistItem is one movie inside a playlist, ordered by Position.
type PlaylistItem struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	PlaylistID uint      `gorm:"not null;uniqueIndex:idx_playlist_items_movie" json:"playlistId"`
	MovieID    int       `gorm:"not null;uniqueIndex:idx_playlist_items_movie" json:"movieId"`
	Position   int       `gorm:"not null;default:0" json:"position"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"addedAt"`
	UpdatedAt  time.Time `json:"-"`
}
