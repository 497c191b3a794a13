package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/moviepick/moviepick/models"
	"gorm.io/gorm"
)

// RunMigrations brings the schema up to date and applies SQLite tuning.
func RunMigrations(db *gorm.DB, logger *slog.Logger) error {
	ctx := context.Background()

	if err := enableSQLiteOptimizations(ctx, db, logger); err != nil {
		return fmt.Errorf("failed to enable SQLite optimizations: %w", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.UserPreference{},
		&models.UserRating{},
		&models.WatchlistItem{},
		&models.Playlist{},
		&models.PlaylistItem{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := createAdditionalIndexes(ctx, db, logger); err != nil {
		return fmt.Errorf("failed to create additional indexes: %w", err)
	}

	return nil
}

// enableSQLiteOptimizations enables SQLite-specific optimizations
func enableSQLiteOptimizations(ctx context.Context, db *gorm.DB, logger *slog.Logger) error {
	optimizations := []string{
		"PRAGMA journal_mode=WAL",   // Enable WAL mode for better concurrency
		"PRAGMA synchronous=NORMAL", // Faster writes while maintaining safety
		"PRAGMA foreign_keys=ON",    // Enable foreign key constraints
		"PRAGMA temp_store=MEMORY",  // Store temporary tables in memory
	}

	for _, pragma := range optimizations {
		if err := db.WithContext(ctx).Exec(pragma).Error; err != nil {
			logger.Warn("Failed to execute pragma", slog.String("pragma", pragma), slog.Any("error", err))
		}
	}

	return nil
}

// createAdditionalIndexes creates composite indexes for common queries
func createAdditionalIndexes(ctx context.Context, db *gorm.DB, logger *slog.Logger) error {
	additionalIndexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_ratings_user ON user_ratings(user_id)",
		"CREATE INDEX IF NOT EXISTS idx_watchlist_user ON watchlist_items(user_id)",
		"CREATE INDEX IF NOT EXISTS idx_playlist_items_order ON playlist_items(playlist_id, position)",
	}

	for _, indexSQL := range additionalIndexes {
		if err := db.WithContext(ctx).Exec(indexSQL).Error; err != nil {
			logger.Warn("Failed to create index", slog.String("sql", indexSQL), slog.Any("error", err))
		}
	}

	return nil
}
