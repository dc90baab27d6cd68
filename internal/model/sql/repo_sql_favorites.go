package sql

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"notevi/internal/entity"
)

// AddNoteFavorite inserts a favorite pair. The composite primary key is the
// final arbiter under concurrent requests; a duplicate insert surfaces as
// gorm.ErrDuplicatedKey.
func (r *GormRepository) AddNoteFavorite(ctx context.Context, favorite *entity.DbNoteFavorite) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if favorite == nil {
		return fmt.Errorf("favorite is nil")
	}
	return r.db.WithContext(ctx).Create(favorite).Error
}

// GetNoteFavorite looks a favorite pair up.
func (r *GormRepository) GetNoteFavorite(ctx context.Context, userID, noteID uint) (*entity.DbNoteFavorite, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	return firstBy[entity.DbNoteFavorite](r, ctx, "user_id = ? AND note_id = ?", userID, noteID)
}

// DeleteNoteFavorite removes a favorite pair; absent pairs are reported as
// not found.
func (r *GormRepository) DeleteNoteFavorite(ctx context.Context, userID, noteID uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	rows, err := deleteBy[entity.DbNoteFavorite](r, ctx, "user_id = ? AND note_id = ?", userID, noteID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListFavoriteNotes returns the user's favorite notes, most recently
// favorited first (favorite time, not note creation time).
func (r *GormRepository) ListFavoriteNotes(ctx context.Context, userID uint) ([]entity.DbNote, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	var notes []entity.DbNote
	err := r.db.WithContext(ctx).Model(&entity.DbNote{}).
		Joins("JOIN note_favorites ON note_favorites.note_id = notes.id").
		Where("note_favorites.user_id = ?", userID).
		Order("note_favorites.created_at DESC").
		Preload("Images").
		Find(&notes).Error
	if err != nil {
		return nil, err
	}
	return notes, nil
}

// AddSummaryFavorite inserts a favorite pair for a summary.
func (r *GormRepository) AddSummaryFavorite(ctx context.Context, favorite *entity.DbSummaryFavorite) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if favorite == nil {
		return fmt.Errorf("favorite is nil")
	}
	return r.db.WithContext(ctx).Create(favorite).Error
}

// GetSummaryFavorite looks a favorite pair up.
func (r *GormRepository) GetSummaryFavorite(ctx context.Context, userID, summaryID uint) (*entity.DbSummaryFavorite, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	return firstBy[entity.DbSummaryFavorite](r, ctx, "user_id = ? AND summary_id = ?", userID, summaryID)
}

// DeleteSummaryFavorite removes a favorite pair.
func (r *GormRepository) DeleteSummaryFavorite(ctx context.Context, userID, summaryID uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	rows, err := deleteBy[entity.DbSummaryFavorite](r, ctx, "user_id = ? AND summary_id = ?", userID, summaryID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListFavoriteSummaries returns the user's favorite summaries ordered by
// favorite time.
func (r *GormRepository) ListFavoriteSummaries(ctx context.Context, userID uint) ([]entity.DbSummary, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	var summaries []entity.DbSummary
	err := r.db.WithContext(ctx).Model(&entity.DbSummary{}).
		Joins("JOIN summary_favorites ON summary_favorites.summary_id = summaries.id").
		Where("summary_favorites.user_id = ?", userID).
		Order("summary_favorites.created_at DESC").
		Preload("Images").
		Find(&summaries).Error
	if err != nil {
		return nil, err
	}
	return summaries, nil
}
