package sql

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"notevi/internal/entity"
)

// CreateSummary persists a new summary.
func (r *GormRepository) CreateSummary(ctx context.Context, summary *entity.DbSummary) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if summary == nil {
		return fmt.Errorf("summary is nil")
	}
	return r.db.WithContext(ctx).Create(summary).Error
}

// GetSummary loads a summary with its images.
func (r *GormRepository) GetSummary(ctx context.Context, id uint) (*entity.DbSummary, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return nil, fmt.Errorf("invalid summary id")
	}
	var summary entity.DbSummary
	if err := r.db.WithContext(ctx).Preload("Images").First(&summary, id).Error; err != nil {
		return nil, err
	}
	return &summary, nil
}

// ListSummaries returns summaries matching every provided filter, newest first.
func (r *GormRepository) ListSummaries(ctx context.Context, params *entity.DocumentQuery) ([]entity.DbSummary, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}

	query := r.db.WithContext(ctx).Model(&entity.DbSummary{}).Preload("Images")
	if params != nil {
		if params.AuthorID != nil {
			query = query.Where("summaries.author_id = ?", *params.AuthorID)
		}
		if params.IsPublic != nil {
			query = query.Where("summaries.is_public = ?", *params.IsPublic)
		}
		if username := strings.TrimSpace(params.Username); username != "" {
			query = query.Joins("JOIN users ON users.id = summaries.author_id").
				Where("users.username = ?", username)
		}
	}

	var summaries []entity.DbSummary
	if err := query.Order("summaries.created_at DESC").Find(&summaries).Error; err != nil {
		return nil, err
	}
	return summaries, nil
}

// UpdateSummary applies a partial update.
func (r *GormRepository) UpdateSummary(ctx context.Context, id uint, updates entity.SummaryUpdates) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid summary id")
	}
	return updateBy[entity.DbSummary](r, ctx, updates.ToMap(), "id = ?", id)
}

// DeleteSummary removes a summary; image rows cascade.
func (r *GormRepository) DeleteSummary(ctx context.Context, id uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid summary id")
	}
	rows, err := deleteBy[entity.DbSummary](r, ctx, "id = ?", id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AddSummaryImages inserts a batch of image rows.
func (r *GormRepository) AddSummaryImages(ctx context.Context, images []entity.DbSummaryImage) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if len(images) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&images).Error
}

// GetSummaryImage loads an image together with its parent summary.
func (r *GormRepository) GetSummaryImage(ctx context.Context, id uint) (*entity.DbSummaryImage, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return nil, fmt.Errorf("invalid image id")
	}
	var image entity.DbSummaryImage
	if err := r.db.WithContext(ctx).Preload("Summary").First(&image, id).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

// DeleteSummaryImage removes a single image row.
func (r *GormRepository) DeleteSummaryImage(ctx context.Context, id uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	rows, err := deleteBy[entity.DbSummaryImage](r, ctx, "id = ?", id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
