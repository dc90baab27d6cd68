package sql

import (
	"context"

	"gorm.io/gorm"

	"notevi/internal/entity"
)

// GormRepository implements Repository using GORM
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new repository instance
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// DB exposes the underlying handle for migrations and tests.
func (r *GormRepository) DB() *gorm.DB {
	return r.db
}

// calculatePagination calculates pagination metrics
func (r *GormRepository) calculatePagination(totalCount int64, page, pageSize int64) *entity.Meta {
	if pageSize <= 0 {
		pageSize = 20
	}
	if page <= 0 {
		page = 1
	}

	return &entity.Meta{
		Total:    totalCount,
		Page:     page,
		PageSize: pageSize,
	}
}

// The helpers below are the single generic CRUD path shared by every entity.
// Field predicates are expressed as regular query strings; the type parameter
// keeps per-entity methods compile-time safe.

func firstBy[T any](r *GormRepository, ctx context.Context, query string, args ...interface{}) (*T, error) {
	var row T
	if err := r.db.WithContext(ctx).Where(query, args...).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func listBy[T any](r *GormRepository, ctx context.Context, order, query string, args ...interface{}) ([]T, error) {
	var rows []T
	tx := r.db.WithContext(ctx)
	if query != "" {
		tx = tx.Where(query, args...)
	}
	if order != "" {
		tx = tx.Order(order)
	}
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// updateBy applies a partial update to every row matching the predicate.
// Matching zero rows is not an error.
func updateBy[T any](r *GormRepository, ctx context.Context, updates map[string]interface{}, query string, args ...interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	var holder T
	return r.db.WithContext(ctx).Model(&holder).Where(query, args...).Updates(updates).Error
}

// deleteBy removes matching rows and reports how many were deleted.
func deleteBy[T any](r *GormRepository, ctx context.Context, query string, args ...interface{}) (int64, error) {
	var holder T
	result := r.db.WithContext(ctx).Where(query, args...).Delete(&holder)
	return result.RowsAffected, result.Error
}

func countBy[T any](r *GormRepository, ctx context.Context, query string, args ...interface{}) (int64, error) {
	var holder T
	var count int64
	tx := r.db.WithContext(ctx).Model(&holder)
	if query != "" {
		tx = tx.Where(query, args...)
	}
	if err := tx.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
