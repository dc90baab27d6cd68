package sql

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"notevi/internal/entity"
)

// CreateFile persists a new file record.
func (r *GormRepository) CreateFile(ctx context.Context, file *entity.DbFile) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if file == nil {
		return fmt.Errorf("file is nil")
	}
	return r.db.WithContext(ctx).Create(file).Error
}

// GetFile loads a file record by ID.
func (r *GormRepository) GetFile(ctx context.Context, id uint) (*entity.DbFile, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return nil, fmt.Errorf("invalid file id")
	}
	return firstBy[entity.DbFile](r, ctx, "id = ?", id)
}

// ListFilesByUser returns the user's files, newest first.
func (r *GormRepository) ListFilesByUser(ctx context.Context, userID uint) ([]entity.DbFile, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	return listBy[entity.DbFile](r, ctx, "created_at DESC", "user_id = ?", userID)
}

// DeleteFile removes a file record.
func (r *GormRepository) DeleteFile(ctx context.Context, id uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	rows, err := deleteBy[entity.DbFile](r, ctx, "id = ?", id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
