package sql

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"notevi/internal/entity"
)

// CreateNote persists a new note.
func (r *GormRepository) CreateNote(ctx context.Context, note *entity.DbNote) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if note == nil {
		return fmt.Errorf("note is nil")
	}
	return r.db.WithContext(ctx).Create(note).Error
}

// GetNote loads a note with its images.
func (r *GormRepository) GetNote(ctx context.Context, id uint) (*entity.DbNote, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return nil, fmt.Errorf("invalid note id")
	}
	var note entity.DbNote
	if err := r.db.WithContext(ctx).Preload("Images").First(&note, id).Error; err != nil {
		return nil, err
	}
	return &note, nil
}

// ListNotes returns notes matching every provided filter, newest first.
func (r *GormRepository) ListNotes(ctx context.Context, params *entity.DocumentQuery) ([]entity.DbNote, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}

	query := r.db.WithContext(ctx).Model(&entity.DbNote{}).Preload("Images")
	if params != nil {
		if params.AuthorID != nil {
			query = query.Where("notes.author_id = ?", *params.AuthorID)
		}
		if params.IsPublic != nil {
			query = query.Where("notes.is_public = ?", *params.IsPublic)
		}
		if username := strings.TrimSpace(params.Username); username != "" {
			query = query.Joins("JOIN users ON users.id = notes.author_id").
				Where("users.username = ?", username)
		}
	}

	var notes []entity.DbNote
	if err := query.Order("notes.created_at DESC").Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

// UpdateNote applies a partial update.
func (r *GormRepository) UpdateNote(ctx context.Context, id uint, updates entity.NoteUpdates) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid note id")
	}
	return updateBy[entity.DbNote](r, ctx, updates.ToMap(), "id = ?", id)
}

// DeleteNote removes a note; image rows cascade.
func (r *GormRepository) DeleteNote(ctx context.Context, id uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid note id")
	}
	rows, err := deleteBy[entity.DbNote](r, ctx, "id = ?", id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AddNoteImages inserts a batch of image rows.
func (r *GormRepository) AddNoteImages(ctx context.Context, images []entity.DbNoteImage) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if len(images) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&images).Error
}

// GetNoteImage loads an image together with its parent note, which carries
// the author used for ownership checks.
func (r *GormRepository) GetNoteImage(ctx context.Context, id uint) (*entity.DbNoteImage, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return nil, fmt.Errorf("invalid image id")
	}
	var image entity.DbNoteImage
	if err := r.db.WithContext(ctx).Preload("Note").First(&image, id).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

// DeleteNoteImage removes a single image row.
func (r *GormRepository) DeleteNoteImage(ctx context.Context, id uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	rows, err := deleteBy[entity.DbNoteImage](r, ctx, "id = ?", id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
