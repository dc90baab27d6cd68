package sql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"notevi/internal/entity"
)

// UpsertVerifyToken issues a verification token for the user, replacing any
// existing one so that at most one token is live per user.
func (r *GormRepository) UpsertVerifyToken(ctx context.Context, userID uint, token string) (*entity.DbVerifyToken, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if userID == 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return nil, fmt.Errorf("token is empty")
	}

	existing, err := firstBy[entity.DbVerifyToken](r, ctx, "user_id = ?", userID)
	switch {
	case err == nil:
		if err := updateBy[entity.DbVerifyToken](r, ctx, map[string]interface{}{"token_verify": trimmed}, "id = ?", existing.ID); err != nil {
			return nil, err
		}
		existing.Token = trimmed
		return existing, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		created := entity.DbVerifyToken{UserID: userID, Token: trimmed}
		if err := r.db.WithContext(ctx).Create(&created).Error; err != nil {
			return nil, err
		}
		return &created, nil
	default:
		return nil, err
	}
}

// GetVerifyTokenByValue looks a token row up by its opaque value.
func (r *GormRepository) GetVerifyTokenByValue(ctx context.Context, token string) (*entity.DbVerifyToken, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return nil, gorm.ErrRecordNotFound
	}
	return firstBy[entity.DbVerifyToken](r, ctx, "token_verify = ?", trimmed)
}

// GetVerifyTokenByUser returns the user's live token, if any.
func (r *GormRepository) GetVerifyTokenByUser(ctx context.Context, userID uint) (*entity.DbVerifyToken, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	return firstBy[entity.DbVerifyToken](r, ctx, "user_id = ?", userID)
}

// ConsumeVerifyToken marks the user verified and deletes the token row in a
// single transaction; a crash cannot leave a live token behind a verified
// user.
func (r *GormRepository) ConsumeVerifyToken(ctx context.Context, userID, tokenID uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entity.DbUser{}).Where("id = ?", userID).Update("is_verified", true).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", tokenID).Delete(&entity.DbVerifyToken{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
