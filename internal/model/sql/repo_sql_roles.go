package sql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"notevi/internal/entity"
)

// GetRole loads a role by ID.
func (r *GormRepository) GetRole(ctx context.Context, id uint) (*entity.DbRole, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return nil, fmt.Errorf("invalid role id")
	}
	return firstBy[entity.DbRole](r, ctx, "id = ?", id)
}

// GetRoleByName loads a role by its unique name.
func (r *GormRepository) GetRoleByName(ctx context.Context, name string) (*entity.DbRole, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, fmt.Errorf("role name is empty")
	}
	return firstBy[entity.DbRole](r, ctx, "name = ?", trimmed)
}

// GetOrCreateRole returns the role with the given name, creating it when
// absent. A concurrent create losing the unique-index race falls back to the
// existing row.
func (r *GormRepository) GetOrCreateRole(ctx context.Context, name, permission string) (*entity.DbRole, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, fmt.Errorf("role name is empty")
	}

	role, err := firstBy[entity.DbRole](r, ctx, "name = ?", trimmed)
	if err == nil {
		return role, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := entity.DbRole{Name: trimmed, Permission: permission}
	if err := r.db.WithContext(ctx).Create(&created).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return firstBy[entity.DbRole](r, ctx, "name = ?", trimmed)
		}
		return nil, err
	}
	return &created, nil
}

// ListRoles returns every role ordered by ID.
func (r *GormRepository) ListRoles(ctx context.Context) ([]entity.DbRole, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	return listBy[entity.DbRole](r, ctx, "id ASC", "")
}

// DeleteRole removes a role. The RESTRICT foreign key refuses the delete
// while any user still references it.
func (r *GormRepository) DeleteRole(ctx context.Context, id uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid role id")
	}
	rows, err := deleteBy[entity.DbRole](r, ctx, "id = ?", id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountUsersWithRole reports how many users reference the role.
func (r *GormRepository) CountUsersWithRole(ctx context.Context, roleID uint) (int64, error) {
	if r == nil || r.db == nil {
		return 0, fmt.Errorf("repository not initialised")
	}
	return countBy[entity.DbUser](r, ctx, "role_id = ?", roleID)
}
