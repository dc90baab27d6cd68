package model

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"notevi/internal/entity"
)

// canonicalRoles are created once at bootstrap. The superuser role doubles as
// the seed guard: its presence means the full set was already created.
var canonicalRoles = []entity.DbRole{
	{Name: "superuser", Permission: entity.PermissionSuperuser},
	{Name: "admin", Permission: entity.PermissionAdmin},
	{Name: "user", Permission: entity.PermissionUser},
	{Name: "customer", Permission: entity.PermissionCustomer},
}

// SeedDefaultRoles ensures the canonical roles exist. Safe to run on every
// application start.
func SeedDefaultRoles(ctx context.Context, repo Repository) error {
	if repo == nil {
		return nil
	}

	if _, err := repo.GetRoleByName(ctx, "superuser"); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	for _, role := range canonicalRoles {
		if _, err := repo.GetOrCreateRole(ctx, role.Name, role.Permission); err != nil {
			return err
		}
	}
	return nil
}
