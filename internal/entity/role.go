package entity

// Permission levels form a closed set; every role maps to exactly one.
const (
	PermissionUser      = "user"
	PermissionCustomer  = "customer"
	PermissionAdmin     = "admin"
	PermissionSuperuser = "superuser"
)

// ValidPermission reports whether the value belongs to the permission set.
func ValidPermission(value string) bool {
	switch value {
	case PermissionUser, PermissionCustomer, PermissionAdmin, PermissionSuperuser:
		return true
	default:
		return false
	}
}

// DbRole 表示持久化的角色。Name 是自然键，用于默认角色查找。
type DbRole struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	Name       string `gorm:"column:name;type:varchar(64);uniqueIndex;not null" json:"name"`
	Permission string `gorm:"column:permission;type:varchar(32);not null" json:"permission"`
}

// TableName 指定表名。
func (DbRole) TableName() string {
	return "roles"
}

// RoleCreateRequest is the payload for creating a role.
type RoleCreateRequest struct {
	Name       string `json:"name" binding:"required"`
	Permission string `json:"permission" binding:"required"`
}
