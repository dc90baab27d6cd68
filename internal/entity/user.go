package entity

import "time"

// DbUser 表示持久化的用户账户。
//
// RoleID 在注册时由服务端根据配置的默认角色解析，客户端提交的角色会被忽略。
// IsActive 为 false 的账户在认证边界即被拒绝。
type DbUser struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Email        string    `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	Username     string    `gorm:"column:username;type:varchar(255);uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`
	RoleID       uint      `gorm:"column:role_id;index;not null" json:"role_id"`
	Role         *DbRole   `gorm:"foreignKey:RoleID;constraint:OnDelete:RESTRICT" json:"role,omitempty"`
	IsActive     bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	IsSuperuser  bool      `gorm:"column:is_superuser;not null;default:false" json:"is_superuser"`
	IsVerified   bool      `gorm:"column:is_verified;not null;default:false" json:"is_verified"`
	RegisteredAt time.Time `gorm:"column:registered_at;autoCreateTime" json:"registered_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName 指定表名。
func (DbUser) TableName() string {
	return "users"
}

// DbVerifyToken 表示一次性邮箱验证令牌，每个用户最多一行。
type DbVerifyToken struct {
	ID     uint    `gorm:"primarykey" json:"id"`
	UserID uint    `gorm:"column:user_id;uniqueIndex;not null" json:"user_id"`
	User   *DbUser `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Token  string  `gorm:"column:token_verify;type:varchar(512);uniqueIndex;not null" json:"-"`
}

// TableName 指定表名。
func (DbVerifyToken) TableName() string {
	return "user_tokens"
}

// UserSummary is a lightweight user description returned to clients.
type UserSummary struct {
	ID           uint      `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	Role         string    `json:"role"`
	Permission   string    `json:"permission"`
	IsActive     bool      `json:"is_active"`
	IsVerified   bool      `json:"is_verified"`
	RegisteredAt time.Time `json:"registered_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RegisterRequest is the payload for self-registration. Note the absence of
// any role field: the default role is assigned server-side.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest is the payload for logging in.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserUpdateRequest is the payload for updating a user profile.
type UserUpdateRequest struct {
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
	RoleID   *uint   `json:"role_id,omitempty"`
}

// UserQuery supports listing users with pagination.
type UserQuery struct {
	Page     int64  `json:"page" form:"page"`
	PageSize int64  `json:"page_size" form:"page_size"`
	Keyword  string `json:"keyword" form:"keyword"`
}

// UserListResponse is the response for listing users.
type UserListResponse struct {
	Users []UserSummary `json:"users"`
	Meta  *Meta         `json:"meta"`
}
