package service

import "errors"

// 服务层哨兵错误,API 层据此映射为对应的 HTTP 状态码。
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrRoleNotFound     = errors.New("role not found")
	ErrTokenNotFound    = errors.New("verification token not found")
	ErrNoteNotFound     = errors.New("note not found")
	ErrSummaryNotFound  = errors.New("summary not found")
	ErrImageNotFound    = errors.New("image not found")
	ErrFileNotFound     = errors.New("file not found")
	ErrFavoriteNotFound = errors.New("favorite not found")
	ErrAlreadyFavorited = errors.New("document already favorited")

	ErrForbidden          = errors.New("operation not permitted")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrAlreadyVerified    = errors.New("user already verified")
	ErrRoleInUse          = errors.New("role still assigned to users")
	ErrFileTypeNotAllowed = errors.New("file type not allowed")
	ErrInvalidPermission  = errors.New("unknown permission level")
)

// Actor 描述发起操作的已认证用户,由 API 层从会话中构造。
type Actor struct {
	ID          uint
	Username    string
	Permission  string
	IsSuperuser bool
	IsVerified  bool
}

// Upload 是一个待保存的上传文件。
type Upload struct {
	Filename string
	Data     []byte
}
