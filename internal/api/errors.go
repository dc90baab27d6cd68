package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"notevi/internal/auth"
	"notevi/internal/service"
)

// 错误码定义
const (
	// 通用错误码 (1xxx)
	ErrCodeInvalidRequest     = "ERR_INVALID_REQUEST"
	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeForbidden          = "ERR_FORBIDDEN"
	ErrCodeNotFound           = "ERR_NOT_FOUND"
	ErrCodeInternalError      = "ERR_INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "ERR_SERVICE_UNAVAILABLE"

	// 认证错误码 (2xxx)
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	ErrCodeEmailExists        = "ERR_EMAIL_EXISTS"
	ErrCodeUsernameExists     = "ERR_USERNAME_EXISTS"
	ErrCodePasswordPolicy     = "ERR_PASSWORD_POLICY"
	ErrCodeUserDisabled       = "ERR_USER_DISABLED"
	ErrCodeSessionExpired     = "ERR_SESSION_EXPIRED"
	ErrCodeAlreadyVerified    = "ERR_ALREADY_VERIFIED"
	ErrCodeVerifyRequired     = "ERR_VERIFY_REQUIRED"

	// 资源错误码 (3xxx)
	ErrCodeUserNotFound     = "ERR_USER_NOT_FOUND"
	ErrCodeRoleNotFound     = "ERR_ROLE_NOT_FOUND"
	ErrCodeTokenNotFound    = "ERR_TOKEN_NOT_FOUND"
	ErrCodeNoteNotFound     = "ERR_NOTE_NOT_FOUND"
	ErrCodeSummaryNotFound  = "ERR_SUMMARY_NOT_FOUND"
	ErrCodeImageNotFound    = "ERR_IMAGE_NOT_FOUND"
	ErrCodeFileNotFound     = "ERR_FILE_NOT_FOUND"
	ErrCodeFavoriteNotFound = "ERR_FAVORITE_NOT_FOUND"

	// 业务逻辑错误码 (4xxx)
	ErrCodeMissingField     = "ERR_MISSING_FIELD"
	ErrCodeRoleInUse        = "ERR_ROLE_IN_USE"
	ErrCodeInvalidFileType  = "ERR_INVALID_FILE_TYPE"
	ErrCodeAlreadyFavorited = "ERR_ALREADY_FAVORITED"
)

// APIError 统一的 API 错误响应结构
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorResponse 返回统一格式的错误响应
func ErrorResponse(c *gin.Context, status int, code string, message string) {
	c.JSON(status, APIError{
		Code:    code,
		Message: message,
	})
}

// ErrorResponseWithDetails 返回带详情的错误响应
func ErrorResponseWithDetails(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, APIError{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// 常用错误响应快捷函数

// BadRequest 400 错误请求
func BadRequest(c *gin.Context, code string, message string) {
	ErrorResponse(c, http.StatusBadRequest, code, message)
}

// Unauthorized 401 未授权
func Unauthorized(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// Forbidden 403 禁止访问
func Forbidden(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusForbidden, ErrCodeForbidden, message)
}

// NotFound 404 资源不存在
func NotFound(c *gin.Context, code string, message string) {
	ErrorResponse(c, http.StatusNotFound, code, message)
}

// Conflict 409 资源冲突
func Conflict(c *gin.Context, code string, message string) {
	ErrorResponse(c, http.StatusConflict, code, message)
}

// InternalError 500 服务器内部错误
func InternalError(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusInternalServerError, ErrCodeInternalError, message)
}

// ServiceUnavailable 503 服务不可用
func ServiceUnavailable(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, message)
}

// MissingField 缺少必填字段
func MissingField(c *gin.Context, field string) {
	ErrorResponseWithDetails(c, http.StatusBadRequest, ErrCodeMissingField, field+" is required", gin.H{"field": field})
}

// InvalidPayload 无效的请求体
func InvalidPayload(c *gin.Context) {
	ErrorResponse(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request payload")
}

// ServiceError 把服务层哨兵错误映射为对应的 HTTP 响应,
// 未识别的错误记录日志并返回 500。
func ServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		NotFound(c, ErrCodeUserNotFound, "user not found")
	case errors.Is(err, service.ErrRoleNotFound):
		NotFound(c, ErrCodeRoleNotFound, "role not found")
	case errors.Is(err, service.ErrTokenNotFound):
		NotFound(c, ErrCodeTokenNotFound, "verification token not found")
	case errors.Is(err, service.ErrNoteNotFound):
		NotFound(c, ErrCodeNoteNotFound, "note not found")
	case errors.Is(err, service.ErrSummaryNotFound):
		NotFound(c, ErrCodeSummaryNotFound, "summary not found")
	case errors.Is(err, service.ErrImageNotFound):
		NotFound(c, ErrCodeImageNotFound, "image not found")
	case errors.Is(err, service.ErrFileNotFound):
		NotFound(c, ErrCodeFileNotFound, "file not found")
	case errors.Is(err, service.ErrFavoriteNotFound):
		NotFound(c, ErrCodeFavoriteNotFound, "favorite not found")
	case errors.Is(err, service.ErrForbidden):
		Forbidden(c, "operation not permitted")
	case errors.Is(err, service.ErrInvalidCredentials):
		ErrorResponse(c, http.StatusUnauthorized, ErrCodeInvalidCredentials, "invalid email or password")
	case errors.Is(err, service.ErrEmailTaken):
		Conflict(c, ErrCodeEmailExists, "email already registered")
	case errors.Is(err, service.ErrUsernameTaken):
		Conflict(c, ErrCodeUsernameExists, "username already taken")
	case errors.Is(err, service.ErrAlreadyVerified):
		Conflict(c, ErrCodeAlreadyVerified, "user already verified")
	case errors.Is(err, service.ErrRoleInUse):
		Conflict(c, ErrCodeRoleInUse, "role still assigned to users")
	case errors.Is(err, service.ErrAlreadyFavorited):
		Conflict(c, ErrCodeAlreadyFavorited, "already favorited")
	case errors.Is(err, service.ErrFileTypeNotAllowed):
		BadRequest(c, ErrCodeInvalidFileType, "file type not allowed")
	case errors.Is(err, service.ErrInvalidPermission):
		BadRequest(c, ErrCodeInvalidRequest, "unknown permission level")
	case errors.Is(err, auth.ErrPasswordPolicy):
		BadRequest(c, ErrCodePasswordPolicy, err.Error())
	default:
		logrus.WithError(err).Error("unhandled service error")
		InternalError(c, "internal server error")
	}
}
