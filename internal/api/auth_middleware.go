package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"notevi/internal/auth"
	"notevi/internal/entity"
	"notevi/internal/service"
)

const (
	currentUserContextKey = "current-user"
)

// RequestUser 存储请求上下文中的认证用户信息
type RequestUser struct {
	ID          uint
	Email       string
	Username    string
	Permission  string
	IsSuperuser bool
	IsVerified  bool
}

// IsAdmin 判断用户是否具有管理员权限
func (u *RequestUser) IsAdmin() bool {
	if u == nil {
		return false
	}
	if u.IsSuperuser {
		return true
	}
	switch u.Permission {
	case entity.PermissionAdmin, entity.PermissionSuperuser:
		return true
	default:
		return false
	}
}

// Actor 转换为服务层使用的操作者。
func (u *RequestUser) Actor() service.Actor {
	if u == nil {
		return service.Actor{}
	}
	return service.Actor{
		ID:          u.ID,
		Username:    u.Username,
		Permission:  u.Permission,
		IsSuperuser: u.IsSuperuser,
		IsVerified:  u.IsVerified,
	}
}

// AuthMiddleware 认证中间件。优先读取会话 Cookie,其次回退到 Bearer 头。
func (h *HTTPHandler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := sessionToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
				Code:    ErrCodeUnauthorized,
				Message: "authentication required",
			})
			return
		}

		claims, err := h.authManager.ParseToken(tokenString)
		if err != nil {
			logrus.WithError(err).Warn("failed to parse jwt token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
				Code:    ErrCodeSessionExpired,
				Message: "session is invalid or expired",
			})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		user, err := h.repo.GetUserByID(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
					Code:    ErrCodeUserNotFound,
					Message: "user no longer exists",
				})
				return
			}
			logrus.WithError(err).WithField("user_id", claims.UserID).Error("failed to load user")
			c.AbortWithStatusJSON(http.StatusInternalServerError, APIError{
				Code:    ErrCodeInternalError,
				Message: "failed to authenticate user",
			})
			return
		}

		// 停用账户在这里统一拒绝,任何受保护操作都到不了
		if !user.IsActive {
			c.AbortWithStatusJSON(http.StatusForbidden, APIError{
				Code:    ErrCodeUserDisabled,
				Message: "account is disabled",
			})
			return
		}

		c.Set(currentUserContextKey, requestUserFrom(user))
		c.Next()
	}
}

// OptionalAuthMiddleware 可选认证。无凭证或凭证失效时放行匿名请求,
// 仅当凭证指向一个被停用的账户时才拒绝。
func (h *HTTPHandler) OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := sessionToken(c)
		if tokenString == "" {
			c.Next()
			return
		}

		claims, err := h.authManager.ParseToken(tokenString)
		if err != nil {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		user, err := h.repo.GetUserByID(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.Next()
				return
			}
			logrus.WithError(err).WithField("user_id", claims.UserID).Error("failed to load user")
			c.AbortWithStatusJSON(http.StatusInternalServerError, APIError{
				Code:    ErrCodeInternalError,
				Message: "failed to authenticate user",
			})
			return
		}

		if !user.IsActive {
			c.AbortWithStatusJSON(http.StatusForbidden, APIError{
				Code:    ErrCodeUserDisabled,
				Message: "account is disabled",
			})
			return
		}

		c.Set(currentUserContextKey, requestUserFrom(user))
		c.Next()
	}
}

func requestUserFrom(user *entity.DbUser) *RequestUser {
	requestUser := &RequestUser{
		ID:          user.ID,
		Email:       user.Email,
		Username:    user.Username,
		IsSuperuser: user.IsSuperuser,
		IsVerified:  user.IsVerified,
	}
	if user.Role != nil {
		requestUser.Permission = user.Role.Permission
	}
	return requestUser
}

// sessionToken 从 Cookie 或 Authorization 头提取令牌。
func sessionToken(c *gin.Context) string {
	if cookie, err := c.Cookie(auth.SessionCookieName); err == nil {
		if trimmed := strings.TrimSpace(cookie); trimmed != "" {
			return trimmed
		}
	}

	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// RequireAdmin 管理员权限守卫中间件
func (h *HTTPHandler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, APIError{
				Code:    ErrCodeForbidden,
				Message: "admin privileges required",
			})
			return
		}
		c.Next()
	}
}

// RequireVerified 仅放行已完成邮箱验证的用户。
func (h *HTTPHandler) RequireVerified() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsVerified {
			c.AbortWithStatusJSON(http.StatusForbidden, APIError{
				Code:    ErrCodeVerifyRequired,
				Message: "email verification required",
			})
			return
		}
		c.Next()
	}
}

// CurrentUser 从上下文获取当前认证用户
func CurrentUser(c *gin.Context) *RequestUser {
	value, exists := c.Get(currentUserContextKey)
	if !exists {
		return nil
	}
	user, ok := value.(*RequestUser)
	if !ok {
		return nil
	}
	return user
}
