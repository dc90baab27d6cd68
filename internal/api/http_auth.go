package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"notevi/internal/auth"
	"notevi/internal/entity"
	"notevi/internal/service"
)

// Register 自助注册。新账户始终拿到配置的默认角色。
func (h *HTTPHandler) Register(c *gin.Context) {
	var req entity.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	user, err := h.userService.Register(ctx, &req)
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, service.ToUserSummary(user))
}

// Login 校验凭据并把签名会话写入 Cookie。
func (h *HTTPHandler) Login(c *gin.Context) {
	var req entity.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.userService.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		ServiceError(c, err)
		return
	}

	token, expiresAt, err := h.authManager.GenerateToken(user)
	if err != nil {
		logrus.WithError(err).Error("failed to generate token")
		InternalError(c, "failed to create session")
		return
	}

	h.setSessionCookie(c, token, int(time.Until(expiresAt).Seconds()))
	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"user":       service.ToUserSummary(user),
	})
}

// Logout 清除会话 Cookie。幂等,未登录调用同样返回成功。
func (h *HTTPHandler) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	c.Status(http.StatusNoContent)
}

// Me 返回当前登录用户的资料。
func (h *HTTPHandler) Me(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	dbUser, err := h.userService.Get(ctx, user.ID)
	if err != nil {
		ServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, service.ToUserSummary(dbUser))
}

// RequestVerify 为当前用户签发验证令牌并发送验证邮件。
func (h *HTTPHandler) RequestVerify(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.verifyService.Request(ctx, user.Actor()); err != nil {
		ServiceError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "verification email queued"})
}

// AcceptVerify 消费验证令牌。链接来自验证邮件,无需登录。
func (h *HTTPHandler) AcceptVerify(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		MissingField(c, "token")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.verifyService.Accept(ctx, token)
	if err != nil {
		ServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, service.ToUserSummary(user))
}

func (h *HTTPHandler) setSessionCookie(c *gin.Context, token string, maxAge int) {
	secure := strings.HasPrefix(h.cfg.AppURL, "https://")
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.SessionCookieName, token, maxAge, "/", "", secure, true)
}
