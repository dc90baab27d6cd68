package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"notevi/internal/entity"
	"notevi/internal/service"
)

// ListUsers 分页返回用户列表,仅管理员可用。
func (h *HTTPHandler) ListUsers(c *gin.Context) {
	var query entity.UserQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		BadRequest(c, ErrCodeInvalidRequest, "invalid query parameters")
		return
	}
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.PageSize <= 0 {
		query.PageSize = 20
	}
	if query.PageSize > 100 {
		query.PageSize = 100
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	response, err := h.userService.List(ctx, &query)
	if err != nil {
		logrus.WithError(err).Error("failed to list users")
		InternalError(c, "failed to load users")
		return
	}
	c.JSON(http.StatusOK, response)
}

// GetUser 返回指定用户的资料。仅本人与管理员可读,由服务层裁决。
func (h *HTTPHandler) GetUser(c *gin.Context) {
	requestUser := CurrentUser(c)
	if requestUser == nil {
		Unauthorized(c, "authentication required")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.userService.GetProfile(ctx, requestUser.Actor(), id)
	if err != nil {
		ServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, service.ToUserSummary(user))
}

// UpdateUser 更新用户资料。权限规则由服务层裁决:
// 普通用户只能更新自己的用户名和密码,管理员可以调整任意用户。
func (h *HTTPHandler) UpdateUser(c *gin.Context) {
	requestUser := CurrentUser(c)
	if requestUser == nil {
		Unauthorized(c, "authentication required")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req entity.UserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	user, err := h.userService.Update(ctx, requestUser.Actor(), id, &req)
	if err != nil {
		ServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, service.ToUserSummary(user))
}

// DeleteUser 删除用户,笔记、摘要与收藏随外键级联删除。
func (h *HTTPHandler) DeleteUser(c *gin.Context) {
	requestUser := CurrentUser(c)
	if requestUser == nil {
		Unauthorized(c, "authentication required")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.userService.Delete(ctx, requestUser.Actor(), id); err != nil {
		ServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// parseIDParam 解析路径中的数字 ID,失败时写入 400 响应。
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	value := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil || id == 0 {
		BadRequest(c, ErrCodeInvalidRequest, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
