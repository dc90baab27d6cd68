package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"notevi/internal/entity"
)

// ListRoles 返回全部角色。
func (h *HTTPHandler) ListRoles(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	roles, err := h.userService.ListRoles(ctx)
	if err != nil {
		logrus.WithError(err).Error("failed to list roles")
		InternalError(c, "failed to load roles")
		return
	}
	c.JSON(http.StatusOK, gin.H{"roles": roles})
}

// GetRole 返回单个角色。
func (h *HTTPHandler) GetRole(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	role, err := h.userService.GetRole(ctx, id)
	if err != nil {
		ServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, role)
}

// CreateRole 创建角色。按名称幂等,重复创建返回已存在的角色。
func (h *HTTPHandler) CreateRole(c *gin.Context) {
	var req entity.RoleCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	role, err := h.userService.CreateRole(ctx, &req)
	if err != nil {
		ServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, role)
}

// DeleteRole 删除角色。仍被用户引用的角色返回 409。
func (h *HTTPHandler) DeleteRole(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.userService.DeleteRole(ctx, id); err != nil {
		ServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
