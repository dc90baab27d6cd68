package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"notevi/internal/entity"
)

// summaryView 是摘要的响应投影。
type summaryView struct {
	ID        uint        `json:"id"`
	Name      string      `json:"name"`
	Path      string      `json:"path"`
	URL       string      `json:"url"`
	IsPublic  bool        `json:"is_public"`
	AuthorID  uint        `json:"author_id"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	Images    []imageView `json:"images"`
}

func (h *HTTPHandler) makeSummaryView(summary *entity.DbSummary) summaryView {
	view := summaryView{
		ID:        summary.ID,
		Name:      summary.Name,
		Path:      summary.Path,
		URL:       h.publicURL(summary.Path),
		IsPublic:  summary.IsPublic,
		AuthorID:  summary.AuthorID,
		CreatedAt: summary.CreatedAt,
		UpdatedAt: summary.UpdatedAt,
		Images:    make([]imageView, 0, len(summary.Images)),
	}
	for _, image := range summary.Images {
		view.Images = append(view.Images, imageView{
			ID:        image.ID,
			Path:      image.Path,
			URL:       h.publicURL(image.Path),
			CreatedAt: image.CreatedAt,
		})
	}
	return view
}

// CreateSummary 上传摘要文档并创建记录。multipart 字段:document(文件)、
// name(可选,缺省取文件名)、is_public。
func (h *HTTPHandler) CreateSummary(c *gin.Context) {
	requestUser := CurrentUser(c)
	if requestUser == nil {
		Unauthorized(c, "authentication required")
		return
	}

	uploads, ok := readUploads(c, "document")
	if !ok {
		return
	}
	if len(uploads) != 1 {
		BadRequest(c, ErrCodeInvalidRequest, "exactly one document is required")
		return
	}

	name := strings.TrimSpace(c.PostForm("name"))
	isPublic := strings.EqualFold(strings.TrimSpace(c.PostForm("is_public")), "true")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	summary, err := h.summaryService.Create(ctx, requestUser.Actor(), name, isPublic, uploads[0])
	if err != nil {
		ServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.makeSummaryView(summary))
}

// ListSummaries 按过滤条件列出摘要。
func (h *HTTPHandler) ListSummaries(c *gin.Context) {
	requestUser := CurrentUser(c)
	if requestUser == nil {
		Unauthorized(c, "authentication required")
		return
	}

	var query entity.DocumentQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		BadRequest(c, ErrCodeInvalidRequest, "invalid query parameters")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	summaries, err := h.summaryService.List(ctx, requestUser.Actor(), &query)
	if err != nil {
		ServiceError(c, err)
		return
	}

	views := make([]summaryView, 0, len(summaries))
	for i := range summaries {
		views = append(views, h.makeSummaryView(&summaries[i]))
	}
	c.JSON(http.StatusOK, gin.H{"summaries": views})
}

// GetSummary 返回单条摘要。
func (h *HTTPHandler) GetSummary(c *gin.Context) {
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

	summary, err := h.summaryService.Get(ctx, requestUser.Actor(), id)
	if err != nil {
		ServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.makeSummaryView(summary))
}

// UpdateSummary 部分更新摘要。
func (h *HTTPHandler) UpdateSummary(c *gin.Context) {
	requestUser := CurrentUser(c)
	if requestUser == nil {
		Unauthorized(c, "authentication required")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req entity.SummaryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	summary, err := h.summaryService.Update(ctx, requestUser.Actor(), id, &req)
	if err != nil {
		ServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.makeSummaryView(summary))
}

// DeleteSummary 删除摘要及其文档和图片。
func (h *HTTPHandler) DeleteSummary(c *gin.Context) {
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

	if err := h.summaryService.Delete(ctx, requestUser.Actor(), id); err != nil {
		ServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddSummaryImages 为摘要上传图片。
func (h *HTTPHandler) AddSummaryImages(c *gin.Context) {
	requestUser := CurrentUser(c)
	if requestUser == nil {
		Unauthorized(c, "authentication required")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	uploads, ok := readUploads(c, "images")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	images, err := h.summaryService.AddImages(ctx, requestUser.Actor(), id, uploads)
	if err != nil {
		ServiceError(c, err)
		return
	}

	views := make([]imageView, 0, len(images))
	for _, image := range images {
		views = append(views, imageView{
			ID:        image.ID,
			Path:      image.Path,
			URL:       h.publicURL(image.Path),
			CreatedAt: image.CreatedAt,
		})
	}
	c.JSON(http.StatusCreated, gin.H{"images": views})
}

// DeleteSummaryImage 删除单张摘要图片。
func (h *HTTPHandler) DeleteSummaryImage(c *gin.Context) {
	requestUser := CurrentUser(c)
	if requestUser == nil {
		Unauthorized(c, "authentication required")
		return
	}

	imageID, ok := parseIDParam(c, "image_id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.summaryService.DeleteImage(ctx, requestUser.Actor(), imageID); err != nil {
		ServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// FavoriteSummary 收藏摘要,幂等。
func (h *HTTPHandler) FavoriteSummary(c *gin.Context) {
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

	if err := h.summaryService.Favorite(ctx, requestUser.Actor(), id); err != nil {
		ServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UnfavoriteSummary 取消收藏。
func (h *HTTPHandler) UnfavoriteSummary(c *gin.Context) {
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

	if err := h.summaryService.Unfavorite(ctx, requestUser.Actor(), id); err != nil {
		ServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListFavoriteSummaries 返回当前用户收藏的摘要。
func (h *HTTPHandler) ListFavoriteSummaries(c *gin.Context) {
	requestUser := CurrentUser(c)
	if requestUser == nil {
		Unauthorized(c, "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	summaries, err := h.summaryService.ListFavorites(ctx, requestUser.Actor())
	if err != nil {
		ServiceError(c, err)
		return
	}

	views := make([]summaryView, 0, len(summaries))
	for i := range summaries {
		views = append(views, h.makeSummaryView(&summaries[i]))
	}
	c.JSON(http.StatusOK, gin.H{"summaries": views})
}
