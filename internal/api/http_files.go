package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"notevi/internal/entity"
)

// fileView 是文件的响应投影。
type fileView struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *HTTPHandler) makeFileView(file *entity.DbFile) fileView {
	return fileView{
		ID:        file.ID,
		Name:      file.Name,
		Path:      file.Path,
		URL:       h.publicURL(file.Path),
		CreatedAt: file.CreatedAt,
	}
}

// UploadFile 上传独立文件,multipart 字段名为 file。
func (h *HTTPHandler) UploadFile(c *gin.Context) {
	requestUser := CurrentUser(c)
	if requestUser == nil {
		Unauthorized(c, "authentication required")
		return
	}

	uploads, ok := readUploads(c, "file")
	if !ok {
		return
	}
	if len(uploads) != 1 {
		BadRequest(c, ErrCodeInvalidRequest, "exactly one file is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	file, err := h.fileService.Upload(ctx, requestUser.Actor(), uploads[0])
	if err != nil {
		ServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.makeFileView(file))
}

// ListFiles 返回当前用户的全部文件。
func (h *HTTPHandler) ListFiles(c *gin.Context) {
	requestUser := CurrentUser(c)
	if requestUser == nil {
		Unauthorized(c, "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	files, err := h.fileService.List(ctx, requestUser.Actor())
	if err != nil {
		ServiceError(c, err)
		return
	}

	views := make([]fileView, 0, len(files))
	for i := range files {
		views = append(views, h.makeFileView(&files[i]))
	}
	c.JSON(http.StatusOK, gin.H{"files": views})
}

// DeleteFile 删除自己的文件。
func (h *HTTPHandler) DeleteFile(c *gin.Context) {
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

	if err := h.fileService.Delete(ctx, requestUser.Actor(), id); err != nil {
		ServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
