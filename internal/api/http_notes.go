package api

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"notevi/internal/entity"
	"notevi/internal/service"
)

// imageView 是图片的响应投影,附带可访问的 URL。
type imageView struct {
	ID        uint      `json:"id"`
	Path      string    `json:"path"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// noteView 是笔记的响应投影。
type noteView struct {
	ID        uint        `json:"id"`
	Title     string      `json:"title"`
	Intro     string      `json:"intro"`
	Text      string      `json:"text"`
	IsPublic  bool        `json:"is_public"`
	AuthorID  uint        `json:"author_id"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	Images    []imageView `json:"images"`
}

func (h *HTTPHandler) makeNoteView(note *entity.DbNote) noteView {
	view := noteView{
		ID:        note.ID,
		Title:     note.Title,
		Intro:     note.Intro,
		Text:      note.Text,
		IsPublic:  note.IsPublic,
		AuthorID:  note.AuthorID,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
		Images:    make([]imageView, 0, len(note.Images)),
	}
	for _, image := range note.Images {
		view.Images = append(view.Images, imageView{
			ID:        image.ID,
			Path:      image.Path,
			URL:       h.publicURL(image.Path),
			CreatedAt: image.CreatedAt,
		})
	}
	return view
}

// CreateNote 创建笔记,作者取当前用户。
func (h *HTTPHandler) CreateNote(c *gin.Context) {
	requestUser := CurrentUser(c)
	if requestUser == nil {
		Unauthorized(c, "authentication required")
		return
	}

	var req entity.NoteCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	note, err := h.noteService.Create(ctx, requestUser.Actor(), &req)
	if err != nil {
		ServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.makeNoteView(note))
}

// ListNotes 按过滤条件列出笔记。私有笔记只出现在作者自己的结果里。
func (h *HTTPHandler) ListNotes(c *gin.Context) {
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

	notes, err := h.noteService.List(ctx, requestUser.Actor(), &query)
	if err != nil {
		ServiceError(c, err)
		return
	}

	views := make([]noteView, 0, len(notes))
	for i := range notes {
		views = append(views, h.makeNoteView(&notes[i]))
	}
	c.JSON(http.StatusOK, gin.H{"notes": views})
}

// GetNote 返回单条笔记。
func (h *HTTPHandler) GetNote(c *gin.Context) {
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

	note, err := h.noteService.Get(ctx, requestUser.Actor(), id)
	if err != nil {
		ServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.makeNoteView(note))
}

// UpdateNote 部分更新笔记。
func (h *HTTPHandler) UpdateNote(c *gin.Context) {
	requestUser := CurrentUser(c)
	if requestUser == nil {
		Unauthorized(c, "authentication required")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req entity.NoteUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	note, err := h.noteService.Update(ctx, requestUser.Actor(), id, &req)
	if err != nil {
		ServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.makeNoteView(note))
}

// DeleteNote 删除笔记及其图片。
func (h *HTTPHandler) DeleteNote(c *gin.Context) {
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

	if err := h.noteService.Delete(ctx, requestUser.Actor(), id); err != nil {
		ServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddNoteImages 为笔记上传图片,multipart 字段名为 images。
func (h *HTTPHandler) AddNoteImages(c *gin.Context) {
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

	images, err := h.noteService.AddImages(ctx, requestUser.Actor(), id, uploads)
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

// DeleteNoteImage 删除单张笔记图片。
func (h *HTTPHandler) DeleteNoteImage(c *gin.Context) {
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

	if err := h.noteService.DeleteImage(ctx, requestUser.Actor(), imageID); err != nil {
		ServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// FavoriteNote 收藏笔记,幂等。
func (h *HTTPHandler) FavoriteNote(c *gin.Context) {
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

	if err := h.noteService.Favorite(ctx, requestUser.Actor(), id); err != nil {
		ServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UnfavoriteNote 取消收藏。
func (h *HTTPHandler) UnfavoriteNote(c *gin.Context) {
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

	if err := h.noteService.Unfavorite(ctx, requestUser.Actor(), id); err != nil {
		ServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListFavoriteNotes 返回当前用户收藏的笔记。
func (h *HTTPHandler) ListFavoriteNotes(c *gin.Context) {
	requestUser := CurrentUser(c)
	if requestUser == nil {
		Unauthorized(c, "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	notes, err := h.noteService.ListFavorites(ctx, requestUser.Actor())
	if err != nil {
		ServiceError(c, err)
		return
	}

	views := make([]noteView, 0, len(notes))
	for i := range notes {
		views = append(views, h.makeNoteView(&notes[i]))
	}
	c.JSON(http.StatusOK, gin.H{"notes": views})
}

// readUploads 读取 multipart 表单中指定字段的全部文件。
func readUploads(c *gin.Context, field string) ([]service.Upload, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		BadRequest(c, ErrCodeInvalidRequest, "invalid multipart form")
		return nil, false
	}
	files := form.File[field]
	if len(files) == 0 {
		MissingField(c, field)
		return nil, false
	}

	uploads := make([]service.Upload, 0, len(files))
	for _, header := range files {
		data, err := readFileHeader(header)
		if err != nil {
			BadRequest(c, ErrCodeInvalidRequest, "failed to read uploaded file")
			return nil, false
		}
		uploads = append(uploads, service.Upload{Filename: header.Filename, Data: data})
	}
	return uploads, true
}

func readFileHeader(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}
