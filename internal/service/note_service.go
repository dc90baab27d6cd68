package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"notevi/internal/config"
	"notevi/internal/entity"
	"notevi/internal/model"
	"notevi/internal/storage"
)

// editedSuffix 标记标题被修改过的文档,仅追加一次。
const editedSuffix = " (edited)"

// NoteService 管理笔记及其图片与收藏。
type NoteService struct {
	cfg   config.Config
	repo  model.Repository
	store storage.Storage
}

func NewNoteService(cfg config.Config, repo model.Repository, store storage.Storage) *NoteService {
	return &NoteService{cfg: cfg, repo: repo, store: store}
}

// Create 以当前用户为作者创建笔记。作者创建后不可变更。
func (s *NoteService) Create(ctx context.Context, actor Actor, req *entity.NoteCreateRequest) (*entity.DbNote, error) {
	note := &entity.DbNote{
		Title:    strings.TrimSpace(req.Title),
		Intro:    req.Intro,
		Text:     req.Text,
		IsPublic: req.IsPublic,
		AuthorID: actor.ID,
	}
	if err := s.repo.CreateNote(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// Get 返回单条笔记。私有笔记仅作者与超级用户可见。
func (s *NoteService) Get(ctx context.Context, actor Actor, id uint) (*entity.DbNote, error) {
	note, err := s.repo.GetNote(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}
	if !s.canRead(actor, note) {
		return nil, ErrForbidden
	}
	return note, nil
}

// List 按交集过滤条件列出笔记,私有笔记只出现在作者自己的结果里。
func (s *NoteService) List(ctx context.Context, actor Actor, query *entity.DocumentQuery) ([]entity.DbNote, error) {
	notes, err := s.repo.ListNotes(ctx, query)
	if err != nil {
		return nil, err
	}
	visible := make([]entity.DbNote, 0, len(notes))
	for i := range notes {
		if s.canRead(actor, &notes[i]) {
			visible = append(visible, notes[i])
		}
	}
	return visible, nil
}

// Update 部分更新笔记。标题被修改时追加已编辑标记,重复更新不叠加。
func (s *NoteService) Update(ctx context.Context, actor Actor, id uint, req *entity.NoteUpdateRequest) (*entity.DbNote, error) {
	note, err := s.repo.GetNote(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}
	if !s.canModify(actor, note.AuthorID) {
		return nil, ErrForbidden
	}

	updates := entity.NoteUpdates{
		Intro:    req.Intro,
		Text:     req.Text,
		IsPublic: req.IsPublic,
	}
	if req.Title != nil {
		title := markEdited(strings.TrimSpace(*req.Title))
		updates.Title = &title
	}

	if err := s.repo.UpdateNote(ctx, id, updates); err != nil {
		return nil, err
	}
	return s.repo.GetNote(ctx, id)
}

// Delete 删除笔记,图片记录随外键级联删除,存储中的图片文件尽力清理。
func (s *NoteService) Delete(ctx context.Context, actor Actor, id uint) error {
	note, err := s.repo.GetNote(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoteNotFound
		}
		return err
	}
	if !s.canModify(actor, note.AuthorID) {
		return ErrForbidden
	}

	for _, image := range note.Images {
		if err := s.store.Delete(ctx, image.Path); err != nil {
			logrus.WithError(err).WithField("path", image.Path).Warn("delete note image file failed")
		}
	}
	if err := s.repo.DeleteNote(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoteNotFound
		}
		return err
	}
	return nil
}

// AddImages 为笔记追加图片。所有文件先整体校验扩展名,任何一个不合法都不落盘。
func (s *NoteService) AddImages(ctx context.Context, actor Actor, noteID uint, uploads []Upload) ([]entity.DbNoteImage, error) {
	note, err := s.repo.GetNote(ctx, noteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}
	if !s.canModify(actor, note.AuthorID) {
		return nil, ErrForbidden
	}

	for _, upload := range uploads {
		if !allowedExtension(upload.Filename, s.cfg.AllowedImageExts) {
			return nil, ErrFileTypeNotAllowed
		}
	}

	images := make([]entity.DbNoteImage, 0, len(uploads))
	for _, upload := range uploads {
		path, err := storage.UniquePath(ctx, s.store, note.AuthorID, upload.Filename)
		if err != nil {
			s.discardImageFiles(ctx, images)
			return nil, err
		}
		if err := s.store.Save(ctx, upload.Data, path); err != nil {
			s.discardImageFiles(ctx, images)
			return nil, err
		}
		images = append(images, entity.DbNoteImage{Path: path, NoteID: note.ID})
	}

	if err := s.repo.AddNoteImages(ctx, images); err != nil {
		s.discardImageFiles(ctx, images)
		return nil, err
	}
	return images, nil
}

// discardImageFiles 回收写入一半的图片文件,避免入库失败后留下孤儿。
func (s *NoteService) discardImageFiles(ctx context.Context, images []entity.DbNoteImage) {
	for _, image := range images {
		if err := s.store.Delete(ctx, image.Path); err != nil {
			logrus.WithError(err).WithField("path", image.Path).Warn("discard note image file failed")
		}
	}
}

// DeleteImage 删除单张图片,权限沿图片所属笔记的作者判定。
func (s *NoteService) DeleteImage(ctx context.Context, actor Actor, imageID uint) error {
	image, err := s.repo.GetNoteImage(ctx, imageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrImageNotFound
		}
		return err
	}
	if image.Note == nil || !s.canModify(actor, image.Note.AuthorID) {
		return ErrForbidden
	}

	if err := s.store.Delete(ctx, image.Path); err != nil {
		logrus.WithError(err).WithField("path", image.Path).Warn("delete note image file failed")
	}
	if err := s.repo.DeleteNoteImage(ctx, imageID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrImageNotFound
		}
		return err
	}
	return nil
}

// Favorite 收藏笔记。重复收藏返回 ErrAlreadyFavorited,状态不变。
func (s *NoteService) Favorite(ctx context.Context, actor Actor, noteID uint) error {
	note, err := s.repo.GetNote(ctx, noteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoteNotFound
		}
		return err
	}
	if !s.canRead(actor, note) {
		return ErrForbidden
	}

	err = s.repo.AddNoteFavorite(ctx, &entity.DbNoteFavorite{UserID: actor.ID, NoteID: noteID})
	if err != nil {
		// 复合主键同时兜住并发的重复插入
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyFavorited
		}
		return err
	}
	return nil
}

// Unfavorite 取消收藏。
func (s *NoteService) Unfavorite(ctx context.Context, actor Actor, noteID uint) error {
	if err := s.repo.DeleteNoteFavorite(ctx, actor.ID, noteID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFavoriteNotFound
		}
		return err
	}
	return nil
}

// ListFavorites 返回当前用户收藏的笔记,按收藏时间倒序。
func (s *NoteService) ListFavorites(ctx context.Context, actor Actor) ([]entity.DbNote, error) {
	return s.repo.ListFavoriteNotes(ctx, actor.ID)
}

func (s *NoteService) canRead(actor Actor, note *entity.DbNote) bool {
	return note.IsPublic || note.AuthorID == actor.ID || actor.IsSuperuser
}

func (s *NoteService) canModify(actor Actor, authorID uint) bool {
	return authorID == actor.ID || actor.IsSuperuser
}

// markEdited 追加已编辑标记,幂等。
func markEdited(title string) string {
	if strings.HasSuffix(title, editedSuffix) {
		return title
	}
	return title + editedSuffix
}

// allowedExtension 检查文件扩展名是否在允许列表中。
func allowedExtension(filename string, allowed []string) bool {
	ext := storage.Extension(filename)
	if ext == "" {
		return false
	}
	for _, candidate := range allowed {
		if strings.EqualFold(strings.TrimSpace(candidate), ext) {
			return true
		}
	}
	return false
}
