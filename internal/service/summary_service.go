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

// SummaryService 管理摘要文档及其图片与收藏。摘要正文以文件形式保存在存储后端。
type SummaryService struct {
	cfg   config.Config
	repo  model.Repository
	store storage.Storage
}

func NewSummaryService(cfg config.Config, repo model.Repository, store storage.Storage) *SummaryService {
	return &SummaryService{cfg: cfg, repo: repo, store: store}
}

// Create 保存上传的文档并创建摘要记录。落盘失败不会留下数据库记录。
func (s *SummaryService) Create(ctx context.Context, actor Actor, name string, isPublic bool, document Upload) (*entity.DbSummary, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = document.Filename
	}
	if !allowedExtension(document.Filename, s.cfg.AllowedDocumentExts) {
		return nil, ErrFileTypeNotAllowed
	}

	path, err := storage.UniquePath(ctx, s.store, actor.ID, document.Filename)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, document.Data, path); err != nil {
		return nil, err
	}

	summary := &entity.DbSummary{
		Name:     name,
		Path:     path,
		IsPublic: isPublic,
		AuthorID: actor.ID,
	}
	if err := s.repo.CreateSummary(ctx, summary); err != nil {
		// 回滚孤儿文件
		if deleteErr := s.store.Delete(ctx, path); deleteErr != nil {
			logrus.WithError(deleteErr).WithField("path", path).Warn("cleanup orphan summary file failed")
		}
		return nil, err
	}
	return summary, nil
}

// Get 返回单条摘要。私有摘要仅作者与超级用户可见。
func (s *SummaryService) Get(ctx context.Context, actor Actor, id uint) (*entity.DbSummary, error) {
	summary, err := s.repo.GetSummary(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSummaryNotFound
		}
		return nil, err
	}
	if !s.canRead(actor, summary) {
		return nil, ErrForbidden
	}
	return summary, nil
}

// List 按交集过滤条件列出摘要,私有摘要只出现在作者自己的结果里。
func (s *SummaryService) List(ctx context.Context, actor Actor, query *entity.DocumentQuery) ([]entity.DbSummary, error) {
	summaries, err := s.repo.ListSummaries(ctx, query)
	if err != nil {
		return nil, err
	}
	visible := make([]entity.DbSummary, 0, len(summaries))
	for i := range summaries {
		if s.canRead(actor, &summaries[i]) {
			visible = append(visible, summaries[i])
		}
	}
	return visible, nil
}

// Update 部分更新摘要。名称被修改时追加已编辑标记,重复更新不叠加。
func (s *SummaryService) Update(ctx context.Context, actor Actor, id uint, req *entity.SummaryUpdateRequest) (*entity.DbSummary, error) {
	summary, err := s.repo.GetSummary(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSummaryNotFound
		}
		return nil, err
	}
	if !s.canModify(actor, summary.AuthorID) {
		return nil, ErrForbidden
	}

	updates := entity.SummaryUpdates{
		IsPublic: req.IsPublic,
	}
	if req.Name != nil {
		name := markEdited(strings.TrimSpace(*req.Name))
		updates.Name = &name
	}

	if err := s.repo.UpdateSummary(ctx, id, updates); err != nil {
		return nil, err
	}
	return s.repo.GetSummary(ctx, id)
}

// Delete 删除摘要,清理存储中的文档与图片文件。
func (s *SummaryService) Delete(ctx context.Context, actor Actor, id uint) error {
	summary, err := s.repo.GetSummary(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSummaryNotFound
		}
		return err
	}
	if !s.canModify(actor, summary.AuthorID) {
		return ErrForbidden
	}

	if err := s.store.Delete(ctx, summary.Path); err != nil {
		logrus.WithError(err).WithField("path", summary.Path).Warn("delete summary document failed")
	}
	for _, image := range summary.Images {
		if err := s.store.Delete(ctx, image.Path); err != nil {
			logrus.WithError(err).WithField("path", image.Path).Warn("delete summary image file failed")
		}
	}
	if err := s.repo.DeleteSummary(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSummaryNotFound
		}
		return err
	}
	return nil
}

// AddImages 为摘要追加图片,校验规则与笔记图片一致。
func (s *SummaryService) AddImages(ctx context.Context, actor Actor, summaryID uint, uploads []Upload) ([]entity.DbSummaryImage, error) {
	summary, err := s.repo.GetSummary(ctx, summaryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSummaryNotFound
		}
		return nil, err
	}
	if !s.canModify(actor, summary.AuthorID) {
		return nil, ErrForbidden
	}

	for _, upload := range uploads {
		if !allowedExtension(upload.Filename, s.cfg.AllowedImageExts) {
			return nil, ErrFileTypeNotAllowed
		}
	}

	images := make([]entity.DbSummaryImage, 0, len(uploads))
	for _, upload := range uploads {
		path, err := storage.UniquePath(ctx, s.store, summary.AuthorID, upload.Filename)
		if err != nil {
			s.discardImageFiles(ctx, images)
			return nil, err
		}
		if err := s.store.Save(ctx, upload.Data, path); err != nil {
			s.discardImageFiles(ctx, images)
			return nil, err
		}
		images = append(images, entity.DbSummaryImage{Path: path, SummaryID: summary.ID})
	}

	if err := s.repo.AddSummaryImages(ctx, images); err != nil {
		s.discardImageFiles(ctx, images)
		return nil, err
	}
	return images, nil
}

// discardImageFiles 回收写入一半的图片文件,避免入库失败后留下孤儿。
func (s *SummaryService) discardImageFiles(ctx context.Context, images []entity.DbSummaryImage) {
	for _, image := range images {
		if err := s.store.Delete(ctx, image.Path); err != nil {
			logrus.WithError(err).WithField("path", image.Path).Warn("discard summary image file failed")
		}
	}
}

// DeleteImage 删除单张图片,权限沿图片所属摘要的作者判定。
func (s *SummaryService) DeleteImage(ctx context.Context, actor Actor, imageID uint) error {
	image, err := s.repo.GetSummaryImage(ctx, imageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrImageNotFound
		}
		return err
	}
	if image.Summary == nil || !s.canModify(actor, image.Summary.AuthorID) {
		return ErrForbidden
	}

	if err := s.store.Delete(ctx, image.Path); err != nil {
		logrus.WithError(err).WithField("path", image.Path).Warn("delete summary image file failed")
	}
	if err := s.repo.DeleteSummaryImage(ctx, imageID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrImageNotFound
		}
		return err
	}
	return nil
}

// Favorite 收藏摘要。重复收藏返回 ErrAlreadyFavorited,状态不变。
func (s *SummaryService) Favorite(ctx context.Context, actor Actor, summaryID uint) error {
	summary, err := s.repo.GetSummary(ctx, summaryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSummaryNotFound
		}
		return err
	}
	if !s.canRead(actor, summary) {
		return ErrForbidden
	}

	err = s.repo.AddSummaryFavorite(ctx, &entity.DbSummaryFavorite{UserID: actor.ID, SummaryID: summaryID})
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
func (s *SummaryService) Unfavorite(ctx context.Context, actor Actor, summaryID uint) error {
	if err := s.repo.DeleteSummaryFavorite(ctx, actor.ID, summaryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFavoriteNotFound
		}
		return err
	}
	return nil
}

// ListFavorites 返回当前用户收藏的摘要,按收藏时间倒序。
func (s *SummaryService) ListFavorites(ctx context.Context, actor Actor) ([]entity.DbSummary, error) {
	return s.repo.ListFavoriteSummaries(ctx, actor.ID)
}

func (s *SummaryService) canRead(actor Actor, summary *entity.DbSummary) bool {
	return summary.IsPublic || summary.AuthorID == actor.ID || actor.IsSuperuser
}

func (s *SummaryService) canModify(actor Actor, authorID uint) bool {
	return authorID == actor.ID || actor.IsSuperuser
}
