package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"notevi/internal/config"
	"notevi/internal/entity"
	"notevi/internal/model"
	"notevi/internal/storage"
)

// FileService 管理用户的独立文件上传,每个用户一个存储目录。
type FileService struct {
	cfg   config.Config
	repo  model.Repository
	store storage.Storage
}

func NewFileService(cfg config.Config, repo model.Repository, store storage.Storage) *FileService {
	return &FileService{cfg: cfg, repo: repo, store: store}
}

// Upload 保存上传文件并登记记录。同名文件通过计数后缀避免覆盖。
func (s *FileService) Upload(ctx context.Context, actor Actor, upload Upload) (*entity.DbFile, error) {
	safe := storage.SecureFilename(upload.Filename)
	if safe == "" {
		return nil, ErrFileTypeNotAllowed
	}

	path, err := storage.UniquePath(ctx, s.store, actor.ID, upload.Filename)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, upload.Data, path); err != nil {
		return nil, err
	}

	file := &entity.DbFile{
		Name:   safe,
		Path:   path,
		UserID: actor.ID,
	}
	if err := s.repo.CreateFile(ctx, file); err != nil {
		if deleteErr := s.store.Delete(ctx, path); deleteErr != nil {
			logrus.WithError(deleteErr).WithField("path", path).Warn("cleanup orphan file failed")
		}
		return nil, err
	}
	return file, nil
}

// List 返回当前用户的文件,按上传时间倒序。
func (s *FileService) List(ctx context.Context, actor Actor) ([]entity.DbFile, error) {
	return s.repo.ListFilesByUser(ctx, actor.ID)
}

// Delete 删除文件记录与存储中的文件。仅所有者与超级用户可删除。
func (s *FileService) Delete(ctx context.Context, actor Actor, id uint) error {
	file, err := s.repo.GetFile(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFileNotFound
		}
		return err
	}
	if file.UserID != actor.ID && !actor.IsSuperuser {
		return ErrForbidden
	}

	if err := s.store.Delete(ctx, file.Path); err != nil {
		logrus.WithError(err).WithField("path", file.Path).Warn("delete stored file failed")
	}
	if err := s.repo.DeleteFile(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFileNotFound
		}
		return err
	}
	return nil
}
