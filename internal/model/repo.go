package model

import (
	"context"

	"notevi/internal/entity"
)

// Repository 定义数据库操作接口
type Repository interface {
	// 用户管理
	CreateUser(ctx context.Context, user *entity.DbUser) error
	GetUserByID(ctx context.Context, id uint) (*entity.DbUser, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.DbUser, error)
	GetUserByUsername(ctx context.Context, username string) (*entity.DbUser, error)
	ListUsers(ctx context.Context, params *entity.UserQuery) ([]entity.DbUser, *entity.Meta, error)
	UpdateUser(ctx context.Context, id uint, updates entity.UserUpdates) error
	DeleteUser(ctx context.Context, id uint) error

	// 角色
	GetRole(ctx context.Context, id uint) (*entity.DbRole, error)
	GetRoleByName(ctx context.Context, name string) (*entity.DbRole, error)
	GetOrCreateRole(ctx context.Context, name, permission string) (*entity.DbRole, error)
	ListRoles(ctx context.Context) ([]entity.DbRole, error)
	DeleteRole(ctx context.Context, id uint) error
	CountUsersWithRole(ctx context.Context, roleID uint) (int64, error)

	// 邮箱验证令牌
	UpsertVerifyToken(ctx context.Context, userID uint, token string) (*entity.DbVerifyToken, error)
	GetVerifyTokenByValue(ctx context.Context, token string) (*entity.DbVerifyToken, error)
	GetVerifyTokenByUser(ctx context.Context, userID uint) (*entity.DbVerifyToken, error)
	ConsumeVerifyToken(ctx context.Context, userID, tokenID uint) error

	// 笔记
	CreateNote(ctx context.Context, note *entity.DbNote) error
	GetNote(ctx context.Context, id uint) (*entity.DbNote, error)
	ListNotes(ctx context.Context, params *entity.DocumentQuery) ([]entity.DbNote, error)
	UpdateNote(ctx context.Context, id uint, updates entity.NoteUpdates) error
	DeleteNote(ctx context.Context, id uint) error
	AddNoteImages(ctx context.Context, images []entity.DbNoteImage) error
	GetNoteImage(ctx context.Context, id uint) (*entity.DbNoteImage, error)
	DeleteNoteImage(ctx context.Context, id uint) error

	// 摘要
	CreateSummary(ctx context.Context, summary *entity.DbSummary) error
	GetSummary(ctx context.Context, id uint) (*entity.DbSummary, error)
	ListSummaries(ctx context.Context, params *entity.DocumentQuery) ([]entity.DbSummary, error)
	UpdateSummary(ctx context.Context, id uint, updates entity.SummaryUpdates) error
	DeleteSummary(ctx context.Context, id uint) error
	AddSummaryImages(ctx context.Context, images []entity.DbSummaryImage) error
	GetSummaryImage(ctx context.Context, id uint) (*entity.DbSummaryImage, error)
	DeleteSummaryImage(ctx context.Context, id uint) error

	// 收藏
	AddNoteFavorite(ctx context.Context, favorite *entity.DbNoteFavorite) error
	GetNoteFavorite(ctx context.Context, userID, noteID uint) (*entity.DbNoteFavorite, error)
	DeleteNoteFavorite(ctx context.Context, userID, noteID uint) error
	ListFavoriteNotes(ctx context.Context, userID uint) ([]entity.DbNote, error)
	AddSummaryFavorite(ctx context.Context, favorite *entity.DbSummaryFavorite) error
	GetSummaryFavorite(ctx context.Context, userID, summaryID uint) (*entity.DbSummaryFavorite, error)
	DeleteSummaryFavorite(ctx context.Context, userID, summaryID uint) error
	ListFavoriteSummaries(ctx context.Context, userID uint) ([]entity.DbSummary, error)

	// 文件
	CreateFile(ctx context.Context, file *entity.DbFile) error
	GetFile(ctx context.Context, id uint) (*entity.DbFile, error)
	ListFilesByUser(ctx context.Context, userID uint) ([]entity.DbFile, error)
	DeleteFile(ctx context.Context, id uint) error
}
