package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"notevi/internal/auth"
	"notevi/internal/config"
	"notevi/internal/entity"
	"notevi/internal/mailer"
	"notevi/internal/model"
)

// UserService 负责账户注册、认证与用户/角色管理。
type UserService struct {
	cfg       config.Config
	repo      model.Repository
	publisher *mailer.Publisher
}

func NewUserService(cfg config.Config, repo model.Repository, publisher *mailer.Publisher) *UserService {
	return &UserService{cfg: cfg, repo: repo, publisher: publisher}
}

// Register 创建新账户。角色由服务端按配置的默认角色解析,请求中不接受角色字段。
func (s *UserService) Register(ctx context.Context, req *entity.RegisterRequest) (*entity.DbUser, error) {
	if err := auth.ValidatePassword(req.Password, s.cfg.PasswordMinLen, s.cfg.PasswordMaxLen); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, fmt.Errorf("username must not be empty")
	}

	if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if _, err := s.repo.GetUserByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	role, err := s.repo.GetRoleByName(ctx, s.cfg.RoleDefault)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("default role %q is not seeded", s.cfg.RoleDefault)
		}
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &entity.DbUser{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		RoleID:       role.ID,
		IsActive:     true,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		// 与预检查之间存在竞争窗口,唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	user.Role = role

	// 邮件投递失败不影响注册结果
	if err := s.publisher.Enqueue(ctx, mailer.EmailTask{
		Kind:      mailer.TaskRegister,
		Username:  user.Username,
		Recipient: user.Email,
	}); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Warn("enqueue welcome email failed")
	}

	return user, nil
}

// Authenticate 校验邮箱与密码。失败统一返回 ErrInvalidCredentials,不区分原因。
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*entity.DbUser, error) {
	user, err := s.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetProfile 返回指定用户的资料。仅本人与管理员可读。
func (s *UserService) GetProfile(ctx context.Context, actor Actor, targetID uint) (*entity.DbUser, error) {
	isAdmin := actor.IsSuperuser || actor.Permission == entity.PermissionAdmin || actor.Permission == entity.PermissionSuperuser
	if targetID != actor.ID && !isAdmin {
		return nil, ErrForbidden
	}
	return s.Get(ctx, targetID)
}

// Get 返回指定用户。
func (s *UserService) Get(ctx context.Context, id uint) (*entity.DbUser, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// List 分页返回用户列表,仅限管理端调用。
func (s *UserService) List(ctx context.Context, query *entity.UserQuery) (*entity.UserListResponse, error) {
	users, meta, err := s.repo.ListUsers(ctx, query)
	if err != nil {
		return nil, err
	}
	summaries := make([]entity.UserSummary, 0, len(users))
	for i := range users {
		summaries = append(summaries, ToUserSummary(&users[i]))
	}
	return &entity.UserListResponse{Users: summaries, Meta: meta}, nil
}

// Update 更新用户资料。普通用户仅能修改自己的用户名和密码,
// 管理员还可以修改任意用户的激活状态与角色。
func (s *UserService) Update(ctx context.Context, actor Actor, targetID uint, req *entity.UserUpdateRequest) (*entity.DbUser, error) {
	isAdmin := actor.IsSuperuser || actor.Permission == entity.PermissionAdmin || actor.Permission == entity.PermissionSuperuser
	if targetID != actor.ID && !isAdmin {
		return nil, ErrForbidden
	}
	if (req.IsActive != nil || req.RoleID != nil) && !isAdmin {
		return nil, ErrForbidden
	}

	if _, err := s.Get(ctx, targetID); err != nil {
		return nil, err
	}

	updates := entity.UserUpdates{
		IsActive: req.IsActive,
	}

	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username == "" {
			return nil, fmt.Errorf("username must not be empty")
		}
		if existing, err := s.repo.GetUserByUsername(ctx, username); err == nil && existing.ID != targetID {
			return nil, ErrUsernameTaken
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		updates.Username = &username
	}

	if req.Password != nil {
		if err := auth.ValidatePassword(*req.Password, s.cfg.PasswordMinLen, s.cfg.PasswordMaxLen); err != nil {
			return nil, err
		}
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		updates.PasswordHash = &hash
	}

	if req.RoleID != nil {
		if _, err := s.repo.GetRole(ctx, *req.RoleID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrRoleNotFound
			}
			return nil, err
		}
		updates.RoleID = req.RoleID
	}

	if err := s.repo.UpdateUser(ctx, targetID, updates); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return s.Get(ctx, targetID)
}

// Delete 删除用户。普通用户仅能删除自己,管理员可以删除任意用户。
// 用户的笔记、摘要、收藏与令牌随外键级联删除。
func (s *UserService) Delete(ctx context.Context, actor Actor, targetID uint) error {
	isAdmin := actor.IsSuperuser || actor.Permission == entity.PermissionAdmin || actor.Permission == entity.PermissionSuperuser
	if targetID != actor.ID && !isAdmin {
		return ErrForbidden
	}
	if _, err := s.Get(ctx, targetID); err != nil {
		return err
	}
	return s.repo.DeleteUser(ctx, targetID)
}

// GetRole 按 ID 查询角色。
func (s *UserService) GetRole(ctx context.Context, id uint) (*entity.DbRole, error) {
	role, err := s.repo.GetRole(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}
	return role, nil
}

// CreateRole 创建(或按名称复用)角色。权限值必须属于已知集合。
func (s *UserService) CreateRole(ctx context.Context, req *entity.RoleCreateRequest) (*entity.DbRole, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("role name must not be empty")
	}
	if !entity.ValidPermission(req.Permission) {
		return nil, ErrInvalidPermission
	}
	return s.repo.GetOrCreateRole(ctx, name, req.Permission)
}

// ListRoles 返回全部角色。
func (s *UserService) ListRoles(ctx context.Context) ([]entity.DbRole, error) {
	return s.repo.ListRoles(ctx)
}

// DeleteRole 删除角色。仍被用户引用的角色拒绝删除。
func (s *UserService) DeleteRole(ctx context.Context, id uint) error {
	count, err := s.repo.CountUsersWithRole(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrRoleInUse
	}
	if err := s.repo.DeleteRole(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRoleNotFound
		}
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return ErrRoleInUse
		}
		return err
	}
	return nil
}

// ToUserSummary 把数据库用户投影为响应结构。
func ToUserSummary(user *entity.DbUser) entity.UserSummary {
	summary := entity.UserSummary{
		ID:           user.ID,
		Email:        user.Email,
		Username:     user.Username,
		IsActive:     user.IsActive,
		IsVerified:   user.IsVerified,
		RegisteredAt: user.RegisteredAt,
		UpdatedAt:    user.UpdatedAt,
	}
	if user.Role != nil {
		summary.Role = user.Role.Name
		summary.Permission = user.Role.Permission
	}
	return summary
}
