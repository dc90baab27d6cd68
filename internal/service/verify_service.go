package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"notevi/internal/auth"
	"notevi/internal/config"
	"notevi/internal/entity"
	"notevi/internal/mailer"
	"notevi/internal/model"
)

// verifyTokenIssuer 把验证令牌与会话令牌隔离在不同的签发域。
const verifyTokenIssuer = "notevi-verify"

// VerifyService 实现邮箱验证的两步流程:签发令牌邮件与接受令牌。
// 令牌是携带用户 ID 的签名 JWT,数据库中每个用户最多保留一行作为一次性凭证。
type VerifyService struct {
	cfg       config.Config
	repo      model.Repository
	publisher *mailer.Publisher
	tokens    *auth.Manager
}

func NewVerifyService(cfg config.Config, repo model.Repository, publisher *mailer.Publisher) (*VerifyService, error) {
	lifetime := time.Duration(cfg.VerifyTokenLifetimeMinutes) * time.Minute
	tokens, err := auth.NewManager(cfg.JWTSecret, verifyTokenIssuer, lifetime)
	if err != nil {
		return nil, err
	}
	return &VerifyService{cfg: cfg, repo: repo, publisher: publisher, tokens: tokens}, nil
}

// Request 为当前用户签发验证令牌并投递验证邮件。
// 每个用户最多保留一枚令牌,重复请求会替换旧令牌使其失效。
func (s *VerifyService) Request(ctx context.Context, actor Actor) error {
	user, err := s.repo.GetUserByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if user.IsVerified {
		return ErrAlreadyVerified
	}

	token, _, err := s.tokens.GenerateToken(user)
	if err != nil {
		return err
	}
	if _, err := s.repo.UpsertVerifyToken(ctx, user.ID, token); err != nil {
		return err
	}

	if err := s.publisher.Enqueue(ctx, mailer.EmailTask{
		Kind:      mailer.TaskVerify,
		Username:  user.Username,
		Recipient: user.Email,
		Token:     token,
	}); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Warn("enqueue verify email failed")
	}
	return nil
}

// Accept 消费令牌:将对应用户标记为已验证并删除令牌行。
// 无法解码的令牌返回 ErrTokenNotFound;解码成功但用户已验证返回
// ErrAlreadyVerified,过期替换下来的旧令牌因此与乱码可区分。
func (s *VerifyService) Accept(ctx context.Context, tokenValue string) (*entity.DbUser, error) {
	claims, err := s.tokens.ParseToken(tokenValue)
	if err != nil {
		return nil, ErrTokenNotFound
	}

	user, err := s.repo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 用户连带令牌行已被删除,对外不可区分
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	if user.IsVerified {
		return nil, ErrAlreadyVerified
	}

	record, err := s.repo.GetVerifyTokenByValue(ctx, tokenValue)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 签名有效但行不在:令牌已被重新签发替换
			return nil, ErrTokenNotFound
		}
		return nil, err
	}

	if err := s.repo.ConsumeVerifyToken(ctx, user.ID, record.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 并发消费时只有一方成功
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	user.IsVerified = true
	return user, nil
}
