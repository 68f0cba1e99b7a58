package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

var (
	ErrTokenIDMissing = errors.New("Token 缺少 jti，无法注销")
)

// TokenBlacklist Token 黑名单存储（Redis 或进程内兜底）
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// AuthService 认证业务接口
// Token 由外部身份提供方签发，服务端仅负责注销（加入黑名单直至过期）
type AuthService interface {
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
}

type authService struct {
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(blacklist TokenBlacklist, logger *zap.Logger) AuthService {
	return &authService{blacklist: blacklist, logger: logger}
}

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if jti == "" {
		return ErrTokenIDMissing
	}

	ttl := time.Until(expiresAt)
	if expiresAt.IsZero() {
		ttl = 24 * time.Hour
	}
	if ttl <= 0 {
		// 已过期的 Token 无需拉黑
		return nil
	}

	if err := s.blacklist.BlacklistToken(ctx, jti, ttl); err != nil {
		s.logger.Error("Token 加入黑名单失败", zap.String("jti", jti), zap.Error(err))
		return err
	}
	s.logger.Info("Token 已注销", zap.String("jti", jti), zap.Duration("ttl", ttl))
	return nil
}
