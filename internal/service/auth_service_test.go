package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestAuthService_Logout_BlacklistsUntilExpiry(t *testing.T) {
	bl := newMockBlacklist()
	svc := NewAuthService(bl, zap.NewNop())

	err := svc.Logout(context.Background(), "jti-1", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Logout 应成功: %v", err)
	}
	ttl, ok := bl.tokens["jti-1"]
	if !ok {
		t.Fatal("Token 应加入黑名单")
	}
	if ttl <= 0 || ttl > time.Hour {
		t.Errorf("TTL 应不超过剩余有效期，实际=%v", ttl)
	}
}

func TestAuthService_Logout_ExpiredTokenSkipped(t *testing.T) {
	bl := newMockBlacklist()
	svc := NewAuthService(bl, zap.NewNop())

	if err := svc.Logout(context.Background(), "jti-old", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("Logout 应成功: %v", err)
	}
	if _, ok := bl.tokens["jti-old"]; ok {
		t.Error("已过期 Token 不应写入黑名单")
	}
}

func TestAuthService_Logout_MissingJTI(t *testing.T) {
	svc := NewAuthService(newMockBlacklist(), zap.NewNop())

	err := svc.Logout(context.Background(), "", time.Now().Add(time.Hour))
	if !errors.Is(err, ErrTokenIDMissing) {
		t.Errorf("期望 ErrTokenIDMissing，实际: %v", err)
	}
}

func TestAuthService_Logout_StoreError(t *testing.T) {
	bl := newMockBlacklist()
	bl.err = errors.New("redis down")
	svc := NewAuthService(bl, zap.NewNop())

	if err := svc.Logout(context.Background(), "jti-1", time.Now().Add(time.Hour)); err == nil {
		t.Error("期望返回存储错误")
	}
}
