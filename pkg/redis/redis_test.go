package redis

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// 指向不可达地址的客户端，用于验证不访问网络的分支与错误透传
func newUnreachableClient(t *testing.T) *Client {
	t.Helper()
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	c := NewFromClient(rdb, zap.NewNop())
	t.Cleanup(func() { c.Close() })
	return c
}

func TestBlacklistToken_ExpiredTokenSkipsRedis(t *testing.T) {
	c := newUnreachableClient(t)

	for _, ttl := range []time.Duration{0, -time.Minute} {
		if err := c.BlacklistToken(context.Background(), "jti-1", ttl); err != nil {
			t.Errorf("ttl=%v 不应访问 Redis，实际错误: %v", ttl, err)
		}
	}
}

func TestBlacklistToken_PropagatesError(t *testing.T) {
	c := newUnreachableClient(t)

	if err := c.BlacklistToken(context.Background(), "jti-1", time.Minute); err == nil {
		t.Error("Redis 不可达时应返回错误")
	}
}

func TestIsBlacklisted_PropagatesError(t *testing.T) {
	c := newUnreachableClient(t)

	revoked, err := c.IsBlacklisted(context.Background(), "jti-1")
	if err == nil {
		t.Error("Redis 不可达时应返回错误")
	}
	if revoked {
		t.Error("出错时不应视为已吊销")
	}
}

func TestCheckRateLimit_ErrorDeniesRequest(t *testing.T) {
	c := newUnreachableClient(t)

	allowed, err := c.CheckRateLimit(context.Background(), "rate:test", 5, time.Minute)
	if err == nil {
		t.Error("Redis 不可达时应返回错误")
	}
	if allowed {
		t.Error("出错时不应放行")
	}
}
