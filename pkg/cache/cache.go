package cache

import (
	"context"
	"time"

	"github.com/coocood/freecache"
	"go.uber.org/zap"

	"github.com/Yvesthior/moncareme-agd/config"
)

// LocalBlacklist 进程内 Token 黑名单
// Redis 不可用时作为兜底，仅对当前实例生效
type LocalBlacklist struct {
	cache *freecache.Cache
}

// NewLocalBlacklist 按配置大小创建进程内黑名单
func NewLocalBlacklist(cfg *config.CacheConfig, logger *zap.Logger) *LocalBlacklist {
	sizeMB := cfg.SizeMB
	if sizeMB <= 0 {
		sizeMB = 1
	}
	logger.Info("进程内 Token 黑名单已启用", zap.Int("size_mb", sizeMB))
	return &LocalBlacklist{cache: freecache.NewCache(sizeMB * 1024 * 1024)}
}

// BlacklistToken 记录 JWT ID，过期时间与 Token 剩余有效期一致
func (l *LocalBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	seconds := int(ttl.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return l.cache.Set([]byte(jti), []byte{1}, seconds)
}

// IsBlacklisted 检查 JWT ID 是否已吊销
func (l *LocalBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	if _, err := l.cache.Get([]byte(jti)); err != nil {
		if err == freecache.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
