package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/gs-sport/storefront/internal/config"
)

const redisStartupPing = 2 * time.Second

// ErrRedisNotConfigured is returned by Ping on a nil wrapper.
var ErrRedisNotConfigured = errors.New("redis not configured")

// Redis wraps the go-redis client backing the redis presence store.
type Redis struct {
	Client *redis.Client
}

// NewRedis creates the client and probes it once. An unreachable server is
// only logged: presence then reports zero until redis answers again.
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Redis {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	r := &Redis{Client: redis.NewClient(opts)}

	pingCtx, cancel := context.WithTimeout(ctx, redisStartupPing)
	defer cancel()
	if err := r.Ping(pingCtx); err != nil {
		logger.Warn("unable to reach redis", zap.String("addr", cfg.Addr), zap.Error(err))
	} else {
		logger.Info("connected to redis", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	}
	return r
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return ErrRedisNotConfigured
	}
	return r.Client.Ping(ctx).Err()
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}
