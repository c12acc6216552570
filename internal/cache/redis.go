package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"vibesrm/internal/observability/metrics"
)

type Redis struct {
	client  *redis.Client
	timeout time.Duration
	log     *slog.Logger
}

func NewRedis(client *redis.Client, timeout time.Duration, log *slog.Logger) *Redis {
	if log == nil {
		log = slog.Default()
	}
	return &Redis{client: client, timeout: timeout, log: log}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	raw, err := r.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		metrics.CacheOperationsTotal.WithLabelValues("get", "miss").Inc()
		return nil, false
	case err != nil:
		metrics.CacheOperationsTotal.WithLabelValues("get", "error").Inc()
		r.log.Warn("cache get failed, treating as miss", "key", key, "error", err)
		return nil, false
	}
	metrics.CacheOperationsTotal.WithLabelValues("get", "hit").Inc()
	return raw, true
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		metrics.CacheOperationsTotal.WithLabelValues("set", "error").Inc()
		r.log.Warn("cache set failed, dropping write", "key", key, "error", err)
		return
	}
	metrics.CacheOperationsTotal.WithLabelValues("set", "ok").Inc()
}

func (r *Redis) Delete(ctx context.Context, key string) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.client.Del(ctx, key).Err(); err != nil {
		metrics.CacheOperationsTotal.WithLabelValues("delete", "error").Inc()
		r.log.Warn("cache delete failed", "key", key, "error", err)
		return
	}
	metrics.CacheOperationsTotal.WithLabelValues("delete", "ok").Inc()
}
