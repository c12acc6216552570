// Package cache is a fail-open cache capability. Callers never see backend
// errors: a broken backend reads as a miss and drops writes.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"vibesrm/internal/domain"
)

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

func LocationDetailsKey(id domain.LocationID) string {
	return fmt.Sprintf("location:%s:details", id)
}

// Fetch reads key through c, calling load and storing its JSON on a miss.
// Undecodable cache entries are treated as misses.
func Fetch[T any](ctx context.Context, c Cache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	if raw, ok := c.Get(ctx, key); ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
		slog.Warn("cache: dropping undecodable entry", "key", key)
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	if raw, err := json.Marshal(v); err == nil {
		c.Set(ctx, key, raw, ttl)
	}
	return v, nil
}

type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (Noop) Set(context.Context, string, []byte, time.Duration) {}
func (Noop) Delete(context.Context, string) {}
