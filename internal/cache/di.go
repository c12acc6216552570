package cache

import (
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/samber/do/v2"

	"vibesrm/internal/config"
)

// RegisterDI provides a Cache backed by Redis when a *redis.Client was
// registered, and a no-op cache otherwise.
func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (Cache, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*slog.Logger](i)
		client, err := do.Invoke[*redis.Client](i)
		if err != nil {
			log.Info("cache: redis not configured, caching disabled")
			return Noop{}, nil
		}
		return NewRedis(client, cfg.CacheTimeout, log), nil
	})
}
