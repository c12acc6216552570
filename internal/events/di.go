package events

import (
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/samber/do/v2"

	"vibesrm/internal/config"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (Publisher, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*slog.Logger](i)
		client, err := do.Invoke[*redis.Client](i)
		if err != nil {
			log.Info("events: redis not configured, logging events only")
			return LogPublisher{Log: log}, nil
		}
		return NewRedisPublisher(client, cfg.EventsTimeout), nil
	})
}
