package service

import (
	"log/slog"

	"github.com/samber/do/v2"

	"vibesrm/internal/cache"
	"vibesrm/internal/config"
	"vibesrm/internal/events"
	"vibesrm/internal/store"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return New(
			do.MustInvoke[*store.Store](i),
			do.MustInvoke[cache.Cache](i),
			do.MustInvoke[events.Publisher](i),
			OptionsFromConfig(cfg),
			WithLogger(do.MustInvoke[*slog.Logger](i)),
		), nil
	})
}
