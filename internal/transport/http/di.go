package http

import (
	"net/http"

	"github.com/samber/do/v2"

	"vibesrm/internal/authz"
	"vibesrm/internal/config"
	"vibesrm/internal/service"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (http.Handler, error) {
		cfg := do.MustInvoke[*config.Config](i)
		validator := authz.NewHMACValidator(cfg.JWTSecret, cfg.JWTIssuer)
		return NewRouter(do.MustInvoke[*service.Service](i), RouterConfig{
			Auth:               validator.Middleware,
			RateLimitPerMinute: cfg.RateLimitPerMinute,
			CORSOrigins:        cfg.CORSOrigins,
			RequestTimeout:     cfg.RequestTimeout,
		}), nil
	})
}
