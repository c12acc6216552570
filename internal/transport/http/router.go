package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vibesrm/internal/observability/middleware"
	"vibesrm/internal/service"
)

type RouterConfig struct {
	// Auth guards every /v1 route except the location reads.
	Auth               func(http.Handler) http.Handler
	RateLimitPerMinute int
	CORSOrigins        []string
	RequestTimeout     time.Duration
	// Metrics defaults to the default prometheus gatherer.
	Metrics http.Handler
}

func NewRouter(svc *service.Service, cfg RouterConfig) http.Handler {
	h := &Handler{svc: svc, now: time.Now}

	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.WithRequestAndTrace)
	r.Use(chimw.Recoverer)
	r.Use(middleware.WithMetrics)
	if cfg.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.RequestTimeout))
	}
	if cfg.RateLimitPerMinute > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimitPerMinute, time.Minute))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   originsIfSet(cfg.CORSOrigins),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id", "X-Trace-Id"},
		ExposedHeaders:   []string{"Retry-After", "X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	metricsHandler := cfg.Metrics
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/locations", h.listLocations)
		r.Get("/locations/{locationId}", h.locationDetails)

		r.Group(func(pr chi.Router) {
			if cfg.Auth != nil {
				pr.Use(cfg.Auth)
			}
			pr.Post("/checkins", h.checkIn)
			pr.Post("/checkins/{sessionId}/checkout", h.checkOut)
			pr.Get("/checkins/active", h.activeSession)
			pr.Get("/checkins/history", h.history)

			pr.Get("/ghosts", h.listGhosts)
			pr.Get("/ghosts/encouragements", h.encouragementSummary)
			pr.Post("/ghosts/{sessionId}/encouragements", h.sendEncouragement)
			pr.Get("/ghosts/{sessionId}/summary", h.ghostSummary)

			pr.Get("/me/stats", h.stats)
		})
	})

	return r
}

func originsIfSet(in []string) []string {
	out := []string{}
	for _, o := range in {
		if o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
