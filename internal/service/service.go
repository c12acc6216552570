package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"vibesrm/internal/cache"
	"vibesrm/internal/config"
	"vibesrm/internal/domain"
	"vibesrm/internal/events"
	"vibesrm/internal/ghost"
	"vibesrm/internal/reward"
	"vibesrm/internal/store"
)

type Options struct {
	MaxDistanceMeters float64
	BaseCoins         int
	DetailsTTL        time.Duration
	StoreTimeout      time.Duration
	EventsTimeout     time.Duration
}

func DefaultOptions() Options {
	return Options{
		MaxDistanceMeters: 50,
		BaseCoins:         reward.BaseCheckInGrant(),
		DetailsTTL:        120 * time.Second,
		StoreTimeout:      5 * time.Second,
		EventsTimeout:     time.Second,
	}
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		MaxDistanceMeters: cfg.MaxCheckInDistanceMeters,
		BaseCoins:         cfg.BaseCheckInCoins,
		DetailsTTL:        cfg.LocationDetailsTTL,
		StoreTimeout:      cfg.StoreTimeout,
		EventsTimeout:     cfg.EventsTimeout,
	}
}

type Service struct {
	store  *store.Store
	cache  cache.Cache
	events events.Publisher
	opts   Options
	log    *slog.Logger
	now    func() time.Time
	names  ghost.IntN
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithNameSource replaces the random source used for ghost names.
func WithNameSource(r ghost.IntN) Option {
	return func(s *Service) { s.names = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

func New(st *store.Store, c cache.Cache, pub events.Publisher, opts Options, options ...Option) *Service {
	if c == nil {
		c = cache.Noop{}
	}
	if pub == nil {
		pub = events.LogPublisher{}
	}
	s := &Service{
		store:  st,
		cache:  c,
		events: pub,
		opts:   opts,
		log:    slog.Default(),
		now:    time.Now,
		names:  ghost.NewTimeSource(),
	}
	for _, o := range options {
		o(s)
	}
	return s
}

func (s *Service) clock() time.Time { return s.now().UTC() }

func (s *Service) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opts.StoreTimeout)
}

// publish runs after commit; failures are logged and dropped.
func (s *Service) publish(ctx context.Context, topic string, payload any) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.EventsTimeout)
	defer cancel()
	if err := s.events.Publish(ctx, topic, payload); err != nil {
		s.log.Warn("event publish failed", "topic", topic, "error", err)
	}
}

var domainErrors = []error{
	domain.ErrInvalidInput,
	domain.ErrNotFound,
	domain.ErrOutOfRange,
	domain.ErrConflict,
	domain.ErrRateLimited,
	domain.ErrUnavailable,
}

// unavailable passes domain errors through and wraps everything else, such
// as driver errors and deadlines, as ErrUnavailable.
func unavailable(err error) error {
	if err == nil {
		return nil
	}
	for _, d := range domainErrors {
		if errors.Is(err, d) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", domain.ErrUnavailable, err)
}

// Outcome is the metrics label for an operation result.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrOutOfRange):
		return "out_of_range"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrRateLimited):
		return "rate_limited"
	default:
		return "unavailable"
	}
}
