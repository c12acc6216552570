package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/do/v2"
	"gorm.io/gorm"

	"vibesrm/internal/cache"
	"vibesrm/internal/config"
	"vibesrm/internal/events"
	"vibesrm/internal/observability/logging"
	"vibesrm/internal/observability/metrics"
	"vibesrm/internal/seed"
	"vibesrm/internal/service"
	"vibesrm/internal/store"
	transport "vibesrm/internal/transport/http"
)

const serviceName = "vibesrm"

func main() {
	if err := run(); err != nil {
		slog.Error("vibesrm exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	logger := logging.NewLogger(logging.Config{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
	})
	slog.SetDefault(logger)
	metrics.MustRegister(serviceName, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("startup: building dependency graph")
	injector, redisClient := setupDI(ctx, &cfg, logger)
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error("redis close error", "error", err)
			}
		}()
	}

	db, err := do.Invoke[*gorm.DB](injector)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer closeDB(db, logger)

	if cfg.SeedFile != "" {
		st := do.MustInvoke[*store.Store](injector)
		n, err := seed.LoadFile(ctx, st, cfg.SeedFile)
		if err != nil {
			return fmt.Errorf("seed locations from %s: %w", cfg.SeedFile, err)
		}
		logger.Info("seeded locations", "count", n, "file", cfg.SeedFile)
	}

	handler, err := do.Invoke[http.Handler](injector)
	if err != nil {
		return fmt.Errorf("build http handler: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("vibesrm listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// setupDI registers every provider. The redis client is returned so the
// caller can close it; it is nil when REDIS_ADDR is unset.
func setupDI(ctx context.Context, cfg *config.Config, logger *slog.Logger) (do.Injector, *redis.Client) {
	injector := do.New()
	var client *redis.Client

	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, logger)

	if cfg.RedisAddr != "" {
		client = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := client.Ping(pingCtx).Err(); err != nil {
			// Cache and events fail open on redis errors.
			logger.Warn("redis ping failed", "error", err, "addr", cfg.RedisAddr)
		}
		cancel()
		do.ProvideValue(injector, client)
	}

	store.RegisterDI(injector)
	cache.RegisterDI(injector)
	events.RegisterDI(injector)
	service.RegisterDI(injector)
	transport.RegisterDI(injector)

	return injector, client
}

func closeDB(db *gorm.DB, logger *slog.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}
}
