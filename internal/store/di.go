package store

import (
	"log/slog"

	"github.com/samber/do/v2"
	"gorm.io/gorm"

	"vibesrm/internal/config"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*gorm.DB, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*slog.Logger](i)
		db, err := OpenPostgres(PostgresConfig{DSN: cfg.DatabaseURL, LogSQL: cfg.LogSQL}, log)
		if err != nil {
			return nil, err
		}
		if cfg.AutoMigrate {
			if err := AutoMigrate(db); err != nil {
				return nil, err
			}
		}
		return db, nil
	})
	do.Provide(injector, func(i do.Injector) (*Store, error) {
		return New(do.MustInvoke[*gorm.DB](i)), nil
	})
}
