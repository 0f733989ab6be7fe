package db

import (
	"fmt"

	"github.com/smallbiznis/faktur/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var Module = fx.Module("db",
	fx.Provide(New),
)

// New opens the configured database. Error translation is enabled so that
// constraint violations surface as gorm sentinel errors.
func New(cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.Database.DSN)
	case "sqlite", "":
		dialector = sqlite.Open(cfg.Database.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if cfg.Database.Driver != "postgres" {
		if err := conn.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, err
		}
	}

	log.Info("database connected", zap.String("driver", cfg.Database.Driver))
	return conn, nil
}
