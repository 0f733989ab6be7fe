package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/faktur/internal/auth"
	"github.com/smallbiznis/faktur/internal/clock"
	"github.com/smallbiznis/faktur/internal/config"
	"github.com/smallbiznis/faktur/internal/customer"
	"github.com/smallbiznis/faktur/internal/events"
	"github.com/smallbiznis/faktur/internal/invoice"
	"github.com/smallbiznis/faktur/internal/logger"
	"github.com/smallbiznis/faktur/internal/migration"
	"github.com/smallbiznis/faktur/internal/reminder"
	"github.com/smallbiznis/faktur/internal/reporting"
	"github.com/smallbiznis/faktur/internal/scheduler"
	"github.com/smallbiznis/faktur/internal/seed"
	"github.com/smallbiznis/faktur/internal/server"
	"github.com/smallbiznis/faktur/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var version = "dev"

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		events.Module,

		fx.Invoke(func(log *zap.Logger) {
			log.Info("starting faktur", zap.String("version", version))
		}),
		fx.Invoke(func(conn *gorm.DB, node *snowflake.Node) error {
			if err := migration.Run(conn); err != nil {
				return err
			}
			return seed.EnsureAdminUser(conn, node)
		}),

		auth.Module,
		customer.Module,
		invoice.Module,
		reminder.Module,
		reporting.Module,
		scheduler.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
