package logger

import (
	"context"

	"github.com/smallbiznis/faktur/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("logger",
	fx.Provide(New),
	fx.Invoke(registerGlobals),
)

// New builds the application logger. Production gets JSON output,
// everything else the development console encoder.
func New(cfg config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func registerGlobals(lc fx.Lifecycle, log *zap.Logger) {
	zap.ReplaceGlobals(log)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			_ = log.Sync()
			return nil
		},
	})
}
