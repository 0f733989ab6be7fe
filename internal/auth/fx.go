package auth

import (
	"github.com/smallbiznis/faktur/internal/auth/service"
	"github.com/smallbiznis/faktur/internal/auth/token"
	"github.com/smallbiznis/faktur/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(
		func(cfg config.Config) (*token.Manager, error) {
			return token.NewManager(cfg.Auth.Secret, 0)
		},
		service.NewService,
	),
)
