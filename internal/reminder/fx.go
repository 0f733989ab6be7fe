package reminder

import (
	"github.com/smallbiznis/faktur/internal/reminder/domain"
	"github.com/smallbiznis/faktur/internal/reminder/mail"
	"github.com/smallbiznis/faktur/internal/reminder/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reminder.service",
	fx.Provide(
		fx.Annotate(mail.NewSMTPSender, fx.As(new(domain.Sender))),
		service.NewService,
	),
)
