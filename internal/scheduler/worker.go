package scheduler

import (
	"context"
	"time"

	"github.com/smallbiznis/faktur/internal/config"
	invoicedomain "github.com/smallbiznis/faktur/internal/invoice/domain"
	reminderdomain "github.com/smallbiznis/faktur/internal/reminder/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Worker runs the overdue sweep and the reminder batch on a fixed interval
// inside the API server. It is the in-process alternative to running
// remindertask from cron; deployments pick one, not both.
type Worker struct {
	log         *zap.Logger
	invoiceSvc  invoicedomain.Service
	reminderSvc reminderdomain.Service
	cfg         config.Config
}

type Params struct {
	fx.In

	Log         *zap.Logger
	InvoiceSvc  invoicedomain.Service
	ReminderSvc reminderdomain.Service
	Config      config.Config
}

func NewWorker(p Params) *Worker {
	return &Worker{
		log:         p.Log.Named("scheduler"),
		invoiceSvc:  p.InvoiceSvc,
		reminderSvc: p.ReminderSvc,
		cfg:         p.Config,
	}
}

func (w *Worker) RunForever(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.Scheduler.Interval)
	defer ticker.Stop()

	for {
		if err := w.RunOnce(ctx); err != nil {
			w.log.Warn("scheduled run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce performs one sweep-then-notify pass. The reminder batch is skipped
// when mail is not configured; the sweep still runs so statuses stay honest.
func (w *Worker) RunOnce(ctx context.Context) error {
	runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	promoted, err := w.invoiceSvc.RunOverdueSweep(runCtx)
	if err != nil {
		return err
	}
	if promoted > 0 {
		w.log.Info("overdue sweep promoted invoices", zap.Int64("promoted", promoted))
	}

	if !w.cfg.MailConfigured() {
		return nil
	}

	result, err := w.reminderSvc.Run(runCtx)
	if err != nil {
		return err
	}
	if result.Attempted > 0 {
		w.log.Info("reminder batch complete",
			zap.Int("attempted", result.Attempted),
			zap.Int("sent", result.Sent),
			zap.Int("failed", result.Failed))
	}
	return nil
}
