package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/faktur/internal/clock"
	"github.com/smallbiznis/faktur/internal/config"
	"github.com/smallbiznis/faktur/internal/events"
	invoiceservice "github.com/smallbiznis/faktur/internal/invoice/service"
	"github.com/smallbiznis/faktur/internal/logger"
	"github.com/smallbiznis/faktur/internal/migration"
	"github.com/smallbiznis/faktur/internal/reminder/mail"
	reminderservice "github.com/smallbiznis/faktur/internal/reminder/service"
	"github.com/smallbiznis/faktur/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "remindertask",
	Short: "Run one overdue sweep and reminder batch, then exit",
	Long: `remindertask is the scheduled companion to the faktur API server.

Each run promotes past-due unpaid invoices to Overdue, then sends one
reminder batch over SMTP, honoring the per-invoice reminder cap and the
spacing between reminders. It is safe to run from cron: configuration
problems and an unreachable database are reported without a failing exit
status so a misconfigured host does not page anyone at 2am.`,
	Version:      version,
	RunE:         run,
	SilenceUsage: true,
}

func init() {
	rootCmd.Flags().Duration("timeout", 5*time.Minute, "Overall run deadline")
	rootCmd.Flags().Bool("skip-sweep", false, "Skip the overdue sweep and only send reminders")
}

func run(cmd *cobra.Command, args []string) error {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	skipSweep, _ := cmd.Flags().GetBool("skip-sweep")

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	if !cfg.MailConfigured() {
		log.Warn("smtp host or company email not configured, nothing to do")
		fmt.Println("Reminder task skipped: mail is not configured.")
		return nil
	}

	conn, err := db.New(cfg, log)
	if err != nil {
		log.Warn("database unreachable", zap.Error(err))
		fmt.Println("Reminder task skipped: database is unreachable.")
		return nil
	}

	if err := migration.Run(conn); err != nil {
		return err
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	clk := clock.SystemClock{}
	outbox := events.NewOutbox(conn, node)

	if !skipSweep {
		invoiceSvc := invoiceservice.NewService(invoiceservice.Params{
			DB:     conn,
			Log:    log,
			GenID:  node,
			Clock:  clk,
			Outbox: outbox,
			Config: cfg,
		})
		promoted, err := invoiceSvc.RunOverdueSweep(ctx)
		if err != nil {
			return err
		}
		log.Info("overdue sweep complete", zap.Int64("promoted", promoted))
	}

	reminderSvc := reminderservice.NewService(reminderservice.Params{
		DB:     conn,
		Log:    log,
		GenID:  node,
		Clock:  clk,
		Sender: mail.NewSMTPSender(cfg, log),
		Outbox: outbox,
		Config: cfg,
	})

	result, err := reminderSvc.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Completed. Sent: %d, Failed: %d\n", result.Sent, result.Failed)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
