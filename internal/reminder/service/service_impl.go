package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"text/template"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/faktur/internal/clock"
	"github.com/smallbiznis/faktur/internal/config"
	"github.com/smallbiznis/faktur/internal/events"
	invoicedomain "github.com/smallbiznis/faktur/internal/invoice/domain"
	reminderdomain "github.com/smallbiznis/faktur/internal/reminder/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var bodyTemplate = template.Must(template.New("reminder").Parse(`Dear {{.CustomerName}},

Our records show invoice {{.InvoiceNumber}} (issued {{.IssueDate}}, due {{.DueDate}}) is outstanding.

Amount due: {{.AmountDue}}

Please arrange payment at your earliest convenience.

Thank you,
{{.CompanyName}}
`))

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock
	sender reminderdomain.Sender
	outbox *events.Outbox
	cfg    config.Config
}

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Sender reminderdomain.Sender
	Outbox *events.Outbox
	Config config.Config
}

func NewService(p Params) reminderdomain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("reminder.service"),
		genID:  p.GenID,
		clock:  p.Clock,
		sender: p.Sender,
		outbox: p.Outbox,
		cfg:    p.Config,
	}
}

// candidate is one overdue invoice joined with its customer contact.
type candidate struct {
	ID            snowflake.ID    `gorm:"column:id"`
	InvoiceNumber string          `gorm:"column:invoice_number"`
	IssueDate     time.Time       `gorm:"column:issue_date"`
	DueDate       time.Time       `gorm:"column:due_date"`
	Total         decimal.Decimal `gorm:"column:total"`
	CustomerName  string          `gorm:"column:customer_name"`
	CustomerEmail string          `gorm:"column:customer_email"`
}

// Run performs one batch pass. Candidates are processed strictly in
// sequence; a failed send is recorded and skipped, never escalated. The
// semantics are at-least-once: a crash between a successful send and its log
// write can cause one duplicate on the next run.
func (s *Service) Run(ctx context.Context) (reminderdomain.RunResult, error) {
	if s.sender == nil {
		return reminderdomain.RunResult{}, reminderdomain.ErrSenderUnavailable
	}

	now := s.clock.Now()
	candidates, err := s.listCandidates(ctx, now)
	if err != nil {
		return reminderdomain.RunResult{}, err
	}

	var result reminderdomain.RunResult
	for _, cand := range candidates {
		eligible, err := s.eligible(ctx, cand, now)
		if err != nil {
			return result, err
		}
		if !eligible {
			continue
		}

		result.Attempted++
		if err := s.send(ctx, cand); err != nil {
			result.Failed++
			s.log.Warn("reminder send failed",
				zap.String("invoice_number", cand.InvoiceNumber),
				zap.Error(err))
			s.appendLog(ctx, cand.ID, now, reminderdomain.ResultFailed)
			continue
		}

		result.Sent++
		s.log.Info("reminder sent",
			zap.String("invoice_number", cand.InvoiceNumber),
			zap.String("to", cand.CustomerEmail))
		s.appendLog(ctx, cand.ID, now, reminderdomain.ResultSent)
	}

	if result.Attempted > 0 {
		_ = s.outbox.Publish(ctx, events.Event{
			Type: events.EventReminderRun,
			Payload: map[string]any{
				"attempted": result.Attempted,
				"sent":      result.Sent,
				"failed":    result.Failed,
			},
		})
	}
	return result, nil
}

// listCandidates selects invoices still awaiting payment, due before today,
// whose customer has an email address. The persisted Overdue label and the
// not-yet-swept Unpaid-past-due state are both included so a sweep run just
// before the batch cannot starve it.
func (s *Service) listCandidates(ctx context.Context, now time.Time) ([]candidate, error) {
	var candidates []candidate
	err := s.db.WithContext(ctx).Raw(
		`SELECT i.id, i.invoice_number, i.issue_date, i.due_date, i.total,
		        c.name AS customer_name, c.email AS customer_email
		 FROM invoices i
		 JOIN customers c ON c.id = i.customer_id
		 WHERE i.status IN (?, ?)
		   AND i.due_date < ?
		   AND c.email IS NOT NULL
		   AND c.email <> ''
		 ORDER BY i.due_date ASC, i.id ASC`,
		invoicedomain.StatusUnpaid,
		invoicedomain.StatusOverdue,
		startOfDay(now),
	).Scan(&candidates).Error
	if err != nil {
		return nil, err
	}
	return candidates, nil
}

// eligible applies the throttling rules: under the reminder cap, far enough
// past due, and far enough past the previous reminder.
func (s *Service) eligible(ctx context.Context, cand candidate, now time.Time) (bool, error) {
	var sent int64
	if err := s.db.WithContext(ctx).
		Model(&reminderdomain.ReminderLog{}).
		Where("invoice_id = ?", cand.ID).
		Count(&sent).Error; err != nil {
		return false, err
	}
	if sent >= int64(s.cfg.Reminder.MaxReminders) {
		return false, nil
	}

	if daysBetween(cand.DueDate, now) < s.cfg.Reminder.DaysAfterDue {
		return false, nil
	}

	var last reminderdomain.ReminderLog
	err := s.db.WithContext(ctx).
		Where("invoice_id = ?", cand.ID).
		Order("sent_at DESC").
		First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return daysBetween(last.SentAt, now) >= s.cfg.Reminder.IntervalDays, nil
}

func (s *Service) send(ctx context.Context, cand candidate) error {
	var body bytes.Buffer
	err := bodyTemplate.Execute(&body, map[string]string{
		"CustomerName":  cand.CustomerName,
		"InvoiceNumber": cand.InvoiceNumber,
		"IssueDate":     cand.IssueDate.Format("2006-01-02"),
		"DueDate":       cand.DueDate.Format("2006-01-02"),
		"AmountDue":     cand.Total.StringFixed(2),
		"CompanyName":   s.cfg.Company.Name,
	})
	if err != nil {
		return err
	}

	return s.sender.Send(ctx, reminderdomain.Message{
		ToName:  cand.CustomerName,
		ToEmail: cand.CustomerEmail,
		Subject: fmt.Sprintf("[Reminder] Invoice %s is overdue", cand.InvoiceNumber),
		Body:    body.String(),
	})
}

// appendLog records the attempt. The log is the source of truth for
// throttling, so a write failure is logged loudly but does not abort the
// batch.
func (s *Service) appendLog(ctx context.Context, invoiceID snowflake.ID, now time.Time, result string) {
	entry := reminderdomain.ReminderLog{
		ID:        s.genID.Generate(),
		InvoiceID: invoiceID,
		SentAt:    now,
		Method:    reminderdomain.MethodEmail,
		Result:    result,
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		s.log.Error("failed to append reminder log",
			zap.Int64("invoice_id", int64(invoiceID)),
			zap.Error(err))
	}
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// daysBetween counts whole calendar days from a to b, ignoring time of day.
func daysBetween(a, b time.Time) int {
	return int(startOfDay(b.UTC()).Sub(startOfDay(a.UTC())).Hours() / 24)
}
