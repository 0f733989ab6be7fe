package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/faktur/internal/cache"
	"github.com/smallbiznis/faktur/internal/clock"
	invoicedomain "github.com/smallbiznis/faktur/internal/invoice/domain"
	reportingdomain "github.com/smallbiznis/faktur/internal/reporting/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// summaryTTL bounds how stale a cached dashboard summary may be.
const summaryTTL = 30 * time.Second

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	clock   clock.Clock
	summary *cache.TTL[string, reportingdomain.Summary]
}

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
}

func NewService(p Params) reportingdomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("reporting.service"),
		clock:   p.Clock,
		summary: cache.NewTTL[string, reportingdomain.Summary](),
	}
}

// TotalRevenue sums the totals of every paid invoice.
func (s *Service) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	return s.sumTotals(ctx,
		`SELECT COALESCE(SUM(total), 0) FROM invoices WHERE status = ?`,
		invoicedomain.StatusPaid,
	)
}

// TotalOutstanding sums the totals of every invoice still awaiting payment.
func (s *Service) TotalOutstanding(ctx context.Context) (decimal.Decimal, error) {
	return s.sumTotals(ctx,
		`SELECT COALESCE(SUM(total), 0) FROM invoices WHERE status IN (?, ?)`,
		invoicedomain.StatusUnpaid,
		invoicedomain.StatusOverdue,
	)
}

// TopCustomersByRevenue groups every invoice by customer and returns the
// largest sums first. Customers without invoices are included at zero.
func (s *Service) TopCustomersByRevenue(ctx context.Context, limit int) ([]reportingdomain.CustomerRevenue, error) {
	if limit <= 0 {
		return nil, reportingdomain.ErrInvalidLimit
	}

	var rows []reportingdomain.CustomerRevenue
	err := s.db.WithContext(ctx).Raw(
		`SELECT c.id AS customer_id, c.name AS name, c.email AS email,
		        COALESCE(SUM(i.total), 0) AS revenue
		 FROM customers c
		 LEFT JOIN invoices i ON i.customer_id = c.id
		 GROUP BY c.id, c.name, c.email
		 ORDER BY revenue DESC, c.id ASC
		 LIMIT ?`,
		limit,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Summary bundles the dashboard counters. The overdue count uses the logical
// overdue predicate so a dashboard queried between sweeps still reports
// correctly. Results are cached briefly; dashboards poll.
func (s *Service) Summary(ctx context.Context) (reportingdomain.Summary, error) {
	return s.summary.GetOrLoad("summary", summaryTTL, func() (reportingdomain.Summary, error) {
		return s.loadSummary(ctx)
	})
}

func (s *Service) loadSummary(ctx context.Context) (reportingdomain.Summary, error) {
	revenue, err := s.TotalRevenue(ctx)
	if err != nil {
		return reportingdomain.Summary{}, err
	}
	outstanding, err := s.TotalOutstanding(ctx)
	if err != nil {
		return reportingdomain.Summary{}, err
	}

	var overdue int64
	err = s.db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM invoices
		 WHERE status = ? OR (status = ? AND due_date < ?)`,
		invoicedomain.StatusOverdue,
		invoicedomain.StatusUnpaid,
		s.clock.Now(),
	).Scan(&overdue).Error
	if err != nil {
		return reportingdomain.Summary{}, err
	}

	return reportingdomain.Summary{
		TotalRevenue:     revenue,
		TotalOutstanding: outstanding,
		OverdueCount:     overdue,
	}, nil
}

func (s *Service) sumTotals(ctx context.Context, query string, args ...any) (decimal.Decimal, error) {
	var total decimal.Decimal
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&total).Error; err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
