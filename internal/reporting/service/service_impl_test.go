package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/smallbiznis/faktur/internal/cache"
	"github.com/smallbiznis/faktur/internal/clock"
	"github.com/smallbiznis/faktur/internal/migration"
	reportingdomain "github.com/smallbiznis/faktur/internal/reporting/domain"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func setupReportingTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := migration.Run(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestService(db *gorm.DB) *Service {
	return &Service{
		db:      db,
		log:     zap.NewNop(),
		clock:   clock.Fixed(testNow),
		summary: cache.NewTTL[string, reportingdomain.Summary](),
	}
}

func insertReportCustomer(t *testing.T, db *gorm.DB, id int64, name string) {
	t.Helper()
	if err := db.Exec(
		`INSERT INTO customers (id, name, created_at) VALUES (?, ?, ?)`,
		id, name, testNow,
	).Error; err != nil {
		t.Fatalf("insert customer: %v", err)
	}
}

func insertReportInvoice(t *testing.T, db *gorm.DB, id, customerID int64, total, status string, due time.Time) {
	t.Helper()
	if err := db.Exec(
		`INSERT INTO invoices (id, invoice_number, customer_id, issue_date, due_date, subtotal, tax, total, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?, ?, ?)`,
		id, fmt.Sprintf("INV2025-%04d", id), customerID, due.AddDate(0, 0, -14), due, total, total, status, testNow, testNow,
	).Error; err != nil {
		t.Fatalf("insert invoice: %v", err)
	}
}

func TestRevenueSums(t *testing.T) {
	db := setupReportingTestDB(t)
	svc := newTestService(db)

	insertReportCustomer(t, db, 100, "Acme")
	insertReportInvoice(t, db, 1, 100, "100.00", "Paid", testNow.AddDate(0, 0, -20))
	insertReportInvoice(t, db, 2, 100, "50.50", "Paid", testNow.AddDate(0, 0, -10))
	insertReportInvoice(t, db, 3, 100, "75.00", "Unpaid", testNow.AddDate(0, 0, 10))
	insertReportInvoice(t, db, 4, 100, "25.00", "Overdue", testNow.AddDate(0, 0, -5))

	revenue, err := svc.TotalRevenue(context.Background())
	if err != nil {
		t.Fatalf("total revenue: %v", err)
	}
	if got := revenue.StringFixed(2); got != "150.50" {
		t.Fatalf("revenue = %s, want 150.50", got)
	}

	outstanding, err := svc.TotalOutstanding(context.Background())
	if err != nil {
		t.Fatalf("total outstanding: %v", err)
	}
	if got := outstanding.StringFixed(2); got != "100.00" {
		t.Fatalf("outstanding = %s, want 100.00", got)
	}
}

func TestRevenueEmptyDatabase(t *testing.T) {
	db := setupReportingTestDB(t)
	svc := newTestService(db)

	revenue, err := svc.TotalRevenue(context.Background())
	if err != nil {
		t.Fatalf("total revenue: %v", err)
	}
	if !revenue.IsZero() {
		t.Fatalf("revenue = %s, want 0", revenue)
	}
}

func TestTopCustomersByRevenue(t *testing.T) {
	db := setupReportingTestDB(t)
	svc := newTestService(db)

	insertReportCustomer(t, db, 100, "Big Spender")
	insertReportCustomer(t, db, 200, "Small Spender")
	insertReportCustomer(t, db, 300, "No Invoices")
	insertReportInvoice(t, db, 1, 100, "500.00", "Paid", testNow)
	insertReportInvoice(t, db, 2, 100, "250.00", "Unpaid", testNow)
	insertReportInvoice(t, db, 3, 200, "100.00", "Paid", testNow)

	rows, err := svc.TopCustomersByRevenue(context.Background(), 10)
	if err != nil {
		t.Fatalf("top customers: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0].Name != "Big Spender" || rows[0].Revenue.StringFixed(2) != "750.00" {
		t.Fatalf("first row = %+v, want Big Spender at 750.00", rows[0])
	}
	if rows[1].Name != "Small Spender" {
		t.Fatalf("second row = %+v, want Small Spender", rows[1])
	}
	if rows[2].Name != "No Invoices" || !rows[2].Revenue.IsZero() {
		t.Fatalf("third row = %+v, want No Invoices at zero", rows[2])
	}
}

func TestTopCustomersInvalidLimit(t *testing.T) {
	db := setupReportingTestDB(t)
	svc := newTestService(db)

	if _, err := svc.TopCustomersByRevenue(context.Background(), 0); !errors.Is(err, reportingdomain.ErrInvalidLimit) {
		t.Fatalf("err = %v, want ErrInvalidLimit", err)
	}
}

func TestSummaryCountsLogicalOverdue(t *testing.T) {
	db := setupReportingTestDB(t)
	svc := newTestService(db)

	insertReportCustomer(t, db, 100, "Acme")
	insertReportInvoice(t, db, 1, 100, "100.00", "Paid", testNow.AddDate(0, 0, -20))
	// Swept and labeled.
	insertReportInvoice(t, db, 2, 100, "50.00", "Overdue", testNow.AddDate(0, 0, -10))
	// Past due but not yet swept.
	insertReportInvoice(t, db, 3, 100, "25.00", "Unpaid", testNow.AddDate(0, 0, -1))
	// Not due yet.
	insertReportInvoice(t, db, 4, 100, "10.00", "Unpaid", testNow.AddDate(0, 0, 10))

	summary, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.OverdueCount != 2 {
		t.Fatalf("overdue count = %d, want 2", summary.OverdueCount)
	}
	if got := summary.TotalRevenue.StringFixed(2); got != "100.00" {
		t.Fatalf("revenue = %s, want 100.00", got)
	}
	if got := summary.TotalOutstanding.StringFixed(2); got != "85.00" {
		t.Fatalf("outstanding = %s, want 85.00", got)
	}
}
