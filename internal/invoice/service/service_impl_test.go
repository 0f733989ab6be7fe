package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/faktur/internal/clock"
	"github.com/smallbiznis/faktur/internal/events"
	invoicedomain "github.com/smallbiznis/faktur/internal/invoice/domain"
	"github.com/smallbiznis/faktur/internal/migration"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	if err := migration.Run(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T, db *gorm.DB) *Service {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return &Service{
		db:     db,
		log:    zap.NewNop(),
		genID:  node,
		clock:  clock.Fixed(testNow),
		outbox: events.NewOutbox(db, node),
		prefix: "INV",
	}
}

func insertCustomer(t *testing.T, db *gorm.DB, id int64, name string) {
	t.Helper()
	if err := db.Exec(
		`INSERT INTO customers (id, name, email, created_at) VALUES (?, ?, ?, ?)`,
		id, name, "billing@example.com", testNow,
	).Error; err != nil {
		t.Fatalf("insert customer: %v", err)
	}
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCreateComputesTotals(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	insertCustomer(t, db, 100, "Acme")

	invoice, err := svc.Create(context.Background(), invoicedomain.CreateRequest{
		CustomerID: 100,
		IssueDate:  testNow,
		DueDate:    testNow.AddDate(0, 0, 14),
		Tax:        dec("12.50"),
		Items: []invoicedomain.ItemInput{
			{Description: "Design work", Quantity: dec("10"), UnitPrice: dec("20.00")},
			{Description: "Hosting", Quantity: dec("2"), UnitPrice: dec("25.00")},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if got := invoice.Subtotal.StringFixed(2); got != "250.00" {
		t.Fatalf("subtotal = %s, want 250.00", got)
	}
	if got := invoice.Total.StringFixed(2); got != "262.50" {
		t.Fatalf("total = %s, want 262.50", got)
	}
	if invoice.Status != invoicedomain.StatusUnpaid {
		t.Fatalf("status = %s, want Unpaid", invoice.Status)
	}
	if invoice.InvoiceNumber != "INV2025-0001" {
		t.Fatalf("invoice number = %s, want INV2025-0001", invoice.InvoiceNumber)
	}

	var itemCount int64
	if err := db.Table("invoice_items").Where("invoice_id = ?", invoice.ID).Count(&itemCount).Error; err != nil {
		t.Fatalf("count items: %v", err)
	}
	if itemCount != 2 {
		t.Fatalf("persisted items = %d, want 2", itemCount)
	}
}

func TestCreateAllocatesSequentialNumbers(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	insertCustomer(t, db, 100, "Acme")

	want := []string{"INV2025-0001", "INV2025-0002", "INV2025-0003"}
	for _, expected := range want {
		invoice, err := svc.Create(context.Background(), invoicedomain.CreateRequest{
			CustomerID: 100,
			IssueDate:  testNow,
			DueDate:    testNow.AddDate(0, 0, 14),
			Items: []invoicedomain.ItemInput{
				{Description: "Work", Quantity: dec("1"), UnitPrice: dec("100")},
			},
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if invoice.InvoiceNumber != expected {
			t.Fatalf("invoice number = %s, want %s", invoice.InvoiceNumber, expected)
		}
	}
}

func TestCreateValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	insertCustomer(t, db, 100, "Acme")

	base := invoicedomain.CreateRequest{
		CustomerID: 100,
		IssueDate:  testNow,
		DueDate:    testNow.AddDate(0, 0, 14),
		Items: []invoicedomain.ItemInput{
			{Description: "Work", Quantity: dec("1"), UnitPrice: dec("100")},
		},
	}

	cases := []struct {
		name    string
		mutate  func(r *invoicedomain.CreateRequest)
		wantErr error
	}{
		{"missing customer", func(r *invoicedomain.CreateRequest) { r.CustomerID = 0 }, invoicedomain.ErrInvalidCustomer},
		{"no items", func(r *invoicedomain.CreateRequest) { r.Items = nil }, invoicedomain.ErrMissingItems},
		{"zero quantity", func(r *invoicedomain.CreateRequest) { r.Items[0].Quantity = decimal.Zero }, invoicedomain.ErrInvalidQuantity},
		{"negative price", func(r *invoicedomain.CreateRequest) { r.Items[0].UnitPrice = dec("-1") }, invoicedomain.ErrInvalidUnitPrice},
		{"negative tax", func(r *invoicedomain.CreateRequest) { r.Tax = dec("-1") }, invoicedomain.ErrInvalidTax},
		{"blank description", func(r *invoicedomain.CreateRequest) { r.Items[0].Description = "  " }, invoicedomain.ErrInvalidItem},
	}

	for _, tc := range cases {
		req := base
		req.Items = []invoicedomain.ItemInput{base.Items[0]}
		tc.mutate(&req)
		if _, err := svc.Create(context.Background(), req); !errors.Is(err, tc.wantErr) {
			t.Fatalf("%s: err = %v, want %v", tc.name, err, tc.wantErr)
		}
	}
}

func TestUpdateReplacesItemSet(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	insertCustomer(t, db, 100, "Acme")

	invoice, err := svc.Create(context.Background(), invoicedomain.CreateRequest{
		CustomerID: 100,
		IssueDate:  testNow,
		DueDate:    testNow.AddDate(0, 0, 14),
		Items: []invoicedomain.ItemInput{
			{Description: "Old line A", Quantity: dec("1"), UnitPrice: dec("50")},
			{Description: "Old line B", Quantity: dec("1"), UnitPrice: dec("50")},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Update(context.Background(), invoicedomain.UpdateRequest{
		ID:         invoice.ID,
		CustomerID: 100,
		IssueDate:  testNow,
		DueDate:    testNow.AddDate(0, 0, 30),
		Tax:        dec("5.00"),
		Items: []invoicedomain.ItemInput{
			{Description: "New line", Quantity: dec("3"), UnitPrice: dec("30.00")},
		},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if got := updated.Total.StringFixed(2); got != "95.00" {
		t.Fatalf("total = %s, want 95.00", got)
	}
	if updated.InvoiceNumber != invoice.InvoiceNumber {
		t.Fatalf("invoice number changed on update: %s -> %s", invoice.InvoiceNumber, updated.InvoiceNumber)
	}

	fetched, err := svc.GetByID(context.Background(), invoice.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(fetched.Items) != 1 || fetched.Items[0].Description != "New line" {
		t.Fatalf("items = %+v, want single New line", fetched.Items)
	}
}

func TestUpdateMissingInvoice(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	_, err := svc.Update(context.Background(), invoicedomain.UpdateRequest{
		ID:         12345,
		CustomerID: 100,
		IssueDate:  testNow,
		DueDate:    testNow,
		Items: []invoicedomain.ItemInput{
			{Description: "Work", Quantity: dec("1"), UnitPrice: dec("1")},
		},
	})
	if !errors.Is(err, invoicedomain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteRemovesItems(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	insertCustomer(t, db, 100, "Acme")

	invoice, err := svc.Create(context.Background(), invoicedomain.CreateRequest{
		CustomerID: 100,
		IssueDate:  testNow,
		DueDate:    testNow.AddDate(0, 0, 14),
		Items: []invoicedomain.ItemInput{
			{Description: "Work", Quantity: dec("1"), UnitPrice: dec("100")},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(context.Background(), invoice.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var itemCount int64
	if err := db.Table("invoice_items").Where("invoice_id = ?", invoice.ID).Count(&itemCount).Error; err != nil {
		t.Fatalf("count items: %v", err)
	}
	if itemCount != 0 {
		t.Fatalf("orphaned items = %d, want 0", itemCount)
	}

	if err := svc.Delete(context.Background(), invoice.ID); !errors.Is(err, invoicedomain.ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestDeleteKeepsReminderHistory(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	insertCustomer(t, db, 100, "Acme")

	invoice, err := svc.Create(context.Background(), invoicedomain.CreateRequest{
		CustomerID: 100,
		IssueDate:  testNow.AddDate(0, 0, -30),
		DueDate:    testNow.AddDate(0, 0, -10),
		Items: []invoicedomain.ItemInput{
			{Description: "Work", Quantity: dec("1"), UnitPrice: dec("100")},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := db.Exec(
		`INSERT INTO reminder_log (id, invoice_id, sent_at, method, result) VALUES (?, ?, ?, 'Email', 'Sent successfully')`,
		1, invoice.ID, testNow.AddDate(0, 0, -5),
	).Error; err != nil {
		t.Fatalf("insert reminder log: %v", err)
	}

	if err := svc.Delete(context.Background(), invoice.ID); err != nil {
		t.Fatalf("delete invoice with reminder history: %v", err)
	}

	if _, err := svc.GetByID(context.Background(), invoice.ID); !errors.Is(err, invoicedomain.ErrNotFound) {
		t.Fatalf("get after delete err = %v, want ErrNotFound", err)
	}

	var logCount int64
	if err := db.Table("reminder_log").Where("invoice_id = ?", invoice.ID).Count(&logCount).Error; err != nil {
		t.Fatalf("count reminder log: %v", err)
	}
	if logCount != 1 {
		t.Fatalf("reminder log rows = %d, want 1", logCount)
	}
}

func TestMarkPaidIdempotentAndSweepSafe(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	insertCustomer(t, db, 100, "Acme")

	invoice, err := svc.Create(context.Background(), invoicedomain.CreateRequest{
		CustomerID: 100,
		IssueDate:  testNow.AddDate(0, 0, -30),
		DueDate:    testNow.AddDate(0, 0, -10),
		Items: []invoicedomain.ItemInput{
			{Description: "Work", Quantity: dec("1"), UnitPrice: dec("100")},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.MarkPaid(context.Background(), invoice.ID); err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if err := svc.MarkPaid(context.Background(), invoice.ID); err != nil {
		t.Fatalf("second mark paid: %v", err)
	}

	promoted, err := svc.RunOverdueSweep(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if promoted != 0 {
		t.Fatalf("sweep promoted %d paid invoices, want 0", promoted)
	}

	fetched, err := svc.GetByID(context.Background(), invoice.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.Status != invoicedomain.StatusPaid {
		t.Fatalf("status = %s, want Paid", fetched.Status)
	}
}

func TestRunOverdueSweep(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	insertCustomer(t, db, 100, "Acme")

	pastDue, err := svc.Create(context.Background(), invoicedomain.CreateRequest{
		CustomerID: 100,
		IssueDate:  testNow.AddDate(0, 0, -30),
		DueDate:    testNow.AddDate(0, 0, -5),
		Items: []invoicedomain.ItemInput{
			{Description: "Work", Quantity: dec("1"), UnitPrice: dec("100")},
		},
	})
	if err != nil {
		t.Fatalf("create past due: %v", err)
	}
	current, err := svc.Create(context.Background(), invoicedomain.CreateRequest{
		CustomerID: 100,
		IssueDate:  testNow,
		DueDate:    testNow.AddDate(0, 0, 14),
		Items: []invoicedomain.ItemInput{
			{Description: "Work", Quantity: dec("1"), UnitPrice: dec("100")},
		},
	})
	if err != nil {
		t.Fatalf("create current: %v", err)
	}

	promoted, err := svc.RunOverdueSweep(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if promoted != 1 {
		t.Fatalf("promoted = %d, want 1", promoted)
	}

	again, err := svc.RunOverdueSweep(context.Background())
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if again != 0 {
		t.Fatalf("second sweep promoted = %d, want 0", again)
	}

	overdue, err := svc.GetByID(context.Background(), pastDue.ID)
	if err != nil {
		t.Fatalf("get overdue: %v", err)
	}
	if overdue.Status != invoicedomain.StatusOverdue {
		t.Fatalf("status = %s, want Overdue", overdue.Status)
	}
	untouched, err := svc.GetByID(context.Background(), current.ID)
	if err != nil {
		t.Fatalf("get current: %v", err)
	}
	if untouched.Status != invoicedomain.StatusUnpaid {
		t.Fatalf("status = %s, want Unpaid", untouched.Status)
	}
}

func TestListOverdueUsesLogicalPredicate(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	insertCustomer(t, db, 100, "Acme")

	_, err := svc.Create(context.Background(), invoicedomain.CreateRequest{
		CustomerID: 100,
		IssueDate:  testNow.AddDate(0, 0, -30),
		DueDate:    testNow.AddDate(0, 0, -5),
		Items: []invoicedomain.ItemInput{
			{Description: "Work", Quantity: dec("1"), UnitPrice: dec("100")},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// No sweep has run; the invoice is still labeled Unpaid.
	overdue, err := svc.ListOverdue(context.Background())
	if err != nil {
		t.Fatalf("list overdue: %v", err)
	}
	if len(overdue) != 1 {
		t.Fatalf("overdue count = %d, want 1", len(overdue))
	}
	if overdue[0].Customer == nil || overdue[0].Customer.Name != "Acme" {
		t.Fatalf("customer not attached: %+v", overdue[0].Customer)
	}
}

func TestMarkUnpaidReopens(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	insertCustomer(t, db, 100, "Acme")

	invoice, err := svc.Create(context.Background(), invoicedomain.CreateRequest{
		CustomerID: 100,
		IssueDate:  testNow,
		DueDate:    testNow.AddDate(0, 0, 14),
		Items: []invoicedomain.ItemInput{
			{Description: "Work", Quantity: dec("1"), UnitPrice: dec("100")},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.MarkPaid(context.Background(), invoice.ID); err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if err := svc.MarkUnpaid(context.Background(), invoice.ID); err != nil {
		t.Fatalf("mark unpaid: %v", err)
	}

	fetched, err := svc.GetByID(context.Background(), invoice.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.Status != invoicedomain.StatusUnpaid {
		t.Fatalf("status = %s, want Unpaid", fetched.Status)
	}

	if err := svc.MarkUnpaid(context.Background(), 999999); !errors.Is(err, invoicedomain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
