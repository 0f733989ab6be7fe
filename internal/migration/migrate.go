package migration

import "gorm.io/gorm"

// statements are idempotent and ordered parent-first so foreign keys resolve.
var statements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		name TEXT,
		role TEXT NOT NULL DEFAULT 'staff',
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS customers (
		id BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT,
		postcode TEXT,
		email TEXT,
		phone TEXT,
		notes TEXT,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS invoices (
		id BIGINT PRIMARY KEY,
		invoice_number TEXT NOT NULL,
		customer_id BIGINT NOT NULL REFERENCES customers(id),
		issue_date TIMESTAMP NOT NULL,
		due_date TIMESTAMP NOT NULL,
		subtotal NUMERIC(12,2) NOT NULL DEFAULT 0,
		tax NUMERIC(12,2) NOT NULL DEFAULT 0,
		total NUMERIC(12,2) NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'Unpaid',
		notes TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_invoices_invoice_number ON invoices (invoice_number)`,
	`CREATE INDEX IF NOT EXISTS ix_invoices_customer_id ON invoices (customer_id)`,
	`CREATE INDEX IF NOT EXISTS ix_invoices_status_due_date ON invoices (status, due_date)`,
	`CREATE TABLE IF NOT EXISTS invoice_items (
		id BIGINT PRIMARY KEY,
		invoice_id BIGINT NOT NULL REFERENCES invoices(id),
		description TEXT NOT NULL,
		quantity NUMERIC(12,2) NOT NULL,
		unit_price NUMERIC(12,2) NOT NULL,
		line_total NUMERIC(12,2) NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS ix_invoice_items_invoice_id ON invoice_items (invoice_id)`,
	// reminder_log carries no foreign key on purpose: log rows are a
	// historical record and must outlive the invoice they reference.
	`CREATE TABLE IF NOT EXISTS reminder_log (
		id BIGINT PRIMARY KEY,
		invoice_id BIGINT NOT NULL,
		sent_at TIMESTAMP NOT NULL,
		method TEXT NOT NULL DEFAULT 'Email',
		result TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS ix_reminder_log_invoice_id ON reminder_log (invoice_id)`,
	`CREATE TABLE IF NOT EXISTS invoice_events (
		id BIGINT PRIMARY KEY,
		event_type TEXT NOT NULL,
		payload TEXT NOT NULL,
		dedupe_key TEXT,
		published BOOLEAN NOT NULL DEFAULT FALSE,
		published_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_invoice_events_dedupe_key ON invoice_events (dedupe_key)`,
}

// Run applies the schema. Every statement is safe to re-run.
func Run(db *gorm.DB) error {
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
