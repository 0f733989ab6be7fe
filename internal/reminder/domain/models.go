package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// ReminderLog is the append-only audit trail of reminder attempts. Rows are
// historical facts: never updated, never deleted, and they survive the
// invoices they describe. Eligibility is computed exclusively from this table.
type ReminderLog struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	InvoiceID snowflake.ID `gorm:"not null;index" json:"invoice_id"`
	SentAt    time.Time    `gorm:"not null" json:"sent_at"`
	Method    string       `gorm:"type:text;not null;default:'Email'" json:"method"`
	Result    string       `gorm:"type:text;not null" json:"result"`
}

// TableName sets the database table name.
func (ReminderLog) TableName() string { return "reminder_log" }

const (
	MethodEmail = "Email"

	ResultSent   = "Sent successfully"
	ResultFailed = "Failed to send"
)
