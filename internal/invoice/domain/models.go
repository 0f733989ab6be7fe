package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	customerdomain "github.com/smallbiznis/faktur/internal/customer/domain"
)

// Invoice is the billing document header. Subtotal, Tax and Total are derived
// via RecalculateTotals and never trusted from input.
type Invoice struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	InvoiceNumber string          `gorm:"type:text;not null;uniqueIndex:ux_invoices_invoice_number" json:"invoice_number"`
	CustomerID    snowflake.ID    `gorm:"not null;index" json:"customer_id"`
	IssueDate     time.Time       `gorm:"not null" json:"issue_date"`
	DueDate       time.Time       `gorm:"not null" json:"due_date"`
	Subtotal      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	Tax           decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"tax"`
	Total         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	Status        Status          `gorm:"type:text;not null;default:'Unpaid'" json:"status"`
	Notes         string          `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt     time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null" json:"updated_at"`

	// Denormalized on read, not persisted through this struct.
	Customer *customerdomain.Customer `gorm:"-" json:"customer,omitempty"`
	Items    []InvoiceItem            `gorm:"-" json:"items,omitempty"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// InvoiceItem is one billable line owned by its invoice.
type InvoiceItem struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	InvoiceID   snowflake.ID    `gorm:"not null;index" json:"invoice_id"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	LineTotal   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"line_total"`
}

// TableName sets the database table name.
func (InvoiceItem) TableName() string { return "invoice_items" }

// RecalculateTotals rederives every line total, the subtotal and the total.
// LineTotal = Quantity × UnitPrice, Subtotal = Σ LineTotal, Total = Subtotal + Tax.
func (inv *Invoice) RecalculateTotals() {
	subtotal := decimal.Zero
	for i := range inv.Items {
		inv.Items[i].LineTotal = inv.Items[i].Quantity.Mul(inv.Items[i].UnitPrice).Round(2)
		subtotal = subtotal.Add(inv.Items[i].LineTotal)
	}
	inv.Subtotal = subtotal
	inv.Total = subtotal.Add(inv.Tax)
}
