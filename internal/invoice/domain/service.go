package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// ItemInput is a caller-supplied line. LineTotal is always recomputed.
type ItemInput struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type CreateRequest struct {
	CustomerID snowflake.ID    `json:"customer_id"`
	IssueDate  time.Time       `json:"issue_date"`
	DueDate    time.Time       `json:"due_date"`
	Tax        decimal.Decimal `json:"tax"`
	Notes      string          `json:"notes"`
	Items      []ItemInput     `json:"items"`
}

// UpdateRequest replaces the full item set; callers must always submit the
// complete current item list.
type UpdateRequest struct {
	ID         snowflake.ID    `json:"id"`
	CustomerID snowflake.ID    `json:"customer_id"`
	IssueDate  time.Time       `json:"issue_date"`
	DueDate    time.Time       `json:"due_date"`
	Tax        decimal.Decimal `json:"tax"`
	Notes      string          `json:"notes"`
	Items      []ItemInput     `json:"items"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (Invoice, error)
	Update(ctx context.Context, req UpdateRequest) (Invoice, error)
	Delete(ctx context.Context, id snowflake.ID) error
	GetByID(ctx context.Context, id snowflake.ID) (Invoice, error)
	List(ctx context.Context) ([]Invoice, error)
	ListOverdue(ctx context.Context) ([]Invoice, error)
	MarkPaid(ctx context.Context, id snowflake.ID) error
	MarkUnpaid(ctx context.Context, id snowflake.ID) error
	RunOverdueSweep(ctx context.Context) (int64, error)
}

var (
	ErrInvalidID        = errors.New("invalid_invoice_id")
	ErrInvalidCustomer  = errors.New("invalid_customer")
	ErrMissingItems     = errors.New("missing_items")
	ErrInvalidItem      = errors.New("invalid_item")
	ErrInvalidQuantity  = errors.New("invalid_quantity")
	ErrInvalidUnitPrice = errors.New("invalid_unit_price")
	ErrInvalidTax       = errors.New("invalid_tax")
	ErrNotFound         = errors.New("invoice_not_found")
)

func ParseID(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(raw))
}
