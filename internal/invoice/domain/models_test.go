package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRecalculateTotalsRoundsPerLine(t *testing.T) {
	invoice := Invoice{
		Tax: decimal.RequireFromString("0.10"),
		Items: []InvoiceItem{
			{Quantity: decimal.RequireFromString("3"), UnitPrice: decimal.RequireFromString("0.335")},
			{Quantity: decimal.RequireFromString("2"), UnitPrice: decimal.RequireFromString("1.25")},
		},
	}
	invoice.RecalculateTotals()

	// 3 * 0.335 = 1.005 rounds to 1.01 at the line, not after summing.
	if got := invoice.Items[0].LineTotal.StringFixed(2); got != "1.01" {
		t.Fatalf("line total = %s, want 1.01", got)
	}
	if got := invoice.Subtotal.StringFixed(2); got != "3.51" {
		t.Fatalf("subtotal = %s, want 3.51", got)
	}
	if got := invoice.Total.StringFixed(2); got != "3.61" {
		t.Fatalf("total = %s, want 3.61", got)
	}
}

func TestRecalculateTotalsEmptyTax(t *testing.T) {
	invoice := Invoice{
		Items: []InvoiceItem{
			{Quantity: decimal.NewFromInt(4), UnitPrice: decimal.RequireFromString("25.00")},
		},
	}
	invoice.RecalculateTotals()

	if got := invoice.Total.StringFixed(2); got != "100.00" {
		t.Fatalf("total = %s, want 100.00", got)
	}
}
