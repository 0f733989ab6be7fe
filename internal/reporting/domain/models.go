package domain

import (
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// CustomerRevenue is one row of the top-customers rollup. Customers without
// invoices appear with zero revenue.
type CustomerRevenue struct {
	CustomerID snowflake.ID    `gorm:"column:customer_id" json:"customer_id"`
	Name       string          `gorm:"column:name" json:"name"`
	Email      string          `gorm:"column:email" json:"email,omitempty"`
	Revenue    decimal.Decimal `gorm:"column:revenue" json:"revenue"`
}

// Summary is the dashboard rollup, consistent as of one query snapshot each.
type Summary struct {
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	OverdueCount     int64           `json:"overdue_count"`
}
