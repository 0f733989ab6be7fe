package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// Service exposes read-only revenue rollups.
type Service interface {
	TotalRevenue(ctx context.Context) (decimal.Decimal, error)
	TotalOutstanding(ctx context.Context) (decimal.Decimal, error)
	TopCustomersByRevenue(ctx context.Context, limit int) ([]CustomerRevenue, error)
	Summary(ctx context.Context) (Summary, error)
}

var ErrInvalidLimit = errors.New("invalid_limit")
