package domain

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
)

type CreateRequest struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Postcode string `json:"postcode"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Notes    string `json:"notes"`
}

type UpdateRequest struct {
	ID       snowflake.ID `json:"id"`
	Name     string       `json:"name"`
	Address  string       `json:"address"`
	Postcode string       `json:"postcode"`
	Email    string       `json:"email"`
	Phone    string       `json:"phone"`
	Notes    string       `json:"notes"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (Customer, error)
	Update(ctx context.Context, req UpdateRequest) (Customer, error)
	Delete(ctx context.Context, id snowflake.ID) error
	GetByID(ctx context.Context, id snowflake.ID) (Customer, error)
	List(ctx context.Context) ([]Customer, error)
}

var (
	ErrInvalidName = errors.New("invalid_name")
	ErrInvalidID   = errors.New("invalid_id")
	ErrNotFound    = errors.New("customer_not_found")
)

func ParseID(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(raw))
}
