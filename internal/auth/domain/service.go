package domain

import (
	"context"
	"errors"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is a successful login: a signed bearer token plus its lifetime in
// seconds.
type Session struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
	User      User   `json:"user"`
}

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*Session, error)
	Verify(ctx context.Context, token string) (*User, error)
}

var (
	ErrMissingCredentials = errors.New("missing_credentials")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidToken       = errors.New("invalid_token")
)
