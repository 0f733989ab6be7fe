package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/smallbiznis/faktur/internal/auth/domain"
	"github.com/smallbiznis/faktur/internal/auth/password"
	"github.com/smallbiznis/faktur/internal/auth/token"
	"github.com/smallbiznis/faktur/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	clock  clock.Clock
	tokens *token.Manager
}

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Clock  clock.Clock
	Tokens *token.Manager
}

func NewService(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("auth.service"),
		clock:  p.Clock,
		tokens: p.Tokens,
	}
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.Session, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, domain.ErrMissingCredentials
	}

	var user domain.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	ok, err := password.Verify(req.Password, user.PasswordHash)
	if err != nil || !ok {
		return nil, domain.ErrInvalidCredentials
	}

	signed, err := s.tokens.Issue(user.ID.String(), s.clock.Now())
	if err != nil {
		return nil, err
	}

	s.log.Info("user logged in", zap.String("email", user.Email))
	return &domain.Session{
		Token:     signed,
		ExpiresIn: int64(s.tokens.TTL().Seconds()),
		User:      user,
	}, nil
}

func (s *Service) Verify(ctx context.Context, raw string) (*domain.User, error) {
	subject, err := s.tokens.Parse(raw)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	id, err := strconv.ParseInt(subject, 10, 64)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	var user domain.User
	err = s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
