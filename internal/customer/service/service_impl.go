package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/smallbiznis/faktur/internal/customer/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
}

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

func NewService(p Params) customerdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("customer.service"),
		genID: p.GenID,
	}
}

func (s *Service) Create(ctx context.Context, req customerdomain.CreateRequest) (customerdomain.Customer, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return customerdomain.Customer{}, customerdomain.ErrInvalidName
	}

	customer := customerdomain.Customer{
		ID:       s.genID.Generate(),
		Name:     name,
		Address:  strings.TrimSpace(req.Address),
		Postcode: strings.TrimSpace(req.Postcode),
		Email:    strings.TrimSpace(req.Email),
		Phone:    strings.TrimSpace(req.Phone),
		Notes:    strings.TrimSpace(req.Notes),
	}
	if err := s.db.WithContext(ctx).Create(&customer).Error; err != nil {
		return customerdomain.Customer{}, err
	}
	return customer, nil
}

func (s *Service) Update(ctx context.Context, req customerdomain.UpdateRequest) (customerdomain.Customer, error) {
	if req.ID == 0 {
		return customerdomain.Customer{}, customerdomain.ErrInvalidID
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return customerdomain.Customer{}, customerdomain.ErrInvalidName
	}

	customer, err := s.GetByID(ctx, req.ID)
	if err != nil {
		return customerdomain.Customer{}, err
	}

	customer.Name = name
	customer.Address = strings.TrimSpace(req.Address)
	customer.Postcode = strings.TrimSpace(req.Postcode)
	customer.Email = strings.TrimSpace(req.Email)
	customer.Phone = strings.TrimSpace(req.Phone)
	customer.Notes = strings.TrimSpace(req.Notes)

	if err := s.db.WithContext(ctx).Save(&customer).Error; err != nil {
		return customerdomain.Customer{}, err
	}
	return customer, nil
}

// Delete removes the customer row. A customer with invoices fails the
// foreign key constraint; the storage error propagates unchanged.
func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	if id == 0 {
		return customerdomain.ErrInvalidID
	}
	result := s.db.WithContext(ctx).Delete(&customerdomain.Customer{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return customerdomain.ErrNotFound
	}
	return nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (customerdomain.Customer, error) {
	if id == 0 {
		return customerdomain.Customer{}, customerdomain.ErrInvalidID
	}
	var customer customerdomain.Customer
	err := s.db.WithContext(ctx).First(&customer, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return customerdomain.Customer{}, customerdomain.ErrNotFound
	}
	if err != nil {
		return customerdomain.Customer{}, err
	}
	return customer, nil
}

func (s *Service) List(ctx context.Context) ([]customerdomain.Customer, error) {
	var customers []customerdomain.Customer
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}
