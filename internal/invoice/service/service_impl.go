package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/faktur/internal/clock"
	"github.com/smallbiznis/faktur/internal/config"
	customerdomain "github.com/smallbiznis/faktur/internal/customer/domain"
	"github.com/smallbiznis/faktur/internal/events"
	invoicedomain "github.com/smallbiznis/faktur/internal/invoice/domain"
	"github.com/smallbiznis/faktur/internal/invoice/numbering"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// createRetries bounds how often Create replays its transaction after losing
// an invoice-number race to a concurrent creation.
const createRetries = 3

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock
	outbox *events.Outbox
	prefix string
}

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Outbox *events.Outbox
	Config config.Config
}

func NewService(p Params) invoicedomain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("invoice.service"),
		genID:  p.GenID,
		clock:  p.Clock,
		outbox: p.Outbox,
		prefix: p.Config.Invoice.NumberPrefix,
	}
}

// Create allocates the invoice number, recomputes all derived totals and
// writes the header plus its items in one transaction. Losing an allocation
// race surfaces as a duplicate-key error; the whole transaction is retried.
func (s *Service) Create(ctx context.Context, req invoicedomain.CreateRequest) (invoicedomain.Invoice, error) {
	if req.CustomerID == 0 {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidCustomer
	}
	if err := validateLines(req.Tax, req.Items); err != nil {
		return invoicedomain.Invoice{}, err
	}

	var invoice invoicedomain.Invoice
	var err error
	for attempt := 0; attempt < createRetries; attempt++ {
		invoice, err = s.createOnce(ctx, req)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			s.log.Warn("invoice number collision, retrying",
				zap.Int("attempt", attempt+1))
			continue
		}
		break
	}
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	return invoice, nil
}

func (s *Service) createOnce(ctx context.Context, req invoicedomain.CreateRequest) (invoicedomain.Invoice, error) {
	invoice := invoicedomain.Invoice{
		ID:         s.genID.Generate(),
		CustomerID: req.CustomerID,
		IssueDate:  req.IssueDate,
		DueDate:    req.DueDate,
		Tax:        req.Tax,
		Status:     invoicedomain.StatusUnpaid,
		Notes:      strings.TrimSpace(req.Notes),
		Items:      buildItems(s.genID, 0, req.Items),
	}
	invoice.RecalculateTotals()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := numbering.Next(ctx, tx, s.prefix, s.clock.Now().Year())
		if err != nil {
			return err
		}
		invoice.InvoiceNumber = number

		if err := tx.Create(&invoice).Error; err != nil {
			return err
		}
		for i := range invoice.Items {
			invoice.Items[i].InvoiceID = invoice.ID
		}
		if err := tx.Create(invoice.Items).Error; err != nil {
			return err
		}

		return s.outbox.PublishTx(ctx, tx, events.Event{
			Type: events.EventInvoiceCreated,
			Payload: events.InvoicePayload{
				InvoiceID:     invoice.ID.String(),
				InvoiceNumber: invoice.InvoiceNumber,
				CustomerID:    invoice.CustomerID.String(),
			}.ToMap(),
			DedupeKey: events.EventInvoiceCreated + ":" + invoice.ID.String(),
		})
	})
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	return invoice, nil
}

// Update replaces the invoice header fields and the full item set in one
// transaction. Partial item edits are not supported; callers resubmit the
// complete list.
func (s *Service) Update(ctx context.Context, req invoicedomain.UpdateRequest) (invoicedomain.Invoice, error) {
	if req.ID == 0 {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidID
	}
	if req.CustomerID == 0 {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidCustomer
	}
	if err := validateLines(req.Tax, req.Items); err != nil {
		return invoicedomain.Invoice{}, err
	}

	var invoice invoicedomain.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&invoice, "id = ?", req.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return invoicedomain.ErrNotFound
			}
			return err
		}

		invoice.CustomerID = req.CustomerID
		invoice.IssueDate = req.IssueDate
		invoice.DueDate = req.DueDate
		invoice.Tax = req.Tax
		invoice.Notes = strings.TrimSpace(req.Notes)
		invoice.Items = buildItems(s.genID, invoice.ID, req.Items)
		invoice.RecalculateTotals()

		if err := tx.Delete(&invoicedomain.InvoiceItem{}, "invoice_id = ?", invoice.ID).Error; err != nil {
			return err
		}
		if err := tx.Save(&invoice).Error; err != nil {
			return err
		}
		return tx.Create(invoice.Items).Error
	})
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	return invoice, nil
}

// Delete removes the invoice and every item it owns, atomically.
func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	if id == 0 {
		return invoicedomain.ErrInvalidID
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&invoicedomain.InvoiceItem{}, "invoice_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&invoicedomain.Invoice{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return invoicedomain.ErrNotFound
		}
		return s.outbox.PublishTx(ctx, tx, events.Event{
			Type:      events.EventInvoiceDeleted,
			Payload:   events.InvoicePayload{InvoiceID: id.String()}.ToMap(),
			DedupeKey: events.EventInvoiceDeleted + ":" + id.String(),
		})
	})
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (invoicedomain.Invoice, error) {
	if id == 0 {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidID
	}
	var invoice invoicedomain.Invoice
	err := s.db.WithContext(ctx).First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return invoicedomain.Invoice{}, invoicedomain.ErrNotFound
	}
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	if err := s.attach(ctx, []*invoicedomain.Invoice{&invoice}); err != nil {
		return invoicedomain.Invoice{}, err
	}
	return invoice, nil
}

func (s *Service) List(ctx context.Context) ([]invoicedomain.Invoice, error) {
	var invoices []invoicedomain.Invoice
	if err := s.db.WithContext(ctx).Order("issue_date DESC").Find(&invoices).Error; err != nil {
		return nil, err
	}
	if err := s.attachAll(ctx, invoices); err != nil {
		return nil, err
	}
	return invoices, nil
}

// ListOverdue reports invoices that are logically overdue right now, whether
// or not the sweep has persisted the promotion yet.
func (s *Service) ListOverdue(ctx context.Context) ([]invoicedomain.Invoice, error) {
	now := s.clock.Now()
	var invoices []invoicedomain.Invoice
	err := s.db.WithContext(ctx).
		Where("status = ? OR (status = ? AND due_date < ?)",
			invoicedomain.StatusOverdue, invoicedomain.StatusUnpaid, now).
		Order("due_date ASC").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	if err := s.attachAll(ctx, invoices); err != nil {
		return nil, err
	}
	return invoices, nil
}

// MarkPaid is terminal and idempotent: re-marking a Paid invoice is a no-op
// and the overdue sweep never touches Paid invoices again.
func (s *Service) MarkPaid(ctx context.Context, id snowflake.ID) error {
	if id == 0 {
		return invoicedomain.ErrInvalidID
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invoice invoicedomain.Invoice
		if err := tx.First(&invoice, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return invoicedomain.ErrNotFound
			}
			return err
		}
		if invoice.Status == invoicedomain.StatusPaid {
			return nil
		}

		if err := tx.Model(&invoicedomain.Invoice{}).
			Where("id = ?", id).
			Update("status", invoicedomain.StatusPaid).Error; err != nil {
			return err
		}
		return s.outbox.PublishTx(ctx, tx, events.Event{
			Type: events.EventInvoicePaid,
			Payload: events.InvoicePayload{
				InvoiceID:     invoice.ID.String(),
				InvoiceNumber: invoice.InvoiceNumber,
				CustomerID:    invoice.CustomerID.String(),
			}.ToMap(),
			DedupeKey: events.EventInvoicePaid + ":" + invoice.ID.String(),
		})
	})
}

// MarkUnpaid manually reopens an invoice. The next sweep may promote it to
// Overdue again if its due date has passed.
func (s *Service) MarkUnpaid(ctx context.Context, id snowflake.ID) error {
	if id == 0 {
		return invoicedomain.ErrInvalidID
	}
	result := s.db.WithContext(ctx).Model(&invoicedomain.Invoice{}).
		Where("id = ?", id).
		Update("status", invoicedomain.StatusUnpaid)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return invoicedomain.ErrNotFound
	}
	return nil
}

// RunOverdueSweep promotes every Unpaid invoice whose due date has passed in
// one bulk update and returns the number promoted. Running it again
// immediately promotes nothing.
func (s *Service) RunOverdueSweep(ctx context.Context) (int64, error) {
	now := s.clock.Now()
	var promoted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&invoicedomain.Invoice{}).
			Where("status = ? AND due_date < ?", invoicedomain.StatusUnpaid, now).
			Update("status", invoicedomain.StatusOverdue)
		if result.Error != nil {
			return result.Error
		}
		promoted = result.RowsAffected
		if promoted == 0 {
			return nil
		}
		return s.outbox.PublishTx(ctx, tx, events.Event{
			Type:    events.EventOverdueSweep,
			Payload: map[string]any{"promoted": promoted},
		})
	})
	if err != nil {
		return 0, err
	}
	if promoted > 0 {
		s.log.Info("overdue sweep promoted invoices", zap.Int64("count", promoted))
	}
	return promoted, nil
}

func (s *Service) attachAll(ctx context.Context, invoices []invoicedomain.Invoice) error {
	refs := make([]*invoicedomain.Invoice, len(invoices))
	for i := range invoices {
		refs[i] = &invoices[i]
	}
	return s.attach(ctx, refs)
}

// attach denormalizes the customer and the owned item list onto each invoice.
func (s *Service) attach(ctx context.Context, invoices []*invoicedomain.Invoice) error {
	if len(invoices) == 0 {
		return nil
	}

	invoiceIDs := make([]snowflake.ID, 0, len(invoices))
	customerIDs := make([]snowflake.ID, 0, len(invoices))
	for _, inv := range invoices {
		invoiceIDs = append(invoiceIDs, inv.ID)
		customerIDs = append(customerIDs, inv.CustomerID)
	}

	var customers []customerdomain.Customer
	if err := s.db.WithContext(ctx).Find(&customers, "id IN ?", customerIDs).Error; err != nil {
		return err
	}
	byCustomer := make(map[snowflake.ID]customerdomain.Customer, len(customers))
	for _, c := range customers {
		byCustomer[c.ID] = c
	}

	var items []invoicedomain.InvoiceItem
	if err := s.db.WithContext(ctx).
		Order("id ASC").
		Find(&items, "invoice_id IN ?", invoiceIDs).Error; err != nil {
		return err
	}
	byInvoice := make(map[snowflake.ID][]invoicedomain.InvoiceItem, len(invoices))
	for _, item := range items {
		byInvoice[item.InvoiceID] = append(byInvoice[item.InvoiceID], item)
	}

	for _, inv := range invoices {
		if c, ok := byCustomer[inv.CustomerID]; ok {
			customer := c
			inv.Customer = &customer
		}
		inv.Items = byInvoice[inv.ID]
	}
	return nil
}

func buildItems(genID *snowflake.Node, invoiceID snowflake.ID, inputs []invoicedomain.ItemInput) []invoicedomain.InvoiceItem {
	items := make([]invoicedomain.InvoiceItem, 0, len(inputs))
	for _, input := range inputs {
		items = append(items, invoicedomain.InvoiceItem{
			ID:          genID.Generate(),
			InvoiceID:   invoiceID,
			Description: strings.TrimSpace(input.Description),
			Quantity:    input.Quantity,
			UnitPrice:   input.UnitPrice,
		})
	}
	return items
}

func validateLines(tax decimal.Decimal, items []invoicedomain.ItemInput) error {
	if tax.IsNegative() {
		return invoicedomain.ErrInvalidTax
	}
	if len(items) == 0 {
		return invoicedomain.ErrMissingItems
	}
	for _, item := range items {
		if strings.TrimSpace(item.Description) == "" {
			return invoicedomain.ErrInvalidItem
		}
		if !item.Quantity.IsPositive() {
			return invoicedomain.ErrInvalidQuantity
		}
		if item.UnitPrice.IsNegative() {
			return invoicedomain.ErrInvalidUnitPrice
		}
	}
	return nil
}
