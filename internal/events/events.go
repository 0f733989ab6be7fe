package events

// Invoice lifecycle event types recorded in the outbox.
const (
	EventInvoiceCreated = "invoice.created"
	EventInvoicePaid    = "invoice.paid"
	EventInvoiceDeleted = "invoice.deleted"
	EventOverdueSweep   = "invoice.overdue_sweep"
	EventReminderRun    = "reminder.run"
)

// InvoicePayload captures the minimal data needed to follow an invoice event.
type InvoicePayload struct {
	InvoiceID     string `json:"invoice_id"`
	InvoiceNumber string `json:"invoice_number,omitempty"`
	CustomerID    string `json:"customer_id,omitempty"`
}

// ToMap converts a payload into an outbox-friendly map.
func (p InvoicePayload) ToMap() map[string]any {
	payload := map[string]any{
		"invoice_id": p.InvoiceID,
	}
	if p.InvoiceNumber != "" {
		payload["invoice_number"] = p.InvoiceNumber
	}
	if p.CustomerID != "" {
		payload["customer_id"] = p.CustomerID
	}
	return payload
}
