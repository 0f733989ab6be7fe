package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/faktur/internal/invoice/domain"
)

type invoiceItemRequest struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type invoiceRequest struct {
	CustomerID string               `json:"customer_id"`
	IssueDate  string               `json:"issue_date"`
	DueDate    string               `json:"due_date"`
	Tax        decimal.Decimal      `json:"tax"`
	Notes      string               `json:"notes"`
	Items      []invoiceItemRequest `json:"items"`
}

func parseDate(raw string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(raw))
}

func (r invoiceRequest) items() []invoicedomain.ItemInput {
	items := make([]invoicedomain.ItemInput, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, invoicedomain.ItemInput{
			Description: strings.TrimSpace(item.Description),
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	return items
}

func (s *Server) CreateInvoice(c *gin.Context) {
	var req invoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	customerID, err := invoicedomain.ParseID(req.CustomerID)
	if err != nil {
		AbortWithError(c, invoicedomain.ErrInvalidCustomer)
		return
	}
	issueDate, err := parseDate(req.IssueDate)
	if err != nil {
		AbortWithError(c, newValidationError("issue_date", "invalid_issue_date", "issue_date must be YYYY-MM-DD"))
		return
	}
	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		AbortWithError(c, newValidationError("due_date", "invalid_due_date", "due_date must be YYYY-MM-DD"))
		return
	}

	resp, err := s.invoiceSvc.Create(c.Request.Context(), invoicedomain.CreateRequest{
		CustomerID: customerID,
		IssueDate:  issueDate,
		DueDate:    dueDate,
		Tax:        req.Tax,
		Notes:      req.Notes,
		Items:      req.items(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListInvoices(c *gin.Context) {
	resp, err := s.invoiceSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListOverdueInvoices(c *gin.Context) {
	resp, err := s.invoiceSvc.ListOverdue(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetInvoice(c *gin.Context) {
	id, err := invoicedomain.ParseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invoicedomain.ErrInvalidID)
		return
	}

	resp, err := s.invoiceSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateInvoice(c *gin.Context) {
	id, err := invoicedomain.ParseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invoicedomain.ErrInvalidID)
		return
	}

	var req invoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	customerID, err := invoicedomain.ParseID(req.CustomerID)
	if err != nil {
		AbortWithError(c, invoicedomain.ErrInvalidCustomer)
		return
	}
	issueDate, err := parseDate(req.IssueDate)
	if err != nil {
		AbortWithError(c, newValidationError("issue_date", "invalid_issue_date", "issue_date must be YYYY-MM-DD"))
		return
	}
	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		AbortWithError(c, newValidationError("due_date", "invalid_due_date", "due_date must be YYYY-MM-DD"))
		return
	}

	resp, err := s.invoiceSvc.Update(c.Request.Context(), invoicedomain.UpdateRequest{
		ID:         id,
		CustomerID: customerID,
		IssueDate:  issueDate,
		DueDate:    dueDate,
		Tax:        req.Tax,
		Notes:      req.Notes,
		Items:      req.items(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteInvoice(c *gin.Context) {
	id, err := invoicedomain.ParseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invoicedomain.ErrInvalidID)
		return
	}

	if err := s.invoiceSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) MarkInvoicePaid(c *gin.Context) {
	id, err := invoicedomain.ParseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invoicedomain.ErrInvalidID)
		return
	}

	if err := s.invoiceSvc.MarkPaid(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) MarkInvoiceUnpaid(c *gin.Context) {
	id, err := invoicedomain.ParseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invoicedomain.ErrInvalidID)
		return
	}

	if err := s.invoiceSvc.MarkUnpaid(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) RunOverdueSweep(c *gin.Context) {
	updated, err := s.invoiceSvc.RunOverdueSweep(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"updated": updated}})
}
