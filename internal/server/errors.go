package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/faktur/internal/auth/domain"
	customerdomain "github.com/smallbiznis/faktur/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/faktur/internal/invoice/domain"
	reminderdomain "github.com/smallbiznis/faktur/internal/reminder/domain"
	reportingdomain "github.com/smallbiznis/faktur/internal/reporting/domain"
	"gorm.io/gorm"
)

// APIError is the wire shape of every non-2xx response.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *APIError) Error() string { return e.Message }

var (
	ErrUnauthorized = &APIError{Status: http.StatusUnauthorized, Code: "unauthorized", Message: "unauthorized"}
	ErrNotFound     = &APIError{Status: http.StatusNotFound, Code: "not_found", Message: "resource not found"}
)

func invalidRequestError() *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: "invalid_request", Message: "invalid request body"}
}

func newValidationError(field, code, message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: code, Field: field, Message: message}
}

// statusByError maps domain sentinels onto HTTP statuses. Anything unlisted
// is a 500.
var statusByError = map[error]int{
	customerdomain.ErrInvalidName:     http.StatusBadRequest,
	customerdomain.ErrInvalidID:       http.StatusBadRequest,
	customerdomain.ErrNotFound:        http.StatusNotFound,
	invoicedomain.ErrInvalidID:        http.StatusBadRequest,
	invoicedomain.ErrInvalidCustomer:  http.StatusBadRequest,
	invoicedomain.ErrMissingItems:     http.StatusBadRequest,
	invoicedomain.ErrInvalidItem:      http.StatusBadRequest,
	invoicedomain.ErrInvalidQuantity:  http.StatusBadRequest,
	invoicedomain.ErrInvalidUnitPrice: http.StatusBadRequest,
	invoicedomain.ErrInvalidTax:       http.StatusBadRequest,
	invoicedomain.ErrNotFound:         http.StatusNotFound,
	reportingdomain.ErrInvalidLimit:   http.StatusBadRequest,
	authdomain.ErrMissingCredentials:  http.StatusBadRequest,
	authdomain.ErrInvalidCredentials:  http.StatusUnauthorized,
	authdomain.ErrInvalidToken:        http.StatusUnauthorized,
	reminderdomain.ErrSenderUnavailable: http.StatusServiceUnavailable,

	// TranslateError is enabled on the gorm connection, so FK violations
	// arrive as this sentinel on both drivers.
	gorm.ErrForeignKeyViolated: http.StatusConflict,
}

// AbortWithError writes the canonical error envelope and stops the chain.
func AbortWithError(c *gin.Context, err error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": apiErr})
		return
	}

	for sentinel, status := range statusByError {
		if errors.Is(err, sentinel) {
			c.AbortWithStatusJSON(status, gin.H{"error": &APIError{
				Status:  status,
				Code:    sentinel.Error(),
				Message: sentinel.Error(),
			}})
			return
		}
	}

	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "internal error",
	}})
}
