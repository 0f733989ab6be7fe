package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	reportingdomain "github.com/smallbiznis/faktur/internal/reporting/domain"
)

func (s *Server) ReportSummary(c *gin.Context) {
	resp, err := s.reportSvc.Summary(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ReportRevenue(c *gin.Context) {
	revenue, err := s.reportSvc.TotalRevenue(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	outstanding, err := s.reportSvc.TotalOutstanding(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"total_revenue":     revenue,
		"total_outstanding": outstanding,
	}})
}

func (s *Server) ReportTopCustomers(c *gin.Context) {
	limit := 5
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			AbortWithError(c, reportingdomain.ErrInvalidLimit)
			return
		}
		limit = parsed
	}

	resp, err := s.reportSvc.TopCustomersByRevenue(c.Request.Context(), limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
