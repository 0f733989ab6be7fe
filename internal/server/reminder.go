package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RunReminders triggers one reminder batch on demand. The scheduled path is
// the remindertask command; this endpoint exists for operators.
func (s *Server) RunReminders(c *gin.Context) {
	result, err := s.reminderSvc.Run(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}
