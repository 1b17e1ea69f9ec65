package handlers

import (
	"net/http"

	"github.com/ArowuTest/homeradio-cashout/internal/services"
	"github.com/gin-gonic/gin"
)

// AuditHandler serves the audit trail
type AuditHandler struct {
	auditService services.AuditService
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(auditService services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// ListAuditLogs handles GET /admin/audit-logs
func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	logs, err := h.auditService.List(c.Request.Context(), queryLimit(c, 50, 500))
	if err != nil {
		respondError(c, "list audit logs", err)
		return
	}
	c.JSON(http.StatusOK, logs)
}
