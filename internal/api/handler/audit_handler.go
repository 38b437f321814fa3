package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinicworks/ehr-system/internal/core/ports"
)

type AuditHandler struct {
	service ports.AuditService
}

func NewAuditHandler(service ports.AuditService) *AuditHandler {
	return &AuditHandler{service: service}
}

// List handles GET /api/audit-logs.
//
// @Summary      Recent audit entries
// @Description  Returns the 100 most recent entries, newest first.
// @Tags         audit
// @Produce      json
// @Security     CookieAuth
// @Success      200  {array}   auditEntryResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /audit-logs [get]
func (h *AuditHandler) List(c echo.Context) error {
	entries, err := h.service.ListRecent(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAuditLog(entries))
}
