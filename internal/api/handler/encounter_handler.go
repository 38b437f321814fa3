package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinicworks/ehr-system/internal/api/metrics"
	"github.com/clinicworks/ehr-system/internal/core/domain"
	"github.com/clinicworks/ehr-system/internal/core/ports"
)

type EncounterHandler struct {
	service ports.EncounterService
}

func NewEncounterHandler(service ports.EncounterService) *EncounterHandler {
	return &EncounterHandler{service: service}
}

// Create handles POST /api/encounters.
//
// @Summary      Record an encounter
// @Tags         encounters
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      createEncounterRequest  true  "Encounter details"
// @Success      201   {object}  encounterResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /encounters [post]
func (h *EncounterHandler) Create(c echo.Context) error {
	var req createEncounterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	encounter, err := h.service.CreateEncounter(c.Request().Context(), ports.CreateEncounterInput{
		PatientID:     req.PatientID,
		ClinicianRole: req.ClinicianRole,
		Notes:         req.Notes,
	})
	if err != nil {
		return err
	}

	metrics.RecordsCreatedTotal.WithLabelValues(domain.EntityEncounter).Inc()
	return c.JSON(http.StatusCreated, toEncounterResponse(encounter))
}
