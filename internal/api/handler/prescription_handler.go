package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinicworks/ehr-system/internal/api/metrics"
	"github.com/clinicworks/ehr-system/internal/core/domain"
	"github.com/clinicworks/ehr-system/internal/core/ports"
)

type PrescriptionHandler struct {
	service ports.PrescriptionService
}

func NewPrescriptionHandler(service ports.PrescriptionService) *PrescriptionHandler {
	return &PrescriptionHandler{service: service}
}

// Create handles POST /api/prescriptions. The prescriber is always the
// caller.
//
// @Summary      Prescribe medication
// @Tags         prescriptions
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      createPrescriptionRequest  true  "Prescription details"
// @Success      201   {object}  prescriptionResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /prescriptions [post]
func (h *PrescriptionHandler) Create(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req createPrescriptionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	prescription, err := h.service.CreatePrescription(c.Request().Context(), ports.CreatePrescriptionInput{
		EncounterID: req.EncounterID,
		DrugName:    req.DrugName,
		Dosage:      req.Dosage,
		Frequency:   req.Frequency,
		Duration:    req.Duration,
		CreatedBy:   identity.ID,
	})
	if err != nil {
		return err
	}

	metrics.RecordsCreatedTotal.WithLabelValues(domain.EntityPrescription).Inc()
	return c.JSON(http.StatusCreated, toPrescriptionResponse(prescription, identity.Username))
}
