package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clinicworks/ehr-system/internal/api/metrics"
	"github.com/clinicworks/ehr-system/internal/core/domain"
	"github.com/clinicworks/ehr-system/internal/core/ports"
)

// PatientHandler handles HTTP requests for patients and their records.
type PatientHandler struct {
	service ports.PatientService
}

func NewPatientHandler(service ports.PatientService) *PatientHandler {
	return &PatientHandler{service: service}
}

// Create handles POST /api/patients.
//
// @Summary      Register a patient
// @Tags         patients
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      createPatientRequest  true  "Patient details"
// @Success      201   {object}  patientResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /patients [post]
func (h *PatientHandler) Create(c echo.Context) error {
	var req createPatientRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	dob, err := time.Parse(dateLayout, req.DateOfBirth)
	if err != nil {
		return domain.NewValidationError("date_of_birth must be a date in YYYY-MM-DD format")
	}
	if dob.After(time.Now().UTC()) {
		return domain.NewValidationError("date_of_birth must not be in the future")
	}

	patient, err := h.service.CreatePatient(c.Request().Context(), ports.CreatePatientInput{
		FullName:    req.FullName,
		DateOfBirth: dob,
		Gender:      req.Gender,
		Phone:       req.Phone,
	})
	if err != nil {
		return err
	}

	metrics.RecordsCreatedTotal.WithLabelValues(domain.EntityPatient).Inc()
	return c.JSON(http.StatusCreated, toPatientResponse(patient))
}

// List handles GET /api/patients.
//
// @Summary      List patients
// @Description  Returns at most 50 patients, newest first.
// @Tags         patients
// @Produce      json
// @Security     CookieAuth
// @Param        search  query     string  false  "Case-insensitive match on name or phone"
// @Success      200     {array}   patientResponse
// @Failure      401     {object}  errorResponse
// @Failure      403     {object}  errorResponse
// @Failure      500     {object}  errorResponse
// @Router       /patients [get]
func (h *PatientHandler) List(c echo.Context) error {
	patients, err := h.service.ListPatients(c.Request().Context(), c.QueryParam("search"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPatientList(patients))
}

// Get handles GET /api/patients/:id.
//
// @Summary      Get a patient
// @Tags         patients
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      int  true  "Patient ID"
// @Success      200  {object}  patientResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /patients/{id} [get]
func (h *PatientHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	patient, err := h.service.GetPatient(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPatientResponse(patient))
}

// Records handles GET /api/patients/:id/records.
//
// @Summary      Get a patient's clinical history
// @Tags         patients
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      int  true  "Patient ID"
// @Success      200  {object}  patientRecordsResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /patients/{id}/records [get]
func (h *PatientHandler) Records(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	records, err := h.service.GetRecords(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRecordsResponse(records))
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("id must be a positive integer")
	}
	return id, nil
}
