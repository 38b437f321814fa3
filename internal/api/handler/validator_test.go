package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/clinicworks/ehr-system/internal/core/domain"
)

func TestValidator_CollectsEveryViolation(t *testing.T) {
	err := NewValidator().Validate(&createPatientRequest{DateOfBirth: "02/01/1990", Gender: "unknown"})

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *domain.ValidationError, got %T (%v)", err, err)
	}

	want := []string{
		"full_name is required",
		"date_of_birth must be a date in YYYY-MM-DD format",
		"gender must be one of: male female other",
	}
	if len(ve.Violations) != len(want) {
		t.Fatalf("violations = %v, want %v", ve.Violations, want)
	}
	for i, msg := range want {
		if ve.Violations[i] != msg {
			t.Errorf("violation[%d] = %q, want %q", i, ve.Violations[i], msg)
		}
	}
	if !strings.Contains(err.Error(), "; ") {
		t.Errorf("expected messages joined by '; ', got %q", err.Error())
	}
}

func TestValidator_Valid(t *testing.T) {
	req := &createPatientRequest{FullName: "Ada Lovelace", DateOfBirth: "1990-01-02", Gender: "female"}
	if err := NewValidator().Validate(req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBindAndValidate_MalformedBody(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodPost, "/api/patients", strings.NewReader(`{"full_name":`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	err := bindAndValidate(c, &createPatientRequest{})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Error() != "invalid request body" {
		t.Fatalf("expected invalid request body, got %v", err)
	}
}
