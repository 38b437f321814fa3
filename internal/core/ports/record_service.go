package ports

import (
	"context"
	"time"

	"github.com/clinicworks/ehr-system/internal/core/domain"
)

// CreatePatientInput is the validated payload for a new patient.
type CreatePatientInput struct {
	FullName    string
	DateOfBirth time.Time
	Gender      string
	Phone       *string
}

// CreateEncounterInput is the validated payload for a new encounter.
type CreateEncounterInput struct {
	PatientID     int64
	ClinicianRole string
	Notes         *string
}

// CreatePrescriptionInput is the validated payload for a new prescription.
// CreatedBy is always the acting identity, never client input.
type CreatePrescriptionInput struct {
	EncounterID int64
	DrugName    string
	Dosage      string
	Frequency   string
	Duration    string
	CreatedBy   int64
}

type PatientService interface {
	CreatePatient(ctx context.Context, input CreatePatientInput) (*domain.Patient, error)
	GetPatient(ctx context.Context, id int64) (*domain.Patient, error)
	ListPatients(ctx context.Context, search string) ([]*domain.Patient, error)
	GetRecords(ctx context.Context, patientID int64) (*domain.PatientRecords, error)
}

type EncounterService interface {
	CreateEncounter(ctx context.Context, input CreateEncounterInput) (*domain.Encounter, error)
}

type PrescriptionService interface {
	CreatePrescription(ctx context.Context, input CreatePrescriptionInput) (*domain.Prescription, error)
}

// AuditService reads and writes the audit trail.
type AuditService interface {
	Record(ctx context.Context, entry *domain.AuditEntry) error
	ListRecent(ctx context.Context) ([]*domain.AuditEntry, error)
}

// AuditRecorder accepts audit entries for detached persistence. Record must
// not block the caller on storage.
type AuditRecorder interface {
	Record(entry domain.AuditEntry)
}
