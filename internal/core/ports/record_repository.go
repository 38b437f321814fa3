package ports

import (
	"context"

	"github.com/clinicworks/ehr-system/internal/core/domain"
)

// PatientFilter narrows a patient listing. Search is matched
// case-insensitively against full name and phone.
type PatientFilter struct {
	Search string
	Limit  int
}

// PatientRepository persists patients. Create assigns ID and CreatedAt.
type PatientRepository interface {
	Create(ctx context.Context, p *domain.Patient) error
	// FindByID returns domain.ErrPatientNotFound when no row matches.
	FindByID(ctx context.Context, id int64) (*domain.Patient, error)
	// List returns patients newest first.
	List(ctx context.Context, filter PatientFilter) ([]*domain.Patient, error)
}

// EncounterRepository persists encounters.
type EncounterRepository interface {
	Create(ctx context.Context, e *domain.Encounter) error
	// FindByID returns domain.ErrEncounterNotFound when no row matches.
	FindByID(ctx context.Context, id int64) (*domain.Encounter, error)
	ListByPatient(ctx context.Context, patientID int64) ([]*domain.Encounter, error)
}

// PrescriptionRepository persists prescriptions.
type PrescriptionRepository interface {
	Create(ctx context.Context, p *domain.Prescription) error
	// ListByPatient returns every prescription attached to the patient's
	// encounters, newest first, enriched with the prescriber's username.
	ListByPatient(ctx context.Context, patientID int64) ([]*domain.PrescriptionDetail, error)
}

// AuditRepository is the append-only audit log.
type AuditRepository interface {
	Insert(ctx context.Context, entry *domain.AuditEntry) error
	// ListRecent returns at most limit entries, newest first.
	ListRecent(ctx context.Context, limit int) ([]*domain.AuditEntry, error)
}

// RecordStore bundles the repositories of one storage backend.
type RecordStore struct {
	Users         UserRepository
	Patients      PatientRepository
	Encounters    EncounterRepository
	Prescriptions PrescriptionRepository
	Audit         AuditRepository

	// Ping reports backend health for the readiness probe.
	Ping func(ctx context.Context) error
	// Close releases backend resources.
	Close func(ctx context.Context) error
}
