package domain

import "time"

// AuditAction is the kind of access recorded in the audit trail.
type AuditAction string

const (
	ActionCreate AuditAction = "CREATE"
	ActionRead   AuditAction = "READ"
	ActionUpdate AuditAction = "UPDATE"
	ActionDelete AuditAction = "DELETE"
)

// Audited entity types.
const (
	EntityPatient        = "patient"
	EntityPatientRecords = "patient_records"
	EntityEncounter      = "encounter"
	EntityPrescription   = "prescription"
)

// AuditEntry is an append-only record of a successful sensitive action.
// EntityID is nil when the action has no singular target.
type AuditEntry struct {
	ID         int64
	UserID     *int64
	UserRole   Role
	Action     AuditAction
	EntityType string
	EntityID   *int64
	Timestamp  time.Time
}
