package domain

import "time"

// Gender values accepted for a patient.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// Patient is a registered clinic patient. Patients are never mutated or
// deleted once created.
type Patient struct {
	ID          int64
	FullName    string
	DateOfBirth time.Time
	Gender      string
	Phone       *string
	CreatedAt   time.Time
}

// Encounter is a clinical contact with a patient.
type Encounter struct {
	ID            int64
	PatientID     int64
	ClinicianRole string
	Notes         *string
	CreatedAt     time.Time
}

// Prescription is a medication order attached to an encounter.
type Prescription struct {
	ID          int64
	EncounterID int64
	DrugName    string
	Dosage      string
	Frequency   string
	Duration    string
	CreatedBy   int64
	CreatedAt   time.Time
}

// PrescriptionDetail is a prescription enriched with the prescriber's username.
// PrescriberUsername is empty when the prescribing account no longer resolves.
type PrescriptionDetail struct {
	Prescription
	PrescriberUsername string
}

// PatientRecords is the aggregated clinical history of one patient.
type PatientRecords struct {
	Patient       *Patient
	Encounters    []*Encounter
	Prescriptions []*PrescriptionDetail
}
