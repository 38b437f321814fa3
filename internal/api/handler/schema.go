package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type authResponse struct {
	User userResponse `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Patients ---

type createPatientRequest struct {
	FullName    string  `json:"full_name"     validate:"required,max=200"`
	DateOfBirth string  `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	Gender      string  `json:"gender"        validate:"required,oneof=male female other"`
	Phone       *string `json:"phone"         validate:"omitempty,max=32"`
}

type patientResponse struct {
	ID          int64     `json:"id"`
	FullName    string    `json:"full_name"`
	DateOfBirth string    `json:"date_of_birth"`
	Gender      string    `json:"gender"`
	Phone       *string   `json:"phone"`
	CreatedAt   time.Time `json:"created_at"`
}

// --- Encounters ---

type createEncounterRequest struct {
	PatientID     int64   `json:"patient_id"     validate:"required,gt=0"`
	ClinicianRole string  `json:"clinician_role" validate:"required,max=64"`
	Notes         *string `json:"notes"`
}

type encounterResponse struct {
	ID            int64     `json:"id"`
	PatientID     int64     `json:"patient_id"`
	ClinicianRole string    `json:"clinician_role"`
	Notes         *string   `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
}

// --- Prescriptions ---

type createPrescriptionRequest struct {
	EncounterID int64  `json:"encounter_id" validate:"required,gt=0"`
	DrugName    string `json:"drug_name"    validate:"required,max=200"`
	Dosage      string `json:"dosage"       validate:"required,max=100"`
	Frequency   string `json:"frequency"    validate:"required,max=100"`
	Duration    string `json:"duration"     validate:"required,max=100"`
}

type prescriptionResponse struct {
	ID                 int64     `json:"id"`
	EncounterID        int64     `json:"encounter_id"`
	DrugName           string    `json:"drug_name"`
	Dosage             string    `json:"dosage"`
	Frequency          string    `json:"frequency"`
	Duration           string    `json:"duration"`
	CreatedBy          int64     `json:"created_by"`
	PrescriberUsername string    `json:"prescriber_username,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

type patientRecordsResponse struct {
	Patient       patientResponse        `json:"patient"`
	Encounters    []encounterResponse    `json:"encounters"`
	Prescriptions []prescriptionResponse `json:"prescriptions"`
}

// --- Audit ---

type auditEntryResponse struct {
	ID         int64     `json:"id"`
	UserID     *int64    `json:"user_id"`
	UserRole   string    `json:"user_role"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type"`
	EntityID   *int64    `json:"entity_id"`
	Timestamp  time.Time `json:"timestamp"`
}
