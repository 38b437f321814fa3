package handler

import (
	"github.com/clinicworks/ehr-system/internal/core/domain"
)

const dateLayout = "2006-01-02"

// --- Domain → HTTP response ---

func toUserResponse(id domain.Identity) userResponse {
	return userResponse{ID: id.ID, Username: id.Username, Role: string(id.Role)}
}

func toPatientResponse(p *domain.Patient) patientResponse {
	return patientResponse{
		ID:          p.ID,
		FullName:    p.FullName,
		DateOfBirth: p.DateOfBirth.Format(dateLayout),
		Gender:      p.Gender,
		Phone:       p.Phone,
		CreatedAt:   p.CreatedAt.UTC(),
	}
}

func toPatientList(patients []*domain.Patient) []patientResponse {
	out := make([]patientResponse, 0, len(patients))
	for _, p := range patients {
		out = append(out, toPatientResponse(p))
	}
	return out
}

func toEncounterResponse(e *domain.Encounter) encounterResponse {
	return encounterResponse{
		ID:            e.ID,
		PatientID:     e.PatientID,
		ClinicianRole: e.ClinicianRole,
		Notes:         e.Notes,
		CreatedAt:     e.CreatedAt.UTC(),
	}
}

func toPrescriptionResponse(p *domain.Prescription, prescriber string) prescriptionResponse {
	return prescriptionResponse{
		ID:                 p.ID,
		EncounterID:        p.EncounterID,
		DrugName:           p.DrugName,
		Dosage:             p.Dosage,
		Frequency:          p.Frequency,
		Duration:           p.Duration,
		CreatedBy:          p.CreatedBy,
		PrescriberUsername: prescriber,
		CreatedAt:          p.CreatedAt.UTC(),
	}
}

func toRecordsResponse(r *domain.PatientRecords) patientRecordsResponse {
	encounters := make([]encounterResponse, 0, len(r.Encounters))
	for _, e := range r.Encounters {
		encounters = append(encounters, toEncounterResponse(e))
	}
	prescriptions := make([]prescriptionResponse, 0, len(r.Prescriptions))
	for _, p := range r.Prescriptions {
		prescriptions = append(prescriptions, toPrescriptionResponse(&p.Prescription, p.PrescriberUsername))
	}
	return patientRecordsResponse{
		Patient:       toPatientResponse(r.Patient),
		Encounters:    encounters,
		Prescriptions: prescriptions,
	}
}

func toAuditLog(entries []*domain.AuditEntry) []auditEntryResponse {
	out := make([]auditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, auditEntryResponse{
			ID:         e.ID,
			UserID:     e.UserID,
			UserRole:   string(e.UserRole),
			Action:     string(e.Action),
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			Timestamp:  e.Timestamp.UTC(),
		})
	}
	return out
}
