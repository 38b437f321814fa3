package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicworks/ehr-system/internal/core/domain"
	"github.com/clinicworks/ehr-system/internal/core/ports"
)

// PatientListLimit caps the rows returned by a patient listing.
const PatientListLimit = 50

type PatientService struct {
	patients      ports.PatientRepository
	encounters    ports.EncounterRepository
	prescriptions ports.PrescriptionRepository
	logger        zerolog.Logger
}

func NewPatientService(
	patients ports.PatientRepository,
	encounters ports.EncounterRepository,
	prescriptions ports.PrescriptionRepository,
	logger zerolog.Logger,
) *PatientService {
	return &PatientService{
		patients:      patients,
		encounters:    encounters,
		prescriptions: prescriptions,
		logger:        logger,
	}
}

func (s *PatientService) CreatePatient(ctx context.Context, input ports.CreatePatientInput) (*domain.Patient, error) {
	patient := &domain.Patient{
		FullName:    input.FullName,
		DateOfBirth: input.DateOfBirth,
		Gender:      input.Gender,
		Phone:       input.Phone,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.patients.Create(ctx, patient); err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}

	s.logger.Info().Int64("patient_id", patient.ID).Msg("patient created")
	return patient, nil
}

func (s *PatientService) GetPatient(ctx context.Context, id int64) (*domain.Patient, error) {
	patient, err := s.patients.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get patient: %w", err)
	}
	return patient, nil
}

func (s *PatientService) ListPatients(ctx context.Context, search string) ([]*domain.Patient, error) {
	patients, err := s.patients.List(ctx, ports.PatientFilter{
		Search: strings.TrimSpace(search),
		Limit:  PatientListLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return patients, nil
}

// GetRecords returns the patient with every encounter and prescription on file.
func (s *PatientService) GetRecords(ctx context.Context, patientID int64) (*domain.PatientRecords, error) {
	patient, err := s.patients.FindByID(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("get records: %w", err)
	}

	encounters, err := s.encounters.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("get records: encounters: %w", err)
	}

	prescriptions, err := s.prescriptions.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("get records: prescriptions: %w", err)
	}

	return &domain.PatientRecords{
		Patient:       patient,
		Encounters:    encounters,
		Prescriptions: prescriptions,
	}, nil
}
