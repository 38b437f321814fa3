package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicworks/ehr-system/internal/core/domain"
	"github.com/clinicworks/ehr-system/internal/core/ports"
)

type EncounterService struct {
	patients   ports.PatientRepository
	encounters ports.EncounterRepository
	logger     zerolog.Logger
}

func NewEncounterService(patients ports.PatientRepository, encounters ports.EncounterRepository, logger zerolog.Logger) *EncounterService {
	return &EncounterService{patients: patients, encounters: encounters, logger: logger}
}

// CreateEncounter verifies the patient exists, then inserts the encounter.
func (s *EncounterService) CreateEncounter(ctx context.Context, input ports.CreateEncounterInput) (*domain.Encounter, error) {
	if _, err := s.patients.FindByID(ctx, input.PatientID); err != nil {
		return nil, fmt.Errorf("create encounter: %w", err)
	}

	encounter := &domain.Encounter{
		PatientID:     input.PatientID,
		ClinicianRole: input.ClinicianRole,
		Notes:         input.Notes,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.encounters.Create(ctx, encounter); err != nil {
		return nil, fmt.Errorf("create encounter: %w", err)
	}

	s.logger.Info().
		Int64("encounter_id", encounter.ID).
		Int64("patient_id", encounter.PatientID).
		Msg("encounter created")
	return encounter, nil
}
