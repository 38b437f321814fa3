package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicworks/ehr-system/internal/core/domain"
	"github.com/clinicworks/ehr-system/internal/core/ports"
)

type PrescriptionService struct {
	encounters    ports.EncounterRepository
	prescriptions ports.PrescriptionRepository
	logger        zerolog.Logger
}

func NewPrescriptionService(encounters ports.EncounterRepository, prescriptions ports.PrescriptionRepository, logger zerolog.Logger) *PrescriptionService {
	return &PrescriptionService{encounters: encounters, prescriptions: prescriptions, logger: logger}
}

// CreatePrescription verifies the encounter exists, then inserts the prescription.
func (s *PrescriptionService) CreatePrescription(ctx context.Context, input ports.CreatePrescriptionInput) (*domain.Prescription, error) {
	if _, err := s.encounters.FindByID(ctx, input.EncounterID); err != nil {
		return nil, fmt.Errorf("create prescription: %w", err)
	}

	prescription := &domain.Prescription{
		EncounterID: input.EncounterID,
		DrugName:    input.DrugName,
		Dosage:      input.Dosage,
		Frequency:   input.Frequency,
		Duration:    input.Duration,
		CreatedBy:   input.CreatedBy,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.prescriptions.Create(ctx, prescription); err != nil {
		return nil, fmt.Errorf("create prescription: %w", err)
	}

	s.logger.Info().
		Int64("prescription_id", prescription.ID).
		Int64("encounter_id", prescription.EncounterID).
		Int64("created_by", prescription.CreatedBy).
		Msg("prescription created")
	return prescription, nil
}
