package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/clinicworks/ehr-system/internal/core/domain"
)

type EncounterRepository struct {
	db  *mongo.Database
	seq *sequence
}

type encounterDoc struct {
	ID            int64     `bson:"_id"`
	PatientID     int64     `bson:"patient_id"`
	ClinicianRole string    `bson:"clinician_role"`
	Notes         *string   `bson:"notes,omitempty"`
	CreatedAt     time.Time `bson:"created_at"`
}

func (d encounterDoc) toDomain() *domain.Encounter {
	return &domain.Encounter{
		ID:            d.ID,
		PatientID:     d.PatientID,
		ClinicianRole: d.ClinicianRole,
		Notes:         d.Notes,
		CreatedAt:     d.CreatedAt.UTC(),
	}
}

// Create inserts e after confirming its patient exists.
func (r *EncounterRepository) Create(ctx context.Context, e *domain.Encounter) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	ok, err := exists(ctx, r.db.Collection(collectionPatients), e.PatientID)
	if err != nil {
		return fmt.Errorf("check patient: %w", err)
	}
	if !ok {
		return domain.ErrPatientNotFound
	}

	id, err := r.seq.next(ctx, collectionEncounters)
	if err != nil {
		return err
	}

	doc := encounterDoc{
		ID:            id,
		PatientID:     e.PatientID,
		ClinicianRole: e.ClinicianRole,
		Notes:         e.Notes,
		CreatedAt:     e.CreatedAt.UTC(),
	}
	if _, err := r.db.Collection(collectionEncounters).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert encounter: %w", err)
	}

	e.ID = id
	return nil
}

func (r *EncounterRepository) FindByID(ctx context.Context, id int64) (*domain.Encounter, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc encounterDoc
	if err := r.db.Collection(collectionEncounters).FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrEncounterNotFound
		}
		return nil, fmt.Errorf("find encounter: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *EncounterRepository) ListByPatient(ctx context.Context, patientID int64) ([]*domain.Encounter, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.db.Collection(collectionEncounters).Find(ctx, bson.M{"patient_id": patientID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list encounters: %w", err)
	}
	defer cur.Close(ctx)

	var docs []encounterDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode encounters: %w", err)
	}

	encounters := make([]*domain.Encounter, 0, len(docs))
	for _, d := range docs {
		encounters = append(encounters, d.toDomain())
	}
	return encounters, nil
}
