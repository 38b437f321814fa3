package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/clinicworks/ehr-system/internal/core/domain"
)

type PrescriptionRepository struct {
	db  *mongo.Database
	seq *sequence
}

type prescriptionDoc struct {
	ID          int64     `bson:"_id"`
	EncounterID int64     `bson:"encounter_id"`
	DrugName    string    `bson:"drug_name"`
	Dosage      string    `bson:"dosage"`
	Frequency   string    `bson:"frequency"`
	Duration    string    `bson:"duration"`
	CreatedBy   int64     `bson:"created_by"`
	CreatedAt   time.Time `bson:"created_at"`
}

func (d prescriptionDoc) toDomain() domain.Prescription {
	return domain.Prescription{
		ID:          d.ID,
		EncounterID: d.EncounterID,
		DrugName:    d.DrugName,
		Dosage:      d.Dosage,
		Frequency:   d.Frequency,
		Duration:    d.Duration,
		CreatedBy:   d.CreatedBy,
		CreatedAt:   d.CreatedAt.UTC(),
	}
}

// Create inserts p after confirming its encounter exists.
func (r *PrescriptionRepository) Create(ctx context.Context, p *domain.Prescription) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	ok, err := exists(ctx, r.db.Collection(collectionEncounters), p.EncounterID)
	if err != nil {
		return fmt.Errorf("check encounter: %w", err)
	}
	if !ok {
		return domain.ErrEncounterNotFound
	}

	id, err := r.seq.next(ctx, collectionPrescriptions)
	if err != nil {
		return err
	}

	doc := prescriptionDoc{
		ID:          id,
		EncounterID: p.EncounterID,
		DrugName:    p.DrugName,
		Dosage:      p.Dosage,
		Frequency:   p.Frequency,
		Duration:    p.Duration,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt.UTC(),
	}
	if _, err := r.db.Collection(collectionPrescriptions).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert prescription: %w", err)
	}

	p.ID = id
	return nil
}

// ListByPatient resolves the patient's encounters, their prescriptions and
// the prescribers' usernames in three round trips.
func (r *PrescriptionRepository) ListByPatient(ctx context.Context, patientID int64) ([]*domain.PrescriptionDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	encounterIDs, err := r.db.Collection(collectionEncounters).Distinct(ctx, "_id", bson.M{"patient_id": patientID})
	if err != nil {
		return nil, fmt.Errorf("list encounter ids: %w", err)
	}
	if len(encounterIDs) == 0 {
		return []*domain.PrescriptionDetail{}, nil
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.db.Collection(collectionPrescriptions).Find(ctx,
		bson.M{"encounter_id": bson.M{"$in": encounterIDs}}, opts)
	if err != nil {
		return nil, fmt.Errorf("list prescriptions: %w", err)
	}
	defer cur.Close(ctx)

	var docs []prescriptionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode prescriptions: %w", err)
	}

	usernames, err := r.usernames(ctx, docs)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.PrescriptionDetail, 0, len(docs))
	for _, d := range docs {
		out = append(out, &domain.PrescriptionDetail{
			Prescription:       d.toDomain(),
			PrescriberUsername: usernames[d.CreatedBy],
		})
	}
	return out, nil
}

func (r *PrescriptionRepository) usernames(ctx context.Context, docs []prescriptionDoc) (map[int64]string, error) {
	names := make(map[int64]string)
	if len(docs) == 0 {
		return names, nil
	}

	ids := make(bson.A, 0, len(docs))
	seen := make(map[int64]bool)
	for _, d := range docs {
		if !seen[d.CreatedBy] {
			seen[d.CreatedBy] = true
			ids = append(ids, d.CreatedBy)
		}
	}

	opts := options.Find().SetProjection(bson.M{"username": 1})
	cur, err := r.db.Collection(collectionUsers).Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("resolve prescribers: %w", err)
	}
	defer cur.Close(ctx)

	var users []userDoc
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode prescribers: %w", err)
	}
	for _, u := range users {
		names[u.ID] = u.Username
	}
	return names, nil
}
