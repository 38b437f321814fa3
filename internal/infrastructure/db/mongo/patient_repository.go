package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/clinicworks/ehr-system/internal/core/domain"
	"github.com/clinicworks/ehr-system/internal/core/ports"
)

type PatientRepository struct {
	col *mongo.Collection
	seq *sequence
}

type patientDoc struct {
	ID          int64     `bson:"_id"`
	FullName    string    `bson:"full_name"`
	DateOfBirth time.Time `bson:"date_of_birth"`
	Gender      string    `bson:"gender"`
	Phone       *string   `bson:"phone,omitempty"`
	CreatedAt   time.Time `bson:"created_at"`
}

func (d patientDoc) toDomain() *domain.Patient {
	return &domain.Patient{
		ID:          d.ID,
		FullName:    d.FullName,
		DateOfBirth: d.DateOfBirth.UTC(),
		Gender:      d.Gender,
		Phone:       d.Phone,
		CreatedAt:   d.CreatedAt.UTC(),
	}
}

func (r *PatientRepository) Create(ctx context.Context, p *domain.Patient) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.seq.next(ctx, collectionPatients)
	if err != nil {
		return err
	}

	doc := patientDoc{
		ID:          id,
		FullName:    p.FullName,
		DateOfBirth: p.DateOfBirth.UTC(),
		Gender:      p.Gender,
		Phone:       p.Phone,
		CreatedAt:   p.CreatedAt.UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert patient: %w", err)
	}

	p.ID = id
	return nil
}

func (r *PatientRepository) FindByID(ctx context.Context, id int64) (*domain.Patient, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc patientDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPatientNotFound
		}
		return nil, fmt.Errorf("find patient: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *PatientRepository) List(ctx context.Context, filter ports.PatientFilter) ([]*domain.Patient, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(filter.Limit))

	cur, err := r.col.Find(ctx, searchFilter(filter.Search), opts)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	defer cur.Close(ctx)

	var docs []patientDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode patients: %w", err)
	}

	patients := make([]*domain.Patient, 0, len(docs))
	for _, d := range docs {
		patients = append(patients, d.toDomain())
	}
	return patients, nil
}

// searchFilter matches search as a literal, case-insensitive substring of
// full_name or phone. An empty search matches everything.
func searchFilter(search string) bson.M {
	if search == "" {
		return bson.M{}
	}
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
	return bson.M{"$or": bson.A{
		bson.M{"full_name": pattern},
		bson.M{"phone": pattern},
	}}
}
