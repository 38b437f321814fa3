// Package mongo implements the record store on MongoDB. Documents keep
// integer ids allocated from a counters collection so identifiers stay
// interchangeable with the relational backend.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/clinicworks/ehr-system/internal/core/ports"
)

const defaultTimeout = 10 * time.Second

const (
	collectionUsers         = "users"
	collectionPatients      = "patients"
	collectionEncounters    = "encounters"
	collectionPrescriptions = "prescriptions"
	collectionAudit         = "audit_logs"
	collectionCounters      = "counters"
)

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	return client, db, nil
}

// NewRecordStore exposes db through the repository ports. Close disconnects client.
func NewRecordStore(client *mongo.Client, db *mongo.Database) ports.RecordStore {
	seq := &sequence{col: db.Collection(collectionCounters)}
	return ports.RecordStore{
		Users:         &UserRepository{col: db.Collection(collectionUsers), seq: seq},
		Patients:      &PatientRepository{col: db.Collection(collectionPatients), seq: seq},
		Encounters:    &EncounterRepository{db: db, seq: seq},
		Prescriptions: &PrescriptionRepository{db: db, seq: seq},
		Audit:         &AuditRepository{col: db.Collection(collectionAudit), seq: seq},
		Ping: func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		},
		Close: client.Disconnect,
	}
}

// EnsureIndexes creates the unique and ordering indexes every collection relies on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := map[string][]mongo.IndexModel{
		collectionUsers: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		collectionPatients: {
			{Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
		},
		collectionEncounters: {
			{Keys: bson.D{{Key: "patient_id", Value: 1}}},
		},
		collectionPrescriptions: {
			{Keys: bson.D{{Key: "encounter_id", Value: 1}}},
		},
		collectionAudit: {
			{Keys: bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}},
		},
	}

	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// sequence hands out monotonically increasing ids per collection.
type sequence struct {
	col *mongo.Collection
}

type counterDoc struct {
	Name  string `bson:"_id"`
	Value int64  `bson:"seq"`
}

func (s *sequence) next(ctx context.Context, name string) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc counterDoc
	err := s.col.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", name, err)
	}
	return doc.Value, nil
}

// exists reports whether a document with the given id is present in col.
func exists(ctx context.Context, col *mongo.Collection, id int64) (bool, error) {
	err := col.FindOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
