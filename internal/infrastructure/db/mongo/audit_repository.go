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

// AuditRepository appends to and reads from the audit_logs collection.
type AuditRepository struct {
	col *mongo.Collection
	seq *sequence
}

type auditDoc struct {
	ID         int64     `bson:"_id"`
	UserID     *int64    `bson:"user_id"`
	UserRole   string    `bson:"user_role"`
	Action     string    `bson:"action"`
	EntityType string    `bson:"entity_type"`
	EntityID   *int64    `bson:"entity_id"`
	Timestamp  time.Time `bson:"timestamp"`
}

func (d auditDoc) toDomain() *domain.AuditEntry {
	return &domain.AuditEntry{
		ID:         d.ID,
		UserID:     d.UserID,
		UserRole:   domain.Role(d.UserRole),
		Action:     domain.AuditAction(d.Action),
		EntityType: d.EntityType,
		EntityID:   d.EntityID,
		Timestamp:  d.Timestamp.UTC(),
	}
}

func (r *AuditRepository) Insert(ctx context.Context, entry *domain.AuditEntry) error {
	id, err := r.seq.next(ctx, collectionAudit)
	if err != nil {
		return err
	}

	doc := auditDoc{
		ID:         id,
		UserID:     entry.UserID,
		UserRole:   string(entry.UserRole),
		Action:     string(entry.Action),
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Timestamp:  entry.Timestamp.UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}

	entry.ID = id
	return nil
}

func (r *AuditRepository) ListRecent(ctx context.Context, limit int) ([]*domain.AuditEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer cur.Close(ctx)

	var docs []auditDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode audit entries: %w", err)
	}

	entries := make([]*domain.AuditEntry, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, d.toDomain())
	}
	return entries, nil
}
