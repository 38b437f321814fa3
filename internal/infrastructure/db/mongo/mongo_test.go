package mongo

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/clinicworks/ehr-system/internal/core/domain"
)

func TestSearchFilter_Empty(t *testing.T) {
	if f := searchFilter(""); len(f) != 0 {
		t.Fatalf("expected empty filter, got %v", f)
	}
}

func TestSearchFilter_QuotesAndIgnoresCase(t *testing.T) {
	f := searchFilter("a.b+(1)")
	or, ok := f["$or"].(bson.A)
	if !ok || len(or) != 2 {
		t.Fatalf("expected $or over two fields, got %v", f)
	}

	for i, field := range []string{"full_name", "phone"} {
		clause := or[i].(bson.M)
		re, ok := clause[field].(primitive.Regex)
		if !ok {
			t.Fatalf("clause %d: expected regex on %s, got %v", i, field, clause)
		}
		if re.Pattern != `a\.b\+\(1\)` {
			t.Errorf("pattern = %q", re.Pattern)
		}
		if re.Options != "i" {
			t.Errorf("options = %q, want i", re.Options)
		}
	}
}

func TestAuditDoc_NullableFields(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	raw, err := bson.Marshal(auditDoc{ID: 1, UserRole: "admin", Action: "READ", EntityType: "patient", Timestamp: ts})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v, ok := m["entity_id"]; !ok || v != nil {
		t.Errorf("entity_id should be stored as null, got %v (present=%v)", v, ok)
	}

	var doc auditDoc
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	entry := doc.toDomain()
	if entry.EntityID != nil || entry.UserID != nil {
		t.Errorf("expected nil ids, got %+v", entry)
	}
	if entry.Action != domain.ActionRead || entry.UserRole != domain.RoleAdmin || !entry.Timestamp.Equal(ts) {
		t.Errorf("unexpected entry: %+v", entry)
	}
}

func TestPatientDoc_OmitsMissingPhone(t *testing.T) {
	raw, err := bson.Marshal(patientDoc{ID: 3, FullName: "Ada", Gender: domain.GenderFemale})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := m["phone"]; ok {
		t.Errorf("phone should be omitted when nil")
	}
	if m["_id"] != int64(3) {
		t.Errorf("_id = %v, want int64 3", m["_id"])
	}
}
