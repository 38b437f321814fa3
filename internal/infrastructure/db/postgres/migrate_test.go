package postgres

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/clinicworks/ehr-system/internal/core/domain"
)

func TestMigratorLoad_SortsByVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"010_tables.sql": {Data: []byte("SELECT 10;")},
		"002_second.sql": {Data: []byte("SELECT 2;")},
		"001_first.sql":  {Data: []byte("SELECT 1;")},
	}

	migrations, err := NewMigrator(nil, fsys).Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(migrations) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migrations))
	}

	want := []int{1, 2, 10}
	for i, v := range want {
		if migrations[i].Version != v {
			t.Errorf("migrations[%d].Version = %d, want %d", i, migrations[i].Version, v)
		}
	}
	if migrations[0].Name != "001_first.sql" || migrations[0].SQL != "SELECT 1;" {
		t.Errorf("unexpected first migration: %+v", migrations[0])
	}
}

func TestMigratorLoad_SkipsUnrelatedFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"001_init.sql":      {Data: []byte("SELECT 1;")},
		"README.md":         {Data: []byte("docs")},
		"notes.sql":         {Data: []byte("SELECT 0;")},
		"abc_bad.sql":       {Data: []byte("SELECT 0;")},
		"archive/002_x.sql": {Data: []byte("SELECT 2;")},
	}

	migrations, err := NewMigrator(nil, fsys).Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(migrations) != 1 {
		t.Fatalf("expected 1 migration, got %d: %+v", len(migrations), migrations)
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	migrations, err := NewMigrator(nil, Migrations()).Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("expected embedded migrations")
	}
	if migrations[0].Version != 1 {
		t.Errorf("first version = %d, want 1", migrations[0].Version)
	}

	for _, table := range []string{"users", "patients", "encounters", "prescriptions", "audit_logs"} {
		if !strings.Contains(migrations[0].SQL, "CREATE TABLE IF NOT EXISTS "+table) {
			t.Errorf("initial migration does not create %s", table)
		}
	}
	for constraint := range fkErrors {
		if !strings.Contains(migrations[0].SQL, constraint) {
			t.Errorf("initial migration does not name constraint %s", constraint)
		}
	}
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"patient fk", &pgconn.PgError{Code: codeForeignKeyViolation, ConstraintName: "encounters_patient_id_fkey"}, domain.ErrPatientNotFound},
		{"encounter fk", &pgconn.PgError{Code: codeForeignKeyViolation, ConstraintName: "prescriptions_encounter_id_fkey"}, domain.ErrEncounterNotFound},
		{"duplicate user", &pgconn.PgError{Code: codeUniqueViolation, TableName: "users"}, domain.ErrUserExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := translate(tt.err); got != tt.want {
				t.Errorf("translate() = %v, want %v", got, tt.want)
			}
		})
	}

	other := &pgconn.PgError{Code: "42P01"}
	if got := translate(other); got != error(other) {
		t.Errorf("unrelated error should pass through, got %v", got)
	}
}

func TestLikeEscaper(t *testing.T) {
	if got := likeEscaper.Replace(`50%_off\`); got != `50\%\_off\\` {
		t.Errorf("likeEscaper = %q", got)
	}
}
