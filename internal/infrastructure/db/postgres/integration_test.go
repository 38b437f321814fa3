//go:build integration

package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/clinicworks/ehr-system/internal/core/domain"
	"github.com/clinicworks/ehr-system/internal/core/ports"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("ehrtest"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "start postgres container: %v\n", err)
		os.Exit(1)
	}

	code := func() int {
		defer func() {
			if err := testcontainers.TerminateContainer(container); err != nil {
				fmt.Fprintf(os.Stderr, "terminate container: %v\n", err)
			}
		}()

		connStr, err := container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			fmt.Fprintf(os.Stderr, "connection string: %v\n", err)
			return 1
		}

		testPool, err = NewPool(ctx, connStr, 5, 1)
		if err != nil {
			fmt.Fprintf(os.Stderr, "connect: %v\n", err)
			return 1
		}
		defer testPool.Close()

		if _, err := NewMigrator(testPool, Migrations()).Up(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
			return 1
		}
		return m.Run()
	}()
	os.Exit(code)
}

func resetTables(t *testing.T) {
	t.Helper()
	_, err := testPool.Exec(context.Background(),
		`TRUNCATE audit_logs, prescriptions, encounters, patients, users RESTART IDENTITY CASCADE`)
	if err != nil {
		t.Fatalf("truncate: %v", err)
	}
}

func TestMigrator_Idempotent(t *testing.T) {
	ctx := context.Background()
	m := NewMigrator(testPool, Migrations())

	applied, err := m.Up(ctx)
	if err != nil {
		t.Fatalf("Up() error: %v", err)
	}
	if applied != 0 {
		t.Errorf("second Up() applied %d migrations, want 0", applied)
	}

	statuses, err := m.Status(ctx)
	if err != nil {
		t.Fatalf("Status() error: %v", err)
	}
	for _, s := range statuses {
		if !s.Applied || s.AppliedAt == nil {
			t.Errorf("migration %s not reported as applied", s.Name)
		}
	}
}

func TestRecordStore_ClinicalFlow(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	store := NewRecordStore(testPool)

	user := &domain.User{Username: "dr.house", PasswordHash: "hash", Role: domain.RoleDoctor, CreatedAt: time.Now().UTC()}
	if err := store.Users.Create(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := store.Users.Create(ctx, &domain.User{Username: "dr.house", PasswordHash: "x", Role: domain.RoleNurse, CreatedAt: time.Now().UTC()}); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("duplicate user: got %v, want ErrUserExists", err)
	}

	found, err := store.Users.FindByUsername(ctx, "dr.house")
	if err != nil || found.ID != user.ID || found.Role != domain.RoleDoctor {
		t.Fatalf("find user: %+v, %v", found, err)
	}
	if _, err := store.Users.FindByUsername(ctx, "nobody"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("missing user: got %v", err)
	}

	phone := "+1-555-0100"
	older := &domain.Patient{FullName: "Ada Lovelace", DateOfBirth: time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC), Gender: domain.GenderFemale, Phone: &phone, CreatedAt: time.Now().UTC().Add(-time.Minute)}
	newer := &domain.Patient{FullName: "Alan Turing", DateOfBirth: time.Date(1985, 6, 23, 0, 0, 0, 0, time.UTC), Gender: domain.GenderMale, CreatedAt: time.Now().UTC()}
	for _, p := range []*domain.Patient{older, newer} {
		if err := store.Patients.Create(ctx, p); err != nil {
			t.Fatalf("create patient: %v", err)
		}
	}

	all, err := store.Patients.List(ctx, ports.PatientFilter{Limit: 50})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0].ID != newer.ID {
		t.Fatalf("expected newest first, got %+v", all)
	}

	byName, err := store.Patients.List(ctx, ports.PatientFilter{Search: "lovelace", Limit: 50})
	if err != nil || len(byName) != 1 || byName[0].ID != older.ID {
		t.Fatalf("search by name: %+v, %v", byName, err)
	}
	byPhone, err := store.Patients.List(ctx, ports.PatientFilter{Search: "555-01", Limit: 50})
	if err != nil || len(byPhone) != 1 {
		t.Fatalf("search by phone: %+v, %v", byPhone, err)
	}
	wildcard, err := store.Patients.List(ctx, ports.PatientFilter{Search: "%", Limit: 50})
	if err != nil || len(wildcard) != 0 {
		t.Fatalf("wildcard search should match literally: %+v, %v", wildcard, err)
	}

	got, err := store.Patients.FindByID(ctx, older.ID)
	if err != nil {
		t.Fatalf("find patient: %v", err)
	}
	if got.Phone == nil || *got.Phone != phone || !got.DateOfBirth.Equal(older.DateOfBirth) {
		t.Errorf("patient round trip mismatch: %+v", got)
	}
	if _, err := store.Patients.FindByID(ctx, 9999); !errors.Is(err, domain.ErrPatientNotFound) {
		t.Fatalf("missing patient: got %v", err)
	}

	enc := &domain.Encounter{PatientID: older.ID, ClinicianRole: "doctor", CreatedAt: time.Now().UTC()}
	if err := store.Encounters.Create(ctx, enc); err != nil {
		t.Fatalf("create encounter: %v", err)
	}
	if err := store.Encounters.Create(ctx, &domain.Encounter{PatientID: 9999, ClinicianRole: "doctor", CreatedAt: time.Now().UTC()}); !errors.Is(err, domain.ErrPatientNotFound) {
		t.Fatalf("orphan encounter: got %v", err)
	}

	rx := &domain.Prescription{EncounterID: enc.ID, DrugName: "Amoxicillin", Dosage: "500mg", Frequency: "TID", Duration: "7 days", CreatedBy: user.ID, CreatedAt: time.Now().UTC()}
	if err := store.Prescriptions.Create(ctx, rx); err != nil {
		t.Fatalf("create prescription: %v", err)
	}
	orphan := &domain.Prescription{EncounterID: 9999, DrugName: "x", Dosage: "x", Frequency: "x", Duration: "x", CreatedBy: user.ID, CreatedAt: time.Now().UTC()}
	if err := store.Prescriptions.Create(ctx, orphan); !errors.Is(err, domain.ErrEncounterNotFound) {
		t.Fatalf("orphan prescription: got %v", err)
	}

	encounters, err := store.Encounters.ListByPatient(ctx, older.ID)
	if err != nil || len(encounters) != 1 {
		t.Fatalf("list encounters: %+v, %v", encounters, err)
	}
	prescriptions, err := store.Prescriptions.ListByPatient(ctx, older.ID)
	if err != nil || len(prescriptions) != 1 {
		t.Fatalf("list prescriptions: %+v, %v", prescriptions, err)
	}
	if prescriptions[0].PrescriberUsername != "dr.house" {
		t.Errorf("prescriber = %q, want dr.house", prescriptions[0].PrescriberUsername)
	}
}

func TestAuditRepo_ListRecent(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	store := NewRecordStore(testPool)

	base := time.Now().UTC().Truncate(time.Millisecond)
	uid := int64(7)
	for i := 0; i < 3; i++ {
		entityID := int64(i + 1)
		entry := &domain.AuditEntry{
			UserID:     &uid,
			UserRole:   domain.RoleNurse,
			Action:     domain.ActionRead,
			EntityType: domain.EntityPatient,
			EntityID:   &entityID,
			Timestamp:  base.Add(time.Duration(i) * time.Second),
		}
		if err := store.Audit.Insert(ctx, entry); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	if err := store.Audit.Insert(ctx, &domain.AuditEntry{UserRole: domain.RoleDoctor, Action: domain.ActionCreate, EntityType: domain.EntityEncounter, Timestamp: base.Add(-time.Hour)}); err != nil {
		t.Fatalf("insert without entity: %v", err)
	}

	entries, err := store.Audit.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if *entries[0].EntityID != 3 || *entries[1].EntityID != 2 {
		t.Errorf("expected newest first, got %d then %d", *entries[0].EntityID, *entries[1].EntityID)
	}

	all, err := store.Audit.ListRecent(ctx, 100)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	last := all[len(all)-1]
	if last.EntityID != nil || last.UserID != nil {
		t.Errorf("expected null entity and user, got %+v", last)
	}
}
