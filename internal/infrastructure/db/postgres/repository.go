package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicworks/ehr-system/internal/core/domain"
	"github.com/clinicworks/ehr-system/internal/core/ports"
)

const (
	codeForeignKeyViolation = "23503"
	codeUniqueViolation     = "23505"
)

// fkErrors maps foreign key constraints to the domain error for the missing parent.
var fkErrors = map[string]error{
	"encounters_patient_id_fkey":      domain.ErrPatientNotFound,
	"prescriptions_encounter_id_fkey": domain.ErrEncounterNotFound,
	"prescriptions_created_by_fkey":   domain.ErrUserNotFound,
}

// translate converts constraint violations into domain errors. A parent
// deleted between the service's existence check and the insert still
// surfaces as not found.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeForeignKeyViolation:
		if mapped, ok := fkErrors[pgErr.ConstraintName]; ok {
			return mapped
		}
	case codeUniqueViolation:
		if pgErr.TableName == "users" {
			return domain.ErrUserExists
		}
	}
	return err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// --- Users ---

type userRepo struct {
	pool *pgxpool.Pool
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	err := r.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, role, created_at FROM users WHERE username = $1`,
		username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (username, password_hash, role, created_at)
		 VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		user.Username, user.PasswordHash, user.Role, user.CreatedAt,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if mapped := translate(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// --- Patients ---

type patientRepo struct {
	pool *pgxpool.Pool
}

const patientCols = `id, full_name, date_of_birth, gender, phone, created_at`

func scanPatient(row pgx.Row) (*domain.Patient, error) {
	var p domain.Patient
	if err := row.Scan(&p.ID, &p.FullName, &p.DateOfBirth, &p.Gender, &p.Phone, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *patientRepo) Create(ctx context.Context, p *domain.Patient) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO patients (full_name, date_of_birth, gender, phone, created_at)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`,
		p.FullName, p.DateOfBirth, p.Gender, p.Phone, p.CreatedAt,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert patient: %w", err)
	}
	return nil
}

func (r *patientRepo) FindByID(ctx context.Context, id int64) (*domain.Patient, error) {
	p, err := scanPatient(r.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPatientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find patient: %w", err)
	}
	return p, nil
}

func (r *patientRepo) List(ctx context.Context, filter ports.PatientFilter) ([]*domain.Patient, error) {
	pattern := "%" + likeEscaper.Replace(filter.Search) + "%"
	rows, err := r.pool.Query(ctx,
		`SELECT `+patientCols+` FROM patients
		 WHERE $1 = '' OR full_name ILIKE $2 OR phone ILIKE $2
		 ORDER BY created_at DESC, id DESC
		 LIMIT $3`,
		filter.Search, pattern, filter.Limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	defer rows.Close()

	patients := make([]*domain.Patient, 0)
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		patients = append(patients, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate patients: %w", err)
	}
	return patients, nil
}

// --- Encounters ---

type encounterRepo struct {
	pool *pgxpool.Pool
}

const encounterCols = `id, patient_id, clinician_role, notes, created_at`

func scanEncounter(row pgx.Row) (*domain.Encounter, error) {
	var e domain.Encounter
	if err := row.Scan(&e.ID, &e.PatientID, &e.ClinicianRole, &e.Notes, &e.CreatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *encounterRepo) Create(ctx context.Context, e *domain.Encounter) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO encounters (patient_id, clinician_role, notes, created_at)
		 VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		e.PatientID, e.ClinicianRole, e.Notes, e.CreatedAt,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		if mapped := translate(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("insert encounter: %w", err)
	}
	return nil
}

func (r *encounterRepo) FindByID(ctx context.Context, id int64) (*domain.Encounter, error) {
	e, err := scanEncounter(r.pool.QueryRow(ctx, `SELECT `+encounterCols+` FROM encounters WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrEncounterNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find encounter: %w", err)
	}
	return e, nil
}

func (r *encounterRepo) ListByPatient(ctx context.Context, patientID int64) ([]*domain.Encounter, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+encounterCols+` FROM encounters WHERE patient_id = $1 ORDER BY created_at DESC, id DESC`,
		patientID,
	)
	if err != nil {
		return nil, fmt.Errorf("list encounters: %w", err)
	}
	defer rows.Close()

	encounters := make([]*domain.Encounter, 0)
	for rows.Next() {
		e, err := scanEncounter(rows)
		if err != nil {
			return nil, fmt.Errorf("scan encounter: %w", err)
		}
		encounters = append(encounters, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate encounters: %w", err)
	}
	return encounters, nil
}

// --- Prescriptions ---

type prescriptionRepo struct {
	pool *pgxpool.Pool
}

func (r *prescriptionRepo) Create(ctx context.Context, p *domain.Prescription) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO prescriptions (encounter_id, drug_name, dosage, frequency, duration, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at`,
		p.EncounterID, p.DrugName, p.Dosage, p.Frequency, p.Duration, p.CreatedBy, p.CreatedAt,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if mapped := translate(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("insert prescription: %w", err)
	}
	return nil
}

func (r *prescriptionRepo) ListByPatient(ctx context.Context, patientID int64) ([]*domain.PrescriptionDetail, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT p.id, p.encounter_id, p.drug_name, p.dosage, p.frequency, p.duration,
		        p.created_by, p.created_at, COALESCE(u.username, '')
		 FROM prescriptions p
		 JOIN encounters e ON e.id = p.encounter_id
		 LEFT JOIN users u ON u.id = p.created_by
		 WHERE e.patient_id = $1
		 ORDER BY p.created_at DESC, p.id DESC`,
		patientID,
	)
	if err != nil {
		return nil, fmt.Errorf("list prescriptions: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.PrescriptionDetail, 0)
	for rows.Next() {
		var d domain.PrescriptionDetail
		if err := rows.Scan(
			&d.ID, &d.EncounterID, &d.DrugName, &d.Dosage, &d.Frequency, &d.Duration,
			&d.CreatedBy, &d.CreatedAt, &d.PrescriberUsername,
		); err != nil {
			return nil, fmt.Errorf("scan prescription: %w", err)
		}
		out = append(out, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prescriptions: %w", err)
	}
	return out, nil
}

// --- Audit ---

type auditRepo struct {
	pool *pgxpool.Pool
}

func (r *auditRepo) Insert(ctx context.Context, entry *domain.AuditEntry) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO audit_logs (user_id, user_role, action, entity_type, entity_id, "timestamp")
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		entry.UserID, entry.UserRole, entry.Action, entry.EntityType, entry.EntityID, entry.Timestamp,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (r *auditRepo) ListRecent(ctx context.Context, limit int) ([]*domain.AuditEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, user_role, action, entity_type, entity_id, "timestamp"
		 FROM audit_logs ORDER BY "timestamp" DESC, id DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*domain.AuditEntry, 0)
	for rows.Next() {
		var e domain.AuditEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.UserRole, &e.Action, &e.EntityType, &e.EntityID, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}
