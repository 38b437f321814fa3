package service

import (
	"context"
	"sort"
	"strings"

	"github.com/clinicworks/ehr-system/internal/core/domain"
	"github.com/clinicworks/ehr-system/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users   map[string]*domain.User
	nextID  int64
	findErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) error {
	if _, exists := r.users[user.Username]; exists {
		return domain.ErrUserExists
	}
	r.nextID++
	user.ID = r.nextID
	clone := *user
	r.users[user.Username] = &clone
	return nil
}

type stubPatientRepo struct {
	rows       map[int64]*domain.Patient
	nextID     int64
	lastFilter ports.PatientFilter
	createErr  error
}

func newStubPatientRepo() *stubPatientRepo {
	return &stubPatientRepo{rows: make(map[int64]*domain.Patient)}
}

func (r *stubPatientRepo) Create(_ context.Context, p *domain.Patient) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	p.ID = r.nextID
	clone := *p
	r.rows[p.ID] = &clone
	return nil
}

func (r *stubPatientRepo) FindByID(_ context.Context, id int64) (*domain.Patient, error) {
	p, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrPatientNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubPatientRepo) List(_ context.Context, f ports.PatientFilter) ([]*domain.Patient, error) {
	r.lastFilter = f
	var out []*domain.Patient
	for _, p := range r.rows {
		if f.Search != "" && !strings.Contains(strings.ToLower(p.FullName), strings.ToLower(f.Search)) {
			continue
		}
		clone := *p
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

type stubEncounterRepo struct {
	rows   map[int64]*domain.Encounter
	nextID int64
}

func newStubEncounterRepo() *stubEncounterRepo {
	return &stubEncounterRepo{rows: make(map[int64]*domain.Encounter)}
}

func (r *stubEncounterRepo) Create(_ context.Context, e *domain.Encounter) error {
	r.nextID++
	e.ID = r.nextID
	clone := *e
	r.rows[e.ID] = &clone
	return nil
}

func (r *stubEncounterRepo) FindByID(_ context.Context, id int64) (*domain.Encounter, error) {
	e, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrEncounterNotFound
	}
	clone := *e
	return &clone, nil
}

func (r *stubEncounterRepo) ListByPatient(_ context.Context, patientID int64) ([]*domain.Encounter, error) {
	var out []*domain.Encounter
	for _, e := range r.rows {
		if e.PatientID == patientID {
			clone := *e
			out = append(out, &clone)
		}
	}
	return out, nil
}

type stubPrescriptionRepo struct {
	rows       []*domain.Prescription
	encounters *stubEncounterRepo
	listErr    error
}

func (r *stubPrescriptionRepo) Create(_ context.Context, p *domain.Prescription) error {
	p.ID = int64(len(r.rows) + 1)
	clone := *p
	r.rows = append(r.rows, &clone)
	return nil
}

func (r *stubPrescriptionRepo) ListByPatient(_ context.Context, patientID int64) ([]*domain.PrescriptionDetail, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*domain.PrescriptionDetail
	for _, p := range r.rows {
		e, ok := r.encounters.rows[p.EncounterID]
		if !ok || e.PatientID != patientID {
			continue
		}
		out = append(out, &domain.PrescriptionDetail{Prescription: *p})
	}
	return out, nil
}

type stubAuditRepo struct {
	entries   []*domain.AuditEntry
	insertErr error
	lastLimit int
}

func (r *stubAuditRepo) Insert(_ context.Context, entry *domain.AuditEntry) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	entry.ID = int64(len(r.entries) + 1)
	clone := *entry
	r.entries = append(r.entries, &clone)
	return nil
}

func (r *stubAuditRepo) ListRecent(_ context.Context, limit int) ([]*domain.AuditEntry, error) {
	r.lastLimit = limit
	return r.entries, nil
}
