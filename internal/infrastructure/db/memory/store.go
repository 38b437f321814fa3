// Package memory is a process-local record store used for development and
// tests. Data does not survive a restart.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/clinicworks/ehr-system/internal/core/domain"
	"github.com/clinicworks/ehr-system/internal/core/ports"
)

// Store holds every table behind a single lock.
type Store struct {
	mu sync.RWMutex

	users         map[int64]*domain.User
	patients      map[int64]*domain.Patient
	encounters    map[int64]*domain.Encounter
	prescriptions map[int64]*domain.Prescription
	audit         []*domain.AuditEntry

	seq map[string]int64
}

func New() *Store {
	return &Store{
		users:         make(map[int64]*domain.User),
		patients:      make(map[int64]*domain.Patient),
		encounters:    make(map[int64]*domain.Encounter),
		prescriptions: make(map[int64]*domain.Prescription),
		seq:           make(map[string]int64),
	}
}

// RecordStore exposes s through the repository ports.
func (s *Store) RecordStore() ports.RecordStore {
	return ports.RecordStore{
		Users:         userRepo{s},
		Patients:      patientRepo{s},
		Encounters:    encounterRepo{s},
		Prescriptions: prescriptionRepo{s},
		Audit:         auditRepo{s},
		Ping:          func(context.Context) error { return nil },
		Close:         func(context.Context) error { return nil },
	}
}

// AuditEntries returns a snapshot of the audit log in insertion order.
func (s *Store) AuditEntries() []domain.AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.AuditEntry, 0, len(s.audit))
	for _, e := range s.audit {
		out = append(out, *e)
	}
	return out
}

// Counts reports the number of rows per table.
func (s *Store) Counts() (patients, encounters, prescriptions int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.patients), len(s.encounters), len(s.prescriptions)
}

func (s *Store) next(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

// --- Users ---

type userRepo struct{ s *Store }

func (r userRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == user.Username {
			return domain.ErrUserExists
		}
	}
	user.ID = r.s.next("users")
	clone := *user
	r.s.users[user.ID] = &clone
	return nil
}

// --- Patients ---

type patientRepo struct{ s *Store }

func (r patientRepo) Create(_ context.Context, p *domain.Patient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = r.s.next("patients")
	clone := *p
	r.s.patients[p.ID] = &clone
	return nil
}

func (r patientRepo) FindByID(_ context.Context, id int64) (*domain.Patient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.patients[id]
	if !ok {
		return nil, domain.ErrPatientNotFound
	}
	clone := *p
	return &clone, nil
}

func (r patientRepo) List(_ context.Context, filter ports.PatientFilter) ([]*domain.Patient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	search := strings.ToLower(filter.Search)
	out := make([]*domain.Patient, 0, len(r.s.patients))
	for _, p := range r.s.patients {
		if search != "" && !matchesPatient(p, search) {
			continue
		}
		clone := *p
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		return newer(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func matchesPatient(p *domain.Patient, search string) bool {
	if strings.Contains(strings.ToLower(p.FullName), search) {
		return true
	}
	return p.Phone != nil && strings.Contains(strings.ToLower(*p.Phone), search)
}

// --- Encounters ---

type encounterRepo struct{ s *Store }

func (r encounterRepo) Create(_ context.Context, e *domain.Encounter) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.patients[e.PatientID]; !ok {
		return domain.ErrPatientNotFound
	}
	e.ID = r.s.next("encounters")
	clone := *e
	r.s.encounters[e.ID] = &clone
	return nil
}

func (r encounterRepo) FindByID(_ context.Context, id int64) (*domain.Encounter, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.encounters[id]
	if !ok {
		return nil, domain.ErrEncounterNotFound
	}
	clone := *e
	return &clone, nil
}

func (r encounterRepo) ListByPatient(_ context.Context, patientID int64) ([]*domain.Encounter, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*domain.Encounter, 0)
	for _, e := range r.s.encounters {
		if e.PatientID == patientID {
			clone := *e
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return newer(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID)
	})
	return out, nil
}

// --- Prescriptions ---

type prescriptionRepo struct{ s *Store }

func (r prescriptionRepo) Create(_ context.Context, p *domain.Prescription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.encounters[p.EncounterID]; !ok {
		return domain.ErrEncounterNotFound
	}
	p.ID = r.s.next("prescriptions")
	clone := *p
	r.s.prescriptions[p.ID] = &clone
	return nil
}

func (r prescriptionRepo) ListByPatient(_ context.Context, patientID int64) ([]*domain.PrescriptionDetail, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*domain.PrescriptionDetail, 0)
	for _, p := range r.s.prescriptions {
		e, ok := r.s.encounters[p.EncounterID]
		if !ok || e.PatientID != patientID {
			continue
		}
		detail := &domain.PrescriptionDetail{Prescription: *p}
		if u, ok := r.s.users[p.CreatedBy]; ok {
			detail.PrescriberUsername = u.Username
		}
		out = append(out, detail)
	}
	sort.Slice(out, func(i, j int) bool {
		return newer(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID)
	})
	return out, nil
}

// --- Audit ---

type auditRepo struct{ s *Store }

func (r auditRepo) Insert(_ context.Context, entry *domain.AuditEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	entry.ID = r.s.next("audit_logs")
	clone := *entry
	r.s.audit = append(r.s.audit, &clone)
	return nil
}

func (r auditRepo) ListRecent(_ context.Context, limit int) ([]*domain.AuditEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*domain.AuditEntry, 0, len(r.s.audit))
	for _, e := range r.s.audit {
		clone := *e
		out = append(out, &clone)
	}
	// Workers may persist entries out of order, so insertion order is not time order.
	sort.Slice(out, func(i, j int) bool {
		return newer(out[i].Timestamp, out[i].ID, out[j].Timestamp, out[j].ID)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// newer orders rows by timestamp descending, breaking ties by id descending.
func newer(ti time.Time, idi int64, tj time.Time, idj int64) bool {
	if !ti.Equal(tj) {
		return ti.After(tj)
	}
	return idi > idj
}
