package queue

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicworks/ehr-system/internal/core/domain"
)

type stubAuditService struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
	err     error
	block   chan struct{}
}

func (s *stubAuditService) Record(_ context.Context, entry *domain.AuditEntry) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *stubAuditService) ListRecent(context.Context) ([]*domain.AuditEntry, error) {
	return nil, nil
}

func (s *stubAuditService) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func TestAuditDispatcher_PersistsAndDrains(t *testing.T) {
	svc := &stubAuditService{}
	d := NewAuditDispatcher(3, 16, svc, zerolog.Nop())
	d.Start()

	for i := 0; i < 30; i++ {
		d.Record(domain.AuditEntry{Action: domain.ActionCreate, EntityType: domain.EntityPatient})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := d.Close(ctx); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if got := svc.count(); got != 30 {
		t.Fatalf("expected 30 persisted entries, got %d", got)
	}
}

func TestAuditDispatcher_RecordDoesNotBlockWhenFull(t *testing.T) {
	var buf bytes.Buffer
	svc := &stubAuditService{block: make(chan struct{})}
	d := NewAuditDispatcher(1, 1, svc, zerolog.New(&buf))
	d.Start()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			d.Record(domain.AuditEntry{Action: domain.ActionRead})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Record blocked on a full queue")
	}

	close(svc.block)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := d.Close(ctx); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "audit entry dropped") {
		t.Fatalf("expected drop to be logged")
	}
	if got := svc.count(); got == 0 || got > 2 {
		t.Fatalf("expected 1-2 persisted entries, got %d", got)
	}
}

func TestAuditDispatcher_LogsWriteFailures(t *testing.T) {
	var buf bytes.Buffer
	svc := &stubAuditService{err: errors.New("connection refused")}
	d := NewAuditDispatcher(1, 4, svc, zerolog.New(&buf))
	d.Start()

	d.Record(domain.AuditEntry{Action: domain.ActionCreate, EntityType: domain.EntityEncounter})

	if err := d.Close(context.Background()); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "audit write failed") || !strings.Contains(buf.String(), "connection refused") {
		t.Fatalf("expected failure to be logged, got %q", buf.String())
	}
}

func TestAuditDispatcher_RecordAfterClose(t *testing.T) {
	svc := &stubAuditService{}
	d := NewAuditDispatcher(1, 4, svc, zerolog.Nop())
	d.Start()

	if err := d.Close(context.Background()); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	d.Record(domain.AuditEntry{Action: domain.ActionRead})

	if svc.count() != 0 {
		t.Fatalf("entry recorded after close")
	}
	if err := d.Close(context.Background()); !errors.Is(err, ErrDispatcherClosed) {
		t.Fatalf("expected ErrDispatcherClosed, got %v", err)
	}
}
