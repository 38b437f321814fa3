package service

import (
	"context"
	"fmt"
	"time"

	"github.com/clinicworks/ehr-system/internal/core/domain"
	"github.com/clinicworks/ehr-system/internal/core/ports"
)

// AuditListLimit caps the rows returned by an audit log listing.
const AuditListLimit = 100

type AuditService struct {
	repo ports.AuditRepository
}

func NewAuditService(repo ports.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// Record persists a single entry, stamping it when no timestamp is set.
func (s *AuditService) Record(ctx context.Context, entry *domain.AuditEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	if err := s.repo.Insert(ctx, entry); err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}
	return nil
}

func (s *AuditService) ListRecent(ctx context.Context) ([]*domain.AuditEntry, error) {
	entries, err := s.repo.ListRecent(ctx, AuditListLimit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return entries, nil
}
