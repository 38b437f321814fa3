package ports

import (
	"context"

	"github.com/clinicworks/ehr-system/internal/core/domain"
)

// UserRepository is the credential store. It is read only by login; Create
// exists for out-of-band provisioning.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
}
