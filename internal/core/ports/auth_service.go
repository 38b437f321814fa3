package ports

import (
	"context"
	"time"

	"github.com/clinicworks/ehr-system/internal/core/domain"
)

// Session is the outcome of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (*Session, error)
	CreateUser(ctx context.Context, username, password string, role domain.Role) (*domain.User, error)
}

// TokenIssuer signs identity claims into session tokens.
type TokenIssuer interface {
	Issue(identity domain.Identity) (token string, expiresAt time.Time, err error)
}

// TokenVerifier resolves a session token back into its identity claims.
// Any failure is reported as domain.ErrInvalidToken.
type TokenVerifier interface {
	Verify(token string) (domain.Identity, error)
}
