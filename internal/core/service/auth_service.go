package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinicworks/ehr-system/internal/core/domain"
	"github.com/clinicworks/ehr-system/internal/core/ports"
)

const minPasswordLength = 8

// AuthService implements login and out-of-band user provisioning.
type AuthService struct {
	repo   ports.UserRepository
	tokens ports.TokenIssuer
	log    zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, tokens ports.TokenIssuer, log zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, log: log}
}

// Login checks the credentials and issues a session token. An unknown
// username and a wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.Session, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.Identity())
	if err != nil {
		return nil, fmt.Errorf("login: issue token: %w", err)
	}

	s.log.Info().Int64("user_id", user.ID).Str("role", string(user.Role)).Msg("user logged in")

	return &ports.Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// CreateUser provisions a staff account with a bcrypt-hashed password.
func (s *AuthService) CreateUser(ctx context.Context, username, password string, role domain.Role) (*domain.User, error) {
	username = strings.TrimSpace(username)

	var violations []string
	if username == "" {
		violations = append(violations, "username is required")
	}
	if len(password) < minPasswordLength {
		violations = append(violations, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if !role.Valid() {
		violations = append(violations, "role must be one of: doctor nurse admin")
	}
	if len(violations) > 0 {
		return nil, domain.NewValidationError(violations...)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info().Int64("user_id", user.ID).Str("username", user.Username).Str("role", string(role)).Msg("user created")
	return user, nil
}
