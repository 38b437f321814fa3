package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinicworks/ehr-system/internal/core/domain"
)

const testSecret = "a-very-secret-signing-key-for-tests"

func seedUser(t *testing.T, repo *stubUserRepo, username, password string, role domain.Role) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &domain.User{Username: username, PasswordHash: string(hash), Role: role}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	seeded := seedUser(t, repo, "nurse.joy", "s3cret-pass", domain.RoleNurse)
	codec := NewTokenCodec(testSecret)
	svc := NewAuthService(repo, codec, zerolog.Nop())

	session, err := svc.Login(context.Background(), "nurse.joy", "s3cret-pass")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if session.Token == "" {
		t.Fatalf("expected token")
	}
	if session.User.ID != seeded.ID || session.User.Role != domain.RoleNurse {
		t.Fatalf("unexpected user: %+v", session.User)
	}

	identity, err := codec.Verify(session.Token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if identity.Username != "nurse.joy" || identity.Role != domain.RoleNurse {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "nurse.joy", "s3cret-pass", domain.RoleNurse)
	svc := NewAuthService(repo, NewTokenCodec(testSecret), zerolog.Nop())

	cases := []struct{ name, username, password string }{
		{"wrong password", "nurse.joy", "nope"},
		{"unknown user", "ghost", "s3cret-pass"},
		{"empty password", "nurse.joy", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			session, err := svc.Login(context.Background(), tc.username, tc.password)
			if !errors.Is(err, domain.ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
			if session != nil {
				t.Fatalf("expected no session")
			}
		})
	}
}

func TestAuthService_Login_StoreFailure(t *testing.T) {
	repo := newStubUserRepo()
	repo.findErr = errors.New("connection reset")
	svc := NewAuthService(repo, NewTokenCodec(testSecret), zerolog.Nop())

	_, err := svc.Login(context.Background(), "nurse.joy", "s3cret-pass")
	if err == nil || errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected a non-credential error, got %v", err)
	}
}

func TestAuthService_CreateUser(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, NewTokenCodec(testSecret), zerolog.Nop())

	user, err := svc.CreateUser(context.Background(), " dr.grey ", "long-enough", domain.RoleDoctor)
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}
	if user.ID == 0 || user.Username != "dr.grey" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("long-enough")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}

	if _, err := svc.CreateUser(context.Background(), "dr.grey", "long-enough", domain.RoleDoctor); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_CreateUser_Validation(t *testing.T) {
	svc := NewAuthService(newStubUserRepo(), NewTokenCodec(testSecret), zerolog.Nop())

	_, err := svc.CreateUser(context.Background(), "", "short", domain.Role("janitor"))
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Violations) != 3 {
		t.Fatalf("expected 3 violations, got %v", verr.Violations)
	}
}
