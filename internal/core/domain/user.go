package domain

import "time"

// Role is one of the three static clinic roles.
type Role string

const (
	RoleDoctor Role = "doctor"
	RoleNurse  Role = "nurse"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleDoctor, RoleNurse, RoleAdmin:
		return true
	}
	return false
}

// User models a provisioned staff account.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the claim set carried by a session token. It is trusted for the
// lifetime of the token and never re-read from the credential store.
type Identity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Identity returns the claim set issued for u.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Username: u.Username, Role: u.Role}
}
