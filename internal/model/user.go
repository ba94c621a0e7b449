package model

import (
	"errors"
	"net/mail"
	"time"
)

// Password length limits. The maximum is bcrypt's input limit in bytes.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 72
)

// Role is the access level of a user.
type Role string

// Roles.
const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleAdmin
}

// ParseRole converts a request value into a Role. An empty value yields
// def; an unknown value is rejected.
func ParseRole(s string, def Role) (Role, bool) {
	if s == "" {
		return def, true
	}
	r := Role(s)
	return r, r.Valid()
}

// CanReport reports whether the role may submit lost/found items.
func (r Role) CanReport() bool {
	return r == RoleStudent || r == RoleAdmin
}

// User represents a registered account.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UserSummary is the public identity of a user attached to items and comments.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Summary returns the public identity of u.
func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// ValidateEmail checks that email is a bare address.
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errors.New("invalid email address")
	}
	return nil
}

// ValidatePassword checks password length requirements.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return errors.New("password must be at least 6 characters")
	}
	if len(password) > MaxPasswordLength {
		return errors.New("password must be at most 72 bytes")
	}
	return nil
}
