package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/najdeno/internal/model"
)

// CreateUser creates a new user.
func (s *SQLStore) CreateUser(ctx context.Context, u *model.User) error {
	id := uuid.NewString()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, role, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, u.Name, u.Email, u.PasswordHash, string(u.Role), toUnix(now),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("creating user: %w", err)
	}

	u.ID = id
	u.CreatedAt = now
	return nil
}

// GetUser returns a user by ID.
func (s *SQLStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	return s.getUser(ctx, `WHERE id = ?`, id)
}

// GetUserByEmail returns a user by email. Matching is case-sensitive.
func (s *SQLStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getUser(ctx, `WHERE email = ?`, email)
}

func (s *SQLStore) getUser(ctx context.Context, where string, arg any) (*model.User, error) {
	u := &model.User{}
	var role string
	var createdAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, role, created_at FROM users `+where, arg,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &createdAt)
	if isNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	u.Role = model.Role(role)
	u.CreatedAt = fromUnix(createdAt)
	return u, nil
}

// HasAdmin reports whether at least one admin account exists.
func (s *SQLStore) HasAdmin(ctx context.Context) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE role = ?`, string(model.RoleAdmin),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("counting admins: %w", err)
	}
	return count > 0, nil
}
