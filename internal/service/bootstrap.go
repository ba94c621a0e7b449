package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/erazemk/najdeno/internal/auth"
	"github.com/erazemk/najdeno/internal/model"
)

// AdminPasswordLength is the length of generated admin passwords.
const AdminPasswordLength = 16

// EnsureAdmin creates an admin account with a generated password when no
// admin exists yet. It returns the password only when an account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email string) (string, error) {
	exists, err := s.store.HasAdmin(ctx)
	if err != nil {
		return "", fmt.Errorf("checking for admin: %w", err)
	}
	if exists {
		return "", nil
	}

	if err := model.ValidateEmail(email); err != nil {
		return "", fmt.Errorf("admin email: %w", err)
	}

	password, err := generatePassword(AdminPasswordLength)
	if err != nil {
		return "", fmt.Errorf("generating password: %w", err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	user := &model.User{Name: name, Email: email, PasswordHash: hash, Role: model.RoleAdmin}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return "", fmt.Errorf("creating admin user: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Str("email", email).Msg("admin account created")
	return password, nil
}

func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
