package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/erazemk/najdeno/internal/auth"
	"github.com/erazemk/najdeno/internal/metrics"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// AuthService registers users, checks credentials and issues tokens.
type AuthService struct {
	store   store.Store
	secret  string
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewAuthService creates an AuthService signing tokens with secret.
func NewAuthService(st store.Store, secret string, m *metrics.Metrics, logger zerolog.Logger) *AuthService {
	return &AuthService{
		store:   st,
		secret:  secret,
		metrics: m,
		logger:  logger.With().Str("service", "auth").Logger(),
	}
}

// RegisterInput contains the fields accepted at registration.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token string             `json:"token"`
	User  *model.UserSummary `json:"user"`
}

// Register creates a user and returns a token for it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	name := model.NormalizeText(in.Name)
	email := model.NormalizeText(in.Email)

	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if err := model.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := model.ValidatePassword(in.Password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	role, ok := model.ParseRole(in.Role, model.RoleStudent)
	if !ok {
		return nil, fmt.Errorf("%w: role must be student or admin", ErrValidation)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	user := &model.User{Name: name, Email: email, PasswordHash: hash, Role: role}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		s.logger.Error().Err(err).Str("email", email).Msg("failed to create user")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	s.metrics.Event(metrics.EventUserRegistered)
	s.logger.Info().
		Str("user_id", user.ID).
		Str("email", user.Email).
		Str("role", string(user.Role)).
		Msg("user registered")

	return s.issue(user)
}

// Login checks email and password, then requires role to match the stored
// role. An empty role is read as student.
func (s *AuthService) Login(ctx context.Context, email, password, role string) (*AuthResult, error) {
	email = model.NormalizeText(email)

	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		s.metrics.Event(metrics.EventLoginFailed)
		s.logger.Debug().Str("email", email).Msg("login for unknown email")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		s.logger.Error().Err(err).Str("email", email).Msg("failed to look up user")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		s.metrics.Event(metrics.EventLoginFailed)
		s.logger.Info().Str("email", email).Msg("login with wrong password")
		return nil, ErrInvalidCredentials
	}

	if r, ok := model.ParseRole(role, model.RoleStudent); !ok || r != user.Role {
		s.metrics.Event(metrics.EventLoginFailed)
		s.logger.Info().
			Str("email", email).
			Str("requested_role", role).
			Msg("login with mismatched role")
		return nil, ErrRoleMismatch
	}

	s.metrics.Event(metrics.EventLoginSucceeded)
	s.logger.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user logged in")

	return s.issue(user)
}

// Verify parses a bearer token into the caller's claims.
func (s *AuthService) Verify(token string) (*auth.Claims, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	claims, err := auth.ValidateToken(s.secret, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	return claims, nil
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, err := auth.GenerateToken(s.secret, user)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("failed to sign token")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	summary := user.Summary()
	summary.Name = ""
	return &AuthResult{Token: token, User: summary}, nil
}

// requireCaller rejects requests without verified claims.
func requireCaller(caller *auth.Claims) error {
	if caller == nil || caller.UserID == "" {
		return ErrUnauthenticated
	}
	return nil
}

// callerUser loads the account behind verified claims. A token whose user
// is not in the store is treated as unauthenticated.
func callerUser(ctx context.Context, st store.Store, caller *auth.Claims, logger zerolog.Logger) (*model.User, error) {
	user, err := st.GetUser(ctx, caller.UserID)
	if errors.Is(err, store.ErrNotFound) {
		logger.Info().Str("user_id", caller.UserID).Msg("token for unknown user")
		return nil, fmt.Errorf("%w: unknown user", ErrUnauthenticated)
	}
	if err != nil {
		logger.Error().Err(err).Str("user_id", caller.UserID).Msg("failed to load caller")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return user, nil
}

// requireAdmin rejects non-admin callers.
func requireAdmin(caller *auth.Claims) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	if caller.Role != model.RoleAdmin {
		return fmt.Errorf("%w: admin role required", ErrForbidden)
	}
	return nil
}
