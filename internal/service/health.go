package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/erazemk/najdeno/internal/store"
)

// Health check values.
const (
	StatusOnline      = "Online"
	DBConnected       = "Connected"
	DBDisconnected    = "Disconnected"
	HealthMessage     = "Campus Lost & Found API is running!"
	healthPingTimeout = 2 * time.Second
)

// HealthResult is the body of the health endpoint.
type HealthResult struct {
	Status    string    `json:"status"`
	DBStatus  string    `json:"dbStatus"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthService reports process and store liveness.
type HealthService struct {
	store  store.Store
	logger zerolog.Logger
}

// NewHealthService creates a HealthService.
func NewHealthService(st store.Store, logger zerolog.Logger) *HealthService {
	return &HealthService{
		store:  st,
		logger: logger.With().Str("service", "health").Logger(),
	}
}

// Check pings the store. The process is always reported online; store
// failures only change DBStatus.
func (s *HealthService) Check(ctx context.Context) HealthResult {
	result := HealthResult{
		Status:    StatusOnline,
		DBStatus:  DBConnected,
		Message:   HealthMessage,
		Timestamp: time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		result.DBStatus = DBDisconnected
		s.logger.Warn().Err(err).Msg("store ping failed")
	}
	return result
}
