package services

import (
	"context"
	"time"

	"realtyhub/internal/storage"
)

const healthCheckTimeout = 3 * time.Second

// HealthResult is the body of the health endpoint
type HealthResult struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Storage string `json:"storage"`
}

// HealthService reports whether the storage backend is reachable
type HealthService struct {
	store   storage.Storage
	service string
}

// NewHealthService creates a new health service
func NewHealthService(store storage.Storage, service string) *HealthService {
	return &HealthService{store: store, service: service}
}

// Check pings storage. The error is returned alongside an unhealthy result.
func (s *HealthService) Check(ctx context.Context) (*HealthResult, error) {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	result := &HealthResult{Status: "healthy", Service: s.service, Storage: "up"}
	if err := s.store.Ping(ctx); err != nil {
		result.Status = "unhealthy"
		result.Storage = "down"
		return result, err
	}
	return result, nil
}
