package store

import (
	"context"
	"sync"
	"time"

	"driverhub/internal/vehicle"
	"driverhub/pkg/domain"
	"driverhub/pkg/platform/sentinel"
)

// InMemoryStore keeps vehicles in process memory, one per driver.
type InMemoryStore struct {
	mu       sync.RWMutex
	vehicles map[domain.DriverID]vehicle.Vehicle
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{vehicles: make(map[domain.DriverID]vehicle.Vehicle)}
}

func (s *InMemoryStore) Upsert(_ context.Context, v vehicle.Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.vehicles[v.DriverID]; ok {
		// Replace semantics: keep the original identity and creation time.
		v.ID = existing.ID
		v.CreatedAt = existing.CreatedAt
	}
	v.UpdatedAt = time.Now()
	s.vehicles[v.DriverID] = v
	return nil
}

func (s *InMemoryStore) FindByDriver(_ context.Context, driverID domain.DriverID) (vehicle.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vehicles[driverID]
	if !ok {
		return vehicle.Vehicle{}, sentinel.ErrNotFound
	}
	return v, nil
}
