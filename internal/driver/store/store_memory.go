package store

import (
	"context"
	"sync"
	"time"

	"driverhub/internal/driver"
	"driverhub/pkg/domain"
	"driverhub/pkg/platform/sentinel"
)

// InMemoryStore keeps driver profiles in process memory. The single mutex
// makes every conditional write atomic, which is what gives per-driver
// status linearizability in development and tests.
type InMemoryStore struct {
	mu       sync.RWMutex
	profiles map[domain.DriverID]driver.Profile
	byUser   map[domain.UserID]domain.DriverID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		profiles: make(map[domain.DriverID]driver.Profile),
		byUser:   make(map[domain.UserID]domain.DriverID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, profile driver.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byUser[profile.UserID]; exists {
		return sentinel.ErrConflict
	}
	s.profiles[profile.ID] = profile
	s.byUser[profile.UserID] = profile.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, driverID domain.DriverID) (driver.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[driverID]
	if !ok {
		return driver.Profile{}, sentinel.ErrNotFound
	}
	return profile, nil
}

func (s *InMemoryStore) FindByUserID(_ context.Context, userID domain.UserID) (driver.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	driverID, ok := s.byUser[userID]
	if !ok {
		return driver.Profile{}, sentinel.ErrNotFound
	}
	return s.profiles[driverID], nil
}

func (s *InMemoryStore) AdvanceStatus(_ context.Context, driverID domain.DriverID, target domain.DriverStatus) (domain.DriverStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[driverID]
	if !ok {
		return "", sentinel.ErrNotFound
	}
	if profile.Status.IsTerminal() {
		return profile.Status, sentinel.ErrInvalidState
	}
	if target.Rank() > profile.Status.Rank() {
		profile.Status = target
		profile.UpdatedAt = time.Now()
		s.profiles[driverID] = profile
	}
	return profile.Status, nil
}

func (s *InMemoryStore) SetStatus(_ context.Context, driverID domain.DriverID, from, to domain.DriverStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[driverID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if profile.Status != from {
		return sentinel.ErrInvalidState
	}
	profile.Status = to
	profile.UpdatedAt = time.Now()
	s.profiles[driverID] = profile
	return nil
}

func (s *InMemoryStore) RecordRejection(_ context.Context, driverID domain.DriverID, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[driverID]
	if !ok {
		return sentinel.ErrNotFound
	}
	profile.RejectionReason = reason
	profile.UpdatedAt = time.Now()
	s.profiles[driverID] = profile
	return nil
}

func (s *InMemoryStore) SetAvailability(_ context.Context, driverID domain.DriverID, available bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[driverID]
	if !ok {
		return sentinel.ErrNotFound
	}
	profile.IsAvailable = available
	profile.UpdatedAt = time.Now()
	s.profiles[driverID] = profile
	return nil
}
