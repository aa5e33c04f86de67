package audit

import (
	"context"
	"sync"

	"driverhub/pkg/domain"
)

// InMemoryStore keeps audit events in process memory, append-only.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[domain.DriverID][]Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[domain.DriverID][]Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.DriverID] = append(s.events[event.DriverID], event)
	return nil
}

func (s *InMemoryStore) ListByDriver(_ context.Context, driverID domain.DriverID) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events[driverID]...), nil
}
