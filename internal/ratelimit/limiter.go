// Package ratelimit provides a fixed-window request limiter for the driver
// surface. The window store is pluggable: in-memory for a single process,
// Redis when instances share a limit.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Store counts requests per key per window. Allow reports whether the
// request fits under limit for the current window and consumes one unit
// when it does.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// InMemoryStore is the single-process fixed-window counter.
type InMemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window
}

type window struct {
	start time.Time
	count int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{windows: make(map[string]*window)}
}

func (s *InMemoryStore) Allow(_ context.Context, key string, limit int, size time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	w, ok := s.windows[key]
	if !ok || now.Sub(w.start) >= size {
		s.windows[key] = &window{start: now, count: 1}
		return true, nil
	}
	if w.count >= limit {
		return false, nil
	}
	w.count++
	return true, nil
}
