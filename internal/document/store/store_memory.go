package store

import (
	"context"
	"sync"

	"driverhub/internal/document"
	"driverhub/pkg/domain"
	"driverhub/pkg/platform/sentinel"
)

// InMemoryStore keeps document metadata in process memory. Rows append;
// Save supersedes the prior current row of the same type under one lock so
// the supersede is atomic with the insert.
type InMemoryStore struct {
	mu   sync.RWMutex
	docs map[domain.DriverID][]document.Document
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{docs: make(map[domain.DriverID][]document.Document)}
}

func (s *InMemoryStore) Save(_ context.Context, doc document.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.docs[doc.DriverID]
	for i := range rows {
		if rows[i].Type == doc.Type && !rows[i].Superseded {
			rows[i].Superseded = true
		}
	}
	s.docs[doc.DriverID] = append(rows, doc)
	return nil
}

func (s *InMemoryStore) ListCurrent(_ context.Context, driverID domain.DriverID) ([]document.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var current []document.Document
	for _, doc := range s.docs[driverID] {
		if !doc.Superseded {
			current = append(current, doc)
		}
	}
	return current, nil
}

func (s *InMemoryStore) FindByID(_ context.Context, driverID domain.DriverID, docID domain.DocumentID) (document.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, doc := range s.docs[driverID] {
		if doc.ID == docID {
			return doc, nil
		}
	}
	return document.Document{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) MarkVerified(_ context.Context, driverID domain.DriverID, docID domain.DocumentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.docs[driverID]
	for i := range rows {
		if rows[i].ID == docID {
			if rows[i].Superseded {
				return sentinel.ErrInvalidState
			}
			rows[i].Verified = true
			return nil
		}
	}
	return sentinel.ErrNotFound
}

func (s *InMemoryStore) MarkAllVerified(_ context.Context, driverID domain.DriverID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.docs[driverID]
	for i := range rows {
		if !rows[i].Superseded {
			rows[i].Verified = true
		}
	}
	return nil
}

// InMemoryBlobStore is the development stand-in for the external byte
// store.
type InMemoryBlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func NewInMemoryBlobStore() *InMemoryBlobStore {
	return &InMemoryBlobStore{blobs: make(map[string][]byte)}
}

func (s *InMemoryBlobStore) Put(_ context.Context, key string, content []byte, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = append([]byte(nil), content...)
	return nil
}

// Get exists for tests to confirm the latest payload won.
func (s *InMemoryBlobStore) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.blobs[key]
	return content, ok
}
