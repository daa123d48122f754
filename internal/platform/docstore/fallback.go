package docstore

import (
	"context"
	"sync"
)

var _ Store = (*FallbackStore)(nil)

// FallbackStore keeps ordered document collections in process memory. It is the
// authoritative store only while the remote backend is unreachable and is never persisted.
type FallbackStore struct {
	mu          sync.RWMutex
	collections map[string][]Document
}

func NewFallbackStore() *FallbackStore {
	return &FallbackStore{collections: map[string][]Document{}}
}

func (s *FallbackStore) Find(_ context.Context, collection string, filter Filter) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := s.collections[collection]
	result := make([]Document, 0, len(docs))
	for _, doc := range docs {
		if filter.Matches(doc.Body) {
			result = append(result, doc.Clone())
		}
	}
	return result, nil
}

func (s *FallbackStore) FindOne(_ context.Context, collection, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOf(collection, id)
	if idx < 0 {
		return Document{}, ErrNotFound
	}
	return s.collections[collection][idx].Clone(), nil
}

func (s *FallbackStore) Insert(_ context.Context, collection string, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(collection, doc.ID) >= 0 {
		return ErrConflict
	}
	s.collections[collection] = append(s.collections[collection], doc.Clone())
	return nil
}

func (s *FallbackStore) Update(_ context.Context, collection string, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(collection, doc.ID)
	if idx < 0 {
		return ErrNotFound
	}
	existing := s.collections[collection][idx]
	updated := doc.Clone()
	updated.CreatedAt = existing.CreatedAt
	s.collections[collection][idx] = updated
	return nil
}

func (s *FallbackStore) Delete(_ context.Context, collection, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(collection, id)
	if idx < 0 {
		return false, nil
	}
	docs := s.collections[collection]
	s.collections[collection] = append(docs[:idx:idx], docs[idx+1:]...)
	return true, nil
}

func (s *FallbackStore) Count(_ context.Context, collection string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.collections[collection])), nil
}

// Seed loads docs into an empty collection. It reports whether anything was written.
func (s *FallbackStore) Seed(collection string, docs []Document) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.collections[collection]) > 0 || len(docs) == 0 {
		return false
	}
	seeded := make([]Document, 0, len(docs))
	for _, doc := range docs {
		seeded = append(seeded, doc.Clone())
	}
	s.collections[collection] = seeded
	return true
}

// Reset drops every collection.
func (s *FallbackStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections = map[string][]Document{}
}

// indexOf is a linear scan; callers hold the lock.
func (s *FallbackStore) indexOf(collection, id string) int {
	for i, doc := range s.collections[collection] {
		if doc.ID == id {
			return i
		}
	}
	return -1
}
