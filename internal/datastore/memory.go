package datastore

import (
	"context"
	"sync"

	"github.com/jengzang/trip-eval-backend-go/internal/models"
)

// MemoryStore keeps entries in memory, keyed by user and entry key.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]map[string][]models.Entry
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]map[string][]models.Entry)}
}

// Add stores entries for user under their metadata key.
func (s *MemoryStore) Add(user string, entries ...models.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byKey, ok := s.entries[user]
	if !ok {
		byKey = make(map[string][]models.Entry)
		s.entries[user] = byKey
	}
	for _, e := range entries {
		byKey[e.Metadata.Key] = append(byKey[e.Metadata.Key], e)
	}
}

// Retrieve implements Retriever.
func (s *MemoryStore) Retrieve(ctx context.Context, user, key string, startTS, endTS float64) ([]models.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return window(s.entries[user][key], startTS, endTS), nil
}
