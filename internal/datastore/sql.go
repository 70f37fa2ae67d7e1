package datastore

import (
	"context"
	"fmt"

	"github.com/jengzang/trip-eval-backend-go/internal/models"
)

// EntryFinder is the query side of the entry repository.
type EntryFinder interface {
	Find(user string, keys []string, startTS, endTS float64) ([]models.Entry, error)
}

// SQLStore retrieves entries uploaded to this service's own database.
type SQLStore struct {
	repo EntryFinder
}

// NewSQLStore creates a store over repo.
func NewSQLStore(repo EntryFinder) *SQLStore {
	return &SQLStore{repo: repo}
}

// Retrieve implements Retriever.
func (s *SQLStore) Retrieve(ctx context.Context, user, key string, startTS, endTS float64) ([]models.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := s.repo.Find(user, []string{key}, startTS, endTS)
	if err != nil {
		return nil, fmt.Errorf("failed to find %s for %s: %w", key, user, err)
	}
	return window(entries, startTS, endTS), nil
}
