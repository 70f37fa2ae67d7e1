package service

import (
	"fmt"

	"github.com/jengzang/trip-eval-backend-go/internal/models"
	"github.com/jengzang/trip-eval-backend-go/internal/repository"
)

// EntryService handles phone datastore entries
type EntryService struct {
	repo *repository.EntryRepository
}

// NewEntryService creates a new entry service
func NewEntryService(repo *repository.EntryRepository) *EntryService {
	return &EntryService{repo: repo}
}

// Upload stores the entries of one user
func (s *EntryService) Upload(upload models.EntryUpload) (int, error) {
	if len(upload.Entries) == 0 {
		return 0, fmt.Errorf("%w: no entries to upload", ErrInvalidRequest)
	}
	return s.repo.InsertBatch(upload.User, upload.Entries)
}

// Find returns the entries matching a find_entries query
func (s *EntryService) Find(q models.EntryQuery) ([]models.Entry, error) {
	if q.EndTime < q.StartTime {
		return nil, fmt.Errorf("%w: end_time %v is before start_time %v", ErrInvalidRequest, q.EndTime, q.StartTime)
	}
	return s.repo.Find(q.User, q.KeyList, q.StartTime, q.EndTime)
}

// Counts returns the number of entries per key for a user
func (s *EntryService) Counts(user string) (map[string]int, error) {
	return s.repo.CountByUser(user)
}
