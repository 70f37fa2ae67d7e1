package datastore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jengzang/trip-eval-backend-go/internal/models"
)

// FileStore reads entry dumps laid out as <dir>/<user>/<key>.json, with the
// slashes of the key replaced by "~". Each file holds a JSON array of
// entries.
type FileStore struct {
	Dir string
}

// NewFileStore creates a store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

// Path returns the dump file for a user and key.
func (s *FileStore) Path(user, key string) string {
	return filepath.Join(s.Dir, user, strings.ReplaceAll(key, "/", "~")+".json")
}

// Retrieve implements Retriever. A missing dump file is an empty result.
func (s *FileStore) Retrieve(ctx context.Context, user, key string, startTS, endTS float64) ([]models.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := s.Path(user, key)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []models.Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var entries []models.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return window(entries, startTS, endTS), nil
}

// Write stores entries for user as dump files, one per key, replacing any
// existing dump.
func (s *FileStore) Write(user string, entries []models.Entry) error {
	byKey := make(map[string][]models.Entry)
	for _, e := range entries {
		byKey[e.Metadata.Key] = append(byKey[e.Metadata.Key], e)
	}

	for key, list := range byKey {
		path := s.Path(user, key)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
		}
		data, err := json.MarshalIndent(list, "", "    ")
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", key, err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}
