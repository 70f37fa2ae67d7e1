package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jengzang/trip-eval-backend-go/internal/models"
)

// EntryRepository handles database operations for phone entries
type EntryRepository struct {
	db *sql.DB
}

// NewEntryRepository creates a new entry repository
func NewEntryRepository(db *sql.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

// InsertBatch stores entries for a user in one transaction
func (r *EntryRepository) InsertBatch(user string, entries []models.Entry) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO entries (user_label, entry_key, write_ts, platform, data)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		if e.Metadata.Key == "" {
			return 0, fmt.Errorf("entry %d has no key", i)
		}
		data := string(e.Data)
		if data == "" {
			data = "{}"
		}
		if _, err := stmt.Exec(user, e.Metadata.Key, e.Metadata.WriteTS, e.Metadata.Platform, data); err != nil {
			return 0, fmt.Errorf("failed to insert entry %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit entries: %w", err)
	}
	return len(entries), nil
}

// Find retrieves the entries of a user for any of keys with write_ts in
// [startTS, endTS], ordered by write_ts
func (r *EntryRepository) Find(user string, keys []string, startTS, endTS float64) ([]models.Entry, error) {
	if len(keys) == 0 {
		return []models.Entry{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	query := `
		SELECT entry_key, write_ts, platform, data
		FROM entries
		WHERE user_label = ? AND entry_key IN (` + placeholders + `) AND write_ts >= ? AND write_ts <= ?
		ORDER BY write_ts, id
	`

	args := make([]interface{}, 0, len(keys)+3)
	args = append(args, user)
	for _, k := range keys {
		args = append(args, k)
	}
	args = append(args, startTS, endTS)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	entries := []models.Entry{}
	for rows.Next() {
		var e models.Entry
		var data string
		if err := rows.Scan(&e.Metadata.Key, &e.Metadata.WriteTS, &e.Metadata.Platform, &data); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		e.Data = json.RawMessage(data)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// CountByUser returns the number of stored entries per key for a user
func (r *EntryRepository) CountByUser(user string) (map[string]int, error) {
	rows, err := r.db.Query(`SELECT entry_key, COUNT(*) FROM entries WHERE user_label = ? GROUP BY entry_key`, user)
	if err != nil {
		return nil, fmt.Errorf("failed to count entries: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("failed to scan entry count: %w", err)
		}
		counts[key] = n
	}
	return counts, rows.Err()
}
