package database

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/jengzang/trip-eval-backend-go/internal/monitoring"
)

var (
	// ErrMigrationChanged is returned when an applied migration file no
	// longer matches the checksum recorded when it ran
	ErrMigrationChanged = errors.New("applied migration has changed")

	// ErrMigrationVersion is returned for duplicate or non-positive versions
	ErrMigrationVersion = errors.New("invalid migration version")
)

// Migration is one versioned schema file, e.g. "001_init.sql"
type Migration struct {
	Version  int
	Name     string
	SQL      string
	Checksum string // hex sha256 of SQL
}

// AppliedMigration is a row of the migrations table
type AppliedMigration struct {
	Version  int
	Name     string
	Checksum string
}

// MigrationManager applies schema files in version order and refuses to run
// when an already applied file was edited afterwards
type MigrationManager struct {
	db             *sql.DB
	migrationsPath string
}

// NewMigrationManager creates a new migration manager
func NewMigrationManager(db *sql.DB, migrationsPath string) *MigrationManager {
	return &MigrationManager{
		db:             db,
		migrationsPath: migrationsPath,
	}
}

// InitMigrationsTable creates the migrations tracking table
func (m *MigrationManager) InitMigrationsTable() error {
	_, err := m.db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			checksum TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

// GetAppliedMigrations returns the applied migrations keyed by version
func (m *MigrationManager) GetAppliedMigrations() (map[int]AppliedMigration, error) {
	rows, err := m.db.Query("SELECT version, name, checksum FROM migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]AppliedMigration)
	for rows.Next() {
		var a AppliedMigration
		if err := rows.Scan(&a.Version, &a.Name, &a.Checksum); err != nil {
			return nil, fmt.Errorf("failed to scan migration: %w", err)
		}
		applied[a.Version] = a
	}
	return applied, rows.Err()
}

// LoadMigrations reads the .sql files of the migrations directory, sorted by
// version. Files without a numeric prefix are skipped.
func (m *MigrationManager) LoadMigrations() ([]Migration, error) {
	files, err := os.ReadDir(m.migrationsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var migrations []Migration
	seen := make(map[int]string)
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		name := strings.TrimSuffix(file.Name(), ".sql")
		version, ok := parseVersion(name)
		if !ok {
			monitoring.Logf("[Database] skipping migration file with invalid name: %s", file.Name())
			continue
		}
		if version <= 0 {
			return nil, fmt.Errorf("%w: %s", ErrMigrationVersion, file.Name())
		}
		if prev, dup := seen[version]; dup {
			return nil, fmt.Errorf("%w: %s and %s share version %d", ErrMigrationVersion, prev, name, version)
		}
		seen[version] = name

		content, err := os.ReadFile(filepath.Join(m.migrationsPath, file.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", file.Name(), err)
		}

		migrations = append(migrations, Migration{
			Version:  version,
			Name:     name,
			SQL:      string(content),
			Checksum: checksum(content),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// parseVersion reads the digits before the first underscore.
func parseVersion(name string) (int, bool) {
	prefix, _, found := strings.Cut(name, "_")
	if !found || prefix == "" {
		return 0, false
	}
	v, err := strconv.Atoi(prefix)
	if err != nil {
		return 0, false
	}
	return v, true
}

func checksum(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// ApplyMigration runs one migration and records it in a single transaction
func (m *MigrationManager) ApplyMigration(migration Migration) error {
	err := Transaction(m.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(migration.SQL); err != nil {
			return fmt.Errorf("failed to execute migration %d: %w", migration.Version, err)
		}
		if _, err := tx.Exec("INSERT INTO migrations (version, name, checksum) VALUES (?, ?, ?)",
			migration.Version, migration.Name, migration.Checksum); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	monitoring.Logf("[Database] applied migration %d: %s", migration.Version, migration.Name)
	return nil
}

// RunMigrations verifies the applied migrations against their files and
// applies the pending ones
func (m *MigrationManager) RunMigrations() error {
	if err := m.InitMigrationsTable(); err != nil {
		return err
	}

	applied, err := m.GetAppliedMigrations()
	if err != nil {
		return err
	}

	migrations, err := m.LoadMigrations()
	if err != nil {
		return err
	}

	pending := 0
	for _, migration := range migrations {
		if a, ok := applied[migration.Version]; ok {
			if a.Checksum != migration.Checksum {
				return fmt.Errorf("%w: %d (%s)", ErrMigrationChanged, migration.Version, migration.Name)
			}
			continue
		}

		if err := m.ApplyMigration(migration); err != nil {
			return err
		}
		pending++
	}

	monitoring.Logf("[Database] migrations up to date (%d applied, %d new)", len(applied)+pending, pending)
	return nil
}
