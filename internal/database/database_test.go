package database

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const migrationsDir = "../../migrations"

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := Open(filepath.Join(t.TempDir(), "eval.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestRunMigrationsIsRepeatable(t *testing.T) {
	conn := openTestDB(t)
	m := NewMigrationManager(conn, migrationsDir)

	require.NoError(t, m.RunMigrations())
	require.NoError(t, m.RunMigrations())

	applied, err := m.GetAppliedMigrations()
	require.NoError(t, err)
	require.Contains(t, applied, 1)
	assert.Equal(t, "001_init", applied[1].Name)
	assert.Len(t, applied[1].Checksum, 64)

	for _, table := range []string{"entries", "evaluation_tasks"} {
		var name string
		err := conn.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		assert.NoError(t, err, table)
	}
}

func TestLoadMigrationsOrdersByVersion(t *testing.T) {
	m := NewMigrationManager(nil, migrationsDir)
	migrations, err := m.LoadMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)
	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "001_init", migrations[0].Name)
}

func TestTransactionRollsBack(t *testing.T) {
	conn := openTestDB(t)
	require.NoError(t, NewMigrationManager(conn, migrationsDir).RunMigrations())

	boom := errors.New("boom")
	err := Transaction(conn, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO entries (user_label, entry_key, write_ts, data) VALUES ('u', 'k', 1, '{}')`); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM entries`).Scan(&n))
	assert.Equal(t, 0, n)
}

func writeMigration(t *testing.T, dir, name, sql string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(sql), 0o644))
}

func TestRunMigrationsAppliesOnlyNewFiles(t *testing.T) {
	conn := openTestDB(t)
	dir := t.TempDir()
	writeMigration(t, dir, "001_runs.sql", `CREATE TABLE runs (id INTEGER PRIMARY KEY);`)
	writeMigration(t, dir, "README.txt", "not sql")
	writeMigration(t, dir, "notes.sql", "-- no version prefix")

	m := NewMigrationManager(conn, dir)
	require.NoError(t, m.RunMigrations())

	writeMigration(t, dir, "002_runs_label.sql", `ALTER TABLE runs ADD COLUMN label TEXT;`)
	require.NoError(t, m.RunMigrations())

	applied, err := m.GetAppliedMigrations()
	require.NoError(t, err)
	assert.Len(t, applied, 2)
	_, err = conn.Exec(`INSERT INTO runs (label) VALUES ('x')`)
	assert.NoError(t, err)
}

func TestRunMigrationsRejectsEditedMigration(t *testing.T) {
	conn := openTestDB(t)
	dir := t.TempDir()
	writeMigration(t, dir, "001_runs.sql", `CREATE TABLE runs (id INTEGER PRIMARY KEY);`)

	m := NewMigrationManager(conn, dir)
	require.NoError(t, m.RunMigrations())

	writeMigration(t, dir, "001_runs.sql", `CREATE TABLE runs (id INTEGER PRIMARY KEY, label TEXT);`)
	err := m.RunMigrations()
	assert.ErrorIs(t, err, ErrMigrationChanged)
}

func TestLoadMigrationsRejectsBadVersions(t *testing.T) {
	t.Run("duplicate", func(t *testing.T) {
		dir := t.TempDir()
		writeMigration(t, dir, "001_a.sql", "SELECT 1;")
		writeMigration(t, dir, "1_b.sql", "SELECT 2;")

		_, err := NewMigrationManager(nil, dir).LoadMigrations()
		assert.ErrorIs(t, err, ErrMigrationVersion)
	})

	t.Run("zero", func(t *testing.T) {
		dir := t.TempDir()
		writeMigration(t, dir, "000_a.sql", "SELECT 1;")

		_, err := NewMigrationManager(nil, dir).LoadMigrations()
		assert.ErrorIs(t, err, ErrMigrationVersion)
	})
}
