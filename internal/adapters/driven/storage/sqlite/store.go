package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/arkeo/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/arkeo/internal/core/domain"
	"github.com/custodia-labs/arkeo/internal/core/ports/driven"
)

// DBFile is the database file name inside the data directory.
const DBFile = "status.db"

// Store is a SQLite-backed store for connector status history.
type Store struct {
	db   *sql.DB
	path string
}

// Ensure Store implements the interface.
var _ driven.StatusHistoryStore = (*Store)(nil)

// NewStore opens (creating if needed) the database in dataDir.
// If dataDir is empty, defaults to ~/.arkeo/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".arkeo", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DBFile)

	// WAL lets the CLI read history while an MCP server is recording.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate applies every pending NNN_name.up.sql migration in order and
// records its version.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", name, err)
		}
	}

	return nil
}

// Record appends a health check result.
func (s *Store) Record(ctx context.Context, result domain.HealthCheckResult) error {
	checkedAt := result.CheckedAt
	if checkedAt.IsZero() {
		checkedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO status_history (connector_id, status, response_time_ms, message, checked_at)
		VALUES (?, ?, ?, ?, ?)
	`, result.ConnectorID, string(result.Status), result.ResponseTimeMS, result.Message, checkedAt.UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("recording status: %w", err)
	}
	return nil
}

// List returns up to limit results for connectorID, newest first.
// A non-positive limit returns everything.
func (s *Store) List(ctx context.Context, connectorID string, limit int) ([]domain.HealthCheckResult, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT connector_id, status, response_time_ms, message, checked_at
		FROM status_history
		WHERE connector_id = ?
		ORDER BY checked_at DESC, id DESC
		LIMIT ?
	`, connectorID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying status history: %w", err)
	}
	defer rows.Close()

	var results []domain.HealthCheckResult
	for rows.Next() {
		var r domain.HealthCheckResult
		var status string
		var checkedAt int64
		if err := rows.Scan(&r.ConnectorID, &status, &r.ResponseTimeMS, &r.Message, &checkedAt); err != nil {
			return nil, fmt.Errorf("scanning status history: %w", err)
		}
		r.Status = domain.HealthStatus(status)
		r.CheckedAt = time.UnixMilli(checkedAt).UTC()
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating status history: %w", err)
	}
	return results, nil
}

// Prune deletes entries older than before and returns how many were removed.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM status_history WHERE checked_at < ?", before.UTC().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("pruning status history: %w", err)
	}
	return res.RowsAffected()
}
