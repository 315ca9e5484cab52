/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements generic.DocumentStore (one JSON snapshot per user) and the
  alert-run log used by the closing-day scheduler.

INTERFACES IMPLEMENTED:
  generic.DocumentStore: Per-user snapshot documents
  generic.UserLister:    Enumerate users for background scans

KEY TABLES:
  documents:   user_id -> snapshot JSON, replaced whole on every save
  alert_runs:  one row per (user, day) the scheduler has reported alerts for

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's own locking.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/billing.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  ledger := billing.NewLedger(billing.NewDocumentSnapshots(store))

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - generic/store.go: Interface definitions
  - store/memory/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/billing-engine/generic"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Per-user snapshot documents (clients, work entries, profile)
	CREATE TABLE IF NOT EXISTS documents (
		user_id TEXT PRIMARY KEY,
		document_json TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Closing-day alert runs (one per user per day)
	CREATE TABLE IF NOT EXISTS alert_runs (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		run_date TEXT NOT NULL,
		alert_count INTEGER NOT NULL DEFAULT 0,
		client_ids TEXT,
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_alert_runs_user_date
		ON alert_runs(user_id, run_date);
	CREATE INDEX IF NOT EXISTS idx_alert_runs_date
		ON alert_runs(run_date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// DOCUMENT STORE (generic.DocumentStore interface)
// =============================================================================

// Load returns the user's document, or nil when none has been saved.
func (s *Store) Load(ctx context.Context, userID generic.UserID) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT document_json FROM documents WHERE user_id = ?`, string(userID)).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	return []byte(doc), nil
}

// Save replaces the user's document and bumps its version.
func (s *Store) Save(ctx context.Context, userID generic.UserID, document []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (user_id, document_json, version, created_at, updated_at)
		VALUES (?, ?, 1, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			document_json = excluded.document_json,
			version = documents.version + 1,
			updated_at = excluded.updated_at
	`, string(userID), string(document), now, now)
	if err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

// Version returns how many times the user's document has been saved. The
// API exposes it as X-Document-Version.
func (s *Store) Version(ctx context.Context, userID generic.UserID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var v int
	err := s.db.QueryRowContext(ctx,
		`SELECT version FROM documents WHERE user_id = ?`, string(userID)).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, generic.ErrSnapshotNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read version: %w", err)
	}
	return v, nil
}

// ListUsers returns every user with a stored document.
func (s *Store) ListUsers(ctx context.Context) ([]generic.UserID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT user_id FROM documents ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []generic.UserID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		users = append(users, generic.UserID(id))
	}
	return users, rows.Err()
}

// DeleteUser removes the user's document (DELETE /api/snapshot).
func (s *Store) DeleteUser(ctx context.Context, userID generic.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE user_id = ?`, string(userID))
	return err
}

// =============================================================================
// ALERT RUNS
// =============================================================================

// AlertRun records that the scheduler reported alerts for a user on a day.
type AlertRun struct {
	ID         string
	UserID     generic.UserID
	RunDate    generic.Date
	AlertCount int
	ClientIDs  []string
	CreatedAt  time.Time
}

// ErrAlertRunExists is returned when the (user, day) pair was already recorded.
var ErrAlertRunExists = errors.New("alert run already recorded")

// SaveAlertRun records a run. A second run for the same user and day is
// rejected with ErrAlertRunExists.
func (s *Store) SaveAlertRun(ctx context.Context, run AlertRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO alert_runs (id, user_id, run_date, alert_count, client_ids, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, string(run.UserID), run.RunDate.Key(), run.AlertCount,
		strings.Join(run.ClientIDs, ","), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrAlertRunExists
		}
		return fmt.Errorf("failed to save alert run: %w", err)
	}
	return nil
}

// HasAlertRun reports whether the scheduler already ran for user on day.
func (s *Store) HasAlertRun(ctx context.Context, userID generic.UserID, day generic.Date) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM alert_runs WHERE user_id = ? AND run_date = ?`,
		string(userID), day.Key()).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check alert run: %w", err)
	}
	return n > 0, nil
}

// ListAlertRuns returns the most recent runs first.
func (s *Store) ListAlertRuns(ctx context.Context, limit int) ([]AlertRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, run_date, alert_count, client_ids, created_at
		FROM alert_runs
		ORDER BY run_date DESC, created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list alert runs: %w", err)
	}
	defer rows.Close()

	var runs []AlertRun
	for rows.Next() {
		var (
			r                          AlertRun
			userID, runDate, createdAt string
			clientIDs                  sql.NullString
		)
		if err := rows.Scan(&r.ID, &userID, &runDate, &r.AlertCount, &clientIDs, &createdAt); err != nil {
			return nil, err
		}
		r.UserID = generic.UserID(userID)
		if r.RunDate, err = generic.ParseDate(runDate); err != nil {
			return nil, err
		}
		if clientIDs.Valid && clientIDs.String != "" {
			r.ClientIDs = strings.Split(clientIDs.String, ",")
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

var (
	_ generic.DocumentStore = (*Store)(nil)
	_ generic.UserLister    = (*Store)(nil)
)
