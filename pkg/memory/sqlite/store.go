// Package sqlite provides the SQLite persistence backend for per-user chat state.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pathwise/coachmem-go/pkg/core"
)

// Table names for the three userID-keyed records.
const (
	memoryTable  = "memory_records"
	trackerTable = "profile_trackers"
	profileTable = "user_profiles"
)

// Store implements memory.Store using SQLite as the backend.
//
// Each record kind lives in its own table as a JSON document keyed by
// user_id. This is the default backend for single-node deployments.
type Store struct {
	// db is the SQLite database connection.
	db *sql.DB
}

// Config contains configuration for creating a SQLite store.
type Config struct {
	// DBPath is the path to the SQLite database file.
	DBPath string
}

// NewStore creates a new SQLite store and initializes its tables.
//
// Parameters:
//   - cfg: Configuration containing the database path
//
// Returns:
//   - *Store: The store instance
//   - error: Error if database connection or table creation fails
func NewStore(cfg *Config) (*Store, error) {
	db, err := sql.Open("sqlite3", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initTables(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// initTables initializes the database table structure.
func (s *Store) initTables(ctx context.Context) error {
	for _, table := range []string{memoryTable, trackerTable, profileTable} {
		query := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				user_id TEXT PRIMARY KEY,
				document TEXT NOT NULL,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)
		`, table)
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}
	return nil
}

// getDocument loads and unmarshals the JSON document for a user from a table.
// Returns false if no document exists.
func (s *Store) getDocument(ctx context.Context, table, userID string, out interface{}) (bool, error) {
	query := fmt.Sprintf("SELECT document FROM %s WHERE user_id = ?", table)

	var document string
	err := s.db.QueryRowContext(ctx, query, userID).Scan(&document)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get document: %w", err)
	}

	if err := json.Unmarshal([]byte(document), out); err != nil {
		return false, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return true, nil
}

// setDocument marshals and upserts the JSON document for a user in a table.
func (s *Store) setDocument(ctx context.Context, table, userID string, in interface{}) error {
	document, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, document, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at
	`, table)

	if _, err := s.db.ExecContext(ctx, query, userID, string(document), time.Now()); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

// GetMemory retrieves the memory record for a user, or nil if absent.
func (s *Store) GetMemory(ctx context.Context, userID string) (*core.MemoryRecord, error) {
	var record core.MemoryRecord
	found, err := s.getDocument(ctx, memoryTable, userID, &record)
	if err != nil || !found {
		return nil, err
	}
	return &record, nil
}

// SaveMemory saves or replaces the memory record for a user.
func (s *Store) SaveMemory(ctx context.Context, record *core.MemoryRecord) error {
	return s.setDocument(ctx, memoryTable, record.UserID, record)
}

// GetTracker retrieves the profile update tracker for a user, or nil if absent.
func (s *Store) GetTracker(ctx context.Context, userID string) (*core.ProfileUpdateTracker, error) {
	var tracker core.ProfileUpdateTracker
	found, err := s.getDocument(ctx, trackerTable, userID, &tracker)
	if err != nil || !found {
		return nil, err
	}
	return &tracker, nil
}

// SaveTracker saves or replaces the profile update tracker for a user.
func (s *Store) SaveTracker(ctx context.Context, tracker *core.ProfileUpdateTracker) error {
	return s.setDocument(ctx, trackerTable, tracker.UserID, tracker)
}

// GetProfile retrieves the user profile, or nil if absent.
func (s *Store) GetProfile(ctx context.Context, userID string) (*core.UserProfile, error) {
	var profile core.UserProfile
	found, err := s.getDocument(ctx, profileTable, userID, &profile)
	if err != nil || !found {
		return nil, err
	}
	return &profile, nil
}

// SaveProfile saves or replaces the user profile.
func (s *Store) SaveProfile(ctx context.Context, userID string, profile *core.UserProfile) error {
	return s.setDocument(ctx, profileTable, userID, profile)
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
