// Package postgres provides the PostgreSQL persistence backend for per-user chat state.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/pathwise/coachmem-go/pkg/core"
)

const (
	memoryTable  = "memory_records"
	trackerTable = "profile_trackers"
	profileTable = "user_profiles"
)

// Store implements memory.Store using PostgreSQL as the backend.
//
// Each record kind lives in its own table as a JSONB document keyed by
// user_id.
type Store struct {
	db *sql.DB
}

// Config contains PostgreSQL configuration.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// NewStore creates a new PostgreSQL store and initializes its tables.
func NewStore(cfg *Config) (*Store, error) {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, sslMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("NewPostgresStore: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("NewPostgresStore: %w", err)
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
				user_id VARCHAR(255) PRIMARY KEY,
				document JSONB NOT NULL,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)
		`, table)
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("initTables: create table %s: %w", table, err)
		}
	}
	return nil
}

// getDocument loads and unmarshals the JSON document for a user from a table.
// Returns false if no document exists.
func (s *Store) getDocument(ctx context.Context, table, userID string, out interface{}) (bool, error) {
	query := fmt.Sprintf("SELECT document FROM %s WHERE user_id = $1", table)

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
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at
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
