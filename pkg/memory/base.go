// Package memory provides the per-user persistence port and the bounded
// conversational memory built on top of it.
package memory

import (
	"context"

	"github.com/pathwise/coachmem-go/pkg/core"
)

// Store is the key-value persistence surface for per-user chat state.
//
// Implementations back three userID-keyed records: the conversational
// memory, the profile update tracker, and the user profile. Get methods
// return (nil, nil) when no record exists; Save methods upsert.
//
// No transactional multi-key guarantee is assumed: each Save is an
// independent read-modify-write, and concurrent writers for the same
// userID race with last-write-wins semantics.
type Store interface {
	// GetMemory retrieves the memory record for a user, or nil if absent.
	GetMemory(ctx context.Context, userID string) (*core.MemoryRecord, error)

	// SaveMemory saves or replaces the memory record for a user.
	SaveMemory(ctx context.Context, record *core.MemoryRecord) error

	// GetTracker retrieves the profile update tracker for a user, or nil if absent.
	GetTracker(ctx context.Context, userID string) (*core.ProfileUpdateTracker, error)

	// SaveTracker saves or replaces the profile update tracker for a user.
	SaveTracker(ctx context.Context, tracker *core.ProfileUpdateTracker) error

	// GetProfile retrieves the user profile, or nil if absent.
	GetProfile(ctx context.Context, userID string) (*core.UserProfile, error)

	// SaveProfile saves or replaces the user profile.
	SaveProfile(ctx context.Context, userID string, profile *core.UserProfile) error

	// Close closes the store and releases resources.
	Close() error
}
