package memory

import (
	"context"
	"sync"

	"github.com/pathwise/coachmem-go/pkg/core"
)

// InMemoryStore is a process-local Store for development and tests.
//
// Records are copied on the way in and out so callers never share slices
// with the store.
type InMemoryStore struct {
	mu       sync.RWMutex
	memories map[string]core.MemoryRecord
	trackers map[string]core.ProfileUpdateTracker
	profiles map[string]core.UserProfile
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		memories: make(map[string]core.MemoryRecord),
		trackers: make(map[string]core.ProfileUpdateTracker),
		profiles: make(map[string]core.UserProfile),
	}
}

// GetMemory retrieves the memory record for a user, or nil if absent.
func (s *InMemoryStore) GetMemory(ctx context.Context, userID string) (*core.MemoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.memories[userID]
	if !ok {
		return nil, nil
	}
	record.Interactions = append([]core.InteractionEntry(nil), record.Interactions...)
	record.ProfileUpdates = append([]core.ProfileUpdateEntry(nil), record.ProfileUpdates...)
	return &record, nil
}

// SaveMemory saves or replaces the memory record for a user.
func (s *InMemoryStore) SaveMemory(ctx context.Context, record *core.MemoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *record
	copied.Interactions = append([]core.InteractionEntry(nil), record.Interactions...)
	copied.ProfileUpdates = append([]core.ProfileUpdateEntry(nil), record.ProfileUpdates...)
	s.memories[record.UserID] = copied
	return nil
}

// GetTracker retrieves the profile update tracker for a user, or nil if absent.
func (s *InMemoryStore) GetTracker(ctx context.Context, userID string) (*core.ProfileUpdateTracker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tracker, ok := s.trackers[userID]
	if !ok {
		return nil, nil
	}
	tracker.PendingInsights = append([]core.PendingInsight(nil), tracker.PendingInsights...)
	return &tracker, nil
}

// SaveTracker saves or replaces the profile update tracker for a user.
func (s *InMemoryStore) SaveTracker(ctx context.Context, tracker *core.ProfileUpdateTracker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *tracker
	copied.PendingInsights = append([]core.PendingInsight(nil), tracker.PendingInsights...)
	s.trackers[tracker.UserID] = copied
	return nil
}

// GetProfile retrieves the user profile, or nil if absent.
func (s *InMemoryStore) GetProfile(ctx context.Context, userID string) (*core.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &profile, nil
}

// SaveProfile saves or replaces the user profile.
func (s *InMemoryStore) SaveProfile(ctx context.Context, userID string, profile *core.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[userID] = *profile
	return nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
