package memory

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/pathwise/coachmem-go/pkg/core"
)

// ConversationMemory manages the bounded per-user interaction log.
//
// Appends enforce the configured interaction cap by evicting the oldest
// entries first. Appends for different users are independent; concurrent
// appends for the same user race on the persisted record with
// last-write-wins semantics. That is a documented limitation of the
// key-value persistence surface, not something this layer hides.
type ConversationMemory struct {
	// store is the persistence surface.
	store Store

	// maxInteractions caps the interaction log per user.
	maxInteractions int

	// node generates unique IDs for appended entries.
	node *snowflake.Node
}

// NewConversationMemory creates a ConversationMemory over the given store.
//
// Parameters:
//   - store: Persistence surface (required)
//   - maxInteractions: Interaction cap per user (0 uses the default of 50)
//
// Returns an error only if the snowflake node cannot be initialized.
func NewConversationMemory(store Store, maxInteractions int) (*ConversationMemory, error) {
	if maxInteractions <= 0 {
		maxInteractions = core.DefaultMaxMemoryInteractions
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, core.NewCoachError("NewConversationMemory", err)
	}

	return &ConversationMemory{
		store:           store,
		maxInteractions: maxInteractions,
		node:            node,
	}, nil
}

// Load returns the persisted memory record for a user, or a freshly
// initialized empty record if none exists. The fresh record is not
// persisted until the first append.
func (m *ConversationMemory) Load(ctx context.Context, userID string) (*core.MemoryRecord, error) {
	record, err := m.store.GetMemory(ctx, userID)
	if err != nil {
		return nil, core.NewCoachError("Load", err)
	}
	if record == nil {
		record = &core.MemoryRecord{
			UserID:         userID,
			Interactions:   []core.InteractionEntry{},
			ProfileUpdates: []core.ProfileUpdateEntry{},
			LastUpdated:    time.Now(),
		}
	}
	return record, nil
}

// Append appends an interaction entry to a user's memory record.
//
// The append is all-or-nothing: the record is loaded, the entry appended,
// the cap enforced front-first, and the whole record persisted. An entry
// without an ID is assigned one.
func (m *ConversationMemory) Append(ctx context.Context, userID string, entry core.InteractionEntry) error {
	record, err := m.Load(ctx, userID)
	if err != nil {
		return err
	}

	if entry.ID == 0 {
		entry.ID = m.node.Generate().Int64()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	record.Interactions = append(record.Interactions, entry)
	if overflow := len(record.Interactions) - m.maxInteractions; overflow > 0 {
		record.Interactions = record.Interactions[overflow:]
	}
	record.LastUpdated = time.Now()

	if err := m.store.SaveMemory(ctx, record); err != nil {
		return core.NewCoachError("Append", err)
	}
	return nil
}

// RecordProfileUpdate appends a profile update entry to a user's memory
// record. An entry without an ID is assigned one.
func (m *ConversationMemory) RecordProfileUpdate(ctx context.Context, userID string, entry core.ProfileUpdateEntry) error {
	record, err := m.Load(ctx, userID)
	if err != nil {
		return err
	}

	if entry.ID == 0 {
		entry.ID = m.node.Generate().Int64()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	record.ProfileUpdates = append(record.ProfileUpdates, entry)
	record.LastUpdated = time.Now()

	if err := m.store.SaveMemory(ctx, record); err != nil {
		return core.NewCoachError("RecordProfileUpdate", err)
	}
	return nil
}

// Store exposes the underlying persistence surface.
func (m *ConversationMemory) Store() Store {
	return m.store
}
