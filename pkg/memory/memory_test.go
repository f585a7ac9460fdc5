package memory_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pathwise/coachmem-go/pkg/core"
	"github.com/pathwise/coachmem-go/pkg/memory"
)

func TestLoadInitializesFreshRecord(t *testing.T) {
	store := memory.NewInMemoryStore()
	mem, err := memory.NewConversationMemory(store, 50)
	require.NoError(t, err)

	ctx := context.Background()
	record, err := mem.Load(ctx, "user_001")
	require.NoError(t, err)

	assert.Equal(t, "user_001", record.UserID)
	assert.Empty(t, record.Interactions)
	assert.Empty(t, record.ProfileUpdates)

	// Lazy init does not persist the empty record.
	stored, err := store.GetMemory(ctx, "user_001")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestAppendPersistsAndAssignsIDs(t *testing.T) {
	store := memory.NewInMemoryStore()
	mem, err := memory.NewConversationMemory(store, 50)
	require.NoError(t, err)

	ctx := context.Background()
	err = mem.Append(ctx, "user_001", core.InteractionEntry{
		UserMessage: "my team needs direction",
		Insights:    "engaging in leadership activities",
	})
	require.NoError(t, err)

	record, err := mem.Load(ctx, "user_001")
	require.NoError(t, err)
	require.Len(t, record.Interactions, 1)
	assert.NotZero(t, record.Interactions[0].ID)
	assert.False(t, record.Interactions[0].Timestamp.IsZero())
	assert.False(t, record.LastUpdated.IsZero())
}

func TestAppendEnforcesCapFIFO(t *testing.T) {
	store := memory.NewInMemoryStore()
	mem, err := memory.NewConversationMemory(store, 50)
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 60; i++ {
		err := mem.Append(ctx, "user_001", core.InteractionEntry{
			UserMessage: fmt.Sprintf("message %d", i),
		})
		require.NoError(t, err)
	}

	record, err := mem.Load(ctx, "user_001")
	require.NoError(t, err)
	require.Len(t, record.Interactions, 50)

	// The 50 most recent entries survive, oldest first.
	for i, entry := range record.Interactions {
		assert.Equal(t, fmt.Sprintf("message %d", i+10), entry.UserMessage)
	}
}

func TestRecordProfileUpdate(t *testing.T) {
	store := memory.NewInMemoryStore()
	mem, err := memory.NewConversationMemory(store, 50)
	require.NoError(t, err)

	ctx := context.Background()
	err = mem.RecordProfileUpdate(ctx, "user_001", core.ProfileUpdateEntry{
		Timestamp:     time.Now(),
		UpdatedFields: []string{"leadership_style"},
		InsightCount:  3,
	})
	require.NoError(t, err)

	record, err := mem.Load(ctx, "user_001")
	require.NoError(t, err)
	require.Len(t, record.ProfileUpdates, 1)
	assert.NotZero(t, record.ProfileUpdates[0].ID)
	assert.Equal(t, []string{"leadership_style"}, record.ProfileUpdates[0].UpdatedFields)
}

func TestAppendIndependentUsers(t *testing.T) {
	store := memory.NewInMemoryStore()
	mem, err := memory.NewConversationMemory(store, 50)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, mem.Append(ctx, "user_a", core.InteractionEntry{UserMessage: "a"}))
	require.NoError(t, mem.Append(ctx, "user_b", core.InteractionEntry{UserMessage: "b"}))

	recordA, err := mem.Load(ctx, "user_a")
	require.NoError(t, err)
	recordB, err := mem.Load(ctx, "user_b")
	require.NoError(t, err)

	assert.Len(t, recordA.Interactions, 1)
	assert.Len(t, recordB.Interactions, 1)
	assert.Equal(t, "a", recordA.Interactions[0].UserMessage)
	assert.Equal(t, "b", recordB.Interactions[0].UserMessage)
}
