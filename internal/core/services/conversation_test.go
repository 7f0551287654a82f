package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/namehunt-core/internal/core/domain"
	"github.com/custodia-labs/namehunt-core/internal/core/ports/driving"
)

func seedConversations(t *testing.T, store *memConversationStore, ids ...string) {
	t.Helper()
	now := time.Now()
	for _, id := range ids {
		require.NoError(t, store.Save(context.Background(), &domain.Conversation{
			ID:        id,
			Title:     "title " + id,
			Messages:  []domain.Message{{ID: id + "-m1", Role: domain.RoleUser, Content: "hi", Timestamp: now}},
			CreatedAt: now,
			UpdatedAt: now,
		}))
	}
}

func TestDeleteClearsCurrentPointer(t *testing.T) {
	store := newMemConversationStore()
	seedConversations(t, store, "a", "b")
	require.NoError(t, store.SetCurrentID(context.Background(), "a"))
	svc := NewConversationService(store, "test", nil)

	require.NoError(t, svc.Delete(context.Background(), "a"))

	current, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Empty(t, current)

	// Deleting a non-current conversation leaves the pointer alone.
	require.NoError(t, store.SetCurrentID(context.Background(), "b"))
	seedConversations(t, store, "c")
	require.NoError(t, svc.Delete(context.Background(), "c"))
	current, err = svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "b", current)
}

func TestUpdateTitle(t *testing.T) {
	store := newMemConversationStore()
	seedConversations(t, store, "a")
	svc := NewConversationService(store, "test", nil)

	require.NoError(t, svc.UpdateTitle(context.Background(), "a", "  Renamed  "))

	conversation, err := svc.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", conversation.Title)

	assert.ErrorIs(t, svc.UpdateTitle(context.Background(), "a", "   "), domain.ErrInvalidInput)
	assert.ErrorIs(t, svc.UpdateTitle(context.Background(), "ghost", "x"), domain.ErrNotFound)
}

func TestSetCurrentValidatesExistence(t *testing.T) {
	store := newMemConversationStore()
	seedConversations(t, store, "a")
	svc := NewConversationService(store, "test", nil)

	require.NoError(t, svc.SetCurrent(context.Background(), "a"))
	assert.ErrorIs(t, svc.SetCurrent(context.Background(), "ghost"), domain.ErrNotFound)

	// Clearing the pointer needs no lookup.
	require.NoError(t, svc.SetCurrent(context.Background(), ""))
}

func TestExportRoundTrip(t *testing.T) {
	store := newMemConversationStore()
	seedConversations(t, store, "a", "b")
	svc := NewConversationService(store, "1.2.3", nil)

	payload, err := svc.Export(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "1.0.0", payload.Version)
	assert.NotEmpty(t, payload.ExportedAt)
	require.NotNil(t, payload.App)
	assert.Equal(t, "namehunt-core", payload.App.Name)
	assert.Equal(t, "1.2.3", payload.App.Version)
	assert.Len(t, payload.Conversations, 2)

	// Importing the export into a fresh store with overwrite keeps IDs.
	fresh := newMemConversationStore()
	freshSvc := NewConversationService(fresh, "1.2.3", nil)
	result, err := freshSvc.Import(context.Background(), payload, driving.ImportStrategyOverwrite)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 2, result.Messages)

	_, err = fresh.Get(context.Background(), "a")
	assert.NoError(t, err)
}

func TestImportNewStrategyRemapsIDs(t *testing.T) {
	store := newMemConversationStore()
	seedConversations(t, store, "a")
	svc := NewConversationService(store, "test", nil)

	payload := &driving.ExportPayload{
		Conversations: []*domain.Conversation{{
			ID:    "a",
			Title: "Incoming",
			Messages: []domain.Message{
				{ID: "m1", Role: domain.RoleUser, Content: "hello"},
			},
		}},
	}

	result, err := svc.Import(context.Background(), payload, driving.ImportStrategyNew)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)

	conversations, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, conversations, 2)

	// The original stayed; the import landed under a new ID with provenance.
	var imported *domain.Conversation
	for _, c := range conversations {
		if c.ID != "a" {
			imported = c
		}
	}
	require.NotNil(t, imported)
	assert.Equal(t, "a", imported.ImportedFromID)
	assert.NotNil(t, imported.ImportedAt)

	original, err := svc.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "title a", original.Title)
}

func TestImportSanitizesUntrustedEntries(t *testing.T) {
	store := newMemConversationStore()
	svc := NewConversationService(store, "test", nil)

	payload := &driving.ExportPayload{
		Conversations: []*domain.Conversation{
			nil,
			{
				// No ID, no title, a bogus message role in the middle.
				Messages: []domain.Message{
					{Role: domain.RoleUser, Content: "keep me"},
					{Role: "robot", Content: "drop me"},
					{Role: domain.RoleAssistant, Content: "keep me too"},
				},
			},
		},
	}

	result, err := svc.Import(context.Background(), payload, driving.ImportStrategyNew)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 2, result.Messages)

	conversations, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	c := conversations[0]
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "Imported Conversation", c.Title)
	require.Len(t, c.Messages, 2)
	for _, m := range c.Messages {
		assert.NotEmpty(t, m.ID)
		assert.False(t, m.Timestamp.IsZero())
	}
}

func TestImportRejectsBadInput(t *testing.T) {
	svc := NewConversationService(newMemConversationStore(), "test", nil)

	_, err := svc.Import(context.Background(), nil, driving.ImportStrategyNew)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Import(context.Background(), &driving.ExportPayload{}, "merge")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
