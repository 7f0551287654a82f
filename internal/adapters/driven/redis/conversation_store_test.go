package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/namehunt-core/internal/core/domain"
)

func setupTestConversationStore(t *testing.T) (*ConversationStore, *miniredis.Miniredis, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	store := NewConversationStore(client)

	cleanup := func() {
		_ = client.Close()
		mr.Close()
	}
	return store, mr, cleanup
}

func testConversation(id string, updatedAt time.Time) *domain.Conversation {
	return &domain.Conversation{
		ID:    id,
		Title: "title " + id,
		Messages: []domain.Message{
			{ID: id + "-m1", Role: domain.RoleUser, Content: "hello", Timestamp: updatedAt},
		},
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
	}
}

func TestConversationStoreSaveAndGet(t *testing.T) {
	store, _, cleanup := setupTestConversationStore(t)
	defer cleanup()
	ctx := context.Background()

	saved := testConversation("conv-1", time.Now().Truncate(time.Millisecond))
	saved.Messages[0].Domains = []domain.DomainResult{
		{Domain: "acme.io", Order: 0, Available: domain.Bool(true), Registrar: "Example Registrar"},
	}
	require.NoError(t, store.Save(ctx, saved))

	got, err := store.Get(ctx, "conv-1")
	require.NoError(t, err)
	assert.Equal(t, saved.Title, got.Title)
	require.Len(t, got.Messages, 1)
	require.Len(t, got.Messages[0].Domains, 1)
	result := got.Messages[0].Domains[0]
	require.NotNil(t, result.Available)
	assert.True(t, *result.Available)
	assert.Equal(t, "Example Registrar", result.Registrar)
}

func TestConversationStoreGetNotFound(t *testing.T) {
	store, _, cleanup := setupTestConversationStore(t)
	defer cleanup()

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConversationStoreListRecencyOrder(t *testing.T) {
	store, _, cleanup := setupTestConversationStore(t)
	defer cleanup()
	ctx := context.Background()

	base := time.Now()
	require.NoError(t, store.Save(ctx, testConversation("old", base.Add(-2*time.Hour))))
	require.NoError(t, store.Save(ctx, testConversation("new", base)))
	require.NoError(t, store.Save(ctx, testConversation("mid", base.Add(-time.Hour))))

	conversations, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, conversations, 3)
	assert.Equal(t, "new", conversations[0].ID)
	assert.Equal(t, "mid", conversations[1].ID)
	assert.Equal(t, "old", conversations[2].ID)
}

func TestConversationStoreListCleansStaleIndex(t *testing.T) {
	store, mr, cleanup := setupTestConversationStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testConversation("kept", time.Now())))
	// Simulate a value deleted out from under the index.
	_, err := mr.ZAdd(conversationIndex, 1, "ghost")
	require.NoError(t, err)

	conversations, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.Equal(t, "kept", conversations[0].ID)

	members, err := mr.ZMembers(conversationIndex)
	require.NoError(t, err)
	assert.Equal(t, []string{"kept"}, members)
}

func TestConversationStoreDelete(t *testing.T) {
	store, mr, cleanup := setupTestConversationStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testConversation("conv-1", time.Now())))
	require.NoError(t, store.Delete(ctx, "conv-1"))

	_, err := store.Get(ctx, "conv-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	members, err := mr.ZMembers(conversationIndex)
	if err == nil {
		assert.Empty(t, members)
	}
}

func TestConversationStoreCurrentPointer(t *testing.T) {
	store, _, cleanup := setupTestConversationStore(t)
	defer cleanup()
	ctx := context.Background()

	// Unset pointer reads back as empty, not as an error.
	id, err := store.GetCurrentID(ctx)
	require.NoError(t, err)
	assert.Empty(t, id)

	require.NoError(t, store.SetCurrentID(ctx, "conv-1"))
	id, err = store.GetCurrentID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "conv-1", id)

	require.NoError(t, store.SetCurrentID(ctx, ""))
	id, err = store.GetCurrentID(ctx)
	require.NoError(t, err)
	assert.Empty(t, id)
}
