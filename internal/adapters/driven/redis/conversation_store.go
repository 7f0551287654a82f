// Package redis provides Redis-backed persistence adapters.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/namehunt-core/internal/core/domain"
	"github.com/custodia-labs/namehunt-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ConversationStore = (*ConversationStore)(nil)

const (
	// Key prefixes for Redis
	conversationPrefix = "conversation:"
	conversationIndex  = "conversations:by_updated"
	currentConvKey     = "conversation:current"
)

// ConversationStore implements driven.ConversationStore using Redis.
// Conversations are stored whole as JSON; a sorted set scored by UpdatedAt
// keeps the listing in recency order without scanning keys.
type ConversationStore struct {
	client *redis.Client
}

// NewConversationStore creates a new Redis-backed ConversationStore
func NewConversationStore(client *redis.Client) *ConversationStore {
	return &ConversationStore{client: client}
}

// Get retrieves a conversation by ID
func (s *ConversationStore) Get(ctx context.Context, id string) (*domain.Conversation, error) {
	data, err := s.client.Get(ctx, conversationPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	var conversation domain.Conversation
	if err := json.Unmarshal(data, &conversation); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation: %w", err)
	}

	return &conversation, nil
}

// List returns all conversations, most recently updated first
func (s *ConversationStore) List(ctx context.Context) ([]*domain.Conversation, error) {
	ids, err := s.client.ZRevRange(ctx, conversationIndex, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	conversations := make([]*domain.Conversation, 0, len(ids))
	var stale []any
	for _, id := range ids {
		conversation, err := s.Get(ctx, id)
		if err == domain.ErrNotFound {
			// Index entry outlived its value; track for cleanup
			stale = append(stale, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		conversations = append(conversations, conversation)
	}

	if len(stale) > 0 {
		s.client.ZRem(ctx, conversationIndex, stale...)
	}

	return conversations, nil
}

// Save upserts the whole conversation and refreshes its index score
func (s *ConversationStore) Save(ctx context.Context, conversation *domain.Conversation) error {
	data, err := json.Marshal(conversation)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}

	// Use pipeline for atomic operations
	pipe := s.client.Pipeline()
	pipe.Set(ctx, conversationPrefix+conversation.ID, data, 0)
	pipe.ZAdd(ctx, conversationIndex, redis.Z{
		Score:  float64(conversation.UpdatedAt.UnixMilli()),
		Member: conversation.ID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}

	return nil
}

// Delete removes a conversation and its index entry
func (s *ConversationStore) Delete(ctx context.Context, id string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, conversationPrefix+id)
	pipe.ZRem(ctx, conversationIndex, id)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}

	return nil
}

// GetCurrentID returns the current-conversation pointer, or "" when unset
func (s *ConversationStore) GetCurrentID(ctx context.Context) (string, error) {
	id, err := s.client.Get(ctx, currentConvKey).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get current conversation: %w", err)
	}
	return id, nil
}

// SetCurrentID updates the pointer; an empty ID clears it
func (s *ConversationStore) SetCurrentID(ctx context.Context, id string) error {
	if id == "" {
		if err := s.client.Del(ctx, currentConvKey).Err(); err != nil {
			return fmt.Errorf("failed to clear current conversation: %w", err)
		}
		return nil
	}
	if err := s.client.Set(ctx, currentConvKey, id, 0).Err(); err != nil {
		return fmt.Errorf("failed to set current conversation: %w", err)
	}
	return nil
}
