package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/namehunt-core/internal/core/domain"
	"github.com/custodia-labs/namehunt-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ConversationStore = (*ConversationStore)(nil)

const currentConversationKey = "current_conversation"

// ConversationStore implements driven.ConversationStore using PostgreSQL.
// Conversations are stored whole as JSONB documents.
type ConversationStore struct {
	db *DB
}

// NewConversationStore creates a new ConversationStore
func NewConversationStore(db *DB) *ConversationStore {
	return &ConversationStore{db: db}
}

// Get retrieves a conversation by ID
func (s *ConversationStore) Get(ctx context.Context, id string) (*domain.Conversation, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM conversations WHERE id = $1`, id).Scan(&data)
	if err == sql.ErrNoRows {
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
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM conversations ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var conversations []*domain.Conversation
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		var conversation domain.Conversation
		if err := json.Unmarshal(data, &conversation); err != nil {
			return nil, fmt.Errorf("failed to unmarshal conversation: %w", err)
		}
		conversations = append(conversations, &conversation)
	}
	return conversations, rows.Err()
}

// Save upserts the whole conversation
func (s *ConversationStore) Save(ctx context.Context, conversation *domain.Conversation) error {
	data, err := json.Marshal(conversation)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conversations (id, data, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at
	`, conversation.ID, data, conversation.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	return nil
}

// Delete removes a conversation. Deleting a missing ID is not an error.
func (s *ConversationStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM conversations WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	return nil
}

// GetCurrentID returns the current-conversation pointer, or "" when unset
func (s *ConversationStore) GetCurrentID(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM app_state WHERE key = $1`, currentConversationKey).Scan(&id)
	if err == sql.ErrNoRows {
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
		if _, err := s.db.ExecContext(ctx,
			`DELETE FROM app_state WHERE key = $1`, currentConversationKey); err != nil {
			return fmt.Errorf("failed to clear current conversation: %w", err)
		}
		return nil
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_state (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`, currentConversationKey, id)
	if err != nil {
		return fmt.Errorf("failed to set current conversation: %w", err)
	}
	return nil
}
