package driven

import (
	"context"

	"github.com/custodia-labs/namehunt-core/internal/core/domain"
)

// ConversationStore persists conversations as whole units.
// No partial-field update support is assumed; Save is a full upsert.
type ConversationStore interface {
	// Get retrieves a conversation by ID. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.Conversation, error)

	// List returns all conversations, most recently updated first.
	List(ctx context.Context) ([]*domain.Conversation, error)

	// Save upserts the whole conversation keyed by its ID.
	Save(ctx context.Context, conversation *domain.Conversation) error

	// Delete removes a conversation. Deleting a missing ID is not an error.
	Delete(ctx context.Context, id string) error

	// GetCurrentID returns the current-conversation pointer, or "" when unset.
	GetCurrentID(ctx context.Context) (string, error)

	// SetCurrentID updates the pointer; an empty ID clears it.
	SetCurrentID(ctx context.Context, id string) error
}
