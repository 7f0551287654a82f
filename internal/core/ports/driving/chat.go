package driving

import (
	"context"

	"github.com/custodia-labs/namehunt-core/internal/core/domain"
)

// SendMessageRequest submits one user turn.
type SendMessageRequest struct {
	// ConversationID continues an existing conversation; empty starts a new one.
	ConversationID string `json:"conversation_id,omitempty"`
	Content        string `json:"content"`
}

// ChatEventSink receives the user-visible events of one assistant turn.
type ChatEventSink interface {
	// Delta delivers an assistant text fragment.
	Delta(text string)

	// Completed delivers the finalized assistant message once the turn ends.
	// Domain checking may still be running in the background at this point.
	Completed(conversationID string, message domain.Message)

	// Failed delivers a human-readable error for the turn.
	Failed(message string)
}

// ChatService drives one conversational turn end to end: append the user
// message, stream the assistant reply, extract domain candidates and hand
// them to the domain check orchestrator.
type ChatService interface {
	Send(ctx context.Context, req SendMessageRequest, sink ChatEventSink) error
}
