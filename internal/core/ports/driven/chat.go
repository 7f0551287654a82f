package driven

import (
	"context"

	"github.com/custodia-labs/namehunt-core/internal/core/domain"
)

// ChatTurn is one role/content turn sent to the chat-completions transport.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// StreamHandler receives streaming events from the chat transport.
type StreamHandler interface {
	// OnDelta is called for each assistant text fragment.
	OnDelta(text string)

	// OnToolCallDelta is called for each indexed tool-call fragment. The id
	// and name are only present on the first fragment for an index; argument
	// fragments arrive as concatenated JSON pieces.
	OnToolCallDelta(index int, id, name, arguments string)
}

// ChatStreamer streams one assistant turn.
// The stream terminates when Stream returns: nil on the transport's explicit
// completion signal, an error otherwise.
type ChatStreamer interface {
	Stream(ctx context.Context, turns []ChatTurn, withTools bool, h StreamHandler) error

	// Model returns the model name being used
	Model() string
}

// TitleSummarizer produces a short conversation title from the first user
// message.
type TitleSummarizer interface {
	SummarizeTitle(ctx context.Context, firstMessage string) (string, error)
}

// ModelLister fetches the model IDs available on the configured provider.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// ChatProvider bundles the capabilities of one configured provider client.
type ChatProvider interface {
	ChatStreamer
	TitleSummarizer
	ModelLister
}

// ChatProviderFactory builds transport clients from a resolved provider
// configuration. Returns (nil, nil) when the config is incomplete.
type ChatProviderFactory interface {
	Create(cfg *domain.ResolvedProviderConfig) (ChatProvider, error)
}
