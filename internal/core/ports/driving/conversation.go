package driving

import (
	"context"

	"github.com/custodia-labs/namehunt-core/internal/core/domain"
)

// ImportStrategy selects how imported conversations merge with existing ones.
type ImportStrategy string

const (
	// ImportStrategyNew remaps imported conversation IDs so nothing existing
	// is overwritten.
	ImportStrategyNew ImportStrategy = "new"

	// ImportStrategyOverwrite keeps imported IDs; incoming conversations win
	// on ID collisions.
	ImportStrategyOverwrite ImportStrategy = "overwrite"
)

// ExportAppMeta describes the exporting application.
type ExportAppMeta struct {
	Name        string `json:"name,omitempty"`
	Version     string `json:"version,omitempty"`
	Environment string `json:"environment,omitempty"`
}

// ExportPayload is the portable conversation archive format.
type ExportPayload struct {
	Version       string                 `json:"version"`
	ExportedAt    string                 `json:"exported_at"`
	App           *ExportAppMeta         `json:"app,omitempty"`
	Conversations []*domain.Conversation `json:"conversations"`
}

// ImportResult summarizes an import.
type ImportResult struct {
	Imported int `json:"imported"`
	Messages int `json:"messages"`
}

// ConversationService manages stored conversations.
type ConversationService interface {
	List(ctx context.Context) ([]*domain.Conversation, error)
	Get(ctx context.Context, id string) (*domain.Conversation, error)
	Delete(ctx context.Context, id string) error
	UpdateTitle(ctx context.Context, id, title string) error

	// Current returns the current-conversation pointer, "" when unset.
	Current(ctx context.Context) (string, error)
	SetCurrent(ctx context.Context, id string) error

	Export(ctx context.Context) (*ExportPayload, error)
	Import(ctx context.Context, payload *ExportPayload, strategy ImportStrategy) (*ImportResult, error)
}
