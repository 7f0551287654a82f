package openai

import (
	"github.com/custodia-labs/namehunt-core/internal/core/domain"
	"github.com/custodia-labs/namehunt-core/internal/core/ports/driven"
)

// Ensure Factory implements ChatProviderFactory
var _ driven.ChatProviderFactory = (*Factory)(nil)

// Factory builds transport clients from resolved provider configs.
type Factory struct{}

// NewFactory creates a new chat provider factory.
func NewFactory() *Factory {
	return &Factory{}
}

// Create builds a client for the given config. The endpoint and key are
// mandatory; the model may still be missing for model-discovery calls.
func (f *Factory) Create(cfg *domain.ResolvedProviderConfig) (driven.ChatProvider, error) {
	if cfg == nil || cfg.APIKey == "" || cfg.Endpoint == "" {
		return nil, domain.ErrProviderNotConfigured
	}
	return NewClient(cfg), nil
}
