package runtime

import (
	"sync"

	"github.com/custodia-labs/namehunt-core/internal/core/domain"
	"github.com/custodia-labs/namehunt-core/internal/core/ports/driven"
)

// Services holds the dynamically configurable chat provider client.
// The client is rebuilt whenever provider settings change at runtime.
// Thread-safe for concurrent access.
type Services struct {
	mu sync.RWMutex

	provider driven.ChatProvider
	config   *domain.ResolvedProviderConfig
}

// NewServices creates a new Services registry
func NewServices() *Services {
	return &Services{}
}

// ChatProvider returns the current provider client (may be nil when no
// provider is configured).
func (s *Services) ChatProvider() driven.ChatProvider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.provider
}

// ProviderConfig returns the resolved config the current client was built
// from (may be nil).
func (s *Services) ProviderConfig() *domain.ResolvedProviderConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// SetChatProvider swaps the active provider client and its config.
func (s *Services) SetChatProvider(provider driven.ChatProvider, config *domain.ResolvedProviderConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.provider = provider
	s.config = config
}
