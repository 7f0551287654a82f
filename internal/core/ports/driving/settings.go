package driving

import (
	"context"

	"github.com/custodia-labs/namehunt-core/internal/core/domain"
)

// UpdateSettingsRequest carries optional settings changes.
// Nil fields are left untouched.
type UpdateSettingsRequest struct {
	ActiveVendor          *string                          `json:"active_vendor,omitempty"`
	SystemPrompt          *string                          `json:"system_prompt,omitempty"`
	EnableFunctionCalling *bool                            `json:"enable_function_calling,omitempty"`
	Registrars            []domain.Registrar               `json:"registrars,omitempty"`
	ProviderConfigs       map[string]domain.ProviderConfig `json:"provider_configs,omitempty"`
}

// SettingsService manages the single-user settings and keeps the active chat
// provider in sync with them.
type SettingsService interface {
	// Get returns the stored settings, or defaults when never saved.
	Get(ctx context.Context) (*domain.Settings, error)

	// Update applies the request, persists the result and rebuilds the active
	// chat provider client when the provider configuration changed.
	Update(ctx context.Context, req UpdateSettingsRequest) (*domain.Settings, error)
}
