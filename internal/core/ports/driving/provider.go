package driving

import (
	"context"

	"github.com/custodia-labs/namehunt-core/internal/core/domain"
)

// ProviderService exposes the vendor catalog and live model discovery.
type ProviderService interface {
	// Presets returns the built-in vendor catalog.
	Presets() []domain.ProviderPreset

	// Resolve returns the effective configuration of the active vendor, or
	// domain.ErrProviderNotConfigured when none is usable.
	Resolve(ctx context.Context) (*domain.ResolvedProviderConfig, error)

	// RefreshModels fetches the model list for a vendor from its models
	// endpoint and persists it into that vendor's provider config.
	RefreshModels(ctx context.Context, vendor string) ([]string, error)

	// Registrars returns the user's enabled registrar links.
	Registrars(ctx context.Context) ([]domain.Registrar, error)
}
