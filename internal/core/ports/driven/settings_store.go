package driven

import (
	"context"

	"github.com/custodia-labs/namehunt-core/internal/core/domain"
)

// SettingsStore persists the single-user settings object.
type SettingsStore interface {
	// Get retrieves the stored settings. Returns domain.ErrNotFound when
	// settings have never been saved.
	Get(ctx context.Context) (*domain.Settings, error)

	// Save upserts the whole settings object.
	Save(ctx context.Context, settings *domain.Settings) error
}
