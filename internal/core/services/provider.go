package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/custodia-labs/namehunt-core/internal/core/domain"
	"github.com/custodia-labs/namehunt-core/internal/core/ports/driven"
	"github.com/custodia-labs/namehunt-core/internal/core/ports/driving"
)

// Ensure providerService implements ProviderService
var _ driving.ProviderService = (*providerService)(nil)

// providerService exposes the vendor catalog and live model discovery.
type providerService struct {
	store   driven.SettingsStore
	factory driven.ChatProviderFactory
	logger  *slog.Logger
}

// NewProviderService creates a new ProviderService.
func NewProviderService(store driven.SettingsStore, factory driven.ChatProviderFactory, logger *slog.Logger) driving.ProviderService {
	if logger == nil {
		logger = slog.Default()
	}
	return &providerService{
		store:   store,
		factory: factory,
		logger:  logger,
	}
}

// Presets returns a copy of the built-in vendor catalog.
func (s *providerService) Presets() []domain.ProviderPreset {
	presets := make([]domain.ProviderPreset, len(domain.ProviderPresets))
	copy(presets, domain.ProviderPresets)
	return presets
}

// Resolve returns the effective configuration of the active vendor.
func (s *providerService) Resolve(ctx context.Context) (*domain.ResolvedProviderConfig, error) {
	settings, err := s.settings(ctx)
	if err != nil {
		return nil, err
	}
	resolved := domain.ResolveProviderConfig(settings)
	if !resolved.IsConfigured() {
		return nil, domain.ErrProviderNotConfigured
	}
	return resolved, nil
}

// RefreshModels fetches the model list for a vendor and persists it into
// that vendor's provider config.
func (s *providerService) RefreshModels(ctx context.Context, vendor string) ([]string, error) {
	if domain.GetProviderPreset(vendor) == nil {
		return nil, domain.ErrInvalidProvider
	}
	settings, err := s.settings(ctx)
	if err != nil {
		return nil, err
	}

	// Resolve for the requested vendor regardless of the active selection.
	scoped := *settings
	scoped.ActiveVendor = vendor
	resolved := domain.ResolveProviderConfig(&scoped)
	if resolved == nil || resolved.APIKey == "" || resolved.Endpoint == "" {
		return nil, domain.ErrProviderNotConfigured
	}

	provider, err := s.factory.Create(resolved)
	if err != nil {
		return nil, err
	}
	models, err := provider.ListModels(ctx)
	if err != nil {
		return nil, err
	}

	if settings.ProviderConfigs == nil {
		settings.ProviderConfigs = map[string]domain.ProviderConfig{}
	}
	config := settings.ProviderConfigs[vendor]
	config.AvailableModels = models
	now := time.Now()
	config.ModelsUpdatedAt = &now
	settings.ProviderConfigs[vendor] = config
	settings.UpdatedAt = now

	if err := s.store.Save(ctx, settings); err != nil {
		return nil, err
	}
	return models, nil
}

// Registrars returns the user's enabled registrar links.
func (s *providerService) Registrars(ctx context.Context) ([]domain.Registrar, error) {
	settings, err := s.settings(ctx)
	if err != nil {
		return nil, err
	}
	return settings.EnabledRegistrars(), nil
}

func (s *providerService) settings(ctx context.Context) (*domain.Settings, error) {
	settings, err := s.store.Get(ctx)
	if err == nil {
		return settings, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return domain.DefaultSettings(), nil
	}
	return nil, err
}
