package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/custodia-labs/namehunt-core/internal/core/domain"
	"github.com/custodia-labs/namehunt-core/internal/core/ports/driven"
	"github.com/custodia-labs/namehunt-core/internal/core/ports/driving"
	"github.com/custodia-labs/namehunt-core/internal/runtime"
)

// Ensure settingsService implements SettingsService
var _ driving.SettingsService = (*settingsService)(nil)

// settingsService implements the SettingsService interface
type settingsService struct {
	store    driven.SettingsStore
	factory  driven.ChatProviderFactory
	services *runtime.Services
	logger   *slog.Logger
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(
	store driven.SettingsStore,
	factory driven.ChatProviderFactory,
	services *runtime.Services,
	logger *slog.Logger,
) driving.SettingsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &settingsService{
		store:    store,
		factory:  factory,
		services: services,
		logger:   logger,
	}
}

// Get retrieves the current settings, falling back to defaults when nothing
// has been saved yet.
func (s *settingsService) Get(ctx context.Context) (*domain.Settings, error) {
	settings, err := s.store.Get(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.DefaultSettings(), nil
		}
		return nil, err
	}
	if len(settings.Registrars) == 0 {
		settings.Registrars = domain.DefaultRegistrars()
	}
	return settings, nil
}

// Update applies the request, persists the result and hot-swaps the chat
// provider client when the provider configuration changed.
func (s *settingsService) Update(ctx context.Context, req driving.UpdateSettingsRequest) (*domain.Settings, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	if req.ActiveVendor != nil {
		vendor := *req.ActiveVendor
		if vendor != "" && domain.GetProviderPreset(vendor) == nil {
			return nil, domain.ErrInvalidProvider
		}
		settings.ActiveVendor = vendor
	}
	if req.SystemPrompt != nil {
		settings.SystemPrompt = *req.SystemPrompt
	}
	if req.EnableFunctionCalling != nil {
		settings.EnableFunctionCalling = *req.EnableFunctionCalling
	}
	if req.Registrars != nil {
		settings.Registrars = req.Registrars
	}
	if req.ProviderConfigs != nil {
		if settings.ProviderConfigs == nil {
			settings.ProviderConfigs = map[string]domain.ProviderConfig{}
		}
		for vendor, config := range req.ProviderConfigs {
			settings.ProviderConfigs[vendor] = config
		}
	}

	settings.UpdatedAt = time.Now()
	if err := s.store.Save(ctx, settings); err != nil {
		return nil, err
	}

	s.reloadProvider(settings)
	return settings, nil
}

// reloadProvider rebuilds the runtime chat client from the saved settings.
// A misconfigured provider clears the client; chat turns then fail fast with
// ErrProviderNotConfigured instead of a transport error mid-stream.
func (s *settingsService) reloadProvider(settings *domain.Settings) {
	resolved := domain.ResolveProviderConfig(settings)
	if !resolved.IsConfigured() {
		s.services.SetChatProvider(nil, nil)
		return
	}
	provider, err := s.factory.Create(resolved)
	if err != nil {
		s.logger.Warn("rebuild chat provider", "vendor", resolved.Vendor, "error", err)
		s.services.SetChatProvider(nil, nil)
		return
	}
	s.services.SetChatProvider(provider, resolved)
	s.logger.Info("chat provider configured", "vendor", resolved.Vendor, "model", resolved.Model)
}
