package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/namehunt-core/internal/core/domain"
	"github.com/custodia-labs/namehunt-core/internal/core/ports/driven"
	"github.com/custodia-labs/namehunt-core/internal/core/ports/driving"
	"github.com/custodia-labs/namehunt-core/internal/runtime"
)

// stubFactory implements driven.ChatProviderFactory for testing
type stubFactory struct {
	provider driven.ChatProvider
	err      error
	lastCfg  *domain.ResolvedProviderConfig
}

func (f *stubFactory) Create(cfg *domain.ResolvedProviderConfig) (driven.ChatProvider, error) {
	f.lastCfg = cfg
	if f.err != nil {
		return nil, f.err
	}
	if f.provider != nil {
		return f.provider, nil
	}
	return &scriptedProvider{}, nil
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestGetSettingsFallsBackToDefaults(t *testing.T) {
	rt := runtime.NewServices()
	svc := NewSettingsService(&stubSettingsStore{}, &stubFactory{}, rt, nil)

	settings, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.True(t, settings.EnableFunctionCalling)
	assert.NotEmpty(t, settings.Registrars)
	assert.Empty(t, settings.ActiveVendor)
}

func TestUpdateConfiguresProvider(t *testing.T) {
	store := &stubSettingsStore{}
	factory := &stubFactory{}
	rt := runtime.NewServices()
	svc := NewSettingsService(store, factory, rt, nil)

	updated, err := svc.Update(context.Background(), driving.UpdateSettingsRequest{
		ActiveVendor: strPtr("openai"),
		ProviderConfigs: map[string]domain.ProviderConfig{
			"openai": {APIKey: "sk-test", Model: "gpt-4o"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "openai", updated.ActiveVendor)

	// The runtime client was rebuilt from the preset-merged config.
	assert.NotNil(t, rt.ChatProvider())
	require.NotNil(t, factory.lastCfg)
	assert.Equal(t, "sk-test", factory.lastCfg.APIKey)
	assert.Equal(t, "https://api.openai.com/v1", factory.lastCfg.Endpoint)
	assert.Equal(t, "gpt-4o", factory.lastCfg.Model)

	// Persisted too.
	stored, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "openai", stored.ActiveVendor)
}

func TestUpdateUnknownVendorRejected(t *testing.T) {
	svc := NewSettingsService(&stubSettingsStore{}, &stubFactory{}, runtime.NewServices(), nil)

	_, err := svc.Update(context.Background(), driving.UpdateSettingsRequest{
		ActiveVendor: strPtr("clippy"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidProvider)
}

func TestUpdateIncompleteConfigClearsProvider(t *testing.T) {
	store := &stubSettingsStore{}
	factory := &stubFactory{}
	rt := runtime.NewServices()
	rt.SetChatProvider(&scriptedProvider{}, &domain.ResolvedProviderConfig{Vendor: "openai"})
	svc := NewSettingsService(store, factory, rt, nil)

	// Vendor selected but no API key: chat must fail fast, not mid-stream.
	_, err := svc.Update(context.Background(), driving.UpdateSettingsRequest{
		ActiveVendor: strPtr("openai"),
	})
	require.NoError(t, err)
	assert.Nil(t, rt.ChatProvider())
}

func TestUpdateFactoryFailureClearsProvider(t *testing.T) {
	factory := &stubFactory{err: errors.New("bad endpoint")}
	rt := runtime.NewServices()
	svc := NewSettingsService(&stubSettingsStore{}, factory, rt, nil)

	_, err := svc.Update(context.Background(), driving.UpdateSettingsRequest{
		ActiveVendor: strPtr("openai"),
		ProviderConfigs: map[string]domain.ProviderConfig{
			"openai": {APIKey: "sk-test", Model: "gpt-4o"},
		},
	})
	require.NoError(t, err)
	assert.Nil(t, rt.ChatProvider())
}

func TestUpdateLeavesUntouchedFieldsAlone(t *testing.T) {
	store := &stubSettingsStore{}
	svc := NewSettingsService(store, &stubFactory{}, runtime.NewServices(), nil)

	_, err := svc.Update(context.Background(), driving.UpdateSettingsRequest{
		SystemPrompt: strPtr("custom prompt"),
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), driving.UpdateSettingsRequest{
		EnableFunctionCalling: boolPtr(false),
	})
	require.NoError(t, err)

	assert.Equal(t, "custom prompt", updated.SystemPrompt)
	assert.False(t, updated.EnableFunctionCalling)
}
