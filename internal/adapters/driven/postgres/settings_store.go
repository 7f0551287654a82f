package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/namehunt-core/internal/core/domain"
	"github.com/custodia-labs/namehunt-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SettingsStore = (*SettingsStore)(nil)

// SettingsStore implements driven.SettingsStore using PostgreSQL.
// When an encryptor is configured, provider API keys are stripped from the
// JSON document and stored separately as an encrypted blob.
type SettingsStore struct {
	db        *DB
	encryptor *SecretEncryptor
}

// NewSettingsStore creates a new SettingsStore. A nil encryptor stores API
// keys in the settings document as-is.
func NewSettingsStore(db *DB, encryptor *SecretEncryptor) *SettingsStore {
	return &SettingsStore{db: db, encryptor: encryptor}
}

// Get retrieves the stored settings
func (s *SettingsStore) Get(ctx context.Context) (*domain.Settings, error) {
	var data []byte
	var secrets []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data, secrets FROM settings WHERE id = 1`).Scan(&data, &secrets)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	var settings domain.Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	if s.encryptor != nil && len(secrets) > 0 {
		var keys map[string]string
		if err := s.encryptor.Decrypt(secrets, &keys); err != nil {
			return nil, fmt.Errorf("failed to decrypt provider keys: %w", err)
		}
		if settings.ProviderConfigs == nil {
			settings.ProviderConfigs = map[string]domain.ProviderConfig{}
		}
		for vendor, apiKey := range keys {
			config := settings.ProviderConfigs[vendor]
			config.APIKey = apiKey
			settings.ProviderConfigs[vendor] = config
		}
	}

	return &settings, nil
}

// Save upserts the whole settings object
func (s *SettingsStore) Save(ctx context.Context, settings *domain.Settings) error {
	toStore := settings
	var secrets []byte

	if s.encryptor != nil {
		keys := map[string]string{}
		redacted := *settings
		redacted.ProviderConfigs = make(map[string]domain.ProviderConfig, len(settings.ProviderConfigs))
		for vendor, config := range settings.ProviderConfigs {
			if config.APIKey != "" {
				keys[vendor] = config.APIKey
				config.APIKey = ""
			}
			redacted.ProviderConfigs[vendor] = config
		}
		toStore = &redacted

		if len(keys) > 0 {
			blob, err := s.encryptor.Encrypt(keys)
			if err != nil {
				return fmt.Errorf("failed to encrypt provider keys: %w", err)
			}
			secrets = blob
		}
	}

	data, err := json.Marshal(toStore)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settings (id, data, secrets, updated_at)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			data = EXCLUDED.data,
			secrets = EXCLUDED.secrets,
			updated_at = EXCLUDED.updated_at
	`, data, secrets, settings.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
