package domain

import "strings"

// ProviderVendor identifies a chat-completion provider preset
type ProviderVendor string

const (
	VendorOpenAI      ProviderVendor = "openai"
	VendorOpenRouter  ProviderVendor = "openrouter"
	VendorDeepSeek    ProviderVendor = "deepseek"
	VendorZhipu       ProviderVendor = "zhipu"
	VendorSiliconFlow ProviderVendor = "siliconflow"
	VendorCustom      ProviderVendor = "custom_openai_compatible"
)

// IsValid returns true if this is a known vendor
func (v ProviderVendor) IsValid() bool {
	switch v {
	case VendorOpenAI, VendorOpenRouter, VendorDeepSeek, VendorZhipu, VendorSiliconFlow, VendorCustom:
		return true
	default:
		return false
	}
}

// ProviderPreset describes a known OpenAI-compatible vendor.
type ProviderPreset struct {
	ID              ProviderVendor    `json:"id"`
	Label           string            `json:"label"`
	Enabled         bool              `json:"enabled"`
	DefaultEndpoint string            `json:"default_endpoint,omitempty"`
	DefaultModel    string            `json:"default_model,omitempty"`
	Models          []string          `json:"models,omitempty"`
	SupportsTools   bool              `json:"supports_tools,omitempty"`
	DefaultHeaders  map[string]string `json:"default_headers,omitempty"`
}

// ProviderPresets is the built-in vendor catalog. All entries speak the
// OpenAI-compatible chat completions wire format.
var ProviderPresets = []ProviderPreset{
	{
		ID:              VendorOpenAI,
		Label:           "OpenAI",
		Enabled:         true,
		DefaultEndpoint: "https://api.openai.com/v1",
		DefaultModel:    "gpt-4o-mini",
		Models:          []string{"gpt-5-chat", "gpt-4o", "gpt-4o-mini"},
		SupportsTools:   true,
	},
	{
		ID:              VendorOpenRouter,
		Label:           "OpenRouter",
		Enabled:         true,
		DefaultEndpoint: "https://openrouter.ai/api/v1",
		// Models vary; fetched live via the models endpoint.
	},
	{
		ID:              VendorDeepSeek,
		Label:           "DeepSeek",
		Enabled:         true,
		DefaultEndpoint: "https://api.deepseek.com",
		DefaultModel:    "deepseek-chat",
		Models:          []string{"deepseek-chat", "deepseek-reasoner"},
		SupportsTools:   true,
	},
	{
		ID:              VendorZhipu,
		Label:           "Zhipu (BigModel)",
		Enabled:         true,
		DefaultEndpoint: "https://open.bigmodel.cn/api/paas/v4",
		DefaultModel:    "glm-4.6",
		Models:          []string{"glm-4.6"},
		SupportsTools:   true,
	},
	{
		ID:      VendorSiliconFlow,
		Label:   "SiliconFlow",
		Enabled: false,
	},
	{
		ID:      VendorCustom,
		Label:   "Custom (OpenAI-compatible)",
		Enabled: true,
	},
}

// GetProviderPreset returns the preset for a vendor ID, or nil if unknown.
func GetProviderPreset(id string) *ProviderPreset {
	for i := range ProviderPresets {
		if string(ProviderPresets[i].ID) == id {
			return &ProviderPresets[i]
		}
	}
	return nil
}

// ResolvedProviderConfig is the effective {endpoint, apiKey, model, headers}
// tuple for the active provider after applying preset defaults.
type ResolvedProviderConfig struct {
	Vendor        string
	Label         string
	APIKey        string
	Endpoint      string
	Model         string
	Headers       map[string]string
	SupportsTools bool
}

// IsConfigured reports whether the resolved config can reach a provider.
func (c *ResolvedProviderConfig) IsConfigured() bool {
	return c != nil && c.APIKey != "" && c.Endpoint != "" && c.Model != ""
}

func coalesce(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func normalizeBaseURL(url string) string {
	return strings.TrimRight(strings.TrimSpace(url), "/")
}

// ResolveProviderConfig resolves the active vendor's configuration,
// preferring the stored per-vendor config and filling gaps from the preset.
// Returns nil when no vendor is selected.
func ResolveProviderConfig(settings *Settings) *ResolvedProviderConfig {
	if settings == nil {
		return nil
	}
	vendor := strings.TrimSpace(settings.ActiveVendor)
	if vendor == "" {
		return nil
	}

	var config ProviderConfig
	if settings.ProviderConfigs != nil {
		config = settings.ProviderConfigs[vendor]
	}
	preset := GetProviderPreset(vendor)

	resolved := &ResolvedProviderConfig{
		Vendor: vendor,
		Label:  vendor,
		APIKey: config.APIKey,
	}
	if preset != nil {
		resolved.Label = preset.Label
		resolved.SupportsTools = preset.SupportsTools
		resolved.Endpoint = normalizeBaseURL(coalesce(config.Endpoint, preset.DefaultEndpoint))
		resolved.Model = coalesce(config.Model, preset.DefaultModel)
	} else {
		resolved.Endpoint = normalizeBaseURL(config.Endpoint)
		resolved.Model = config.Model
	}

	if (preset != nil && preset.DefaultHeaders != nil) || config.Headers != nil {
		headers := map[string]string{}
		if preset != nil {
			for k, v := range preset.DefaultHeaders {
				headers[k] = v
			}
		}
		for k, v := range config.Headers {
			headers[k] = v
		}
		resolved.Headers = headers
	}

	return resolved
}
