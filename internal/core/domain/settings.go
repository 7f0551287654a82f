package domain

import "time"

// DefaultSystemPrompt steers the assistant toward domain brainstorming and
// the machine-readable suggestion format the extractor understands.
const DefaultSystemPrompt = `You are an AI assistant that helps founders brainstorm domain names. Your name is "namehunt".

Your workflow:
1. Learn about the user's business or product through conversation
2. Ask about preferences (short names, specific suffixes, keywords, style)
3. Generate creative, relevant domain suggestions

IMPORTANT: when recommending domains, end your message with the following JSON format (including a description for every domain):

` + "```domains" + `
[
  {"domain": "RecipeAI.com", "description": "Combines Recipe and AI, signalling an AI-driven recipe assistant"},
  {"domain": "CookSmart.io", "description": "Cook + Smart, .io suffix fits a technical product"},
  {"domain": "ChefBot.app", "description": "Chef + Bot, hints at an AI kitchen assistant"}
]
` + "```" + `

Recommendation rules:
- Suggest 5-8 domains per round
- Mix suffixes (.com, .io, .co, .app, .dev, .ai)
- Favour brandable, memorable names
- Keep names short and easy to spell
- Avoid hyphens and digits unless asked
- The description must explain the word combination and why it fits the product

Reply in the language the user writes in. Briefly explain your reasoning, then give the JSON list.

Start by asking the user what their business or product idea is.`

// Registrar is a one-click registration target offered next to available domains.
// URL is a template; the domain is appended to it.
type Registrar struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	URL     string `json:"url"`
	Enabled bool   `json:"enabled"`
}

// DefaultRegistrars returns the built-in registrar links.
func DefaultRegistrars() []Registrar {
	return []Registrar{
		{ID: "namecheap", Name: "Namecheap", URL: "https://www.namecheap.com/domains/registration/results/?domain=", Enabled: true},
		{ID: "godaddy", Name: "GoDaddy", URL: "https://www.godaddy.com/domainsearch/find?domainToCheck=", Enabled: true},
		{ID: "cloudflare", Name: "Cloudflare", URL: "https://dash.cloudflare.com/?to=/:account/domains/register/", Enabled: false},
		{ID: "aliyun", Name: "Aliyun", URL: "https://wanwang.aliyun.com/domain/searchresult/?keyword=", Enabled: false},
		{ID: "porkbun", Name: "Porkbun", URL: "https://porkbun.com/checkout/search?q=", Enabled: false},
		{ID: "dynadot", Name: "Dynadot", URL: "https://www.dynadot.com/domain/search?domain=", Enabled: false},
	}
}

// ProviderConfig holds the per-vendor chat provider configuration.
type ProviderConfig struct {
	APIKey          string            `json:"api_key,omitempty"`
	Endpoint        string            `json:"endpoint,omitempty"`
	Model           string            `json:"model,omitempty"`
	Headers         map[string]string `json:"headers,omitempty"`
	AvailableModels []string          `json:"available_models,omitempty"`
	ModelsUpdatedAt *time.Time        `json:"models_updated_at,omitempty"`
}

// Settings holds the single-user configuration.
type Settings struct {
	ActiveVendor          string                    `json:"active_vendor,omitempty"`
	ProviderConfigs       map[string]ProviderConfig `json:"provider_configs,omitempty"`
	SystemPrompt          string                    `json:"system_prompt,omitempty"`
	Registrars            []Registrar               `json:"registrars"`
	EnableFunctionCalling bool                      `json:"enable_function_calling"`
	UpdatedAt             time.Time                 `json:"updated_at"`
}

// DefaultSettings returns sensible defaults for a fresh installation.
func DefaultSettings() *Settings {
	return &Settings{
		ActiveVendor:          "",
		ProviderConfigs:       map[string]ProviderConfig{},
		SystemPrompt:          "",
		Registrars:            DefaultRegistrars(),
		EnableFunctionCalling: true,
		UpdatedAt:             time.Now(),
	}
}

// EffectiveSystemPrompt returns the configured prompt, falling back to the
// built-in one when unset or blank.
func (s *Settings) EffectiveSystemPrompt() string {
	if s == nil {
		return DefaultSystemPrompt
	}
	if p := s.SystemPrompt; p != "" {
		return p
	}
	return DefaultSystemPrompt
}

// EnabledRegistrars returns the registrars the user has switched on.
func (s *Settings) EnabledRegistrars() []Registrar {
	regs := s.Registrars
	if len(regs) == 0 {
		regs = DefaultRegistrars()
	}
	var enabled []Registrar
	for _, r := range regs {
		if r.Enabled {
			enabled = append(enabled, r)
		}
	}
	return enabled
}
