package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/namehunt-core/internal/core/domain"
)

func toolCall(arguments string) domain.ToolCall {
	return domain.ToolCall{
		ID:   "call-1",
		Type: "function",
		Function: domain.ToolCallFunction{
			Name:      RecommendDomainsToolName,
			Arguments: arguments,
		},
	}
}

func TestExtractPrefersToolCalls(t *testing.T) {
	e := NewExtractor()

	content := "Here are some ideas:\n```domains\n[\"fence.com\"]\n```"
	calls := []domain.ToolCall{toolCall(`{"domains": [{"domain": "tool.com", "description": "from tool"}]}`)}

	candidates := e.Extract(content, calls)

	require.Len(t, candidates, 1)
	assert.Equal(t, "tool.com", candidates[0].Domain)
	assert.Equal(t, "from tool", candidates[0].Description)
}

func TestExtractFallsBackToTextWhenToolCallsYieldNothing(t *testing.T) {
	e := NewExtractor()

	content := "```domains\n[\"fence.com\"]\n```"
	calls := []domain.ToolCall{toolCall("total garbage")}

	candidates := e.Extract(content, calls)

	require.Len(t, candidates, 1)
	assert.Equal(t, "fence.com", candidates[0].Domain)
}

func TestExtractFromToolCallsStrictJSON(t *testing.T) {
	e := NewExtractor()

	tests := []struct {
		name      string
		arguments string
		want      []domain.DomainCandidate
	}{
		{
			name:      "wrapped object array",
			arguments: `{"domains": [{"domain": "acme.io", "description": "short and brandable"}]}`,
			want:      []domain.DomainCandidate{{Domain: "acme.io", Description: "short and brandable"}},
		},
		{
			name:      "wrapped string array",
			arguments: `{"domains": ["one.com", "two.dev"]}`,
			want:      []domain.DomainCandidate{{Domain: "one.com"}, {Domain: "two.dev"}},
		},
		{
			name:      "bare array",
			arguments: `["bare.com"]`,
			want:      []domain.DomainCandidate{{Domain: "bare.com"}},
		},
		{
			name:      "surrounding whitespace",
			arguments: "  \n {\"domains\": [\"padded.io\"]} \n ",
			want:      []domain.DomainCandidate{{Domain: "padded.io"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.ExtractFromToolCalls([]domain.ToolCall{toolCall(tt.arguments)})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractFromToolCallsBalancedRecovery(t *testing.T) {
	e := NewExtractor()

	// Prose around the payload plus a trailing comma before the close marker.
	arguments := `Sure! {"domains": ["first.com", "second.io",]} hope that helps`

	candidates := e.ExtractFromToolCalls([]domain.ToolCall{toolCall(arguments)})

	require.Len(t, candidates, 2)
	assert.Equal(t, "first.com", candidates[0].Domain)
	assert.Equal(t, "second.io", candidates[1].Domain)
}

func TestExtractFromToolCallsInlinePairRecovery(t *testing.T) {
	e := NewExtractor()

	// Truncated stream: the outer object never closes, but complete inner
	// objects are still recoverable.
	arguments := `{"domains": [{"domain": "whole.com", "description": "intact"}, {"domain": "cut.i`

	candidates := e.ExtractFromToolCalls([]domain.ToolCall{toolCall(arguments)})

	require.Len(t, candidates, 1)
	assert.Equal(t, "whole.com", candidates[0].Domain)
	assert.Equal(t, "intact", candidates[0].Description)
}

func TestExtractFromToolCallsTokenScan(t *testing.T) {
	e := NewExtractor()

	arguments := `domains: alpha.com and beta.dev would work`

	candidates := e.ExtractFromToolCalls([]domain.ToolCall{toolCall(arguments)})

	require.Len(t, candidates, 2)
	assert.Equal(t, "alpha.com", candidates[0].Domain)
	assert.Equal(t, "beta.dev", candidates[1].Domain)
}

func TestExtractIgnoresOtherTools(t *testing.T) {
	e := NewExtractor()

	calls := []domain.ToolCall{{
		Function: domain.ToolCallFunction{Name: "get_weather", Arguments: `{"domains": ["x.com"]}`},
	}}

	assert.Empty(t, e.ExtractFromToolCalls(calls))
}

func TestExtractFromText(t *testing.T) {
	e := NewExtractor()

	tests := []struct {
		name    string
		content string
		want    []domain.DomainCandidate
	}{
		{
			name:    "object array body",
			content: "Ideas:\n```domains\n[{\"domain\": \"RecipeAI.com\", \"description\": \"AI recipes\"}]\n```\nWhat do you think?",
			want:    []domain.DomainCandidate{{Domain: "RecipeAI.com", Description: "AI recipes"}},
		},
		{
			name:    "string array body",
			content: "```domains\n[\"CookSmart.io\", \"ChefBot.app\"]\n```",
			want:    []domain.DomainCandidate{{Domain: "CookSmart.io"}, {Domain: "ChefBot.app"}},
		},
		{
			name:    "quoted fallback for non-JSON body",
			content: "```domains\nTry \"CookSmart.io\" or maybe \"ChefBot.app\" here\n```",
			want:    []domain.DomainCandidate{{Domain: "CookSmart.io"}, {Domain: "ChefBot.app"}},
		},
		{
			name:    "no fence",
			content: "I recommend example.com for this project.",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.ExtractFromText(tt.content))
		})
	}
}

func TestSanitizeDomainStripsURLDecoration(t *testing.T) {
	candidates := normalizeCandidates([]domain.DomainCandidate{
		{Domain: "https://Example.COM/path?x=1"},
	})

	require.Len(t, candidates, 1)
	// Case is preserved; only scheme and path decoration are removed.
	assert.Equal(t, "Example.COM", candidates[0].Domain)
}

func TestNormalizeDeduplicatesFirstSeen(t *testing.T) {
	candidates := normalizeCandidates([]domain.DomainCandidate{
		{Domain: "dup.com", Description: "first"},
		{Domain: "dup.com", Description: "second"},
		{Domain: "Dup.com", Description: "different case survives"},
	})

	require.Len(t, candidates, 2)
	assert.Equal(t, "first", candidates[0].Description)
	assert.Equal(t, "Dup.com", candidates[1].Domain)
}

func TestIsValidDomain(t *testing.T) {
	valid := []string{"example.com", "sub.example.io", "a-b.dev", "Example.COM", "x1.ai"}
	for _, name := range valid {
		assert.True(t, isValidDomain(name), name)
	}

	invalid := []string{
		"",
		"nodot",
		"-lead.com",
		"trail-.com",
		"bad_char.com",
		"example.c",
		"example.123",
		"double..com",
		"this-label-is-way-too-long-this-label-is-way-too-long-this-label-x.com",
	}
	for _, name := range invalid {
		assert.False(t, isValidDomain(name), name)
	}
}
