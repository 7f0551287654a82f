package services

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/custodia-labs/namehunt-core/internal/core/domain"
)

// RecommendDomainsToolName is the function name the assistant uses for
// structured domain suggestions.
const RecommendDomainsToolName = "recommend_domains"

// Extractor converts assistant output (structured tool calls or a fenced
// text block) into a normalized, deduplicated candidate list.
//
// Extraction is total: malformed or empty input yields an empty list, never
// an error.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract is the unified entry point. The structured channel is preferred;
// the text fence is consulted only when tool calls yield zero candidates.
// This directional preference decides which description text becomes
// authoritative when both channels match.
func (e *Extractor) Extract(content string, toolCalls []domain.ToolCall) []domain.DomainCandidate {
	if candidates := e.ExtractFromToolCalls(toolCalls); len(candidates) > 0 {
		return candidates
	}
	return e.ExtractFromText(content)
}

// ExtractFromToolCalls parses recommend_domains invocations into candidates.
// Argument payloads may arrive as concatenated streaming fragments, so a
// layered sequence of parsers is tried, short-circuiting on first success.
func (e *Extractor) ExtractFromToolCalls(toolCalls []domain.ToolCall) []domain.DomainCandidate {
	var raw []domain.DomainCandidate
	for _, call := range toolCalls {
		if call.Function.Name != RecommendDomainsToolName {
			continue
		}
		raw = append(raw, parseRecommendArguments(call.Function.Arguments)...)
	}
	return normalizeCandidates(raw)
}

// fence matching is non-greedy so trailing prose after the closing fence
// never leaks into the body
var domainsFenceRe = regexp.MustCompile("(?s)```domains\\s*(.*?)```")

var quotedDomainRe = regexp.MustCompile(`(?i)"([^"]+\.(?:com|io|co|app|dev|ai|net|org))"`)

// ExtractFromText extracts candidates from a ```domains fenced block in the
// assistant's free text. The body is a JSON array of bare strings or
// {domain, description} objects; if JSON parsing fails entirely, any quoted
// string ending in a well-known TLD is accepted as a bare candidate.
func (e *Extractor) ExtractFromText(content string) []domain.DomainCandidate {
	match := domainsFenceRe.FindStringSubmatch(content)
	if match == nil {
		return nil
	}
	body := match[1]

	candidates, ok := decodeCandidateList([]byte(strings.TrimSpace(body)))
	if !ok {
		for _, m := range quotedDomainRe.FindAllStringSubmatch(body, -1) {
			candidates = append(candidates, domain.DomainCandidate{Domain: m[1]})
		}
	}
	return normalizeCandidates(candidates)
}

// argumentParsers are tried in order; the first parser that understands the
// payload wins.
var argumentParsers = []func(string) ([]domain.DomainCandidate, bool){
	parseArgumentsJSON,
	parseBalancedJSON,
	parseInlinePairs,
	parseDomainTokens,
}

func parseRecommendArguments(raw string) []domain.DomainCandidate {
	for _, parse := range argumentParsers {
		if candidates, ok := parse(raw); ok {
			return candidates
		}
	}
	return nil
}

// recommendArguments is the advertised tool argument shape.
type recommendArguments struct {
	Domains json.RawMessage `json:"domains"`
}

// parseArgumentsJSON is the strict layer: the payload decodes as-is.
// encoding/json already tolerates surrounding whitespace, which subsumes the
// trim-and-retry step.
func parseArgumentsJSON(raw string) ([]domain.DomainCandidate, bool) {
	return decodeCandidatePayload([]byte(raw))
}

// parseBalancedJSON recovers from truncated or decorated payloads by
// extracting the largest balanced {...} or [...] substring and stripping
// trailing commas before close markers.
func parseBalancedJSON(raw string) ([]domain.DomainCandidate, bool) {
	inner, ok := balancedJSONSubstring(raw)
	if !ok {
		return nil, false
	}
	inner = trailingCommaRe.ReplaceAllString(inner, "$1")
	return decodeCandidatePayload([]byte(inner))
}

var trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)

// balancedJSONSubstring returns the substring from the first { or [ to its
// matching close marker, honouring string literals and escapes.
func balancedJSONSubstring(s string) (string, bool) {
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

var (
	braceChunkRe  = regexp.MustCompile(`\{[^{}]*\}`)
	inlineDomain  = regexp.MustCompile(`"?domain"?\s*:\s*"([^"]+)"`)
	inlineDesc    = regexp.MustCompile(`"?description"?\s*:\s*"([^"]*)"`)
	domainTokenRe = regexp.MustCompile(`[A-Za-z0-9][A-Za-z0-9-]*(?:\.[A-Za-z0-9][A-Za-z0-9-]*)*\.[A-Za-z]{2,}`)
)

// parseInlinePairs is the best-effort regex layer: inline domain/description
// pairs inside brace-delimited chunks.
func parseInlinePairs(raw string) ([]domain.DomainCandidate, bool) {
	var candidates []domain.DomainCandidate
	for _, chunk := range braceChunkRe.FindAllString(raw, -1) {
		dm := inlineDomain.FindStringSubmatch(chunk)
		if dm == nil {
			continue
		}
		candidate := domain.DomainCandidate{Domain: dm[1]}
		if desc := inlineDesc.FindStringSubmatch(chunk); desc != nil {
			candidate.Description = desc[1]
		}
		candidates = append(candidates, candidate)
	}
	return candidates, len(candidates) > 0
}

// parseDomainTokens is the last resort: a blanket scan for anything shaped
// like a domain name.
func parseDomainTokens(raw string) ([]domain.DomainCandidate, bool) {
	var candidates []domain.DomainCandidate
	for _, token := range domainTokenRe.FindAllString(raw, -1) {
		candidates = append(candidates, domain.DomainCandidate{Domain: token})
	}
	return candidates, len(candidates) > 0
}

// decodeCandidatePayload accepts either the advertised {"domains": [...]}
// wrapper or a bare candidate array.
func decodeCandidatePayload(data []byte) ([]domain.DomainCandidate, bool) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		var args recommendArguments
		if err := json.Unmarshal([]byte(trimmed), &args); err != nil || args.Domains == nil {
			return nil, false
		}
		return decodeCandidateList(args.Domains)
	}
	return decodeCandidateList([]byte(trimmed))
}

// decodeCandidateList decodes a JSON array whose elements are bare domain
// strings or {domain, description} objects. Unrecognized elements are
// skipped, not treated as an error.
func decodeCandidateList(data []byte) ([]domain.DomainCandidate, bool) {
	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, false
	}

	var candidates []domain.DomainCandidate
	for _, element := range elements {
		var name string
		if err := json.Unmarshal(element, &name); err == nil {
			candidates = append(candidates, domain.DomainCandidate{Domain: name})
			continue
		}
		var entry struct {
			Domain      string `json:"domain"`
			Description string `json:"description"`
		}
		if err := json.Unmarshal(element, &entry); err == nil && entry.Domain != "" {
			candidates = append(candidates, domain.DomainCandidate{
				Domain:      entry.Domain,
				Description: entry.Description,
			})
		}
	}
	return candidates, true
}

var urlSchemeRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*://`)

// sanitizeDomain strips a leading URL scheme and any path, query or fragment
// suffix. Case is preserved.
func sanitizeDomain(raw string) string {
	s := strings.TrimSpace(raw)
	s = urlSchemeRe.ReplaceAllString(s, "")
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	return s
}

// isValidDomain validates a bare registrable name: hyphenated alphanumeric
// labels of at most 63 characters, at least one dot, and an alphabetic final
// label of two or more characters. Validation is case-insensitive.
func isValidDomain(name string) bool {
	if name == "" || !strings.Contains(name, ".") {
		return false
	}
	labels := strings.Split(name, ".")
	for _, label := range labels {
		if label == "" || len(label) > 63 {
			return false
		}
		if label[0] == '-' || label[len(label)-1] == '-' {
			return false
		}
		for i := 0; i < len(label); i++ {
			c := label[i]
			if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' {
				continue
			}
			return false
		}
	}
	tld := labels[len(labels)-1]
	if len(tld) < 2 {
		return false
	}
	for i := 0; i < len(tld); i++ {
		c := tld[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}

// normalizeCandidates sanitizes, validates and deduplicates a raw candidate
// list. Deduplication is by case-sensitive exact domain match; the
// first-seen description wins. Entries failing validation are discarded
// silently.
func normalizeCandidates(raw []domain.DomainCandidate) []domain.DomainCandidate {
	var out []domain.DomainCandidate
	seen := make(map[string]struct{}, len(raw))
	for _, candidate := range raw {
		name := sanitizeDomain(candidate.Domain)
		if !isValidDomain(name) {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, domain.DomainCandidate{
			Domain:      name,
			Description: candidate.Description,
		})
	}
	return out
}
