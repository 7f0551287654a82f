// Package whois implements an alternative availability checker backed by
// plain WHOIS queries. It trades the structured RDAP metadata for coverage of
// registries without an RDAP endpoint.
package whois

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/likexian/whois"

	"github.com/custodia-labs/namehunt-core/internal/core/domain"
	"github.com/custodia-labs/namehunt-core/internal/core/ports/driven"
	"github.com/custodia-labs/namehunt-core/internal/monitoring"
)

// Ensure Checker implements AvailabilityChecker
var _ driven.AvailabilityChecker = (*Checker)(nil)

// availablePatterns are registry phrasings that positively signal an
// unregistered domain.
var availablePatterns = []string{
	"no match for",
	"not found",
	"no data found",
	"no entries found",
	"domain not found",
	"status: available",
	"status: free",
	"is available for registration",
	"no object found",
}

// takenPatterns are markers that only appear in records of registered
// domains.
var takenPatterns = []string{
	"domain name:",
	"registrar:",
	"creation date:",
	"created:",
	"registered on:",
	"registry domain id:",
	"name server:",
	"nserver:",
	"status: active",
	"status: ok",
}

var (
	registrarRe = regexp.MustCompile(`(?im)^\s*registrar:\s*(.+)$`)
	expiryRe    = regexp.MustCompile(`(?im)^\s*(?:registry expiry date|expiration date|expiry date|expires(?: on)?):\s*(\S+)`)
)

// Checker resolves availability from raw WHOIS records.
type Checker struct {
	query func(name string) (string, error)
}

// NewChecker creates a new WHOIS-backed availability checker.
func NewChecker() *Checker {
	return &Checker{query: func(name string) (string, error) {
		return whois.Whois(name)
	}}
}

// CheckDomain queries WHOIS and classifies the record text. WHOIS output has
// no schema, so classification is pattern based: an availability marker wins
// over registration markers, and a record matching neither stays unknown
// rather than being guessed at.
func (c *Checker) CheckDomain(ctx context.Context, name string) domain.DomainResult {
	result := domain.DomainResult{Domain: name}
	start := time.Now()

	type reply struct {
		text string
		err  error
	}
	// likexian/whois has no context support; bridge the deadline ourselves.
	ch := make(chan reply, 1)
	go func() {
		text, err := c.query(name)
		ch <- reply{text: text, err: err}
	}()

	var text string
	select {
	case <-ctx.Done():
		monitoring.ObserveLookup("whois", "unreachable", time.Since(start).Seconds())
		result.Error = "Network error"
		return result
	case r := <-ch:
		if r.err != nil {
			monitoring.ObserveLookup("whois", "unreachable", time.Since(start).Seconds())
			result.Error = "Network error"
			return result
		}
		text = r.text
	}

	lower := strings.ToLower(text)
	for _, pattern := range availablePatterns {
		if strings.Contains(lower, pattern) {
			monitoring.ObserveLookup("whois", "available", time.Since(start).Seconds())
			result.Available = domain.Bool(true)
			return result
		}
	}
	for _, pattern := range takenPatterns {
		if strings.Contains(lower, pattern) {
			monitoring.ObserveLookup("whois", "registered", time.Since(start).Seconds())
			result.Available = domain.Bool(false)
			result.Registrar = registrarFromRecord(text)
			result.ExpiryDate = expiryFromRecord(text)
			return result
		}
	}

	monitoring.ObserveLookup("whois", "inconclusive", time.Since(start).Seconds())
	return result
}

func registrarFromRecord(text string) string {
	if m := registrarRe.FindStringSubmatch(text); m != nil {
		if name := strings.TrimSpace(m[1]); name != "" {
			return name
		}
	}
	return "Unknown"
}

func expiryFromRecord(text string) string {
	if m := expiryRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
