// Package rdap implements the primary availability signal: a registration
// data lookup against a public RDAP aggregator.
package rdap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/namehunt-core/internal/core/domain"
	"github.com/custodia-labs/namehunt-core/internal/core/ports/driven"
	"github.com/custodia-labs/namehunt-core/internal/monitoring"
)

// Ensure Client implements RegistryLookup
var _ driven.RegistryLookup = (*Client)(nil)

// Config holds RDAP client configuration.
type Config struct {
	BaseURL string
	// Timeout bounds one lookup. It is explicit rather than delegated to
	// transport defaults because it directly sets the orchestrator's
	// worst-case latency per candidate.
	Timeout time.Duration
}

// DefaultConfig returns the public rdap.org aggregator with a 10s deadline.
func DefaultConfig() Config {
	return Config{
		BaseURL: "https://rdap.org",
		Timeout: 10 * time.Second,
	}
}

// Client queries registration data over the RDAP protocol.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a new RDAP client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultConfig().BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

// rdapResponse models only the fields consumed from a domain lookup.
// Payloads are loosely typed in the wild; everything is optional.
type rdapResponse struct {
	Entities []rdapEntity `json:"entities"`
	Events   []rdapEvent  `json:"events"`
}

type rdapEntity struct {
	Roles      []string          `json:"roles"`
	VCardArray []json.RawMessage `json:"vcardArray"`
}

type rdapEvent struct {
	EventAction string `json:"eventAction"`
	EventDate   string `json:"eventDate"`
}

// Lookup resolves registration data for one domain.
//
// A 404 is ambiguous: it legitimately means "not registered", but the
// aggregator also answers 404 with an HTML error page for suffixes it has no
// registry endpoint for. Only a 404 that declares a JSON media type is taken
// as a confirmed availability signal; everything else is inconclusive and
// returned as an error for the caller to fall through on.
func (c *Client) Lookup(ctx context.Context, name string) (*driven.RegistryRecord, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/domain/%s", c.baseURL, url.PathEscape(name)), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrLookupFailed, err)
	}
	req.Header.Set("Accept", "application/rdap+json")

	resp, err := c.client.Do(req)
	if err != nil {
		monitoring.ObserveLookup("rdap", "unreachable", time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: %v", domain.ErrLookupUnreachable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var body rdapResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			monitoring.ObserveLookup("rdap", "inconclusive", time.Since(start).Seconds())
			return nil, fmt.Errorf("%w: decode body: %v", domain.ErrLookupInconclusive, err)
		}
		monitoring.ObserveLookup("rdap", "registered", time.Since(start).Seconds())
		return &driven.RegistryRecord{
			Registered: true,
			Registrar:  registrarName(body.Entities),
			ExpiryDate: expiryDate(body.Events),
		}, nil

	case http.StatusNotFound:
		if isRegistryMediaType(resp.Header.Get("Content-Type")) {
			monitoring.ObserveLookup("rdap", "available", time.Since(start).Seconds())
			return &driven.RegistryRecord{ConfirmedAvailable: true}, nil
		}
		monitoring.ObserveLookup("rdap", "inconclusive", time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: unstructured 404", domain.ErrLookupInconclusive)

	default:
		monitoring.ObserveLookup("rdap", "failed", time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: status %d", domain.ErrLookupFailed, resp.StatusCode)
	}
}

func isRegistryMediaType(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "application/rdap+json") || strings.Contains(ct, "application/json")
}

// registrarName locates the entity whose role list includes "registrar" and
// reads the formatted-name field of its contact card. Best effort: a missing
// card never changes the availability verdict, only the metadata.
func registrarName(entities []rdapEntity) string {
	for _, entity := range entities {
		if !hasRole(entity.Roles, "registrar") {
			continue
		}
		// vcardArray is ["vcard", [["fn", {}, "text", "Registrar Inc"], ...]]
		if len(entity.VCardArray) < 2 {
			continue
		}
		var items []json.RawMessage
		if err := json.Unmarshal(entity.VCardArray[1], &items); err != nil {
			continue
		}
		for _, item := range items {
			var fields []json.RawMessage
			if err := json.Unmarshal(item, &fields); err != nil || len(fields) < 4 {
				continue
			}
			var key string
			if err := json.Unmarshal(fields[0], &key); err != nil || key != "fn" {
				continue
			}
			var name string
			if err := json.Unmarshal(fields[3], &name); err == nil && name != "" {
				return name
			}
		}
	}
	return ""
}

func hasRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func expiryDate(events []rdapEvent) string {
	for _, event := range events {
		if event.EventAction == "expiration" {
			return event.EventDate
		}
	}
	return ""
}
