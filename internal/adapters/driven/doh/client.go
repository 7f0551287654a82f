// Package doh implements the secondary availability signal: a DNS-over-HTTPS
// existence probe for the domain's NS record set.
package doh

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

// Ensure Client implements DNSProbe
var _ driven.DNSProbe = (*Client)(nil)

// Config holds DNS-over-HTTPS client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// DefaultConfig returns the public Cloudflare resolver with a 10s deadline.
func DefaultConfig() Config {
	return Config{
		BaseURL: "https://cloudflare-dns.com",
		Timeout: 10 * time.Second,
	}
}

// Client performs JSON DNS queries against a public resolver.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a new DNS-over-HTTPS client.
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

// dohResponse models only the fields consumed from the resolver.
type dohResponse struct {
	Status    int         `json:"Status"`
	Answer    []dnsRecord `json:"Answer"`
	Authority []dnsRecord `json:"Authority"`
}

type dnsRecord struct {
	Name string `json:"name"`
	Type int    `json:"type"`
	Data string `json:"data"`
}

// QueryNS queries the NS record set for a domain. Only the response code and
// the presence of answer or authority records are reported; interpretation
// belongs to the availability checker.
func (c *Client) QueryNS(ctx context.Context, name string) (*driven.DNSAnswer, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/dns-query?name=%s&type=NS", c.baseURL, url.QueryEscape(name)), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrLookupFailed, err)
	}
	req.Header.Set("Accept", "application/dns-json")

	resp, err := c.client.Do(req)
	if err != nil {
		monitoring.ObserveLookup("doh", "unreachable", time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: %v", domain.ErrLookupUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		monitoring.ObserveLookup("doh", "failed", time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: status %d", domain.ErrLookupFailed, resp.StatusCode)
	}

	var body dohResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		monitoring.ObserveLookup("doh", "failed", time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: decode body: %v", domain.ErrLookupFailed, err)
	}

	monitoring.ObserveLookup("doh", "ok", time.Since(start).Seconds())
	return &driven.DNSAnswer{
		Status:     body.Status,
		HasRecords: len(body.Answer) > 0 || len(body.Authority) > 0,
	}, nil
}
