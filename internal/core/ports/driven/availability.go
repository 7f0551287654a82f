package driven

import (
	"context"

	"github.com/custodia-labs/namehunt-core/internal/core/domain"
)

// RegistryRecord is the outcome of a registry data lookup (RDAP).
type RegistryRecord struct {
	// Registered is true when the registry returned a record for the domain.
	Registered bool

	// ConfirmedAvailable is true when the registry affirmatively signalled
	// that no registration exists (a structured 404).
	ConfirmedAvailable bool

	// Registrar and ExpiryDate are best-effort metadata, populated only for
	// registered domains. Registrar falls back to "Unknown" when the record
	// carries no registrar entity.
	Registrar  string
	ExpiryDate string
}

// RegistryLookup queries a registration data aggregator for one domain.
type RegistryLookup interface {
	// Lookup resolves registration data for a bare domain name.
	// An error means the lookup was inconclusive (ambiguous 404, unexpected
	// status, or transport failure) and a fallback signal must be consulted;
	// it never means the domain is available.
	Lookup(ctx context.Context, name string) (*RegistryRecord, error)
}

// DNSAnswer is the outcome of a DNS existence probe.
type DNSAnswer struct {
	// Status is the DNS response code (0 = NOERROR, 3 = NXDOMAIN).
	Status int

	// HasRecords is true when the answer or authority section is non-empty.
	HasRecords bool
}

// DNSProbe performs DNS-over-HTTPS existence queries.
type DNSProbe interface {
	// QueryNS queries the NS record set for a domain.
	// Errors wrap domain.ErrLookupUnreachable for transport-level faults and
	// domain.ErrLookupFailed for HTTP-level faults.
	QueryNS(ctx context.Context, name string) (*DNSAnswer, error)
}

// AvailabilityChecker resolves one domain string to an availability verdict.
type AvailabilityChecker interface {
	// CheckDomain always returns a result; every failure path is captured in
	// the result's Error field or an unknown (nil) Available value.
	CheckDomain(ctx context.Context, name string) domain.DomainResult
}
