package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/custodia-labs/namehunt-core/internal/core/domain"
	"github.com/custodia-labs/namehunt-core/internal/core/ports/driven"
)

// DNS response codes consumed from the existence probe
const (
	dnsStatusNoError   = 0
	dnsStatusNameError = 3
)

// Ensure AvailabilityService implements AvailabilityChecker
var _ driven.AvailabilityChecker = (*AvailabilityService)(nil)

// AvailabilityService resolves one domain to an availability verdict with a
// two-tier strategy: registry lookup first, DNS existence probe when the
// registry signal is inconclusive.
//
// Relying on the registry lookup alone would produce false "available"
// verdicts for suffixes the aggregator does not support; relying on DNS
// alone would produce false "available" verdicts for registered domains
// without active nameservers. "Available" is only declared when one method
// gives an unambiguous negative signal; otherwise the verdict stays unknown.
type AvailabilityService struct {
	registry driven.RegistryLookup
	dns      driven.DNSProbe
	logger   *slog.Logger
}

// NewAvailabilityService creates the two-tier availability checker.
func NewAvailabilityService(registry driven.RegistryLookup, dns driven.DNSProbe, logger *slog.Logger) *AvailabilityService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AvailabilityService{
		registry: registry,
		dns:      dns,
		logger:   logger,
	}
}

// CheckDomain always returns a result; every failure path is captured in the
// result's Error field or an unknown verdict, never an error value.
func (s *AvailabilityService) CheckDomain(ctx context.Context, name string) domain.DomainResult {
	result := domain.DomainResult{Domain: name}

	record, err := s.registry.Lookup(ctx, name)
	if err == nil {
		switch {
		case record.Registered:
			result.Available = domain.Bool(false)
			result.Registrar = record.Registrar
			if result.Registrar == "" {
				result.Registrar = "Unknown"
			}
			result.ExpiryDate = record.ExpiryDate
			return result
		case record.ConfirmedAvailable:
			result.Available = domain.Bool(true)
			return result
		}
	} else {
		s.logger.Debug("registry lookup inconclusive, falling back to DNS",
			"domain", name,
			"error", err,
		)
	}

	answer, err := s.dns.QueryNS(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrLookupUnreachable) {
			result.Error = "Network error"
		} else {
			result.Error = "Check failed"
		}
		return result
	}

	switch {
	case answer.Status == dnsStatusNameError:
		result.Available = domain.Bool(true)
	case answer.Status == dnsStatusNoError && answer.HasRecords:
		// Registered; this path cannot produce registrar or expiry metadata.
		result.Available = domain.Bool(false)
	case answer.Status == dnsStatusNoError:
		// NOERROR with an empty NS set does not prove non-registration.
		// Leave the verdict unknown rather than guessing.
	default:
		result.Error = "Check failed"
	}
	return result
}
