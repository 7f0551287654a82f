package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrCheckInProgress indicates a domain check is already running for the message
	ErrCheckInProgress = errors.New("domain check already in progress")

	// ErrProviderNotConfigured indicates no API key is resolved for the active provider
	ErrProviderNotConfigured = errors.New("provider not configured")

	// ErrInvalidProvider indicates an unknown provider vendor was specified
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrLookupFailed indicates an availability lookup returned an HTTP-level fault
	ErrLookupFailed = errors.New("lookup failed")

	// ErrLookupUnreachable indicates an availability lookup failed at the transport level
	ErrLookupUnreachable = errors.New("lookup unreachable")

	// ErrLookupInconclusive indicates the registry lookup could not produce a verdict
	ErrLookupInconclusive = errors.New("lookup inconclusive")
)
