package driving

import (
	"context"

	"github.com/custodia-labs/namehunt-core/internal/core/domain"
)

// DomainCheckService drives availability checks for the candidates belonging
// to one message, with visible progress and persisted results.
//
// Within one message, checks are strictly sequential. Across messages the
// service places no ordering guarantee; loops for different messages
// interleave freely.
type DomainCheckService interface {
	// CheckMessage replaces the message's result list with one checking entry
	// per candidate, then resolves them in order, persisting after each.
	// Returns domain.ErrCheckInProgress if a check for the message is already
	// running.
	CheckMessage(ctx context.Context, conversationID, messageID string, candidates []domain.DomainCandidate) error

	// RecheckOnLoad re-submits unresolved results for every message of a
	// reloaded conversation. Messages whose results are all resolved are
	// skipped entirely.
	RecheckOnLoad(ctx context.Context, conversationID string) error

	// Refresh resets every existing result of the message back to checking
	// and re-runs the full list. Returns domain.ErrCheckInProgress while any
	// result for the message is mid-flight.
	Refresh(ctx context.Context, conversationID, messageID string) error

	// Checking reports whether a check loop is currently running for the
	// message.
	Checking(messageID string) bool
}
