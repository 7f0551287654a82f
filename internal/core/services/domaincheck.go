package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/custodia-labs/namehunt-core/internal/core/domain"
	"github.com/custodia-labs/namehunt-core/internal/core/ports/driven"
	"github.com/custodia-labs/namehunt-core/internal/core/ports/driving"
)

// DefaultCheckDelay is the fixed pause between two checks of the same
// message. It rate-limits the external lookup services and is deliberate,
// not incidental: candidates are never checked in parallel even though they
// are independent.
const DefaultCheckDelay = 300 * time.Millisecond

// Ensure domainCheckService implements DomainCheckService
var _ driving.DomainCheckService = (*domainCheckService)(nil)

// DomainCheckServiceConfig holds dependencies for the check orchestrator.
type DomainCheckServiceConfig struct {
	Store     driven.ConversationStore
	Checker   driven.AvailabilityChecker
	Extractor *Extractor
	Delay     time.Duration
	Logger    *slog.Logger

	// OnComplete fires after all candidates of a message are processed.
	OnComplete func(conversationID, messageID string)
}

// domainCheckService drives availability checks for all candidates of one
// message: init placeholders, a strictly sequential check loop with a fixed
// inter-check delay, per-result persistence and re-check semantics.
type domainCheckService struct {
	store      driven.ConversationStore
	checker    driven.AvailabilityChecker
	extractor  *Extractor
	delay      time.Duration
	logger     *slog.Logger
	onComplete func(conversationID, messageID string)

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewDomainCheckService creates a new check orchestrator.
func NewDomainCheckService(cfg DomainCheckServiceConfig) driving.DomainCheckService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	delay := cfg.Delay
	if delay <= 0 {
		delay = DefaultCheckDelay
	}
	extractor := cfg.Extractor
	if extractor == nil {
		extractor = NewExtractor()
	}
	return &domainCheckService{
		store:      cfg.Store,
		checker:    cfg.Checker,
		extractor:  extractor,
		delay:      delay,
		logger:     logger,
		onComplete: cfg.OnComplete,
		inFlight:   make(map[string]struct{}),
	}
}

// Checking reports whether a check loop is running for the message.
func (s *domainCheckService) Checking(messageID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, busy := s.inFlight[messageID]
	return busy
}

// begin claims the per-message check slot. Loops for different messages run
// independently; within one message invocations are serialized by this slot.
func (s *domainCheckService) begin(messageID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[messageID]; busy {
		return false
	}
	s.inFlight[messageID] = struct{}{}
	return true
}

func (s *domainCheckService) end(messageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, messageID)
}

// CheckMessage replaces the message's result list with one checking entry
// per candidate, then resolves them sequentially in candidate order.
func (s *domainCheckService) CheckMessage(ctx context.Context, conversationID, messageID string, candidates []domain.DomainCandidate) error {
	if len(candidates) == 0 {
		return nil
	}
	if !s.begin(messageID) {
		return domain.ErrCheckInProgress
	}
	defer s.end(messageID)

	results := make([]domain.DomainResult, len(candidates))
	for i, candidate := range candidates {
		results[i] = domain.DomainResult{
			Domain:      candidate.Domain,
			Description: candidate.Description,
			Checking:    true,
			Order:       i,
		}
	}
	// Placeholders are visible before any network call completes.
	s.persist(ctx, conversationID, messageID, results)

	return s.run(ctx, conversationID, messageID, candidates, results)
}

// RecheckOnLoad re-submits unresolved results for every assistant message of
// a reloaded conversation. Messages whose results all carry a verdict are
// skipped without any network call or state mutation.
//
// Candidates are re-derived from the freshest source: existing result
// records first, then the stored tool-call payloads, then the text fence for
// messages predating structured extraction.
func (s *domainCheckService) RecheckOnLoad(ctx context.Context, conversationID string) error {
	conversation, err := s.store.Get(ctx, conversationID)
	if err != nil {
		return err
	}

	for i := range conversation.Messages {
		message := &conversation.Messages[i]
		if message.Role != domain.RoleAssistant {
			continue
		}

		switch {
		case len(message.Domains) > 0:
			var work []domain.DomainCandidate
			for _, r := range message.Domains {
				if !r.Resolved() && !r.Checking {
					work = append(work, domain.DomainCandidate{Domain: r.Domain, Description: r.Description})
				}
			}
			if len(work) == 0 {
				continue
			}
			if err := s.recheckSubset(ctx, conversationID, message.ID, work); err != nil && !errors.Is(err, domain.ErrCheckInProgress) {
				return err
			}
		case len(message.ToolCalls) > 0:
			candidates := s.extractor.ExtractFromToolCalls(message.ToolCalls)
			if err := s.checkIfIdle(ctx, conversationID, message.ID, candidates); err != nil {
				return err
			}
		default:
			candidates := s.extractor.ExtractFromText(message.Content)
			if err := s.checkIfIdle(ctx, conversationID, message.ID, candidates); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkIfIdle runs a full check unless one is already in flight; an
// in-flight loop on reload is not an error.
func (s *domainCheckService) checkIfIdle(ctx context.Context, conversationID, messageID string, candidates []domain.DomainCandidate) error {
	if len(candidates) == 0 {
		return nil
	}
	err := s.CheckMessage(ctx, conversationID, messageID, candidates)
	if errors.Is(err, domain.ErrCheckInProgress) {
		return nil
	}
	return err
}

// recheckSubset resets only the targeted records back to checking and
// resolves them, leaving records that already carry a verdict untouched.
func (s *domainCheckService) recheckSubset(ctx context.Context, conversationID, messageID string, work []domain.DomainCandidate) error {
	if !s.begin(messageID) {
		return domain.ErrCheckInProgress
	}
	defer s.end(messageID)

	conversation, err := s.store.Get(ctx, conversationID)
	if err != nil {
		return err
	}
	message := conversation.Message(messageID)
	if message == nil {
		return domain.ErrNotFound
	}

	targeted := make(map[string]struct{}, len(work))
	for _, item := range work {
		targeted[item.Domain] = struct{}{}
	}

	results := append([]domain.DomainResult(nil), message.Domains...)
	for i := range results {
		if _, ok := targeted[results[i].Domain]; ok {
			resetResult(&results[i])
		}
	}
	s.persist(ctx, conversationID, messageID, results)

	return s.run(ctx, conversationID, messageID, work, results)
}

// Refresh resets every existing result of the message and re-runs the full
// list through the same init, loop and completion path. Domain, description
// and order survive the reset unchanged.
func (s *domainCheckService) Refresh(ctx context.Context, conversationID, messageID string) error {
	if !s.begin(messageID) {
		return domain.ErrCheckInProgress
	}
	defer s.end(messageID)

	conversation, err := s.store.Get(ctx, conversationID)
	if err != nil {
		return err
	}
	message := conversation.Message(messageID)
	if message == nil {
		return domain.ErrNotFound
	}
	if len(message.Domains) == 0 {
		return nil
	}

	results := append([]domain.DomainResult(nil), message.Domains...)
	work := make([]domain.DomainCandidate, len(results))
	for i := range results {
		resetResult(&results[i])
		work[i] = domain.DomainCandidate{Domain: results[i].Domain, Description: results[i].Description}
	}
	s.persist(ctx, conversationID, messageID, results)

	return s.run(ctx, conversationID, messageID, work, results)
}

// resetResult returns a record to the unchecked state ahead of a refresh
// dispatch. Identity fields (domain, description, order) are preserved.
func resetResult(r *domain.DomainResult) {
	r.Available = nil
	r.Checking = true
	r.Registrar = ""
	r.ExpiryDate = ""
	r.Error = ""
	r.CheckedAt = nil
}

// run is the sequential check loop. Result updates for a message are
// observed in work order: item k is never resolved before item k-1.
func (s *domainCheckService) run(ctx context.Context, conversationID, messageID string, work []domain.DomainCandidate, results []domain.DomainResult) error {
	for i, item := range work {
		verdict := s.checker.CheckDomain(ctx, item.Domain)
		now := time.Now()

		for j := range results {
			if results[j].Domain != item.Domain {
				continue
			}
			// The checker's return value never clobbers identity fields.
			verdict.Description = results[j].Description
			verdict.Order = results[j].Order
			verdict.Checking = false
			verdict.CheckedAt = &now
			results[j] = verdict
			break
		}

		// At-least-once durability: a crash mid-loop loses at most the
		// in-flight check, not prior results.
		s.persist(ctx, conversationID, messageID, results)

		if i < len(work)-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.delay):
			}
		}
	}

	if s.onComplete != nil {
		s.onComplete(conversationID, messageID)
	}
	return nil
}

// persist merges the working result list into the stored conversation.
// The conversation is re-read on every call so concurrent loops on other
// messages of the same conversation are never overwritten with a stale
// snapshot. A conversation that has not been saved yet makes this a no-op;
// later persists land once the conversation exists.
func (s *domainCheckService) persist(ctx context.Context, conversationID, messageID string, results []domain.DomainResult) {
	conversation, err := s.store.Get(ctx, conversationID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("load conversation for domain result persist",
				"conversation_id", conversationID,
				"error", err,
			)
		}
		return
	}
	message := conversation.Message(messageID)
	if message == nil {
		return
	}

	message.Domains = append([]domain.DomainResult(nil), results...)
	conversation.UpdatedAt = time.Now()

	if err := s.store.Save(ctx, conversation); err != nil {
		// There is no durable-storage fallback to degrade to; surface on the
		// log and keep the loop running.
		s.logger.Error("persist domain results",
			"conversation_id", conversationID,
			"message_id", messageID,
			"error", err,
		)
	}
}
