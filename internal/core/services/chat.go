package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/custodia-labs/namehunt-core/internal/core/domain"
	"github.com/custodia-labs/namehunt-core/internal/core/ports/driven"
	"github.com/custodia-labs/namehunt-core/internal/core/ports/driving"
	"github.com/custodia-labs/namehunt-core/internal/runtime"
)

// Ensure chatService implements ChatService
var _ driving.ChatService = (*chatService)(nil)

// ChatServiceConfig holds dependencies for the chat service.
type ChatServiceConfig struct {
	ConversationStore driven.ConversationStore
	SettingsStore     driven.SettingsStore
	Runtime           *runtime.Services
	Extractor         *Extractor
	DomainChecker     driving.DomainCheckService
	Logger            *slog.Logger
}

// chatService drives one conversational turn: stream the assistant reply,
// accumulate tool-call fragments, extract domain candidates and hand them to
// the check orchestrator, then persist the conversation.
type chatService struct {
	conversations driven.ConversationStore
	settings      driven.SettingsStore
	runtime       *runtime.Services
	extractor     *Extractor
	checker       driving.DomainCheckService
	logger        *slog.Logger
}

// NewChatService creates a new ChatService.
func NewChatService(cfg ChatServiceConfig) driving.ChatService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	extractor := cfg.Extractor
	if extractor == nil {
		extractor = NewExtractor()
	}
	return &chatService{
		conversations: cfg.ConversationStore,
		settings:      cfg.SettingsStore,
		runtime:       cfg.Runtime,
		extractor:     extractor,
		checker:       cfg.DomainChecker,
		logger:        logger,
	}
}

// toolCallAccumulator assembles streamed tool-call fragments keyed by their
// index. It is owned by a single streaming session and discarded when the
// stream ends.
type toolCallAccumulator struct {
	order []int
	calls map[int]*domain.ToolCall
}

func newToolCallAccumulator() *toolCallAccumulator {
	return &toolCallAccumulator{calls: make(map[int]*domain.ToolCall)}
}

// Add merges one fragment. ID and name arrive on the first fragment for an
// index; argument pieces are concatenated in arrival order.
func (a *toolCallAccumulator) Add(index int, id, name, arguments string) {
	call, ok := a.calls[index]
	if !ok {
		call = &domain.ToolCall{Type: "function"}
		a.calls[index] = call
		a.order = append(a.order, index)
	}
	if id != "" {
		call.ID = id
	}
	if name != "" {
		call.Function.Name = name
	}
	call.Function.Arguments += arguments
}

// ToolCalls returns the assembled calls in first-fragment order.
func (a *toolCallAccumulator) ToolCalls() []domain.ToolCall {
	if len(a.order) == 0 {
		return nil
	}
	calls := make([]domain.ToolCall, 0, len(a.order))
	for _, index := range a.order {
		calls = append(calls, *a.calls[index])
	}
	return calls
}

// streamCollector forwards deltas to the sink while buffering the full
// assistant content and tool-call fragments.
type streamCollector struct {
	sink    driving.ChatEventSink
	content strings.Builder
	acc     *toolCallAccumulator
}

func (c *streamCollector) OnDelta(text string) {
	c.content.WriteString(text)
	c.sink.Delta(text)
}

func (c *streamCollector) OnToolCallDelta(index int, id, name, arguments string) {
	c.acc.Add(index, id, name, arguments)
}

// Send appends a user turn and streams the assistant reply.
// Configuration errors are returned before any transport call; stream errors
// are reported through the sink and do not abort the conversation.
func (s *chatService) Send(ctx context.Context, req driving.SendMessageRequest, sink driving.ChatEventSink) error {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return domain.ErrInvalidInput
	}

	provider := s.runtime.ChatProvider()
	if provider == nil {
		return domain.ErrProviderNotConfigured
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		settings = domain.DefaultSettings()
	}

	conversation, isNew, err := s.loadOrCreate(ctx, req.ConversationID)
	if err != nil {
		return err
	}

	now := time.Now()
	conversation.Messages = append(conversation.Messages, domain.Message{
		ID:        domain.NewID(),
		Role:      domain.RoleUser,
		Content:   content,
		Timestamp: now,
	})

	turns := make([]driven.ChatTurn, 0, len(conversation.Messages)+1)
	turns = append(turns, driven.ChatTurn{Role: "system", Content: settings.EffectiveSystemPrompt()})
	for _, m := range conversation.Messages {
		turns = append(turns, driven.ChatTurn{Role: string(m.Role), Content: m.Content})
	}

	withTools := settings.EnableFunctionCalling
	if cfg := s.runtime.ProviderConfig(); cfg != nil && !cfg.SupportsTools {
		withTools = false
	}

	collector := &streamCollector{sink: sink, acc: newToolCallAccumulator()}
	if err := provider.Stream(ctx, turns, withTools, collector); err != nil {
		s.logger.Warn("chat stream failed", "conversation_id", conversation.ID, "error", err)
		sink.Failed(err.Error())
		return nil
	}

	assistant := domain.Message{
		ID:        domain.NewID(),
		Role:      domain.RoleAssistant,
		Content:   collector.content.String(),
		Timestamp: time.Now(),
		ToolCalls: collector.acc.ToolCalls(),
	}
	conversation.Messages = append(conversation.Messages, assistant)

	if isNew {
		conversation.Title = initialTitle(content)
	}
	conversation.UpdatedAt = time.Now()

	if err := s.conversations.Save(ctx, conversation); err != nil {
		sink.Failed("failed to save conversation: " + err.Error())
		return nil
	}
	if err := s.conversations.SetCurrentID(ctx, conversation.ID); err != nil {
		s.logger.Warn("set current conversation", "error", err)
	}

	if candidates := s.extractor.Extract(assistant.Content, assistant.ToolCalls); len(candidates) > 0 {
		// The check loop deliberately outlives the request; its persistence
		// writes are keyed by conversation and message ID, not by the caller.
		go func() {
			if err := s.checker.CheckMessage(context.Background(), conversation.ID, assistant.ID, candidates); err != nil {
				s.logger.Warn("domain check failed",
					"conversation_id", conversation.ID,
					"message_id", assistant.ID,
					"error", err,
				)
			}
		}()
	}

	if isNew {
		go s.summarizeTitle(conversation.ID, content)
	}

	sink.Completed(conversation.ID, assistant)
	return nil
}

func (s *chatService) loadOrCreate(ctx context.Context, id string) (conversation *domain.Conversation, isNew bool, err error) {
	if id != "" {
		conversation, err = s.conversations.Get(ctx, id)
		if err != nil {
			return nil, false, err
		}
		return conversation, len(conversation.Messages) == 0, nil
	}
	now := time.Now()
	return &domain.Conversation{
		ID:        domain.NewID(),
		CreatedAt: now,
		UpdatedAt: now,
	}, true, nil
}

// summarizeTitle asks the provider for a short topical title and replaces
// the provisional one. Failures keep the truncation fallback.
func (s *chatService) summarizeTitle(conversationID, firstMessage string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	provider := s.runtime.ChatProvider()
	if provider == nil {
		return
	}

	title, err := provider.SummarizeTitle(ctx, firstMessage)
	if err != nil || strings.TrimSpace(title) == "" {
		if err != nil {
			s.logger.Debug("title summarization failed", "conversation_id", conversationID, "error", err)
		}
		title = fallbackTitle(firstMessage)
	}

	conversation, err := s.conversations.Get(ctx, conversationID)
	if err != nil {
		return
	}
	conversation.Title = strings.TrimSpace(title)
	conversation.UpdatedAt = time.Now()
	if err := s.conversations.Save(ctx, conversation); err != nil {
		s.logger.Warn("save summarized title", "conversation_id", conversationID, "error", err)
	}
}

// initialTitle is the provisional conversation title shown until the
// summarizer finishes.
func initialTitle(content string) string {
	return truncateRunes(content, 50)
}

// fallbackTitle mirrors the summarizer's length budget.
func fallbackTitle(content string) string {
	return truncateRunes(content, 30)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
