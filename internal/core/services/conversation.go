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
)

const (
	exportVersion = "1.0.0"
	exportAppName = "namehunt-core"
)

// Ensure conversationService implements ConversationService
var _ driving.ConversationService = (*conversationService)(nil)

// conversationService manages stored conversations, including the portable
// export/import archive format.
type conversationService struct {
	store   driven.ConversationStore
	version string
	logger  *slog.Logger
}

// NewConversationService creates a new ConversationService.
func NewConversationService(store driven.ConversationStore, version string, logger *slog.Logger) driving.ConversationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &conversationService{
		store:   store,
		version: version,
		logger:  logger,
	}
}

func (s *conversationService) List(ctx context.Context) ([]*domain.Conversation, error) {
	return s.store.List(ctx)
}

func (s *conversationService) Get(ctx context.Context, id string) (*domain.Conversation, error) {
	return s.store.Get(ctx, id)
}

// Delete removes the conversation and clears the current pointer when it
// referenced the deleted ID.
func (s *conversationService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	current, err := s.store.GetCurrentID(ctx)
	if err != nil {
		return err
	}
	if current == id {
		return s.store.SetCurrentID(ctx, "")
	}
	return nil
}

func (s *conversationService) UpdateTitle(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.ErrInvalidInput
	}
	conversation, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	conversation.Title = title
	conversation.UpdatedAt = time.Now()
	return s.store.Save(ctx, conversation)
}

func (s *conversationService) Current(ctx context.Context) (string, error) {
	return s.store.GetCurrentID(ctx)
}

func (s *conversationService) SetCurrent(ctx context.Context, id string) error {
	if id != "" {
		if _, err := s.store.Get(ctx, id); err != nil {
			return err
		}
	}
	return s.store.SetCurrentID(ctx, id)
}

// Export packages every stored conversation into the archive format.
func (s *conversationService) Export(ctx context.Context) (*driving.ExportPayload, error) {
	conversations, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return &driving.ExportPayload{
		Version:    exportVersion,
		ExportedAt: time.Now().Format(time.RFC3339),
		App: &driving.ExportAppMeta{
			Name:    exportAppName,
			Version: s.version,
		},
		Conversations: conversations,
	}, nil
}

// Import merges an untrusted archive into the store. Invalid conversations
// and messages are dropped, not treated as an error.
func (s *conversationService) Import(ctx context.Context, payload *driving.ExportPayload, strategy driving.ImportStrategy) (*driving.ImportResult, error) {
	if payload == nil {
		return nil, domain.ErrInvalidInput
	}
	if strategy == "" {
		strategy = driving.ImportStrategyNew
	}
	if strategy != driving.ImportStrategyNew && strategy != driving.ImportStrategyOverwrite {
		return nil, domain.ErrInvalidInput
	}

	result := &driving.ImportResult{}
	now := time.Now()

	for _, raw := range payload.Conversations {
		conversation := sanitizeImportedConversation(raw)
		if conversation == nil {
			continue
		}

		if strategy == driving.ImportStrategyNew {
			conversation.ImportedFromID = conversation.ID
			conversation.ID = domain.NewID()
			conversation.ImportedAt = &now
			conversation.UpdatedAt = now
		} else if _, err := s.store.Get(ctx, conversation.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}

		if err := s.store.Save(ctx, conversation); err != nil {
			return nil, err
		}
		result.Imported++
		result.Messages += len(conversation.Messages)
	}
	return result, nil
}

// sanitizeImportedConversation validates an untrusted conversation, filling
// missing IDs and timestamps. Returns nil when the entry is unusable.
func sanitizeImportedConversation(raw *domain.Conversation) *domain.Conversation {
	if raw == nil {
		return nil
	}
	now := time.Now()

	conversation := &domain.Conversation{
		ID:        raw.ID,
		Title:     strings.TrimSpace(raw.Title),
		CreatedAt: raw.CreatedAt,
		UpdatedAt: raw.UpdatedAt,
	}
	if conversation.ID == "" {
		conversation.ID = domain.NewID()
	}
	if conversation.Title == "" {
		conversation.Title = "Imported Conversation"
	}
	if conversation.CreatedAt.IsZero() {
		conversation.CreatedAt = now
	}
	if conversation.UpdatedAt.IsZero() {
		conversation.UpdatedAt = now
	}

	for _, m := range raw.Messages {
		if !m.Role.IsValid() {
			continue
		}
		message := m
		if message.ID == "" {
			message.ID = domain.NewID()
		}
		if message.Timestamp.IsZero() {
			message.Timestamp = now
		}
		conversation.Messages = append(conversation.Messages, message)
	}
	return conversation
}
