package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/custodia-labs/namehunt-core/internal/core/domain"
	"github.com/custodia-labs/namehunt-core/internal/core/ports/driving"
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Returns readiness, including the persistence connection
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  ErrorResponse  "Store unreachable"
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		if err := s.store.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "store unreachable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Chat endpoint

// handleChat godoc
// @Summary      Send a chat message
// @Description  Streams the assistant reply as server-sent events (delta, completed, error)
// @Tags         Chat
// @Accept       json
// @Produce      text/event-stream
// @Param        request  body      driving.SendMessageRequest  true  "User message"
// @Success      200      {string}  string  "SSE stream"
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Router       /chat [post]
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req driving.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	sink, ok := newSSESink(w)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	if err := s.chatService.Send(r.Context(), req, sink); err != nil {
		// Headers are already on the wire; errors go through the stream.
		switch {
		case errors.Is(err, domain.ErrProviderNotConfigured):
			sink.Failed("no provider configured")
		case errors.Is(err, domain.ErrInvalidInput):
			sink.Failed("invalid message")
		default:
			s.logger.Error("chat turn failed", "error", err)
			sink.Failed("chat request failed")
		}
	}
}

// Conversation endpoints

// handleListConversations godoc
// @Summary      List conversations
// @Description  Returns all conversations, most recently updated first
// @Tags         Conversations
// @Produce      json
// @Success      200  {array}   domain.Conversation
// @Failure      500  {object}  ErrorResponse
// @Router       /conversations [get]
func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	conversations, err := s.conversationService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, conversations)
}

// handleGetConversation godoc
// @Summary      Get a conversation
// @Description  Returns one conversation and re-submits its unresolved domain checks in the background
// @Tags         Conversations
// @Produce      json
// @Param        id   path      string  true  "Conversation ID"
// @Success      200  {object}  domain.Conversation
// @Failure      404  {object}  ErrorResponse  "Not found"
// @Router       /conversations/{id} [get]
func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	conversation, err := s.conversationService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "conversation not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Loading a conversation resumes whatever was left unresolved.
	go func() {
		if err := s.domainCheckService.RecheckOnLoad(context.Background(), id); err != nil {
			s.logger.Warn("recheck on load", "conversation_id", id, "error", err)
		}
	}()

	writeJSON(w, http.StatusOK, conversation)
}

// handleDeleteConversation godoc
// @Summary      Delete a conversation
// @Tags         Conversations
// @Param        id   path  string  true  "Conversation ID"
// @Success      204
// @Failure      500  {object}  ErrorResponse
// @Router       /conversations/{id} [delete]
func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	if err := s.conversationService.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleUpdateTitle godoc
// @Summary      Rename a conversation
// @Tags         Conversations
// @Accept       json
// @Param        id   path  string  true  "Conversation ID"
// @Success      204
// @Failure      400  {object}  ErrorResponse  "Invalid request body"
// @Failure      404  {object}  ErrorResponse  "Not found"
// @Router       /conversations/{id}/title [put]
func (s *Server) handleUpdateTitle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	err := s.conversationService.UpdateTitle(r.Context(), r.PathValue("id"), req.Title)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "conversation not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetCurrent(w http.ResponseWriter, r *http.Request) {
	id, err := s.conversationService.Current(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"conversation_id": id})
}

func (s *Server) handleSetCurrent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConversationID string `json:"conversation_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.conversationService.SetCurrent(r.Context(), req.ConversationID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "conversation not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleExport godoc
// @Summary      Export conversations
// @Description  Returns the portable archive of all conversations
// @Tags         Conversations
// @Produce      json
// @Success      200  {object}  driving.ExportPayload
// @Failure      500  {object}  ErrorResponse
// @Router       /conversations/export [get]
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	payload, err := s.conversationService.Export(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="conversations.json"`)
	writeJSON(w, http.StatusOK, payload)
}

// handleImport godoc
// @Summary      Import conversations
// @Description  Imports a previously exported archive; strategy "new" remaps IDs, "overwrite" keeps them
// @Tags         Conversations
// @Accept       json
// @Produce      json
// @Param        strategy  query     string                 false  "Import strategy"  Enums(new, overwrite)
// @Param        payload   body      driving.ExportPayload  true   "Exported archive"
// @Success      200       {object}  driving.ImportResult
// @Failure      400       {object}  ErrorResponse  "Invalid payload or strategy"
// @Router       /conversations/import [post]
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var payload driving.ExportPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	strategy := driving.ImportStrategy(r.URL.Query().Get("strategy"))
	if strategy == "" {
		strategy = driving.ImportStrategyNew
	}

	result, err := s.conversationService.Import(r.Context(), &payload, strategy)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, "invalid import payload")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Domain check endpoints

// handleRefreshChecks godoc
// @Summary      Re-run domain checks
// @Description  Resets every result of the message and re-checks the full list
// @Tags         DomainChecks
// @Param        id         path  string  true  "Conversation ID"
// @Param        messageID  path  string  true  "Message ID"
// @Success      202  {object}  StatusResponse  "Check loop started"
// @Failure      409  {object}  ErrorResponse   "Check already in progress"
// @Router       /conversations/{id}/messages/{messageID}/refresh [post]
func (s *Server) handleRefreshChecks(w http.ResponseWriter, r *http.Request) {
	conversationID := r.PathValue("id")
	messageID := r.PathValue("messageID")

	if s.domainCheckService.Checking(messageID) {
		writeError(w, http.StatusConflict, "check already in progress")
		return
	}

	go func() {
		err := s.domainCheckService.Refresh(context.Background(), conversationID, messageID)
		if err != nil && !errors.Is(err, domain.ErrCheckInProgress) {
			s.logger.Warn("refresh checks",
				"conversation_id", conversationID,
				"message_id", messageID,
				"error", err)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "checking"})
}

// Settings endpoints

// handleGetSettings godoc
// @Summary      Get settings
// @Tags         Settings
// @Produce      json
// @Success      200  {object}  domain.Settings
// @Failure      500  {object}  ErrorResponse
// @Router       /settings [get]
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.settingsService.Get(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// handleUpdateSettings godoc
// @Summary      Update settings
// @Description  Applies a partial settings update; omitted fields stay unchanged
// @Tags         Settings
// @Accept       json
// @Produce      json
// @Param        request  body      driving.UpdateSettingsRequest  true  "Settings changes"
// @Success      200      {object}  domain.Settings
// @Failure      400      {object}  ErrorResponse  "Invalid body or unknown vendor"
// @Router       /settings [put]
func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req driving.UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	settings, err := s.settingsService.Update(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidProvider) {
			writeError(w, http.StatusBadRequest, "unknown provider vendor")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// Provider endpoints

// handleListProviders godoc
// @Summary      List provider presets
// @Tags         Providers
// @Produce      json
// @Success      200  {array}  domain.ProviderPreset
// @Router       /providers [get]
func (s *Server) handleListProviders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.providerService.Presets())
}

// handleRefreshModels godoc
// @Summary      Refresh a vendor's model list
// @Description  Fetches the live model catalog from the vendor's models endpoint
// @Tags         Providers
// @Produce      json
// @Param        vendor  path      string  true  "Vendor ID"
// @Success      200     {array}   string
// @Failure      400     {object}  ErrorResponse  "Unknown vendor"
// @Failure      422     {object}  ErrorResponse  "Vendor not configured"
// @Router       /providers/{vendor}/models/refresh [post]
func (s *Server) handleRefreshModels(w http.ResponseWriter, r *http.Request) {
	models, err := s.providerService.RefreshModels(r.Context(), r.PathValue("vendor"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidProvider):
			writeError(w, http.StatusBadRequest, "unknown provider vendor")
		case errors.Is(err, domain.ErrProviderNotConfigured):
			writeError(w, http.StatusUnprocessableEntity, "provider not configured")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, models)
}

func (s *Server) handleListRegistrars(w http.ResponseWriter, r *http.Request) {
	registrars, err := s.providerService.Registrars(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, registrars)
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
