// Package http exposes the application over a JSON API with SSE chat
// streaming.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/namehunt-core/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string
	logger     *slog.Logger

	// Services
	chatService         driving.ChatService
	domainCheckService  driving.DomainCheckService
	conversationService driving.ConversationService
	settingsService     driving.SettingsService
	providerService     driving.ProviderService

	// Infrastructure
	store Pinger // persistence health check (optional)
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:    "0.0.0.0",
		Port:    8080,
		Version: "dev",
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	chatService driving.ChatService,
	domainCheckService driving.DomainCheckService,
	conversationService driving.ConversationService,
	settingsService driving.SettingsService,
	providerService driving.ProviderService,
	store Pinger, // can be nil
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		router:              http.NewServeMux(),
		version:             cfg.Version,
		logger:              logger,
		chatService:         chatService,
		domainCheckService:  domainCheckService,
		conversationService: conversationService,
		settingsService:     settingsService,
		providerService:     providerService,
		store:               store,
	}

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: RequestLogger(logger)(s.router),
		// No WriteTimeout: chat responses stream over SSE and routinely
		// outlive any fixed limit.
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health endpoints
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Chat endpoint (SSE)
	s.router.HandleFunc("POST /api/v1/chat", s.handleChat)

	// Conversation endpoints
	s.router.HandleFunc("GET /api/v1/conversations", s.handleListConversations)
	s.router.HandleFunc("GET /api/v1/conversations/current", s.handleGetCurrent)
	s.router.HandleFunc("PUT /api/v1/conversations/current", s.handleSetCurrent)
	s.router.HandleFunc("GET /api/v1/conversations/export", s.handleExport)
	s.router.HandleFunc("POST /api/v1/conversations/import", s.handleImport)
	s.router.HandleFunc("GET /api/v1/conversations/{id}", s.handleGetConversation)
	s.router.HandleFunc("DELETE /api/v1/conversations/{id}", s.handleDeleteConversation)
	s.router.HandleFunc("PUT /api/v1/conversations/{id}/title", s.handleUpdateTitle)

	// Domain check endpoints
	s.router.HandleFunc("POST /api/v1/conversations/{id}/messages/{messageID}/refresh", s.handleRefreshChecks)

	// Settings endpoints
	s.router.HandleFunc("GET /api/v1/settings", s.handleGetSettings)
	s.router.HandleFunc("PUT /api/v1/settings", s.handleUpdateSettings)

	// Provider endpoints
	s.router.HandleFunc("GET /api/v1/providers", s.handleListProviders)
	s.router.HandleFunc("POST /api/v1/providers/{vendor}/models/refresh", s.handleRefreshModels)
	s.router.HandleFunc("GET /api/v1/registrars", s.handleListRegistrars)

	// Metrics endpoint
	s.router.Handle("GET /metrics", promhttp.Handler())
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		s.logger.Info("starting server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
