package http

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/custodia-labs/namehunt-core/internal/core/domain"
	"github.com/custodia-labs/namehunt-core/internal/core/ports/driving"
)

// Verify interface compliance
var _ driving.ChatEventSink = (*sseSink)(nil)

// sseSink forwards chat events to the client as server-sent events.
// Writes are serialized; deltas come from the stream reader while completion
// may land from the same goroutine after it.
type sseSink struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
}

func newSSESink(w http.ResponseWriter) (*sseSink, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, false
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	return &sseSink{w: w, flusher: flusher}, true
}

func (s *sseSink) Delta(text string) {
	s.emit("delta", map[string]string{"content": text})
}

func (s *sseSink) Completed(conversationID string, message domain.Message) {
	s.emit("completed", map[string]any{
		"conversation_id": conversationID,
		"message":         message,
	})
}

func (s *sseSink) Failed(message string) {
	s.emit("error", map[string]string{"error": message})
}

func (s *sseSink) emit(event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = s.w.Write([]byte("event: " + event + "\n"))
	_, _ = s.w.Write([]byte("data: "))
	_, _ = s.w.Write(data)
	_, _ = s.w.Write([]byte("\n\n"))
	s.flusher.Flush()
}
