package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/namehunt-core/internal/core/domain"
	"github.com/custodia-labs/namehunt-core/internal/core/ports/driven"
)

type collectedFragment struct {
	index     int
	id        string
	name      string
	arguments string
}

// collectingHandler records everything the stream delivers.
type collectingHandler struct {
	deltas    []string
	fragments []collectedFragment
}

func (h *collectingHandler) OnDelta(text string) {
	h.deltas = append(h.deltas, text)
}

func (h *collectingHandler) OnToolCallDelta(index int, id, name, arguments string) {
	h.fragments = append(h.fragments, collectedFragment{index, id, name, arguments})
}

func newTestClient(serverURL string) *Client {
	return NewClient(&domain.ResolvedProviderConfig{
		Vendor:   "openai",
		Endpoint: serverURL,
		APIKey:   "sk-test",
		Model:    "gpt-4o",
		Headers:  map[string]string{"X-Custom": "yes"},
	})
}

func sseBody(events ...string) string {
	body := ""
	for _, e := range events {
		body += "data: " + e + "\n\n"
	}
	return body
}

func contentChunk(text string) string {
	return `{"choices":[{"delta":{"content":` + mustJSON(text) + `}}]}`
}

func mustJSON(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func TestStreamDeltasAndToolCalls(t *testing.T) {
	var gotReq chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "yes", r.Header.Get("X-Custom"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte(sseBody(
			contentChunk("Here are some "),
			contentChunk("ideas."),
			`{"choices":[{"delta":{"tool_calls":[{"index":0,"id":"call_1","function":{"name":"recommend_domains","arguments":"{\"domains\": [{\"dom"}}]}}]}`,
			`{"choices":[{"delta":{"tool_calls":[{"index":0,"function":{"arguments":"ain\": \"acme.io\"}]}"}}]}}]}`,
			"[DONE]",
		)))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	handler := &collectingHandler{}
	err := client.Stream(context.Background(), []driven.ChatTurn{{Role: "user", Content: "hi"}}, true, handler)
	require.NoError(t, err)

	assert.True(t, gotReq.Stream)
	assert.Equal(t, "gpt-4o", gotReq.Model)
	require.Len(t, gotReq.Tools, 1)
	assert.Equal(t, "recommend_domains", gotReq.Tools[0].Function.Name)

	assert.Equal(t, []string{"Here are some ", "ideas."}, handler.deltas)
	require.Len(t, handler.fragments, 2)
	assert.Equal(t, "call_1", handler.fragments[0].id)
	assert.Equal(t, "recommend_domains", handler.fragments[0].name)
	args := handler.fragments[0].arguments + handler.fragments[1].arguments
	assert.JSONEq(t, `{"domains": [{"domain": "acme.io"}]}`, args)
}

func TestStreamWithoutTools(t *testing.T) {
	var gotReq chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_, _ = w.Write([]byte(sseBody(contentChunk("hi"), "[DONE]")))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	err := client.Stream(context.Background(), nil, false, &collectingHandler{})
	require.NoError(t, err)
	assert.Empty(t, gotReq.Tools)
}

func TestStreamToleratesMissingTerminator(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sseBody(contentChunk("partial"))))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	handler := &collectingHandler{}
	err := client.Stream(context.Background(), nil, false, handler)
	require.NoError(t, err)
	assert.Equal(t, []string{"partial"}, handler.deltas)
}

func TestStreamSkipsMalformedEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(": keep-alive comment\n\n" + sseBody("{not json", contentChunk("ok"), "[DONE]")))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	handler := &collectingHandler{}
	require.NoError(t, client.Stream(context.Background(), nil, false, handler))
	assert.Equal(t, []string{"ok"}, handler.deltas)
}

func TestStreamAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "Incorrect API key provided"}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	err := client.Stream(context.Background(), nil, false, &collectingHandler{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Incorrect API key provided")
	assert.Contains(t, err.Error(), "401")
}

func TestSummarizeTitle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		assert.Equal(t, 30, req.MaxTokens)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"\"Bakery Domain Ideas\"\n"}}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	title, err := client.SummarizeTitle(context.Background(), "names for my bakery")
	require.NoError(t, err)
	assert.Equal(t, "Bakery Domain Ideas", title)
}

func TestSummarizeTitleEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.SummarizeTitle(context.Background(), "hi")
	assert.Error(t, err)
}

func TestListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(`{"data":[{"id":"gpt-4o-mini"},{"id":"gpt-4o"},{"id":"gpt-4o"},{"id":""}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	models, err := client.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"gpt-4o", "gpt-4o-mini"}, models)
}

func TestListModelsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("nope"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.ListModels(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestFactoryRequiresCompleteConfig(t *testing.T) {
	factory := &Factory{}

	_, err := factory.Create(nil)
	assert.ErrorIs(t, err, domain.ErrProviderNotConfigured)

	_, err = factory.Create(&domain.ResolvedProviderConfig{Endpoint: "https://api.openai.com/v1"})
	assert.ErrorIs(t, err, domain.ErrProviderNotConfigured)

	provider, err := factory.Create(&domain.ResolvedProviderConfig{
		Vendor:   "openai",
		Endpoint: "https://api.openai.com/v1",
		APIKey:   "sk-test",
		Model:    "gpt-4o",
	})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", provider.Model())
}
