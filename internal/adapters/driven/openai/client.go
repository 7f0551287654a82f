// Package openai implements the chat transport against OpenAI-compatible
// chat completions APIs. All supported vendors share this wire format.
package openai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/custodia-labs/namehunt-core/internal/core/domain"
	"github.com/custodia-labs/namehunt-core/internal/core/ports/driven"
	"github.com/custodia-labs/namehunt-core/internal/core/services"
	"github.com/custodia-labs/namehunt-core/internal/monitoring"
)

// Ensure Client implements ChatProvider
var _ driven.ChatProvider = (*Client)(nil)

// recommendDomainsTool is the single tool exposed to the model. Keeping the
// schema next to the transport means every vendor sees the identical
// definition.
var recommendDomainsTool = chatTool{
	Type: "function",
	Function: toolFunction{
		Name:        services.RecommendDomainsToolName,
		Description: "Recommend domain name candidates for the user's project. Call this whenever you suggest domain names.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"domains": map[string]any{
					"type":        "array",
					"minItems":    5,
					"maxItems":    8,
					"description": "Domain name candidates, best first.",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"domain": map[string]any{
								"type":        "string",
								"description": "Full domain name including TLD, e.g. example.com",
							},
							"description": map[string]any{
								"type":        "string",
								"description": "One short line on why this name fits.",
							},
						},
						"required": []string{"domain"},
					},
				},
			},
			"required": []string{"domains"},
		},
	},
}

// Client speaks the OpenAI-compatible chat completions protocol.
type Client struct {
	endpoint string
	apiKey   string
	model    string
	headers  map[string]string
	client   *http.Client
}

// NewClient creates a transport client for one resolved provider config.
func NewClient(cfg *domain.ResolvedProviderConfig) *Client {
	return &Client{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		headers:  cfg.Headers,
		// Streams routinely outlive any sane client-wide timeout; deadlines
		// come from the request context instead.
		client: &http.Client{},
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

type chatRequest struct {
	Model     string            `json:"model"`
	Messages  []driven.ChatTurn `json:"messages"`
	Stream    bool              `json:"stream,omitempty"`
	Tools     []chatTool        `json:"tools,omitempty"`
	MaxTokens int               `json:"max_tokens,omitempty"`
}

type chatTool struct {
	Type     string       `json:"type"`
	Function toolFunction `json:"function"`
}

type toolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				Index    int    `json:"index"`
				ID       string `json:"id"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"delta"`
	} `json:"choices"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Stream sends one chat completion request with stream=true and feeds the
// SSE events to the handler until the transport signals [DONE].
func (c *Client) Stream(ctx context.Context, turns []driven.ChatTurn, withTools bool, h driven.StreamHandler) error {
	body := chatRequest{
		Model:    c.model,
		Messages: turns,
		Stream:   true,
	}
	if withTools {
		body.Tools = []chatTool{recommendDomainsTool}
	}

	resp, err := c.post(ctx, "/chat/completions", body)
	if err != nil {
		c.countStream("failure")
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.countStream("failure")
		return c.apiError(resp)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			c.countStream("success")
			return nil
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			// Malformed keep-alive or vendor extension; skip the event.
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta
		if delta.Content != "" {
			h.OnDelta(delta.Content)
		}
		for _, tc := range delta.ToolCalls {
			h.OnToolCallDelta(tc.Index, tc.ID, tc.Function.Name, tc.Function.Arguments)
		}
	}
	if err := scanner.Err(); err != nil {
		c.countStream("failure")
		return fmt.Errorf("read stream: %w", err)
	}

	// Some proxies close the stream without the terminator. The content that
	// arrived is still the completed turn.
	c.countStream("success")
	return nil
}

// SummarizeTitle asks the model for a short conversation title.
func (c *Client) SummarizeTitle(ctx context.Context, firstMessage string) (string, error) {
	body := chatRequest{
		Model: c.model,
		Messages: []driven.ChatTurn{
			{
				Role:    "system",
				Content: "Summarize the user's request as a conversation title of at most 10 words. Reply with the title only, no quotes or punctuation around it.",
			},
			{Role: "user", Content: firstMessage},
		},
		MaxTokens: 30,
	}

	resp, err := c.post(ctx, "/chat/completions", body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.apiError(resp)
	}

	var completion completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("decode completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("empty completion")
	}
	title := strings.TrimSpace(completion.Choices[0].Message.Content)
	return strings.Trim(title, `"'`), nil
}

// ListModels fetches the provider's model catalog, sorted by ID.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.apiError(resp)
	}

	var payload struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode models: %w", err)
	}

	seen := map[string]struct{}{}
	models := make([]string, 0, len(payload.Data))
	for _, m := range payload.Data {
		if m.ID == "" {
			continue
		}
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		models = append(models, m.ID)
	}
	sort.Strings(models)
	return models, nil
}

func (c *Client) post(ctx context.Context, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat request: %w", err)
	}
	return resp, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
}

// apiError extracts the provider's error message, falling back to the HTTP
// status when the body is not the standard error envelope.
func (c *Client) apiError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 8*1024))
	var apiErr errorResponse
	if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Error.Message != "" {
		return fmt.Errorf("provider error (status %d): %s", resp.StatusCode, apiErr.Error.Message)
	}
	return fmt.Errorf("provider error: status %d", resp.StatusCode)
}

func (c *Client) countStream(status string) {
	if monitoring.ChatStreamsTotal == nil {
		return
	}
	monitoring.ChatStreamsTotal.WithLabelValues(status).Inc()
}
