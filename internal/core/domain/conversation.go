package domain

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Role identifies the author of a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// IsValid returns true if this is a known message role
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAssistant
}

// ToolCallFunction is the function invocation payload of a tool call.
// Arguments is the raw argument string as received from the model; it is
// expected to be JSON but may be malformed or truncated.
type ToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolCall is a structured function invocation emitted by the assistant.
// The original payload is retained on the message for replay and audit.
type ToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function ToolCallFunction `json:"function"`
}

// Message is a single turn in a conversation.
// Assistant messages may carry domain check results and the tool calls
// they were extracted from.
type Message struct {
	ID        string         `json:"id"`
	Role      Role           `json:"role"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Domains   []DomainResult `json:"domains,omitempty"`
	ToolCalls []ToolCall     `json:"tool_calls,omitempty"`
}

// Conversation is an ordered sequence of messages.
// It is persisted as a whole unit on every mutation that must survive a reload.
type Conversation struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Messages       []Message  `json:"messages"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ImportedFromID string     `json:"imported_from_id,omitempty"`
	ImportedAt     *time.Time `json:"imported_at,omitempty"`
}

// Message returns the message with the given ID, or nil if absent.
func (c *Conversation) Message(id string) *Message {
	for i := range c.Messages {
		if c.Messages[i].ID == id {
			return &c.Messages[i]
		}
	}
	return nil
}

// NewID generates a random identifier for conversations and messages.
func NewID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		// Fall back to a time-derived ID; collisions are acceptable for a
		// single-user store.
		return hex.EncodeToString([]byte(time.Now().Format("20060102150405.000000000")))
	}
	return hex.EncodeToString(b)
}
