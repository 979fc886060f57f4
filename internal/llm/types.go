// Package llm provides provider-neutral tool-calling chat sessions over the
// OpenAI chat completions API (openai-go) and the Gemini API (genai).
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"interpagent/internal/tools"
)

// Provider names a model backend.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// Stop reasons, normalized across providers.
const (
	StopEndTurn   = "end_turn"
	StopToolUse   = "tool_use"
	StopMaxTokens = "max_tokens"
	StopOther     = "other"
)

var (
	// ErrUnknownProvider is returned by NewClient for an unsupported provider.
	ErrUnknownProvider = errors.New("unknown llm provider")

	// ErrEmptyResponse is returned when the backend answers without a candidate.
	ErrEmptyResponse = errors.New("llm returned no choices")

	// ErrUnknownToolCall is returned when a tool result references no pending call.
	ErrUnknownToolCall = errors.New("tool result does not match a pending tool call")
)

// Config holds the connection settings shared by all providers.
type Config struct {
	Provider Provider
	APIKey   string
	BaseURL  string
	Model    string
	Timeout  time.Duration

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// ToolCall represents a tool invocation requested by the model.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolResult is the outcome of a tool call, fed back to the model.
type ToolResult struct {
	ToolUseID string `json:"tool_use_id"` // Matches ToolCall.ID
	Name      string `json:"name"`
	Content   string `json:"content"`
	IsError   bool   `json:"is_error"`
}

// UsageMetadata captures token usage reported by the backend.
type UsageMetadata struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Response contains both the text and the tool calls of one model turn.
type Response struct {
	Text       string        `json:"text"`
	ToolCalls  []ToolCall    `json:"tool_calls"`
	StopReason string        `json:"stop_reason"`
	Usage      UsageMetadata `json:"usage"`
}

// Client starts chat sessions against one model.
type Client interface {
	Provider() Provider
	Model() string
	StartChat(system string, defs []tools.Definition) (Session, error)
}

// Session is one conversation. It keeps the message history between
// turns and is not safe for concurrent use.
type Session interface {
	// Send adds a user message and returns the model's reply.
	Send(ctx context.Context, text string) (*Response, error)

	// SendToolResults answers the tool calls of the previous reply.
	SendToolResults(ctx context.Context, results []ToolResult) (*Response, error)
}
