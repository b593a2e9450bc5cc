// Package agent drives the tool-calling conversation between the language
// model and the course search tools. It defines a provider-agnostic LLM
// interface with a concrete OpenAI implementation and deterministic mocks
// for testing, plus the bounded generation loop that decides when the model
// is done answering.
package agent

import (
	"context"
	"errors"
)

var (
	ErrLLMFailed     = errors.New("LLM request failed")
	ErrAuthFailed    = errors.New("LLM authentication failed")
	ErrRateLimited   = errors.New("LLM rate limit exceeded")
	ErrInvalidConfig = errors.New("invalid LLM configuration")
)

// Message roles used in the conversation transcript.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolSchema describes one callable tool to the model: its name, what it
// does, and a JSON Schema for its arguments.
type ToolSchema struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolCall is one tool invocation requested by the model. Arguments is the
// raw JSON payload as produced by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// Message is one entry of the accumulating conversation transcript.
type Message struct {
	Role       string
	Content    string
	ToolCalls  []ToolCall // set on assistant messages that request tools
	ToolCallID string     // set on tool result messages
}

// ChatRequest is a single model call: system prompt, transcript so far, and
// the tools the model may invoke. An empty Tools slice disables tool use.
type ChatRequest struct {
	System   string
	Messages []Message
	Tools    []ToolSchema
}

// ChatResponse is either a terminal text answer or a set of tool calls the
// caller must execute before calling again.
type ChatResponse struct {
	Text      string
	ToolCalls []ToolCall
}

// LLM defines the interface for interacting with language models.
// Implementations must be stateless and thread-safe.
type LLM interface {
	// Chat sends one request to the model and returns its response.
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// LLMConfig holds common configuration options for LLM providers.
type LLMConfig struct {
	// Model specifies the model identifier (e.g., "gpt-4o")
	Model string

	// Temperature controls randomness (0.0 = deterministic)
	Temperature float32

	// MaxTokens limits the response length (0 = use provider default)
	MaxTokens int

	// APIKey is the authentication key for the provider
	APIKey string
}

// DefaultLLMConfig returns sensible defaults for answering course questions.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Model:       "gpt-4o",
		Temperature: 0,
		MaxTokens:   800,
	}
}
