// Package llm provides OpenAI-compatible LLM client functionality.
package llm

import (
	"context"
)

// Client defines the interface for LLM operations used by the engine.
// Use this interface for dependency injection to enable mocking in tests.
type Client interface {
	// Complete generates a single-turn completion for a composed prompt.
	Complete(ctx context.Context, prompt string, temperature float64) (string, error)

	// Chat generates a chat completion from a full message history.
	Chat(ctx context.Context, messages []Message, temperature float64) (string, error)

	// ChatStream streams a chat completion token by token into eventChan.
	// The channel receives text events followed by a done or error event;
	// the caller owns the channel and must consume it until done/error.
	ChatStream(ctx context.Context, messages []Message, temperature float64, eventChan chan<- StreamEvent) error

	// GenerateWithTools runs a completion loop with tool support and returns
	// the final assistant text.
	GenerateWithTools(ctx context.Context, req *ToolRequest, executor ToolExecutor) (string, error)

	// StreamWithTools runs the tool loop while streaming text into eventChan.
	StreamWithTools(ctx context.Context, req *ToolRequest, executor ToolExecutor, eventChan chan<- StreamEvent) error

	// GetModel returns the configured model name.
	GetModel() string
}

// ToolExecutor defines the interface for executing tools requested by the model.
type ToolExecutor interface {
	ExecuteTool(ctx context.Context, name string, arguments string) (string, error)
}

// Ensure OpenAIClient implements Client at compile time.
var _ Client = (*OpenAIClient)(nil)
