package llm

import (
	"context"
)

// MockClient is a configurable mock for testing LLM functionality.
// Set the function fields to control behavior in tests.
type MockClient struct {
	// CompleteFunc is called when Complete is invoked.
	// If nil, returns empty string and nil error.
	CompleteFunc func(ctx context.Context, prompt string, temperature float64) (string, error)

	// ChatFunc is called when Chat is invoked.
	ChatFunc func(ctx context.Context, messages []Message, temperature float64) (string, error)

	// ChatStreamFunc is called when ChatStream is invoked. If nil, a single
	// done event is emitted.
	ChatStreamFunc func(ctx context.Context, messages []Message, temperature float64, eventChan chan<- StreamEvent) error

	// GenerateWithToolsFunc is called when GenerateWithTools is invoked.
	GenerateWithToolsFunc func(ctx context.Context, req *ToolRequest, executor ToolExecutor) (string, error)

	// StreamWithToolsFunc is called when StreamWithTools is invoked. If nil,
	// a single done event is emitted.
	StreamWithToolsFunc func(ctx context.Context, req *ToolRequest, executor ToolExecutor, eventChan chan<- StreamEvent) error

	// Model is returned by GetModel. Defaults to "mock-model".
	Model string

	// Call tracking for verification
	CompleteCalls          int
	ChatCalls              int
	ChatStreamCalls        int
	GenerateWithToolsCalls int
	StreamWithToolsCalls   int

	// Prompts records every prompt passed to Complete, in order.
	Prompts []string
}

// NewMockClient creates a new mock with sensible defaults.
func NewMockClient() *MockClient {
	return &MockClient{Model: "mock-model"}
}

// Complete implements Client.
func (m *MockClient) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	m.CompleteCalls++
	m.Prompts = append(m.Prompts, prompt)
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt, temperature)
	}
	return "", nil
}

// Chat implements Client.
func (m *MockClient) Chat(ctx context.Context, messages []Message, temperature float64) (string, error) {
	m.ChatCalls++
	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, messages, temperature)
	}
	return "", nil
}

// ChatStream implements Client.
func (m *MockClient) ChatStream(ctx context.Context, messages []Message, temperature float64, eventChan chan<- StreamEvent) error {
	m.ChatStreamCalls++
	if m.ChatStreamFunc != nil {
		return m.ChatStreamFunc(ctx, messages, temperature, eventChan)
	}
	eventChan <- StreamEvent{Type: StreamEventDone}
	return nil
}

// GenerateWithTools implements Client.
func (m *MockClient) GenerateWithTools(ctx context.Context, req *ToolRequest, executor ToolExecutor) (string, error) {
	m.GenerateWithToolsCalls++
	if m.GenerateWithToolsFunc != nil {
		return m.GenerateWithToolsFunc(ctx, req, executor)
	}
	return "", nil
}

// StreamWithTools implements Client.
func (m *MockClient) StreamWithTools(ctx context.Context, req *ToolRequest, executor ToolExecutor, eventChan chan<- StreamEvent) error {
	m.StreamWithToolsCalls++
	if m.StreamWithToolsFunc != nil {
		return m.StreamWithToolsFunc(ctx, req, executor, eventChan)
	}
	eventChan <- StreamEvent{Type: StreamEventDone}
	return nil
}

// GetModel implements Client.
func (m *MockClient) GetModel() string {
	if m.Model == "" {
		return "mock-model"
	}
	return m.Model
}

// Ensure MockClient implements Client at compile time.
var _ Client = (*MockClient)(nil)
