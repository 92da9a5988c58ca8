package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// StreamEvent represents a streaming event from the LLM.
type StreamEvent struct {
	Type    StreamEventType `json:"type"`
	Content string          `json:"content,omitempty"`
}

// StreamEventType defines types of streaming events.
type StreamEventType string

const (
	StreamEventText  StreamEventType = "text"
	StreamEventDone  StreamEventType = "done"
	StreamEventError StreamEventType = "error"
)

// ToolCall represents a tool call from the LLM.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function ToolCallFunc `json:"function"`
}

// ToolCallFunc represents a function call within a tool call.
type ToolCallFunc struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolRequest represents a request for a chat completion with tool support.
type ToolRequest struct {
	Messages     []Message
	Tools        []ToolDefinition
	Temperature  float64
	SystemPrompt string
}

// ChatStream streams a plain chat completion token by token into eventChan.
func (c *OpenAIClient) ChatStream(ctx context.Context, messages []Message, temperature float64, eventChan chan<- StreamEvent) error {
	stream, err := c.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    buildOpenAIMessages(messages, ""),
		Temperature: float32(temperature),
		Stream:      true,
	})
	if err != nil {
		eventChan <- StreamEvent{Type: StreamEventError, Content: err.Error()}
		return fmt.Errorf("create stream: %w", err)
	}
	defer stream.Close()

	for {
		response, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			c.logger.Error("Stream receive error", zap.Error(err))
			eventChan <- StreamEvent{Type: StreamEventError, Content: err.Error()}
			return fmt.Errorf("stream receive: %w", err)
		}

		if len(response.Choices) == 0 {
			continue
		}
		if delta := response.Choices[0].Delta.Content; delta != "" {
			eventChan <- StreamEvent{Type: StreamEventText, Content: delta}
		}
	}

	eventChan <- StreamEvent{Type: StreamEventDone}
	return nil
}

// GenerateWithTools performs a non-streaming chat completion with tool support.
// The loop runs until the model stops requesting tools or the iteration cap is
// reached.
func (c *OpenAIClient) GenerateWithTools(ctx context.Context, req *ToolRequest, executor ToolExecutor) (string, error) {
	messages := buildOpenAIMessages(req.Messages, req.SystemPrompt)
	tools := buildOpenAITools(req.Tools)

	for iteration := 0; iteration < c.maxToolIterations; iteration++ {
		c.logger.Debug("Tool loop iteration",
			zap.Int("iteration", iteration),
			zap.Int("message_count", len(messages)))

		resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       c.model,
			Messages:    messages,
			Tools:       tools,
			Temperature: float32(req.Temperature),
		})
		if err != nil {
			return "", fmt.Errorf("chat completion: %w", err)
		}

		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("no choices in response")
		}

		choice := resp.Choices[0]
		if len(choice.Message.ToolCalls) == 0 {
			return choice.Message.Content, nil
		}

		messages = append(messages, choice.Message)
		messages, err = c.executeToolCalls(ctx, messages, choice.Message.ToolCalls, executor)
		if err != nil {
			return "", err
		}
	}

	return "", fmt.Errorf("exceeded maximum tool iterations (%d)", c.maxToolIterations)
}

// StreamWithTools performs streaming chat completion with tool support. Text
// deltas are relayed to eventChan as they arrive; tool calls are executed
// between iterations. The caller should consume events until a done or error
// event is received.
func (c *OpenAIClient) StreamWithTools(ctx context.Context, req *ToolRequest, executor ToolExecutor, eventChan chan<- StreamEvent) error {
	messages := buildOpenAIMessages(req.Messages, req.SystemPrompt)
	tools := buildOpenAITools(req.Tools)

	for iteration := 0; iteration < c.maxToolIterations; iteration++ {
		content, toolCalls, err := c.streamIteration(ctx, messages, tools, float32(req.Temperature), eventChan)
		if err != nil {
			eventChan <- StreamEvent{Type: StreamEventError, Content: err.Error()}
			return err
		}

		if len(toolCalls) == 0 {
			eventChan <- StreamEvent{Type: StreamEventDone}
			return nil
		}

		assistantMsg := openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleAssistant,
			Content: content,
		}
		for _, tc := range toolCalls {
			assistantMsg.ToolCalls = append(assistantMsg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			})
		}
		messages = append(messages, assistantMsg)

		messages, err = c.executeToolCalls(ctx, messages, assistantMsg.ToolCalls, executor)
		if err != nil {
			eventChan <- StreamEvent{Type: StreamEventError, Content: err.Error()}
			return err
		}
	}

	err := fmt.Errorf("exceeded maximum tool iterations (%d)", c.maxToolIterations)
	eventChan <- StreamEvent{Type: StreamEventError, Content: err.Error()}
	return err
}

// executeToolCalls runs each requested tool and appends tool-result messages.
// Execution errors are reported back to the model rather than aborting the
// loop, matching how OpenAI-compatible agents surface tool failures.
func (c *OpenAIClient) executeToolCalls(
	ctx context.Context,
	messages []openai.ChatCompletionMessage,
	toolCalls []openai.ToolCall,
	executor ToolExecutor,
) ([]openai.ChatCompletionMessage, error) {
	for _, tc := range toolCalls {
		result, execErr := executor.ExecuteTool(ctx, tc.Function.Name, tc.Function.Arguments)
		if execErr != nil {
			result = fmt.Sprintf("Error executing tool: %s", execErr.Error())
		}

		c.logger.Debug("Tool executed",
			zap.String("tool", tc.Function.Name),
			zap.Int("result_len", len(result)),
			zap.Bool("errored", execErr != nil))

		messages = append(messages, openai.ChatCompletionMessage{
			Role:       openai.ChatMessageRoleTool,
			Content:    result,
			ToolCallID: tc.ID,
		})
	}
	return messages, nil
}

// streamIteration performs a single streaming request and returns accumulated
// content and tool calls.
func (c *OpenAIClient) streamIteration(
	ctx context.Context,
	messages []openai.ChatCompletionMessage,
	tools []openai.Tool,
	temperature float32,
	eventChan chan<- StreamEvent,
) (string, []ToolCall, error) {
	start := time.Now()

	stream, err := c.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Tools:       tools,
		Temperature: temperature,
		Stream:      true,
	})
	if err != nil {
		c.logger.Error("Failed to create stream", zap.Error(err))
		return "", nil, fmt.Errorf("create stream: %w", err)
	}
	defer stream.Close()

	var contentBuilder strings.Builder
	toolCallsMap := make(map[int]*ToolCall)

	for {
		response, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			c.logger.Error("Stream receive error", zap.Error(err))
			return "", nil, fmt.Errorf("stream receive: %w", err)
		}

		if len(response.Choices) == 0 {
			continue
		}

		delta := response.Choices[0].Delta

		if delta.Content != "" {
			contentBuilder.WriteString(delta.Content)
			eventChan <- StreamEvent{Type: StreamEventText, Content: delta.Content}
		}

		// Tool call fragments accumulate across chunks
		for _, tc := range delta.ToolCalls {
			idx := 0
			if tc.Index != nil {
				idx = *tc.Index
			}

			if existing, exists := toolCallsMap[idx]; !exists {
				toolCallsMap[idx] = &ToolCall{
					ID:   tc.ID,
					Type: string(tc.Type),
					Function: ToolCallFunc{
						Name:      tc.Function.Name,
						Arguments: tc.Function.Arguments,
					},
				}
			} else {
				existing.Function.Arguments += tc.Function.Arguments
			}
		}
	}

	var toolCalls []ToolCall
	for i := 0; i < len(toolCallsMap); i++ {
		if tc, ok := toolCallsMap[i]; ok {
			toolCalls = append(toolCalls, *tc)
		}
	}

	c.logger.Info("Stream iteration completed",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("content_length", contentBuilder.Len()),
		zap.Int("tool_calls", len(toolCalls)))

	return contentBuilder.String(), toolCalls, nil
}

// buildOpenAITools converts our tool definitions to OpenAI format.
func buildOpenAITools(tools []ToolDefinition) []openai.Tool {
	if len(tools) == 0 {
		return nil
	}

	result := make([]openai.Tool, len(tools))
	for i, def := range tools {
		paramsJSON, _ := json.Marshal(def.Parameters)
		result[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  json.RawMessage(paramsJSON),
			},
		}
	}

	return result
}
