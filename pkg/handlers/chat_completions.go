package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clonecrm/crm-engine/pkg/apperrors"
	"github.com/clonecrm/crm-engine/pkg/llm"
	"github.com/clonecrm/crm-engine/pkg/services"
)

// Model identifiers exposed through /v1/models. The SQL engine answers
// questions about CRM data; the chat assistant is contextual pass-through.
const (
	ModelSQLEngine     = "crm-sql-engine"
	ModelChatAssistant = "crm-chat-assistant"

	modelOwner = "crm-backend"
)

// ChatMessage is the OpenAI chat message format.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionRequest is the OpenAI chat completion request format.
type ChatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream,omitempty"`
	User        string        `json:"user,omitempty"`
}

// ChatCompletionChoice is one completion alternative.
type ChatCompletionChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// ChatCompletionUsage approximates token counts by whitespace words; the
// engine has no tokenizer and callers only use these fields for display.
type ChatCompletionUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatCompletionResponse is the OpenAI chat completion response format.
type ChatCompletionResponse struct {
	ID      string                 `json:"id"`
	Object  string                 `json:"object"`
	Created int64                  `json:"created"`
	Model   string                 `json:"model"`
	Choices []ChatCompletionChoice `json:"choices"`
	Usage   ChatCompletionUsage    `json:"usage"`
}

// chunkDelta is the incremental content of a streamed chunk.
type chunkDelta struct {
	Content string `json:"content,omitempty"`
}

type chunkChoice struct {
	Index        int        `json:"index"`
	Delta        chunkDelta `json:"delta"`
	FinishReason *string    `json:"finish_reason"`
}

type completionChunk struct {
	ID      string        `json:"id"`
	Object  string        `json:"object"`
	Created int64         `json:"created"`
	Model   string        `json:"model"`
	Choices []chunkChoice `json:"choices"`
}

// ModelInfo is the OpenAI model info object.
type ModelInfo struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

// ModelsResponse is the OpenAI models list response.
type ModelsResponse struct {
	Object string      `json:"object"`
	Data   []ModelInfo `json:"data"`
}

// ChatCompletionsHandler serves the OpenAI-compatible surface.
type ChatCompletionsHandler struct {
	translator services.TranslatorService
	chat       services.ChatService
	logger     *zap.Logger
}

// NewChatCompletionsHandler creates the handler with its two backends.
func NewChatCompletionsHandler(translator services.TranslatorService, chat services.ChatService, logger *zap.Logger) *ChatCompletionsHandler {
	return &ChatCompletionsHandler{
		translator: translator,
		chat:       chat,
		logger:     logger,
	}
}

// RegisterRoutes registers the OpenAI-compatible routes on the given mux.
func (h *ChatCompletionsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/models", h.ListModels)
	mux.HandleFunc("POST /v1/chat/completions", h.ChatCompletions)
}

// ListModels handles GET /v1/models.
func (h *ChatCompletionsHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	now := time.Now().Unix()
	WriteJSON(w, http.StatusOK, ModelsResponse{
		Object: "list",
		Data: []ModelInfo{
			{ID: ModelSQLEngine, Object: "model", Created: now, OwnedBy: modelOwner},
			{ID: ModelChatAssistant, Object: "model", Created: now, OwnedBy: modelOwner},
		},
	})
}

// ChatCompletions handles POST /v1/chat/completions. The model field selects
// the backend: crm-chat-assistant forwards the full history, every other
// model id runs the SQL engine on the last user message.
func (h *ChatCompletionsHandler) ChatCompletions(w http.ResponseWriter, r *http.Request) {
	var req ChatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if len(req.Messages) == 0 {
		ErrorResponse(w, http.StatusBadRequest, "invalid_request", "messages must not be empty")
		return
	}
	if req.Model == "" {
		req.Model = ModelSQLEngine
	}

	requestID := "chatcmpl-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	created := time.Now().Unix()

	if req.Model == ModelChatAssistant {
		h.serveContextualChat(w, r, &req, requestID, created)
		return
	}
	h.serveSQLEngine(w, r, &req, requestID, created)
}

func (h *ChatCompletionsHandler) serveContextualChat(w http.ResponseWriter, r *http.Request, req *ChatCompletionRequest, requestID string, created int64) {
	h.logger.Info("Using contextual chat", zap.Int("message_count", len(req.Messages)))

	messages := make([]llm.Message, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = llm.Message{Role: m.Role, Content: m.Content}
	}

	if req.Stream {
		h.streamCompletion(w, requestID, created, req.Model, func(eventChan chan<- llm.StreamEvent) error {
			return h.chat.ChatStream(r.Context(), messages, eventChan)
		})
		return
	}

	responseText, err := h.chat.Chat(r.Context(), messages)
	if err != nil {
		h.logger.Error("Contextual chat error", zap.Error(err))
		ErrorResponse(w, http.StatusInternalServerError, string(apperrors.KindOf(err)), apperrors.DetailOf(err))
		return
	}

	promptWords := 0
	for _, m := range req.Messages {
		promptWords += len(strings.Fields(m.Content))
	}
	WriteJSON(w, http.StatusOK, buildCompletionResponse(requestID, created, req.Model, responseText, promptWords))
}

func (h *ChatCompletionsHandler) serveSQLEngine(w http.ResponseWriter, r *http.Request, req *ChatCompletionRequest, requestID string, created int64) {
	question := lastUserMessage(req.Messages)
	if question == "" {
		ErrorResponse(w, http.StatusBadRequest, "invalid_request", "no user message provided")
		return
	}

	h.logger.Info("Received SQL query", zap.Int("question_length", len(question)))

	if req.Stream {
		h.streamCompletion(w, requestID, created, req.Model, func(eventChan chan<- llm.StreamEvent) error {
			return h.translator.TranslateStream(r.Context(), question, eventChan)
		})
		return
	}

	responseText, err := h.translator.Translate(r.Context(), question, services.ModeAnswer)
	if err != nil {
		h.logger.Error("SQL query error", zap.Error(err))
		ErrorResponse(w, http.StatusInternalServerError, string(apperrors.KindOf(err)), apperrors.DetailOf(err))
		return
	}

	promptWords := len(strings.Fields(question))
	WriteJSON(w, http.StatusOK, buildCompletionResponse(requestID, created, req.Model, responseText, promptWords))
}

// streamCompletion relays model events as OpenAI chat.completion.chunk SSE
// frames, ending with a finish_reason chunk and the [DONE] sentinel.
func (h *ChatCompletionsHandler) streamCompletion(w http.ResponseWriter, requestID string, created int64, model string, produce func(chan<- llm.StreamEvent) error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		ErrorResponse(w, http.StatusInternalServerError, "streaming_unsupported", "response writer does not support streaming")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	eventChan := make(chan llm.StreamEvent, 32)
	go func() {
		defer close(eventChan)
		if err := produce(eventChan); err != nil {
			h.logger.Error("Streaming error", zap.Error(err))
		}
	}()

	for event := range eventChan {
		switch event.Type {
		case llm.StreamEventText:
			writeSSE(w, contentChunk(requestID, created, model, event.Content))
			flusher.Flush()
		case llm.StreamEventError:
			writeSSE(w, map[string]string{"error": event.Content})
			flusher.Flush()
			return
		case llm.StreamEventDone:
			writeSSE(w, finalChunk(requestID, created, model))
			fmt.Fprint(w, "data: [DONE]\n\n")
			flusher.Flush()
			return
		}
	}
}

func writeSSE(w http.ResponseWriter, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
}

func contentChunk(requestID string, created int64, model, content string) completionChunk {
	return completionChunk{
		ID:      requestID,
		Object:  "chat.completion.chunk",
		Created: created,
		Model:   model,
		Choices: []chunkChoice{{Index: 0, Delta: chunkDelta{Content: content}}},
	}
}

func finalChunk(requestID string, created int64, model string) completionChunk {
	stop := "stop"
	return completionChunk{
		ID:      requestID,
		Object:  "chat.completion.chunk",
		Created: created,
		Model:   model,
		Choices: []chunkChoice{{Index: 0, Delta: chunkDelta{}, FinishReason: &stop}},
	}
}

func buildCompletionResponse(requestID string, created int64, model, responseText string, promptWords int) ChatCompletionResponse {
	completionWords := len(strings.Fields(responseText))
	return ChatCompletionResponse{
		ID:      requestID,
		Object:  "chat.completion",
		Created: created,
		Model:   model,
		Choices: []ChatCompletionChoice{{
			Index:        0,
			Message:      ChatMessage{Role: "assistant", Content: responseText},
			FinishReason: "stop",
		}},
		Usage: ChatCompletionUsage{
			PromptTokens:     promptWords,
			CompletionTokens: completionWords,
			TotalTokens:      promptWords + completionWords,
		},
	}
}

func lastUserMessage(messages []ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content
		}
	}
	return ""
}
