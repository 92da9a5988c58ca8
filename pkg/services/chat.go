package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/clonecrm/crm-engine/pkg/apperrors"
	"github.com/clonecrm/crm-engine/pkg/llm"
)

// ChatService forwards a full message history to the model without touching
// the database. Context for customer-specific conversations arrives inside
// the system message; the history is never reordered or filtered.
type ChatService interface {
	Chat(ctx context.Context, messages []llm.Message) (string, error)
	ChatStream(ctx context.Context, messages []llm.Message, eventChan chan<- llm.StreamEvent) error
}

type chatService struct {
	llmClient   llm.Client
	temperature float64
	logger      *zap.Logger
}

// NewChatService creates a contextual chat service.
func NewChatService(llmClient llm.Client, temperature float64, logger *zap.Logger) ChatService {
	return &chatService{
		llmClient:   llmClient,
		temperature: temperature,
		logger:      logger.Named("chat"),
	}
}

func (s *chatService) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	s.logger.Info("Processing contextual chat", zap.Int("message_count", len(messages)))

	result, err := s.llmClient.Chat(ctx, messages, s.temperature)
	if err != nil {
		return "", apperrors.Generation("contextual chat failed", err)
	}
	return result, nil
}

func (s *chatService) ChatStream(ctx context.Context, messages []llm.Message, eventChan chan<- llm.StreamEvent) error {
	s.logger.Info("Processing streaming contextual chat", zap.Int("message_count", len(messages)))

	if err := s.llmClient.ChatStream(ctx, messages, s.temperature, eventChan); err != nil {
		return apperrors.Generation("contextual chat failed", err)
	}
	return nil
}
