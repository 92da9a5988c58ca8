package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clonecrm/crm-engine/pkg/apperrors"
	"github.com/clonecrm/crm-engine/pkg/llm"
)

func TestChat_PassesHistoryThrough(t *testing.T) {
	history := []llm.Message{
		{Role: llm.RoleSystem, Content: "Konteks pelanggan: Budi Santoso"},
		{Role: llm.RoleUser, Content: "Siapa nama pelanggan ini?"},
	}

	mockLLM := llm.NewMockClient()
	mockLLM.ChatFunc = func(_ context.Context, messages []llm.Message, temperature float64) (string, error) {
		assert.Equal(t, history, messages)
		assert.Equal(t, 0.7, temperature)
		return "Nama pelanggan ini adalah Budi Santoso.", nil
	}
	service := NewChatService(mockLLM, 0.7, zap.NewNop())

	answer, err := service.Chat(context.Background(), history)
	require.NoError(t, err)
	assert.Equal(t, "Nama pelanggan ini adalah Budi Santoso.", answer)
}

func TestChat_WrapsModelError(t *testing.T) {
	mockLLM := llm.NewMockClient()
	mockLLM.ChatFunc = func(context.Context, []llm.Message, float64) (string, error) {
		return "", errors.New("rate limited")
	}
	service := NewChatService(mockLLM, 0.7, zap.NewNop())

	_, err := service.Chat(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindGeneration))
}

func TestChatStream_RelaysEvents(t *testing.T) {
	mockLLM := llm.NewMockClient()
	mockLLM.ChatStreamFunc = func(_ context.Context, _ []llm.Message, _ float64, eventChan chan<- llm.StreamEvent) error {
		eventChan <- llm.StreamEvent{Type: llm.StreamEventText, Content: "Halo"}
		eventChan <- llm.StreamEvent{Type: llm.StreamEventText, Content: " dunia"}
		eventChan <- llm.StreamEvent{Type: llm.StreamEventDone}
		return nil
	}
	service := NewChatService(mockLLM, 0.7, zap.NewNop())

	eventChan := make(chan llm.StreamEvent, 8)
	err := service.ChatStream(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}}, eventChan)
	require.NoError(t, err)
	close(eventChan)

	var text string
	for event := range eventChan {
		if event.Type == llm.StreamEventText {
			text += event.Content
		}
	}
	assert.Equal(t, "Halo dunia", text)
}
