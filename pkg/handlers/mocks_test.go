package handlers

import (
	"context"

	"github.com/clonecrm/crm-engine/pkg/datasource"
	"github.com/clonecrm/crm-engine/pkg/llm"
	"github.com/clonecrm/crm-engine/pkg/services"
)

type mockTranslator struct {
	TranslateFunc       func(ctx context.Context, question string, mode services.Mode) (string, error)
	TranslateStreamFunc func(ctx context.Context, question string, eventChan chan<- llm.StreamEvent) error
}

func (m *mockTranslator) Translate(ctx context.Context, question string, mode services.Mode) (string, error) {
	if m.TranslateFunc != nil {
		return m.TranslateFunc(ctx, question, mode)
	}
	return "", nil
}

func (m *mockTranslator) TranslateStream(ctx context.Context, question string, eventChan chan<- llm.StreamEvent) error {
	if m.TranslateStreamFunc != nil {
		return m.TranslateStreamFunc(ctx, question, eventChan)
	}
	eventChan <- llm.StreamEvent{Type: llm.StreamEventDone}
	return nil
}

func (m *mockTranslator) GenerateSegmentSQL(ctx context.Context, description, currentDate string) (string, error) {
	return "", nil
}

var _ services.TranslatorService = (*mockTranslator)(nil)

type mockChat struct {
	ChatFunc       func(ctx context.Context, messages []llm.Message) (string, error)
	ChatStreamFunc func(ctx context.Context, messages []llm.Message, eventChan chan<- llm.StreamEvent) error
}

func (m *mockChat) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, messages)
	}
	return "", nil
}

func (m *mockChat) ChatStream(ctx context.Context, messages []llm.Message, eventChan chan<- llm.StreamEvent) error {
	if m.ChatStreamFunc != nil {
		return m.ChatStreamFunc(ctx, messages, eventChan)
	}
	eventChan <- llm.StreamEvent{Type: llm.StreamEventDone}
	return nil
}

var _ services.ChatService = (*mockChat)(nil)

type mockSegments struct {
	CreateFunc      func(ctx context.Context, segmentID, description, currentDate string) (*services.SegmentManifest, error)
	RefreshFunc     func(ctx context.Context, segmentID, originalDescription, currentDate string) (*services.SegmentManifest, error)
	GenerateFunc    func(ctx context.Context, description string) (*services.GeneratedSegment, error)
	ExecuteSQLFunc  func(ctx context.Context, sqlQuery string) (*datasource.QueryResult, error)
	ExecuteViewFunc func(ctx context.Context, viewName string) (*datasource.QueryResult, error)
}

func (m *mockSegments) Create(ctx context.Context, segmentID, description, currentDate string) (*services.SegmentManifest, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, segmentID, description, currentDate)
	}
	return &services.SegmentManifest{}, nil
}

func (m *mockSegments) Refresh(ctx context.Context, segmentID, originalDescription, currentDate string) (*services.SegmentManifest, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, segmentID, originalDescription, currentDate)
	}
	return &services.SegmentManifest{}, nil
}

func (m *mockSegments) Generate(ctx context.Context, description string) (*services.GeneratedSegment, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, description)
	}
	return &services.GeneratedSegment{}, nil
}

func (m *mockSegments) ExecuteSQL(ctx context.Context, sqlQuery string) (*datasource.QueryResult, error) {
	if m.ExecuteSQLFunc != nil {
		return m.ExecuteSQLFunc(ctx, sqlQuery)
	}
	return &datasource.QueryResult{}, nil
}

func (m *mockSegments) ExecuteView(ctx context.Context, viewName string) (*datasource.QueryResult, error) {
	if m.ExecuteViewFunc != nil {
		return m.ExecuteViewFunc(ctx, viewName)
	}
	return &datasource.QueryResult{}, nil
}

var _ services.SegmentService = (*mockSegments)(nil)

type mockCustomers struct {
	GetByIDFunc             func(ctx context.Context, customerID int64) (map[string]any, error)
	GeneratePersonalityFunc func(ctx context.Context, customerData map[string]any) (*services.Personality, error)
}

func (m *mockCustomers) GetByID(ctx context.Context, customerID int64) (map[string]any, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, customerID)
	}
	return map[string]any{}, nil
}

func (m *mockCustomers) GeneratePersonality(ctx context.Context, customerData map[string]any) (*services.Personality, error) {
	if m.GeneratePersonalityFunc != nil {
		return m.GeneratePersonalityFunc(ctx, customerData)
	}
	return &services.Personality{}, nil
}

var _ services.CustomerService = (*mockCustomers)(nil)

type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) HealthCheck(ctx context.Context) error {
	return m.err
}
