package services

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clonecrm/crm-engine/pkg/apperrors"
	"github.com/clonecrm/crm-engine/pkg/datasource"
	"github.com/clonecrm/crm-engine/pkg/llm"
)

func newTranslatorFixture(mockLLM *llm.MockClient, executor *mockExecutor) TranslatorService {
	return NewTranslatorService(mockLLM, executor, []string{"customer", "invoice"}, zap.NewNop())
}

func TestGenerateSegmentSQL(t *testing.T) {
	mockLLM := llm.NewMockClient()
	mockLLM.CompleteFunc = func(_ context.Context, _ string, temperature float64) (string, error) {
		assert.Equal(t, float64(0), temperature)
		return "```sql\nSELECT c.custid FROM customer c;\n```", nil
	}
	translator := newTranslatorFixture(mockLLM, &mockExecutor{})

	sqlQuery, err := translator.GenerateSegmentSQL(context.Background(), "pelanggan aktif", "2025-03-01")
	require.NoError(t, err)

	assert.Equal(t, "SELECT c.custid FROM customer c", sqlQuery)
	require.Len(t, mockLLM.Prompts, 1)
	assert.Contains(t, mockLLM.Prompts[0], "TODAY'S DATE: 2025-03-01")
	assert.Contains(t, mockLLM.Prompts[0], "Question: pelanggan aktif")
}

func TestGenerateSegmentSQL_EmptyOutput(t *testing.T) {
	mockLLM := llm.NewMockClient()
	mockLLM.CompleteFunc = func(context.Context, string, float64) (string, error) {
		return "   ", nil
	}
	translator := newTranslatorFixture(mockLLM, &mockExecutor{})

	_, err := translator.GenerateSegmentSQL(context.Background(), "pelanggan aktif", "2025-03-01")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindGeneration))
}

func TestTranslate_AnswerMode(t *testing.T) {
	mockLLM := llm.NewMockClient()
	mockLLM.GenerateWithToolsFunc = func(_ context.Context, req *llm.ToolRequest, _ llm.ToolExecutor) (string, error) {
		require.Len(t, req.Tools, 1)
		assert.Equal(t, "run_sql", req.Tools[0].Name)
		assert.Contains(t, req.Messages[0].Content, "Question: Berapa pelanggan aktif?")
		return "Ada 120 pelanggan aktif.", nil
	}
	translator := newTranslatorFixture(mockLLM, &mockExecutor{})

	answer, err := translator.Translate(context.Background(), "Berapa pelanggan aktif?", ModeAnswer)
	require.NoError(t, err)
	assert.Equal(t, "Ada 120 pelanggan aktif.", answer)
}

func TestTranslate_AnswerMode_EmptyAnswer(t *testing.T) {
	mockLLM := llm.NewMockClient()
	translator := newTranslatorFixture(mockLLM, &mockExecutor{})

	_, err := translator.Translate(context.Background(), "Berapa pelanggan aktif?", ModeAnswer)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindGeneration))
}

func TestTranslate_UnknownMode(t *testing.T) {
	translator := newTranslatorFixture(llm.NewMockClient(), &mockExecutor{})

	_, err := translator.Translate(context.Background(), "q", Mode("bogus"))
	assert.Error(t, err)
}

func TestSQLToolExecutor(t *testing.T) {
	executor := &mockExecutor{
		QueryFunc: func(_ context.Context, sqlQuery string, limit int) (*datasource.QueryResult, error) {
			assert.Equal(t, "SELECT COUNT(*) AS n FROM customer", sqlQuery)
			assert.Equal(t, toolQueryLimit, limit)
			return &datasource.QueryResult{
				Columns:  []string{"n"},
				Rows:     []map[string]any{{"n": int64(120)}},
				RowCount: 1,
			}, nil
		},
	}
	tool := &sqlToolExecutor{executor: executor, logger: zap.NewNop()}

	args, _ := json.Marshal(map[string]string{"query": "SELECT COUNT(*) AS n FROM customer;"})
	result, err := tool.ExecuteTool(context.Background(), "run_sql", string(args))
	require.NoError(t, err)

	var decoded datasource.QueryResult
	require.NoError(t, json.Unmarshal([]byte(result), &decoded))
	assert.Equal(t, 1, decoded.RowCount)
}

func TestSQLToolExecutor_Guards(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{name: "multiple statements", query: "SELECT 1; SELECT 2"},
		{name: "dml", query: "DELETE FROM customer"},
		{name: "ddl", query: "DROP TABLE customer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			executor := &mockExecutor{}
			tool := &sqlToolExecutor{executor: executor, logger: zap.NewNop()}

			args, _ := json.Marshal(map[string]string{"query": tt.query})
			_, err := tool.ExecuteTool(context.Background(), "run_sql", string(args))
			assert.Error(t, err)
			assert.Equal(t, 0, executor.QueryCalls)
		})
	}
}

func TestSQLToolExecutor_UnknownTool(t *testing.T) {
	tool := &sqlToolExecutor{executor: &mockExecutor{}, logger: zap.NewNop()}

	_, err := tool.ExecuteTool(context.Background(), "drop_everything", "{}")
	assert.ErrorContains(t, err, "unknown tool")
}

func TestRunSQLToolDescription_ListsTables(t *testing.T) {
	mockLLM := llm.NewMockClient()
	mockLLM.GenerateWithToolsFunc = func(_ context.Context, req *llm.ToolRequest, _ llm.ToolExecutor) (string, error) {
		assert.True(t, strings.Contains(req.Tools[0].Description, "customer, invoice"))
		return "ok", nil
	}
	translator := newTranslatorFixture(mockLLM, &mockExecutor{})

	_, err := translator.Translate(context.Background(), "q", ModeAnswer)
	require.NoError(t, err)
}
