package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/clonecrm/crm-engine/pkg/apperrors"
	"github.com/clonecrm/crm-engine/pkg/datasource"
	"github.com/clonecrm/crm-engine/pkg/llm"
	"github.com/clonecrm/crm-engine/pkg/observability"
	"github.com/clonecrm/crm-engine/pkg/prompts"
	crmsql "github.com/clonecrm/crm-engine/pkg/sql"
)

// Mode selects the translator output contract.
type Mode string

const (
	// ModeAnswer runs the model with the run_sql tool and returns a
	// natural-language answer in Indonesian.
	ModeAnswer Mode = "answer"

	// ModeSQLOnly returns bare SQL and never touches the database.
	ModeSQLOnly Mode = "sql_only"
)

// toolQueryLimit bounds rows returned to the model per tool call. The prompt
// instructs LIMIT 10; this is the backstop when the model ignores it.
const toolQueryLimit = 100

// TranslatorService converts natural-language questions into SQL-backed
// answers or bare SQL statements.
type TranslatorService interface {
	// Translate answers a question. ModeAnswer may execute SQL through the
	// run_sql tool; ModeSQLOnly is a single completion anchored to today.
	Translate(ctx context.Context, question string, mode Mode) (string, error)

	// TranslateStream answers in ModeAnswer, relaying tokens into eventChan.
	TranslateStream(ctx context.Context, question string, eventChan chan<- llm.StreamEvent) error

	// GenerateSegmentSQL produces a single sanitized SELECT for a segment
	// description, with date arithmetic anchored to currentDate (YYYY-MM-DD).
	GenerateSegmentSQL(ctx context.Context, description, currentDate string) (string, error)
}

type translatorService struct {
	llmClient llm.Client
	executor  datasource.Executor
	tables    []string
	logger    *zap.Logger
	now       func() time.Time
}

// NewTranslatorService creates a translator over the given model client and
// query executor. tables is the allow-list exposed to the run_sql tool.
func NewTranslatorService(llmClient llm.Client, executor datasource.Executor, tables []string, logger *zap.Logger) TranslatorService {
	return &translatorService{
		llmClient: llmClient,
		executor:  executor,
		tables:    tables,
		logger:    logger.Named("translator"),
		now:       time.Now,
	}
}

func (s *translatorService) Translate(ctx context.Context, question string, mode Mode) (string, error) {
	switch mode {
	case ModeSQLOnly:
		return s.GenerateSegmentSQL(ctx, question, s.now().Format("2006-01-02"))
	case ModeAnswer:
		return s.answer(ctx, question)
	default:
		return "", fmt.Errorf("unknown translation mode: %s", mode)
	}
}

func (s *translatorService) answer(ctx context.Context, question string) (string, error) {
	req := &llm.ToolRequest{
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: prompts.BuildAnswerPrompt(question)},
		},
		Tools:       []llm.ToolDefinition{s.runSQLTool()},
		Temperature: 0,
	}

	answer, err := s.llmClient.GenerateWithTools(ctx, req, s.toolExecutor())
	if err != nil {
		return "", apperrors.Generation("failed to answer question", err)
	}
	if strings.TrimSpace(answer) == "" {
		return "", apperrors.Generation("model returned an empty answer", nil)
	}

	s.logger.Info("Question answered",
		zap.Int("question_length", len(question)),
		zap.Int("answer_length", len(answer)))
	return answer, nil
}

func (s *translatorService) TranslateStream(ctx context.Context, question string, eventChan chan<- llm.StreamEvent) error {
	req := &llm.ToolRequest{
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: prompts.BuildAnswerPrompt(question)},
		},
		Tools:       []llm.ToolDefinition{s.runSQLTool()},
		Temperature: 0,
	}

	if err := s.llmClient.StreamWithTools(ctx, req, s.toolExecutor(), eventChan); err != nil {
		return apperrors.Generation("failed to answer question", err)
	}
	return nil
}

// GenerateSegmentSQL runs one completion at temperature 0 and sanitizes the
// output. currentDate must be YYYY-MM-DD; anything else falls back to today.
func (s *translatorService) GenerateSegmentSQL(ctx context.Context, description, currentDate string) (string, error) {
	anchor, err := time.Parse("2006-01-02", currentDate)
	if err != nil {
		anchor = s.now()
	}

	prompt := prompts.BuildSegmentSQLPrompt(description, anchor)

	start := time.Now()
	raw, err := s.llmClient.Complete(ctx, prompt, 0)
	observability.ObserveSQLGeneration(time.Since(start))
	if err != nil {
		return "", apperrors.Generation("failed to generate SQL", err)
	}

	sqlQuery := crmsql.Sanitize(raw)
	if sqlQuery == "" {
		return "", apperrors.Generation("model returned empty SQL", nil)
	}

	s.logger.Info("Segment SQL generated",
		zap.String("anchor_date", anchor.Format("2006-01-02")),
		zap.Int("sql_length", len(sqlQuery)))
	return sqlQuery, nil
}

func (s *translatorService) runSQLTool() llm.ToolDefinition {
	return llm.NewToolDefinition(
		"run_sql",
		fmt.Sprintf("Execute a single read-only MySQL SELECT statement against the CRM database and return the rows as JSON. Only these tables are available: %s.", strings.Join(s.tables, ", ")),
		map[string]llm.ParameterProperty{
			"query": {
				Type:        "string",
				Description: "One MySQL SELECT statement. No semicolons, no DDL/DML.",
			},
		},
		[]string{"query"},
	)
}

func (s *translatorService) toolExecutor() llm.ToolExecutor {
	return &sqlToolExecutor{executor: s.executor, logger: s.logger}
}

// sqlToolExecutor handles run_sql tool calls from the model. Statements are
// sanitized and guarded before touching the store; failures are reported back
// to the model as tool results rather than aborting the answer.
type sqlToolExecutor struct {
	executor datasource.Executor
	logger   *zap.Logger
}

func (t *sqlToolExecutor) ExecuteTool(ctx context.Context, name string, arguments string) (string, error) {
	if name != "run_sql" {
		return "", fmt.Errorf("unknown tool: %s", name)
	}
	observability.IncrementToolCall()

	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("invalid tool arguments: %w", err)
	}

	sqlQuery := crmsql.Sanitize(args.Query)
	if err := crmsql.ValidateSingleStatement(sqlQuery); err != nil {
		return "", err
	}
	if !isReadOnlyStatement(sqlQuery) {
		return "", fmt.Errorf("only SELECT statements are allowed")
	}

	result, err := t.executor.Query(ctx, sqlQuery, toolQueryLimit)
	if err != nil {
		return "", err
	}

	t.logger.Debug("run_sql executed",
		zap.Int("row_count", result.RowCount))

	payload, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to encode tool result: %w", err)
	}
	return string(payload), nil
}

// isReadOnlyStatement reports whether the statement begins with SELECT or a
// WITH clause. Deeper guarantees come from the bounded derived-table wrapper.
func isReadOnlyStatement(sqlQuery string) bool {
	head := strings.ToUpper(strings.TrimSpace(sqlQuery))
	return strings.HasPrefix(head, "SELECT") || strings.HasPrefix(head, "WITH")
}
