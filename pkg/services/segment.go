package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/clonecrm/crm-engine/pkg/apperrors"
	"github.com/clonecrm/crm-engine/pkg/datasource"
	"github.com/clonecrm/crm-engine/pkg/llm"
	"github.com/clonecrm/crm-engine/pkg/logging"
	"github.com/clonecrm/crm-engine/pkg/observability"
	"github.com/clonecrm/crm-engine/pkg/prompts"
	crmsql "github.com/clonecrm/crm-engine/pkg/sql"
)

// fallbackNameLimit caps the segment name when metadata generation fails and
// the description itself is used as the name.
const fallbackNameLimit = 50

// SegmentManifest describes a materialized segment view.
type SegmentManifest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	SQL         string `json:"sql"`
	ViewName    string `json:"viewName"`
}

// GeneratedSegment is the one-shot generation result: a name and the SQL,
// without any database-side validation or materialization.
type GeneratedSegment struct {
	Name string `json:"name"`
	SQL  string `json:"sql"`
}

// segmentMetadata is the JSON contract of the naming completion.
type segmentMetadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SegmentService builds, refreshes, and reads customer segments. A segment is
// persisted solely as a database view named segment_<uuid>; there is no
// in-memory registry.
type SegmentService interface {
	// Create runs the full pipeline for a segment: generate SQL from the
	// description, sanitize it, probe-validate it, name it, and materialize
	// it as a view. currentDate (YYYY-MM-DD) anchors date arithmetic.
	Create(ctx context.Context, segmentID, description, currentDate string) (*SegmentManifest, error)

	// Refresh re-runs the full pipeline under the same identifier so
	// hardcoded dates in the view definition move forward. The previous view
	// body is replaced in place.
	Refresh(ctx context.Context, segmentID, originalDescription, currentDate string) (*SegmentManifest, error)

	// Generate produces a name and SQL from a description in a single model
	// call, without touching the database.
	Generate(ctx context.Context, description string) (*GeneratedSegment, error)

	// ExecuteSQL runs caller-supplied segment SQL and returns all rows.
	ExecuteSQL(ctx context.Context, sqlQuery string) (*datasource.QueryResult, error)

	// ExecuteView reads all rows from a segment view.
	ExecuteView(ctx context.Context, viewName string) (*datasource.QueryResult, error)
}

type segmentService struct {
	translator TranslatorService
	llmClient  llm.Client
	executor   datasource.Executor
	logger     *zap.Logger
}

// NewSegmentService creates a segment service with dependencies.
func NewSegmentService(translator TranslatorService, llmClient llm.Client, executor datasource.Executor, logger *zap.Logger) SegmentService {
	return &segmentService{
		translator: translator,
		llmClient:  llmClient,
		executor:   executor,
		logger:     logger.Named("segment"),
	}
}

func (s *segmentService) Create(ctx context.Context, segmentID, description, currentDate string) (*SegmentManifest, error) {
	manifest, err := s.create(ctx, segmentID, description, currentDate)
	observability.ObserveSegmentPipeline("create", outcomeOf(err))
	return manifest, err
}

func (s *segmentService) create(ctx context.Context, segmentID, description, currentDate string) (*SegmentManifest, error) {
	viewName, err := crmsql.SegmentViewName(segmentID)
	if err != nil {
		return nil, apperrors.InvalidSQL("segment id must be a UUID", err)
	}

	if result := crmsql.CheckDescriptionForInjection(description); result != nil {
		s.logger.Warn("Injection pattern in segment description",
			zap.String("fingerprint", result.Fingerprint))
		return nil, apperrors.Generation("description contains a SQL injection pattern", nil)
	}

	s.logger.Info("Creating segment view",
		zap.String("segment_id", segmentID),
		zap.String("current_date", currentDate))

	// GENERATE + SANITIZE
	sqlQuery, err := s.translator.GenerateSegmentSQL(ctx, description, currentDate)
	if err != nil {
		return nil, err
	}

	// VALIDATE: structural guard, then probe execution against the live schema.
	if err := crmsql.ValidateSingleStatement(sqlQuery); err != nil {
		return nil, apperrors.InvalidSQL("Query SQL tidak valid", err)
	}
	if err := s.executor.ValidateSelect(ctx, sqlQuery); err != nil {
		return nil, apperrors.InvalidSQL("Query SQL tidak valid", err)
	}

	// NAME: a failed naming call degrades to the description, never fails
	// the pipeline.
	name, segmentDescription := s.generateMetadata(ctx, description, sqlQuery)

	// MATERIALIZE
	if err := s.executor.CreateOrReplaceView(ctx, viewName, sqlQuery); err != nil {
		return nil, apperrors.ViewCreation("Gagal membuat VIEW di database", err)
	}

	s.logger.Info("Segment view created",
		zap.String("view_name", viewName),
		zap.String("name", name),
		zap.String("sql", logging.SanitizeQuery(sqlQuery)))

	return &SegmentManifest{
		Name:        name,
		Description: segmentDescription,
		SQL:         sqlQuery,
		ViewName:    viewName,
	}, nil
}

func (s *segmentService) Refresh(ctx context.Context, segmentID, originalDescription, currentDate string) (*SegmentManifest, error) {
	s.logger.Info("Refreshing segment view", zap.String("segment_id", segmentID))

	manifest, err := s.create(ctx, segmentID, originalDescription, currentDate)
	observability.ObserveSegmentPipeline("refresh", outcomeOf(err))
	return manifest, err
}

func (s *segmentService) Generate(ctx context.Context, description string) (*GeneratedSegment, error) {
	generated, err := s.generate(ctx, description)
	observability.ObserveSegmentPipeline("generate", outcomeOf(err))
	return generated, err
}

func (s *segmentService) generate(ctx context.Context, description string) (*GeneratedSegment, error) {
	if result := crmsql.CheckDescriptionForInjection(description); result != nil {
		s.logger.Warn("Injection pattern in segment description",
			zap.String("fingerprint", result.Fingerprint))
		return nil, apperrors.Generation("description contains a SQL injection pattern", nil)
	}

	raw, err := s.llmClient.Complete(ctx, prompts.BuildSegmentGeneratePrompt(description), 0)
	if err != nil {
		return nil, apperrors.Generation("failed to generate segment", err)
	}

	generated, err := llm.ParseJSONResponse[GeneratedSegment](raw)
	if err != nil {
		return nil, apperrors.Generation("model returned unparseable segment JSON", err)
	}

	generated.SQL = crmsql.Sanitize(generated.SQL)
	if generated.SQL == "" {
		return nil, apperrors.Generation("model returned empty SQL", nil)
	}

	return &generated, nil
}

func (s *segmentService) ExecuteSQL(ctx context.Context, sqlQuery string) (*datasource.QueryResult, error) {
	cleaned := crmsql.Sanitize(sqlQuery)
	if err := crmsql.ValidateSingleStatement(cleaned); err != nil {
		return nil, apperrors.InvalidSQL("Query SQL tidak valid", err)
	}

	result, err := s.executor.Execute(ctx, cleaned)
	if err != nil {
		return nil, apperrors.Execution("failed to execute segment SQL", err)
	}
	return result, nil
}

func (s *segmentService) ExecuteView(ctx context.Context, viewName string) (*datasource.QueryResult, error) {
	if err := crmsql.ValidateViewName(viewName); err != nil {
		return nil, apperrors.InvalidSQL("invalid view name", err)
	}

	result, err := s.executor.ExecuteView(ctx, viewName)
	if err != nil {
		return nil, apperrors.Execution("Gagal mengeksekusi VIEW", err)
	}
	return result, nil
}

// generateMetadata names a validated segment. On any failure the description
// is reused: truncated to fallbackNameLimit for the name, verbatim for the
// description.
func (s *segmentService) generateMetadata(ctx context.Context, description, sqlQuery string) (string, string) {
	raw, err := s.llmClient.Complete(ctx, prompts.BuildSegmentMetadataPrompt(description, sqlQuery), 0)
	if err == nil {
		if metadata, parseErr := llm.ParseJSONResponse[segmentMetadata](raw); parseErr == nil && metadata.Name != "" {
			segmentDescription := metadata.Description
			if segmentDescription == "" {
				segmentDescription = description
			}
			return metadata.Name, segmentDescription
		}
		err = apperrors.Generation("unparseable metadata JSON", nil)
	}

	s.logger.Warn("Failed to generate segment metadata, using fallback", zap.Error(err))

	name := description
	if runes := []rune(name); len(runes) > fallbackNameLimit {
		name = string(runes[:fallbackNameLimit])
	}
	return name, description
}

// outcomeOf maps an error to a metric label: "ok" or the error kind.
func outcomeOf(err error) string {
	if err == nil {
		return "ok"
	}
	return string(apperrors.KindOf(err))
}
