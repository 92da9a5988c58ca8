package datasource

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/clonecrm/crm-engine/pkg/logging"
	crmsql "github.com/clonecrm/crm-engine/pkg/sql"
)

// MySQLExecutor provides MySQL query execution.
type MySQLExecutor struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMySQLExecutor creates a MySQL query executor over an existing pool.
func NewMySQLExecutor(db *sql.DB, logger *zap.Logger) *MySQLExecutor {
	return &MySQLExecutor{
		db:     db,
		logger: logger.Named("datasource"),
	}
}

// Query runs a SELECT statement and returns bounded results.
// See Executor.Query for limit behavior.
func (e *MySQLExecutor) Query(ctx context.Context, sqlQuery string, limit int) (*QueryResult, error) {
	effectiveLimit := limit
	if effectiveLimit <= 0 || effectiveLimit > MaxQueryLimit {
		effectiveLimit = MaxQueryLimit
	}
	queryToRun := fmt.Sprintf("SELECT * FROM (%s) AS _limited LIMIT %d", sqlQuery, effectiveLimit)

	rows, err := e.db.QueryContext(ctx, queryToRun)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	return collectRows(rows)
}

// Execute runs a SELECT statement without a row bound. Segment SQL defines a
// population, so truncating it would silently change the segment.
func (e *MySQLExecutor) Execute(ctx context.Context, sqlQuery string) (*QueryResult, error) {
	rows, err := e.db.QueryContext(ctx, sqlQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	result, err := collectRows(rows)
	if err != nil {
		return nil, err
	}

	e.logger.Info("Query executed",
		zap.String("sql", logging.SanitizeQuery(sqlQuery)),
		zap.Int("row_count", result.RowCount))
	return result, nil
}

// QueryWithParams runs a parameterized SELECT using ? placeholders. Used for
// lookups keyed on caller-supplied values, which never get interpolated.
func (e *MySQLExecutor) QueryWithParams(ctx context.Context, sqlQuery string, params ...any) (*QueryResult, error) {
	rows, err := e.db.QueryContext(ctx, sqlQuery, params...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute parameterized query: %w", err)
	}
	defer rows.Close()

	return collectRows(rows)
}

// ValidateSelect probe-executes sqlQuery as a derived table fetching at most
// one row. This catches syntax errors, unknown columns, and unknown tables
// against the live schema without reading the full result set.
func (e *MySQLExecutor) ValidateSelect(ctx context.Context, sqlQuery string) error {
	probeSQL := fmt.Sprintf("SELECT * FROM (%s) AS probe LIMIT 1", sqlQuery)

	rows, err := e.db.QueryContext(ctx, probeSQL)
	if err != nil {
		e.logger.Warn("SQL validation failed",
			zap.String("sql", logging.SanitizeQuery(sqlQuery)),
			zap.String("error", logging.SanitizeError(err)))
		return fmt.Errorf("probe execution failed: %w", err)
	}
	defer rows.Close()

	// Drain so driver-level errors surface.
	for rows.Next() {
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("probe execution failed: %w", err)
	}

	e.logger.Debug("SQL validation successful")
	return nil
}

// CreateOrReplaceView materializes selectSQL under viewName. The name is
// re-validated here because it ends up interpolated into DDL; only
// SegmentViewName-shaped identifiers pass.
func (e *MySQLExecutor) CreateOrReplaceView(ctx context.Context, viewName, selectSQL string) error {
	if err := crmsql.ValidateViewName(viewName); err != nil {
		return err
	}

	ddl := fmt.Sprintf("CREATE OR REPLACE VIEW `%s` AS %s", viewName, selectSQL)
	if _, err := e.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create view %s: %w", viewName, err)
	}

	e.logger.Info("Created view", zap.String("view_name", viewName))
	return nil
}

// ExecuteView reads all rows from a segment view.
func (e *MySQLExecutor) ExecuteView(ctx context.Context, viewName string) (*QueryResult, error) {
	if err := crmsql.ValidateViewName(viewName); err != nil {
		return nil, err
	}

	rows, err := e.db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM `%s`", viewName))
	if err != nil {
		return nil, fmt.Errorf("failed to execute view %s: %w", viewName, err)
	}
	defer rows.Close()

	result, err := collectRows(rows)
	if err != nil {
		return nil, err
	}

	e.logger.Info("View executed",
		zap.String("view_name", viewName),
		zap.Int("row_count", result.RowCount))
	return result, nil
}

// collectRows materializes a result set as column-ordered maps. The MySQL
// driver returns text columns as []byte; those are converted to string so
// JSON encoding produces text instead of base64.
func collectRows(rows *sql.Rows) (*QueryResult, error) {
	columnNames, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	resultRows := make([]map[string]any, 0)
	for rows.Next() {
		values := make([]any, len(columnNames))
		valuePtrs := make([]any, len(columnNames))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		rowMap := make(map[string]any)
		for i, col := range columnNames {
			val := values[i]
			if b, ok := val.([]byte); ok {
				val = string(b)
			}
			rowMap[col] = val
		}
		resultRows = append(resultRows, rowMap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return &QueryResult{
		Columns:  columnNames,
		Rows:     resultRows,
		RowCount: len(resultRows),
	}, nil
}

// Ensure MySQLExecutor implements Executor at compile time.
var _ Executor = (*MySQLExecutor)(nil)
