package datasource

import "context"

// MaxQueryLimit is the hard cap on rows returned by Query.
// This protects against unbounded queries that could crash the server.
const MaxQueryLimit = 1000

// QueryResult contains the results of a SQL query execution.
type QueryResult struct {
	Columns  []string         `json:"columns"`
	Rows     []map[string]any `json:"rows"`
	RowCount int              `json:"row_count"`
}

// Executor executes SQL against the CRM store.
// Provides two access patterns:
//   - Query: bounded SELECT, always wrapped with a LIMIT (for LLM tool calls)
//   - Execute: unbounded SELECT (for segment SQL and view reads)
type Executor interface {
	// Query runs a SELECT statement wrapped as
	// SELECT * FROM (query) AS _limited LIMIT n. Limits <= 0 or above
	// MaxQueryLimit are clamped to MaxQueryLimit.
	Query(ctx context.Context, sqlQuery string, limit int) (*QueryResult, error)

	// Execute runs a SELECT statement without a row bound.
	Execute(ctx context.Context, sqlQuery string) (*QueryResult, error)

	// QueryWithParams runs a parameterized SELECT using ? placeholders.
	QueryWithParams(ctx context.Context, sqlQuery string, params ...any) (*QueryResult, error)

	// ValidateSelect probe-executes sqlQuery as a derived table fetching at
	// most one row. A nil return means the statement is executable against
	// the live schema.
	ValidateSelect(ctx context.Context, sqlQuery string) error

	// CreateOrReplaceView materializes selectSQL under viewName, replacing
	// any previous definition. The view name must have been produced by
	// SegmentViewName; arbitrary names are rejected.
	CreateOrReplaceView(ctx context.Context, viewName, selectSQL string) error

	// ExecuteView reads all rows from a segment view.
	ExecuteView(ctx context.Context, viewName string) (*QueryResult, error)
}
