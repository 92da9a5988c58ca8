package services

import (
	"context"

	"github.com/clonecrm/crm-engine/pkg/datasource"
)

// mockExecutor is a configurable datasource.Executor for service tests.
// Set the function fields to control behavior.
type mockExecutor struct {
	QueryFunc               func(ctx context.Context, sqlQuery string, limit int) (*datasource.QueryResult, error)
	ExecuteFunc             func(ctx context.Context, sqlQuery string) (*datasource.QueryResult, error)
	QueryWithParamsFunc     func(ctx context.Context, sqlQuery string, params ...any) (*datasource.QueryResult, error)
	ValidateSelectFunc      func(ctx context.Context, sqlQuery string) error
	CreateOrReplaceViewFunc func(ctx context.Context, viewName, selectSQL string) error
	ExecuteViewFunc         func(ctx context.Context, viewName string) (*datasource.QueryResult, error)

	QueryCalls          int
	ExecuteCalls        int
	ValidateSelectCalls int
	CreateViewCalls     int
	ExecuteViewCalls    int

	// CreatedViews records (viewName, selectSQL) pairs passed to
	// CreateOrReplaceView, in order.
	CreatedViews [][2]string
}

func (m *mockExecutor) Query(ctx context.Context, sqlQuery string, limit int) (*datasource.QueryResult, error) {
	m.QueryCalls++
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, sqlQuery, limit)
	}
	return &datasource.QueryResult{Rows: []map[string]any{}}, nil
}

func (m *mockExecutor) Execute(ctx context.Context, sqlQuery string) (*datasource.QueryResult, error) {
	m.ExecuteCalls++
	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, sqlQuery)
	}
	return &datasource.QueryResult{Rows: []map[string]any{}}, nil
}

func (m *mockExecutor) QueryWithParams(ctx context.Context, sqlQuery string, params ...any) (*datasource.QueryResult, error) {
	if m.QueryWithParamsFunc != nil {
		return m.QueryWithParamsFunc(ctx, sqlQuery, params...)
	}
	return &datasource.QueryResult{Rows: []map[string]any{}}, nil
}

func (m *mockExecutor) ValidateSelect(ctx context.Context, sqlQuery string) error {
	m.ValidateSelectCalls++
	if m.ValidateSelectFunc != nil {
		return m.ValidateSelectFunc(ctx, sqlQuery)
	}
	return nil
}

func (m *mockExecutor) CreateOrReplaceView(ctx context.Context, viewName, selectSQL string) error {
	m.CreateViewCalls++
	m.CreatedViews = append(m.CreatedViews, [2]string{viewName, selectSQL})
	if m.CreateOrReplaceViewFunc != nil {
		return m.CreateOrReplaceViewFunc(ctx, viewName, selectSQL)
	}
	return nil
}

func (m *mockExecutor) ExecuteView(ctx context.Context, viewName string) (*datasource.QueryResult, error) {
	m.ExecuteViewCalls++
	if m.ExecuteViewFunc != nil {
		return m.ExecuteViewFunc(ctx, viewName)
	}
	return &datasource.QueryResult{Rows: []map[string]any{}}, nil
}

var _ datasource.Executor = (*mockExecutor)(nil)
