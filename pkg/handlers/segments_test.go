package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clonecrm/crm-engine/pkg/apperrors"
	"github.com/clonecrm/crm-engine/pkg/datasource"
	"github.com/clonecrm/crm-engine/pkg/services"
)

func newSegmentMux(segments *mockSegments) *http.ServeMux {
	mux := http.NewServeMux()
	NewSegmentHandler(segments, zap.NewNop()).RegisterRoutes(mux)
	return mux
}

func postJSON(t *testing.T, mux *http.ServeMux, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestSegmentCreateEndpoint(t *testing.T) {
	segments := &mockSegments{
		CreateFunc: func(_ context.Context, segmentID, description, currentDate string) (*services.SegmentManifest, error) {
			assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", segmentID)
			assert.Equal(t, "pelanggan aktif", description)
			assert.Equal(t, "2025-12-28", currentDate)
			return &services.SegmentManifest{
				Name:        "Pelanggan Aktif",
				Description: "Semua pelanggan aktif",
				SQL:         "SELECT c.custid FROM customer c",
				ViewName:    "segment_" + segmentID,
			}, nil
		},
	}
	mux := newSegmentMux(segments)

	rec := postJSON(t, mux, "/api/segments/create", SegmentCreateRequest{
		SegmentID:   "550e8400-e29b-41d4-a716-446655440000",
		Description: "pelanggan aktif",
		CurrentDate: "2025-12-28",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var manifest services.SegmentManifest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &manifest))
	assert.Equal(t, "segment_550e8400-e29b-41d4-a716-446655440000", manifest.ViewName)
}

func TestSegmentCreateEndpoint_StatusByKind(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"generation failure", apperrors.Generation("empty SQL", nil), http.StatusBadRequest},
		{"invalid sql", apperrors.InvalidSQL("Query SQL tidak valid", nil), http.StatusBadRequest},
		{"view creation failure", apperrors.ViewCreation("Gagal membuat VIEW di database", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segments := &mockSegments{
				CreateFunc: func(context.Context, string, string, string) (*services.SegmentManifest, error) {
					return nil, tt.err
				},
			}
			mux := newSegmentMux(segments)

			rec := postJSON(t, mux, "/api/segments/create", SegmentCreateRequest{
				SegmentID:   "550e8400-e29b-41d4-a716-446655440000",
				Description: "pelanggan aktif",
				CurrentDate: "2025-12-28",
			})
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestSegmentCreateEndpoint_MissingFields(t *testing.T) {
	mux := newSegmentMux(&mockSegments{})

	rec := postJSON(t, mux, "/api/segments/create", SegmentCreateRequest{Description: "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSegmentRefreshEndpoint_UsesPathID(t *testing.T) {
	segments := &mockSegments{
		RefreshFunc: func(_ context.Context, segmentID, originalDescription, currentDate string) (*services.SegmentManifest, error) {
			assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", segmentID)
			assert.Equal(t, "pelanggan aktif", originalDescription)
			return &services.SegmentManifest{ViewName: "segment_" + segmentID}, nil
		},
	}
	mux := newSegmentMux(segments)

	rec := postJSON(t, mux, "/api/segments/550e8400-e29b-41d4-a716-446655440000/refresh", SegmentRefreshRequest{
		OriginalDescription: "pelanggan aktif",
		CurrentDate:         "2026-03-01",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSegmentGenerateEndpoint(t *testing.T) {
	segments := &mockSegments{
		GenerateFunc: func(_ context.Context, description string) (*services.GeneratedSegment, error) {
			return &services.GeneratedSegment{Name: "Segmen", SQL: "SELECT 1"}, nil
		},
	}
	mux := newSegmentMux(segments)

	rec := postJSON(t, mux, "/api/segments/generate", SegmentGenerateRequest{Description: "pelanggan aktif"})
	require.Equal(t, http.StatusOK, rec.Code)

	var generated services.GeneratedSegment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &generated))
	assert.Equal(t, "Segmen", generated.Name)
}

func TestSegmentExecuteEndpoint(t *testing.T) {
	segments := &mockSegments{
		ExecuteSQLFunc: func(_ context.Context, sqlQuery string) (*datasource.QueryResult, error) {
			return &datasource.QueryResult{
				Rows:     []map[string]any{{"custid": float64(1)}, {"custid": float64(2)}},
				RowCount: 2,
			}, nil
		},
	}
	mux := newSegmentMux(segments)

	rec := postJSON(t, mux, "/api/segments/execute", SegmentExecuteRequest{SQL: "SELECT custid FROM customer"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SegmentCustomersResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Len(t, resp.Customers, 2)
}

func TestSegmentExecuteViewEndpoint_ErrorStatus(t *testing.T) {
	segments := &mockSegments{
		ExecuteViewFunc: func(context.Context, string) (*datasource.QueryResult, error) {
			return nil, apperrors.Execution("Gagal mengeksekusi VIEW", nil)
		},
	}
	mux := newSegmentMux(segments)

	rec := postJSON(t, mux, "/api/segments/execute-view", SegmentExecuteViewRequest{ViewName: "segment_550e8400-e29b-41d4-a716-446655440000"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
