package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/clonecrm/crm-engine/pkg/services"
)

// SegmentGenerateRequest asks for a one-shot segment preview.
type SegmentGenerateRequest struct {
	Description string `json:"description"`
}

// SegmentExecuteRequest runs caller-supplied segment SQL.
type SegmentExecuteRequest struct {
	SQL string `json:"sql"`
}

// SegmentCreateRequest materializes a segment view.
type SegmentCreateRequest struct {
	SegmentID   string `json:"segmentId"`
	Description string `json:"description"`
	CurrentDate string `json:"currentDate"`
}

// SegmentRefreshRequest re-runs the pipeline for an existing segment.
type SegmentRefreshRequest struct {
	OriginalDescription string `json:"originalDescription"`
	CurrentDate         string `json:"currentDate"`
}

// SegmentExecuteViewRequest reads a materialized segment view.
type SegmentExecuteViewRequest struct {
	ViewName string `json:"viewName"`
}

// SegmentCustomersResponse carries the rows of a segment execution.
type SegmentCustomersResponse struct {
	Customers []map[string]any `json:"customers"`
	Count     int              `json:"count"`
}

// SegmentHandler serves the segment endpoints.
type SegmentHandler struct {
	segments services.SegmentService
	logger   *zap.Logger
}

// NewSegmentHandler creates a new SegmentHandler.
func NewSegmentHandler(segments services.SegmentService, logger *zap.Logger) *SegmentHandler {
	return &SegmentHandler{segments: segments, logger: logger}
}

// RegisterRoutes registers the segment routes on the given mux.
func (h *SegmentHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/segments/generate", h.Generate)
	mux.HandleFunc("POST /api/segments/execute", h.Execute)
	mux.HandleFunc("POST /api/segments/create", h.Create)
	mux.HandleFunc("POST /api/segments/{id}/refresh", h.Refresh)
	mux.HandleFunc("POST /api/segments/execute-view", h.ExecuteView)
}

// Generate handles POST /api/segments/generate.
func (h *SegmentHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req SegmentGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Description == "" {
		ErrorResponse(w, http.StatusBadRequest, "invalid_request", "description is required")
		return
	}

	generated, err := h.segments.Generate(r.Context(), req.Description)
	if err != nil {
		h.logger.Error("Segment generation error", zap.Error(err))
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, generated)
}

// Execute handles POST /api/segments/execute.
func (h *SegmentHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req SegmentExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SQL == "" {
		ErrorResponse(w, http.StatusBadRequest, "invalid_request", "sql is required")
		return
	}

	result, err := h.segments.ExecuteSQL(r.Context(), req.SQL)
	if err != nil {
		h.logger.Error("Segment execution error", zap.Error(err))
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, SegmentCustomersResponse{
		Customers: result.Rows,
		Count:     result.RowCount,
	})
}

// Create handles POST /api/segments/create.
func (h *SegmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req SegmentCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.SegmentID == "" || req.Description == "" {
		ErrorResponse(w, http.StatusBadRequest, "invalid_request", "segmentId and description are required")
		return
	}

	manifest, err := h.segments.Create(r.Context(), req.SegmentID, req.Description, req.CurrentDate)
	if err != nil {
		h.logger.Error("Segment creation error", zap.Error(err))
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, manifest)
}

// Refresh handles POST /api/segments/{id}/refresh.
func (h *SegmentHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	segmentID := r.PathValue("id")

	var req SegmentRefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OriginalDescription == "" {
		ErrorResponse(w, http.StatusBadRequest, "invalid_request", "originalDescription is required")
		return
	}

	manifest, err := h.segments.Refresh(r.Context(), segmentID, req.OriginalDescription, req.CurrentDate)
	if err != nil {
		h.logger.Error("Segment refresh error", zap.Error(err))
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, manifest)
}

// ExecuteView handles POST /api/segments/execute-view.
func (h *SegmentHandler) ExecuteView(w http.ResponseWriter, r *http.Request) {
	var req SegmentExecuteViewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ViewName == "" {
		ErrorResponse(w, http.StatusBadRequest, "invalid_request", "viewName is required")
		return
	}

	result, err := h.segments.ExecuteView(r.Context(), req.ViewName)
	if err != nil {
		h.logger.Error("View execution error", zap.Error(err))
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, SegmentCustomersResponse{
		Customers: result.Rows,
		Count:     result.RowCount,
	})
}
