package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"
)

// HealthChecker verifies the backing store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthResponse reports service and database status.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	db     HealthChecker
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db HealthChecker, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

// RegisterRoutes registers the health handler's routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
}

// Health handles GET /health requests. A failing database check still returns
// 200 so load balancers can read the body; the status field carries the truth.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "healthy", Database: "connected"}
	if err := h.db.HealthCheck(r.Context()); err != nil {
		h.logger.Error("Health check failed", zap.Error(err))
		resp = HealthResponse{Status: "unhealthy", Database: "disconnected"}
	}
	WriteJSON(w, http.StatusOK, resp)
}
