package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/clonecrm/crm-engine/pkg/services"
)

// CustomerHandler serves customer lookup and personality endpoints.
type CustomerHandler struct {
	customers services.CustomerService
	logger    *zap.Logger
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(customers services.CustomerService, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{customers: customers, logger: logger}
}

// RegisterRoutes registers the customer routes on the given mux.
func (h *CustomerHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/customer/{id}", h.Get)
	mux.HandleFunc("POST /api/customer/{id}/personality", h.GeneratePersonality)
}

// Get handles GET /api/customer/{id}. Returns the joined customer record,
// 404 when the id matches no row.
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	customerID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid_request", "customer id must be an integer")
		return
	}

	customer, err := h.customers.GetByID(r.Context(), customerID)
	if err != nil {
		h.logger.Error("Customer fetch error", zap.Int64("customer_id", customerID), zap.Error(err))
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, customer)
}

// GeneratePersonality handles POST /api/customer/{id}/personality. The body
// carries the customer record with transaction history; fields are passed to
// the model as-is, so the schema is open-ended.
func (h *CustomerHandler) GeneratePersonality(w http.ResponseWriter, r *http.Request) {
	customerID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid_request", "customer id must be an integer")
		return
	}

	customerData := make(map[string]any)
	if err := json.NewDecoder(r.Body).Decode(&customerData); err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	customerData["custid"] = customerID

	personality, err := h.customers.GeneratePersonality(r.Context(), customerData)
	if err != nil {
		h.logger.Error("Personality generation error", zap.Int64("customer_id", customerID), zap.Error(err))
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, personality)
}
