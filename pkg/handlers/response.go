package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/clonecrm/crm-engine/pkg/apperrors"
)

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// writeServiceError maps a service error to an HTTP response. The error kind,
// never its message text, picks the status.
func writeServiceError(w http.ResponseWriter, err error) {
	kind := apperrors.KindOf(err)
	ErrorResponse(w, statusForKind(kind), string(kind), apperrors.DetailOf(err))
}

func statusForKind(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindGeneration, apperrors.KindInvalidSQL:
		return http.StatusBadRequest
	case apperrors.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
