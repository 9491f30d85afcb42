package httpapi

import (
	"encoding/json"
	"net/http"
)

// APIError is a structured error body.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return e.Message
}

// ToJSON renders {"success": false, "error": {...}}.
func (e *APIError) ToJSON() []byte {
	data, _ := json.Marshal(map[string]any{
		"success": false,
		"error":   e,
	})
	return data
}

func badRequest(message string) *APIError {
	return &APIError{StatusCode: http.StatusBadRequest, Code: "BAD_REQUEST", Message: message}
}

func unauthorized(message string) *APIError {
	if message == "" {
		message = "Authentication required"
	}
	return &APIError{StatusCode: http.StatusUnauthorized, Code: "UNAUTHORIZED", Message: message}
}

func internalError(message string) *APIError {
	if message == "" {
		message = "An unexpected error occurred"
	}
	return &APIError{StatusCode: http.StatusInternalServerError, Code: "INTERNAL_ERROR", Message: message}
}

func serviceUnavailable(message string) *APIError {
	if message == "" {
		message = "Service temporarily unavailable"
	}
	return &APIError{StatusCode: http.StatusServiceUnavailable, Code: "SERVICE_UNAVAILABLE", Message: message}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, err *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	_, _ = w.Write(err.ToJSON())
}
