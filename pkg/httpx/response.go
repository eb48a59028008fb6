package httpx

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the JSON body for every error the service returns.
type ErrorResponse struct {
	Error            string            `json:"error"`
	ErrorDescription string            `json:"error_description,omitempty"`
	Fields           map[string]string `json:"fields,omitempty"`
}

// WriteJSON writes a JSON response with the given status code. It sets
// no-store caching headers since most of what this service returns is
// sensitive.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a structured error body.
func WriteError(w http.ResponseWriter, code int, errCode, description string) {
	WriteJSON(w, code, ErrorResponse{Error: errCode, ErrorDescription: description})
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// Common error bodies used across handlers.

// WriteUnauthorized is the single shape for every authentication failure.
// Expired, malformed and invalid tokens are deliberately indistinguishable
// here so verification diagnostics never cross the trust boundary.
func WriteUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid credentials")
}

// WriteForbidden rejects a valid identity with insufficient privilege.
func WriteForbidden(w http.ResponseWriter) {
	WriteError(w, http.StatusForbidden, "forbidden", "insufficient role")
}

// WriteNotFound reports an absent principal or resource.
func WriteNotFound(w http.ResponseWriter) {
	WriteError(w, http.StatusNotFound, "not_found", "resource not found")
}

// WriteServerError downgrades an unexpected collaborator failure. Detail
// belongs in the server logs, never in the response.
func WriteServerError(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
}
