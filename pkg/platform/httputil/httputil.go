// Package httputil centralizes the JSON response envelope so every handler
// writes the same shape: {"success":true,"data":...} on success and
// {"success":false,"error":{"code":...,"message":...}} on failure.
package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"

	dErrors "driverhub/pkg/domain-errors"
)

type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

// WriteJSON writes a success envelope with the given status and payload.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

// WriteError translates a domain error into the failure envelope. Internal
// errors omit the message so infrastructure details never leak to callers.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(dErrors.ToHTTPStatus(code))
	_ = json.NewEncoder(w).Encode(envelope{
		Success: false,
		Error:   &errorBody{Code: string(code), Message: dErrors.MessageOf(err)},
	})
}

// Decode decodes a JSON request body into T, rejecting unknown fields.
// On failure it writes a bad_request envelope and returns ok=false; the
// handler should simply return.
func Decode[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (T, bool) {
	var payload T
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		if logger != nil {
			logger.WarnContext(r.Context(), "invalid request body", "error", err)
		}
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return payload, false
	}
	return payload, true
}
