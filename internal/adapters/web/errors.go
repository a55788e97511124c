package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"warehouse-backend/internal/core"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Field     string `json:"field,omitempty"`
	Entity    string `json:"entity,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	writeErrorResponse(w, r, errorResponse{Error: message, Code: code}, status)
}

func writeErrorResponse(w http.ResponseWriter, r *http.Request, resp errorResponse, status int) {
	resp.RequestID = requestIDFromContext(r.Context())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// statusFor maps an error kind to its HTTP status.
func statusFor(kind core.Kind, retryable bool) int {
	switch kind {
	case core.KindNotFound:
		return http.StatusNotFound
	case core.KindValidation:
		return http.StatusBadRequest
	case core.KindDomain:
		return http.StatusUnprocessableEntity
	case core.KindConflict:
		return http.StatusConflict
	}
	if retryable {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeCoreError writes err with the status of its kind. Store failures are
// logged in full and reported without driver detail.
func writeCoreError(w http.ResponseWriter, r *http.Request, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
		return
	}

	resp := errorResponse{Error: err.Error(), Code: string(core.KindOf(err)), Retryable: core.IsRetryable(err)}
	var cerr *core.Error
	if errors.As(err, &cerr) {
		resp.Field = cerr.Field
		resp.Entity = cerr.Entity
	}
	status := statusFor(core.KindOf(err), resp.Retryable)
	if status >= http.StatusInternalServerError {
		loggerFrom(r).Error().Err(err).Msg("request failed")
		resp.Error = "internal store failure"
		if resp.Retryable {
			resp.Error = "store temporarily unavailable, retry"
		}
	}
	writeErrorResponse(w, r, resp, status)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
