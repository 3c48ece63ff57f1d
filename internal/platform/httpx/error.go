package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/familyjustice/orders-api/internal/platform/requestctx"
)

// Error is the canonical JSON error envelope returned by the API. Recoverable
// domain errors are rendered as validation messages through this shape; raw
// internal errors are never shown to end users.
type Error struct {
	Code      string
	Message   string
	Status    int
	RequestID string
	TraceID   string
	Errors    []string
}

// NewError constructs an Error with the given code, message and HTTP status.
func NewError(code, message string, status int) Error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return Error{
		Code:    clamp(code, 80),
		Message: clamp(message, 512),
		Status:  status,
	}
}

// WithValidationErrors attaches user-facing validation messages.
func (e Error) WithValidationErrors(messages ...string) Error {
	for _, msg := range messages {
		if msg = clamp(msg, 512); msg != "" {
			e.Errors = append(e.Errors, msg)
		}
	}
	return e
}

// WriteError writes the structured error as JSON.
func WriteError(ctx context.Context, w http.ResponseWriter, err Error) {
	status := err.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}

	payload := map[string]any{
		"error":   err.Code,
		"message": err.Message,
		"status":  status,
	}
	if requestID := clamp(middleware.GetReqID(ctx), 80); requestID != "" {
		payload["request_id"] = requestID
	}
	if traceID := clamp(requestctx.TraceID(ctx), 64); traceID != "" {
		payload["trace_id"] = traceID
	}
	if len(err.Errors) > 0 {
		payload["errors"] = err.Errors
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func clamp(value string, limit int) string {
	value = strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(value, "\n", " "), "\r", " "))
	if len(value) > limit {
		value = value[:limit]
	}
	return value
}
