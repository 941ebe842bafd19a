package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/acadrisk/acadrisk/internal/application/usecase"
	"github.com/acadrisk/acadrisk/internal/domain/port"
	"github.com/acadrisk/acadrisk/internal/domain/service"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, detail string) {
	writeJSON(w, code, ErrorResponse{Detail: detail})
}

// statusFor maps use case errors to HTTP status codes. Schema mismatch is
// checked first since it can also surface through a failed batch.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidBody), errors.Is(err, usecase.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrSchemaMismatch):
		return http.StatusServiceUnavailable
	case errors.Is(err, service.ErrInferenceFailure):
		return http.StatusUnprocessableEntity
	case errors.Is(err, port.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// detailFor hides internal error text behind a generic message.
func detailFor(code int, err error) string {
	if code == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}

// failRequest logs a failed request and writes the mapped error response.
// Server errors are logged at error level, client errors at info.
func failRequest(w http.ResponseWriter, r *http.Request, logger *slog.Logger, msg string, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), msg, "path", r.URL.Path, "error", err)
	} else {
		logger.InfoContext(r.Context(), msg, "path", r.URL.Path, "status", code, "error", err)
	}
	writeError(w, code, detailFor(code, err))
}
