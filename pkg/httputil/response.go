package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/utafrali/LibraryGo/pkg/errors"
	"github.com/utafrali/LibraryGo/pkg/logger"
	"github.com/utafrali/LibraryGo/pkg/validator"
)

// ErrorBody is the JSON envelope for transport-level errors, i.e. failures
// that happen before a GraphQL document can be executed.
type ErrorBody struct {
	Error ErrorResponse `json:"error"`
}

// ErrorResponse describes a single transport-level error.
type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// statusCodes names bare sentinel errors that carry no code of their own.
var statusCodes = map[int]string{
	http.StatusNotFound:           "NOT_FOUND",
	http.StatusConflict:           "ALREADY_EXISTS",
	http.StatusBadRequest:         "INVALID_INPUT",
	http.StatusTooManyRequests:    "RATE_LIMITED",
	http.StatusServiceUnavailable: "SERVICE_UNAVAILABLE",
}

// WriteJSON writes v as JSON with the given status code. Encoding errors are
// dropped because the header is already on the wire.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps err to a status and code and writes the error envelope.
// Validation errors carry their field messages. Internal errors are logged
// with the request-scoped logger and reported with a generic message.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		l = fallback
	}
	resp := ErrorResponse{RequestID: logger.CorrelationIDFromContext(r.Context())}

	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		resp.Code = "VALIDATION_ERROR"
		resp.Message = "request validation failed"
		resp.Fields = valErr.Fields()
		WriteJSON(w, http.StatusBadRequest, ErrorBody{Error: resp})
		return
	}

	status := apperrors.HTTPStatus(err)
	resp.Code = apperrors.CodeOf(err)
	if resp.Code == "INTERNAL_ERROR" {
		if code, ok := statusCodes[status]; ok {
			resp.Code = code
		}
	}

	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		resp.Message = appErr.Message
	case status == http.StatusInternalServerError:
		resp.Message = "an internal error occurred"
	default:
		resp.Message = err.Error()
	}

	if status >= http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "request failed",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	WriteJSON(w, status, ErrorBody{Error: resp})
}
