package graphql

import (
	"context"
	"errors"
	"log/slog"

	"github.com/utafrali/LibraryGo/pkg/logger"
	"github.com/utafrali/LibraryGo/pkg/validator"
)

// Codes for failures that carry no domain code of their own.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeInternal   = "INTERNAL_ERROR"
)

// Error is a resolver error whose code and details are reported under the
// GraphQL "extensions" key.
type Error struct {
	Message string
	Code    string
	Details map[string]any
}

func (e *Error) Error() string { return e.Message }

// Extensions implements gqlerrors.ExtendedError.
func (e *Error) Extensions() map[string]any {
	ext := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		ext[k] = v
	}
	ext["code"] = e.Code
	return ext
}

// domainError is implemented by the typed errors of the domain package.
type domainError interface {
	error
	Code() string
	Details() map[string]any
}

// toError maps err to an *Error. Unknown errors are logged with the request
// logger and reported with a generic message.
func (r *Resolver) toError(ctx context.Context, err error) error {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		return &Error{
			Message: "input validation failed",
			Code:    CodeValidation,
			Details: map[string]any{"fields": valErr.Fields()},
		}
	}

	var de domainError
	if errors.As(err, &de) {
		return &Error{Message: de.Error(), Code: de.Code(), Details: de.Details()}
	}

	l := logger.WithContext(ctx, r.logger)
	l.ErrorContext(ctx, "graphql resolver failed",
		slog.String("operation", logger.OperationFromContext(ctx)),
		slog.String("error", err.Error()),
	)
	return &Error{Message: "internal server error", Code: CodeInternal}
}
