package middleware

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/LibraryGo/pkg/logger"
)

// OperationHeader lets clients name the GraphQL operation for log correlation
// before the body is parsed.
const OperationHeader = "X-Operation-Name"

// RequestLogger stores a request-scoped logger in the context, enriched with
// correlation_id, operation, trace_id and span_id. Handlers fetch it with
// logger.FromContext.
//
// Mount it after RequestLogging and Tracing so both IDs are present.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if op := r.Header.Get(OperationHeader); op != "" && logger.OperationFromContext(ctx) == "" {
				ctx = logger.WithOperation(ctx, op)
			}

			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
