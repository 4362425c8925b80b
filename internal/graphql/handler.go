package graphql

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
	"github.com/graphql-go/graphql/language/source"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	apperrors "github.com/utafrali/LibraryGo/pkg/errors"
	"github.com/utafrali/LibraryGo/pkg/httputil"
	"github.com/utafrali/LibraryGo/pkg/logger"
)

// DefaultMaxBodyBytes caps request bodies when no limit is configured.
const DefaultMaxBodyBytes int64 = 1 << 20

// CodeDocumentInvalid marks errors raised before execution: syntax errors,
// unknown fields and bad variables.
const CodeDocumentInvalid = "GRAPHQL_VALIDATION_FAILED"

var (
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphql_operations_total",
			Help: "Total number of GraphQL operations by type and outcome",
		},
		[]string{"type", "status"},
	)

	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "graphql_operation_duration_seconds",
			Help:    "GraphQL operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"type"},
	)
)

// Request is a GraphQL-over-HTTP request document.
type Request struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
	OperationName string         `json:"operationName"`
}

// Handler serves GraphQL requests over HTTP.
type Handler struct {
	schema  graphql.Schema
	svc     Catalog
	maxBody int64
	logger  *slog.Logger
}

// NewHandler creates a GraphQL HTTP handler. A non-positive maxBody uses
// DefaultMaxBodyBytes.
func NewHandler(schema graphql.Schema, svc Catalog, maxBody int64, logger *slog.Logger) *Handler {
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	return &Handler{
		schema:  schema,
		svc:     svc,
		maxBody: maxBody,
		logger:  logger,
	}
}

// ServeHTTP handles POST with a JSON body and GET with query parameters.
// GET only runs queries.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	start := time.Now()
	doc, err := parser.Parse(parser.ParseParams{
		Source: source.NewSource(&source.Source{Body: []byte(req.Query), Name: "GraphQL request"}),
	})
	if err != nil {
		h.respond(w, "unknown", &graphql.Result{Errors: gqlerrors.FormatErrors(err)}, start)
		return
	}

	opType := operationType(doc, req.OperationName)
	if r.Method == http.MethodGet && opType != ast.OperationTypeQuery {
		h.writeError(w, r, apperrors.New(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "only queries may be sent with GET"))
		return
	}

	if vr := graphql.ValidateDocument(&h.schema, doc, nil); !vr.IsValid {
		h.respond(w, opType, &graphql.Result{Errors: vr.Errors}, start)
		return
	}

	ctx := WithLoaders(r.Context(), NewLoaders(h.svc))
	if req.OperationName != "" {
		ctx = logger.WithOperation(ctx, req.OperationName)
	}

	result := graphql.Execute(graphql.ExecuteParams{
		Schema:        h.schema,
		AST:           doc,
		OperationName: req.OperationName,
		Args:          req.Variables,
		Context:       ctx,
	})
	h.respond(w, opType, result, start)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (Request, bool) {
	var req Request
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.Query = q.Get("query")
		req.OperationName = q.Get("operationName")
		if v := q.Get("variables"); v != "" {
			if err := json.Unmarshal([]byte(v), &req.Variables); err != nil {
				h.writeError(w, r, apperrors.InvalidInput("variables must be a JSON object"))
				return req, false
			}
		}
	case http.MethodPost:
		body := http.MaxBytesReader(w, r.Body, h.maxBody)
		if err := json.NewDecoder(body).Decode(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				h.writeError(w, r, apperrors.New(http.StatusRequestEntityTooLarge, "REQUEST_TOO_LARGE", "request body too large"))
				return req, false
			}
			h.writeError(w, r, apperrors.InvalidInput("request body must be a JSON GraphQL request"))
			return req, false
		}
	default:
		w.Header().Set("Allow", "GET, POST")
		h.writeError(w, r, apperrors.New(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "use GET or POST"))
		return req, false
	}

	if req.Query == "" {
		h.writeError(w, r, apperrors.InvalidInput("query is required"))
		return req, false
	}
	return req, true
}

func (h *Handler) respond(w http.ResponseWriter, opType string, result *graphql.Result, start time.Time) {
	tagErrors(result)

	status := "ok"
	if result.HasErrors() {
		status = "error"
	}
	operationsTotal.WithLabelValues(opType, status).Inc()
	operationDuration.WithLabelValues(opType).Observe(time.Since(start).Seconds())

	httputil.WriteJSON(w, http.StatusOK, result)
}

// tagErrors gives every error an extensions code. Field errors that lost
// their extensions on the way through the executor are internal; errors
// without a path come from parsing or validation.
func tagErrors(result *graphql.Result) {
	for i := range result.Errors {
		e := &result.Errors[i]
		if _, ok := e.Extensions["code"]; ok {
			continue
		}
		if e.Extensions == nil {
			e.Extensions = map[string]any{}
		}
		if len(e.Path) > 0 {
			e.Extensions["code"] = CodeInternal
		} else {
			e.Extensions["code"] = CodeDocumentInvalid
		}
	}
}

// operationType returns the type of the operation that will run, or
// "unknown" when it cannot be determined.
func operationType(doc *ast.Document, name string) string {
	for _, def := range doc.Definitions {
		op, ok := def.(*ast.OperationDefinition)
		if !ok {
			continue
		}
		if name == "" || (op.Name != nil && op.Name.Value == name) {
			return op.Operation
		}
	}
	return "unknown"
}

// writeError reports a request that never reached execution.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	httputil.WriteError(w, r, err, h.logger)
}
