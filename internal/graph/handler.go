package graph

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-transport-ws/graphqlws"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// maxBodyBytes caps the size of a GraphQL request body.
const maxBodyBytes = 1 << 20

// request is a GraphQL-over-HTTP request.
type request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// Handler serves GraphQL over HTTP and, for clients that upgrade with the
// graphql-ws subprotocol, subscriptions over websockets.
type Handler struct {
	schema *graphql.Schema
	expose bool
}

// NewHandler wraps schema. When expose is set, unclassified error details
// are returned to clients; use it in development only.
func NewHandler(schema *graphql.Schema, expose bool) *Handler {
	return &Handler{schema: schema, expose: expose}
}

// HTTPHandler returns the combined HTTP and websocket handler.
func (h *Handler) HTTPHandler() http.Handler {
	return graphqlws.NewHandlerFunc(subscriptionService{h}, h)
}

// ServeHTTP executes one query or mutation. GET requests read the query
// from the URL and may not run mutations.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req request
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.Query = q.Get("query")
		req.OperationName = q.Get("operationName")
		if v := q.Get("variables"); v != "" {
			if err := json.Unmarshal([]byte(v), &req.Variables); err != nil {
				writeError(w, http.StatusBadRequest, "variables must be a JSON object")
				return
			}
		}
		if isMutation(req.Query, req.OperationName) {
			writeError(w, http.StatusMethodNotAllowed, "mutations require POST")
			return
		}
	case http.MethodPost:
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "request body must be a GraphQL JSON request")
			return
		}
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	resp := h.schema.Exec(r.Context(), req.Query, req.OperationName, req.Variables)
	present(resp.Errors, h.expose)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Warn("graphql response write failed", "error", err)
	}
}

// isMutation reports whether the operation that would execute is a
// mutation. Documents that do not parse, or name no runnable operation,
// return false and are rejected by the engine with a proper error.
func isMutation(query, operationName string) bool {
	doc, err := parser.ParseQuery(&ast.Source{Input: query})
	if err != nil {
		return false
	}
	op := doc.Operations.ForName(operationName)
	if op == nil {
		return false
	}
	return op.Operation == ast.Mutation
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"errors": []map[string]interface{}{{
			"message":    msg,
			"extensions": map[string]string{"code": "BAD_REQUEST"},
		}},
	})
}

// subscriptionService runs subscriptions for graphqlws and presents their
// errors the same way as HTTP responses.
type subscriptionService struct {
	h *Handler
}

func (s subscriptionService) Subscribe(ctx context.Context, document, operationName string,
	variables map[string]interface{}) (<-chan interface{}, error) {
	in, err := s.h.schema.Subscribe(ctx, document, operationName, variables)
	if err != nil {
		return nil, err
	}

	out := make(chan interface{})
	go func() {
		defer close(out)
		// Drain until the engine closes its channel so it never blocks.
		for v := range in {
			if resp, ok := v.(*graphql.Response); ok {
				present(resp.Errors, s.h.expose)
			}
			select {
			case out <- v:
			case <-ctx.Done():
			}
		}
	}()
	return out, nil
}
