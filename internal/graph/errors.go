package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	gqlerrors "github.com/graph-gophers/graphql-go/errors"

	"blogql/internal/apperr"
	"blogql/internal/metrics"
)

// codeValidationFailed marks errors raised by the GraphQL engine itself:
// syntax errors, unknown fields and bad variables.
const codeValidationFailed = "GRAPHQL_VALIDATION_FAILED"

const internalMessage = "internal server error"

// present rewrites errors for clients. Classified service errors keep
// their client-safe message; anything else is logged and, unless expose is
// set, replaced by a generic message. Every error gets extensions.code.
func present(errs []*gqlerrors.QueryError, expose bool) {
	for _, qe := range errs {
		if qe == nil {
			continue
		}
		code := codeOf(qe)
		if qe.ResolverError != nil {
			qe.Message = clientMessage(qe.ResolverError, expose)
		}
		if qe.Extensions == nil {
			qe.Extensions = map[string]interface{}{}
		}
		qe.Extensions["code"] = code
		metrics.GraphQLErrors.WithLabelValues(code).Inc()
	}
}

func codeOf(qe *gqlerrors.QueryError) string {
	if code, ok := qe.Extensions["code"].(string); ok {
		return code
	}
	if qe.ResolverError == nil {
		return codeValidationFailed
	}
	return string(apperr.KindOf(qe.ResolverError))
}

func clientMessage(err error, expose bool) string {
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Kind != apperr.KindInternal {
		return ae.Message
	}
	slog.Error("graphql resolver failed", "error", err)
	if expose {
		return err.Error()
	}
	return internalMessage
}

// panicHandler turns a resolver panic into an INTERNAL error without
// leaking the panic value.
type panicHandler struct{}

func (panicHandler) MakePanicError(_ context.Context, value interface{}) *gqlerrors.QueryError {
	slog.Error("graphql resolver panic",
		"error", fmt.Sprint(value),
		"stack", string(debug.Stack()),
	)
	return &gqlerrors.QueryError{
		Message:    internalMessage,
		Extensions: map[string]interface{}{"code": string(apperr.KindInternal)},
	}
}
