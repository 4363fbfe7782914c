// Package errmodel is the single failure type skills return. The dispatcher turns it into
// the action-group failure envelope ({statusCode, error}) and the HTTP API into
// {"error": ..., "trace_id": ...}.
package errmodel

import (
	"encoding/json"
	"errors"
	"net/http"
	"unicode/utf8"

	"go.opentelemetry.io/otel/trace"
)

const (
	CategoryValidation = "validation"
	CategoryUpstream   = "upstream"
	CategoryPolicy     = "policy"
	CategorySystem     = "system"
)

// maxContextValue bounds string values kept in Context (logs, HTTP error bodies).
// Message is never shortened: it is what the caller sees in the envelope.
const maxContextValue = 256

// Error is the compact failure payload.
type Error struct {
	Category string `json:"category"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	// Status overrides the category mapping when non-zero (upstream pass-through).
	Status  int            `json:"status,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Code != "" {
		return e.Code + ": " + e.Message
	}
	return e.Message
}

func newError(category, code, message string, ctx map[string]any) *Error {
	ce := &Error{Category: category, Code: code, Message: message}
	if len(ctx) > 0 {
		ce.Context = make(map[string]any, len(ctx))
		for k, v := range ctx {
			if s, ok := v.(string); ok {
				v = clip(s, maxContextValue)
			}
			ce.Context[k] = v
		}
	}
	return ce
}

// From converts any error into an *Error. Foreign errors become system/internal with an
// "Internal error: " message.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	return &Error{Category: CategorySystem, Code: "internal", Message: "Internal error: " + err.Error()}
}

// Validation reports bad or missing parameters (400).
func Validation(code, message string, ctx map[string]any) *Error {
	return newError(CategoryValidation, code, message, ctx)
}

// NotFound reports an empty upstream result set (404).
func NotFound(message string, ctx map[string]any) *Error {
	return newError(CategoryValidation, "not_found", message, ctx)
}

// Upstream reports a failed third-party call. A status <= 0 maps to 500.
func Upstream(status int, message string, ctx map[string]any) *Error {
	ce := newError(CategoryUpstream, "upstream_error", message, ctx)
	if status <= 0 {
		status = http.StatusInternalServerError
	}
	ce.Status = status
	return ce
}

// Policy reports a permission the dispatcher does not allow (403).
func Policy(code, message string, ctx map[string]any) *Error {
	return newError(CategoryPolicy, code, message, ctx)
}

// System reports an internal failure (500). cause, when set, is kept in Context.
func System(code, message string, ctx map[string]any, cause error) *Error {
	if cause != nil {
		c := make(map[string]any, len(ctx)+1)
		for k, v := range ctx {
			c[k] = v
		}
		c["cause"] = cause.Error()
		ctx = c
	}
	return newError(CategorySystem, code, message, ctx)
}

// HTTPStatus is the status used for both the failure envelope and HTTP responses.
func HTTPStatus(e *Error) int {
	switch {
	case e == nil:
		return http.StatusInternalServerError
	case e.Status > 0:
		return e.Status
	case e.Category == CategoryValidation && e.Code == "not_found":
		return http.StatusNotFound
	case e.Category == CategoryValidation:
		return http.StatusBadRequest
	case e.Category == CategoryPolicy:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

type httpEnvelope struct {
	Error   *Error `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// WriteHTTP writes {"error": ..., "trace_id": ...} with the mapped status. Upstream bodies
// quoted in messages are written without HTML escaping.
func WriteHTTP(w http.ResponseWriter, r *http.Request, err error) {
	ce := From(err)
	if ce == nil {
		ce = &Error{Category: CategorySystem, Code: "internal", Message: "Internal error: unknown"}
	}
	env := httpEnvelope{Error: ce}
	if r != nil {
		if sc := trace.SpanContextFromContext(r.Context()); sc.HasTraceID() {
			env.TraceID = sc.TraceID().String()
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(HTTPStatus(ce))
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(env)
}

// clip shortens s to at most max bytes without splitting a rune.
func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max - len("...")
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
