// Package catzerr implements the C10 error taxonomy: an exhaustive set of
// error kinds, each mapped to one HTTP status code, plus production vs.
// development response formatting.
//
// The kind-to-status mapping and the "unwrap a typed error, else fall back
// to 500" extraction pattern are grounded on
// _examples/other_examples/00f005ea_momaek-fox__engine-app.go.go's
// defaultErrorHandler (err.(*Error) -> Code, else StatusInternalServerError).
// Stack trace capture for development-mode diagnostics uses
// github.com/pkg/errors.WithStack.
package catzerr

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// Kind is one of the ten exhaustive error categories Catzilla classifies
// handler/middleware/router failures into.
type Kind uint8

const (
	KindMalformedRequest Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindMethodNotAllowed
	KindPayloadTooLarge
	KindUnsupportedMediaType
	KindRangeNotSatisfiable
	KindInternal
	KindServiceUnavailable
)

var kindStatus = [...]int{
	KindMalformedRequest:     http.StatusBadRequest,
	KindUnauthorized:         http.StatusUnauthorized,
	KindForbidden:            http.StatusForbidden,
	KindNotFound:             http.StatusNotFound,
	KindMethodNotAllowed:     http.StatusMethodNotAllowed,
	KindPayloadTooLarge:      http.StatusRequestEntityTooLarge,
	KindUnsupportedMediaType: http.StatusUnsupportedMediaType,
	KindRangeNotSatisfiable:  http.StatusRequestedRangeNotSatisfiable,
	KindInternal:             http.StatusInternalServerError,
	KindServiceUnavailable:   http.StatusServiceUnavailable,
}

var kindName = [...]string{
	KindMalformedRequest:     "MALFORMED_REQUEST",
	KindUnauthorized:         "UNAUTHORIZED",
	KindForbidden:            "FORBIDDEN",
	KindNotFound:             "NOT_FOUND",
	KindMethodNotAllowed:     "METHOD_NOT_ALLOWED",
	KindPayloadTooLarge:      "PAYLOAD_TOO_LARGE",
	KindUnsupportedMediaType: "UNSUPPORTED_MEDIA_TYPE",
	KindRangeNotSatisfiable:  "RANGE_NOT_SATISFIABLE",
	KindInternal:             "INTERNAL",
	KindServiceUnavailable:   "SERVICE_UNAVAILABLE",
}

// Status returns the HTTP status code this Kind maps to.
func (k Kind) Status() int {
	if int(k) >= len(kindStatus) {
		return http.StatusInternalServerError
	}
	return kindStatus[k]
}

// String returns the kind's wire name (used in JSON error bodies).
func (k Kind) String() string {
	if int(k) >= len(kindName) {
		return "INTERNAL"
	}
	return kindName[k]
}

// Error is Catzilla's typed error: a Kind, a user-facing Message, and the
// underlying cause (captured with a stack trace via pkg/errors.WithStack for
// development-mode diagnostics).
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

// New creates an Error of kind with message, capturing a stack trace rooted
// at the call site.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, cause: errors.New(message)}
}

// Wrap creates an Error of kind with message, wrapping err and capturing a
// stack trace rooted at the call site. If err is nil, behaves like New.
func Wrap(kind Kind, err error, message string) *Error {
	if err == nil {
		return New(kind, message)
	}
	return &Error{Kind: kind, Message: message, cause: errors.WithStack(err)}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.String()
}

// Unwrap supports errors.Is/errors.As against the wrapped cause.
func (e *Error) Unwrap() error { return e.cause }

// Status returns the HTTP status code for this error.
func (e *Error) Status() int { return e.Kind.Status() }

// StackTrace returns a truncated diagnostic trace suitable for development
// mode responses/logs. Empty when the cause carries no stack (e.g. a cause
// that isn't itself produced via pkg/errors).
func (e *Error) StackTrace() string {
	type stackTracer interface {
		StackTrace() errors.StackTrace
	}
	if st, ok := e.cause.(stackTracer); ok {
		return formatTrace(st.StackTrace())
	}
	return ""
}

// maxTraceFrames bounds the diagnostic trace; spec.md calls for a
// "truncated" trace, not a full unwind.
const maxTraceFrames = 8

func formatTrace(trace errors.StackTrace) string {
	out := ""
	for i, f := range trace {
		if i >= maxTraceFrames {
			out += "\t...\n"
			break
		}
		out += fmt.Sprintf("%+v\n", f)
	}
	return out
}
