package catzerr

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindStatusMapping(t *testing.T) {
	cases := map[Kind]int{
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
	for kind, status := range cases {
		assert.Equal(t, status, kind.Status())
	}
}

func TestWrapPreservesCauseForUnwrap(t *testing.T) {
	base := errors.New("db connection refused")
	err := Wrap(KindServiceUnavailable, base, "could not reach database")
	assert.Equal(t, base, errors.Unwrap(err.Unwrap()))
	assert.Equal(t, "could not reach database", err.Error())
	assert.Equal(t, http.StatusServiceUnavailable, err.Status())
}

func TestNewCapturesStackTrace(t *testing.T) {
	err := New(KindInternal, "boom")
	assert.NotEmpty(t, err.StackTrace())
}

func TestKindStringIsStable(t *testing.T) {
	assert.Equal(t, "NOT_FOUND", KindNotFound.String())
	assert.Equal(t, "METHOD_NOT_ALLOWED", KindMethodNotAllowed.String())
}
