package ctx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientAddressPrefersForwardedFor(t *testing.T) {
	c := newTestContext(t, http.MethodGet, "/", "", map[string]string{
		"X-Forwarded-For": "203.0.113.7, 10.0.0.1",
	}, nil)
	assert.Equal(t, "203.0.113.7", c.ClientAddress())
}

func TestClientAddressFallsBackToRemoteAddr(t *testing.T) {
	c := newTestContext(t, http.MethodGet, "/", "", nil, nil)
	c.r.RemoteAddr = "198.51.100.9:4000"
	assert.Equal(t, "198.51.100.9:4000", c.ClientAddress())
}

func TestSuppressBodySkipsWriteButSetsLength(t *testing.T) {
	req := httptest.NewRequest(http.MethodHead, "/", nil)
	w := httptest.NewRecorder()
	c := &DefaultContext{}
	c.Reset(w, req, nil, "/ping")
	c.SuppressBody(true)

	require.NoError(t, c.String(http.StatusOK, "pong"))
	assert.Equal(t, "4", w.Header().Get("Content-Length"))
	assert.Empty(t, w.Body.String())
}

func TestStreamWriteRespectsSuppressBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodHead, "/", nil)
	w := httptest.NewRecorder()
	c := &DefaultContext{}
	c.Reset(w, req, nil, "/stream")
	c.SuppressBody(true)

	s := c.Stream()
	n, err := s.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Empty(t, w.Body.String())
}
