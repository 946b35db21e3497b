package ctx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	router "github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Bind tests assert exact stdlib encoding/json behavior (error text, number
// handling), so route BindJSON through encoding/json rather than jsoniter
// for the duration of this package's tests.
func init() {
	setTestCompatibilityMode(true)
}

type bindPayload struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func newTestContext(t *testing.T, method, target, body string, headers map[string]string, params router.Params) *DefaultContext {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	c := &DefaultContext{}
	c.Reset(w, req, params, "")
	return c
}

func TestBindJSONDecodesBody(t *testing.T) {
	c := newTestContext(t, http.MethodPost, "/", `{"id":7,"name":"ada"}`, map[string]string{"Content-Type": "application/json"}, nil)
	var p bindPayload
	require.NoError(t, c.BindJSON(&p))
	assert.Equal(t, 7, p.ID)
	assert.Equal(t, "ada", p.Name)
}

func TestBindJSONRejectsOversizedBody(t *testing.T) {
	c := newTestContext(t, http.MethodPost, "/", `{"id":7,"name":"ada"}`, nil, nil)
	var p bindPayload
	err := c.BindJSON(&p, BindJSONOptions{MaxBodyBytes: 4})
	assert.Error(t, err)
}

func TestBindJSONRejectsEmptyBody(t *testing.T) {
	c := newTestContext(t, http.MethodPost, "/", "", nil, nil)
	var p bindPayload
	err := c.BindJSON(&p)
	assert.ErrorIs(t, err, errEmptyBody)
}

func TestBindPathCollectsParams(t *testing.T) {
	c := newTestContext(t, http.MethodGet, "/users/7", "", nil, router.Params{{Key: "id", Value: "7"}})
	var p struct {
		ID int `json:"id"`
	}
	require.NoError(t, c.BindPath(&p))
	assert.Equal(t, 7, p.ID)
}

func TestBindQueryCollectsValues(t *testing.T) {
	c := newTestContext(t, http.MethodGet, "/search?page=3", "", nil, nil)
	var p struct {
		Page int `json:"page"`
	}
	require.NoError(t, c.BindQuery(&p))
	assert.Equal(t, 3, p.Page)
}

func TestBindFormParsesURLEncodedBody(t *testing.T) {
	c := newTestContext(t, http.MethodPost, "/", "name=ada&id=7",
		map[string]string{"Content-Type": "application/x-www-form-urlencoded"}, nil)
	var p bindPayload
	require.NoError(t, c.BindForm(&p))
	assert.Equal(t, 7, p.ID)
	assert.Equal(t, "ada", p.Name)
}

func TestBindAnyPrefersBodyOverPath(t *testing.T) {
	c := newTestContext(t, http.MethodPost, "/users/7", `{"id":9,"name":"lin"}`,
		map[string]string{"Content-Type": "application/json"},
		router.Params{{Key: "id", Value: "7"}})
	var p bindPayload
	require.NoError(t, c.BindAny(&p))
	assert.Equal(t, 9, p.ID)
	assert.Equal(t, "lin", p.Name)
}

func TestBindAnyFallsBackToPathWhenBodyEmpty(t *testing.T) {
	c := newTestContext(t, http.MethodGet, "/users/7", "", nil, router.Params{{Key: "id", Value: "7"}})
	var p bindPayload
	require.NoError(t, c.BindAny(&p))
	assert.Equal(t, 7, p.ID)
}

func TestTestCompatibilityModeEnabled(t *testing.T) {
	assert.True(t, useStandardJSONForTests)
}
