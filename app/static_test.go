package app

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticServesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "greeting.txt"), []byte("hi there"), 0o644))

	a := New()
	_, err := a.Static("/assets", dir)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/assets/greeting.txt", nil)
	rec := httptest.NewRecorder()
	a.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hi there", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("ETag"))
}

func TestStaticDirsFallsThroughToSecondRoot(t *testing.T) {
	primary := t.TempDir()
	fallback := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(fallback, "theme.css"), []byte("body{}"), 0o644))

	a := New()
	_, err := a.StaticDirs("/assets", primary, fallback)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/assets/theme.css", nil)
	rec := httptest.NewRecorder()
	a.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "body{}", rec.Body.String())
}

func TestStaticReturns404ForMissingFileAcrossAllDirs(t *testing.T) {
	dir := t.TempDir()

	a := New()
	_, err := a.Static("/assets", dir)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/assets/nope.txt", nil)
	rec := httptest.NewRecorder()
	a.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
