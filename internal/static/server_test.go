package static

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	headers map[string]string
	status  int
	body    []byte
}

func newRecordingWriter() *recordingWriter {
	return &recordingWriter{headers: map[string]string{}}
}

func (w *recordingWriter) SetHeader(key, value string) { w.headers[key] = value }
func (w *recordingWriter) WriteStatus(code int)         { w.status = code }
func (w *recordingWriter) Write(b []byte) (int, error) {
	w.body = append(w.body, b...)
	return len(b), nil
}

func newTestMount(t *testing.T) *Mount {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello.txt"), []byte("hello world"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".secret"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".secret", "dotfile"), []byte("nope"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "index.html"), []byte("<h1>index</h1>"), 0o644))

	m, err := NewMount("/static", dir)
	require.NoError(t, err)
	m.ListDir = true
	return m
}

func TestServeFileReturns200WithETag(t *testing.T) {
	s := NewServer(nil)
	m := newTestMount(t)
	w := newRecordingWriter()

	status, err := s.Serve(m, RequestInfo{Method: "GET", Suffix: "hello.txt"}, w)
	require.NoError(t, err)
	assert.Equal(t, 200, status)
	assert.Equal(t, "hello world", string(w.body))
	assert.NotEmpty(t, w.headers["ETag"])
}

func TestServeHonorsIfNoneMatch(t *testing.T) {
	s := NewServer(nil)
	m := newTestMount(t)

	w1 := newRecordingWriter()
	_, err := s.Serve(m, RequestInfo{Method: "GET", Suffix: "hello.txt"}, w1)
	require.NoError(t, err)
	etag := w1.headers["ETag"]

	w2 := newRecordingWriter()
	status, err := s.Serve(m, RequestInfo{Method: "GET", Suffix: "hello.txt", IfNoneMatch: etag}, w2)
	require.NoError(t, err)
	assert.Equal(t, 304, status)
	assert.Empty(t, w2.body)
}

func TestServeHonorsIfModifiedSince(t *testing.T) {
	s := NewServer(nil)
	m := newTestMount(t)

	future := time.Now().Add(time.Hour).UTC().Format(time.RFC1123)
	w := newRecordingWriter()
	status, err := s.Serve(m, RequestInfo{Method: "GET", Suffix: "hello.txt", IfModifiedSince: future}, w)
	require.NoError(t, err)
	assert.Equal(t, 304, status)
}

func TestServeRejectsTraversal(t *testing.T) {
	s := NewServer(nil)
	m := newTestMount(t)
	w := newRecordingWriter()

	status, err := s.Serve(m, RequestInfo{Method: "GET", Suffix: "../../etc/passwd"}, w)
	require.NoError(t, err)
	assert.Equal(t, 403, status)
}

func TestServeRejectsHiddenFileByDefault(t *testing.T) {
	s := NewServer(nil)
	m := newTestMount(t)
	w := newRecordingWriter()

	status, err := s.Serve(m, RequestInfo{Method: "GET", Suffix: ".secret/dotfile"}, w)
	require.NoError(t, err)
	assert.Equal(t, 403, status)
}

func TestServeDirFallsBackToIndexFile(t *testing.T) {
	s := NewServer(nil)
	m := newTestMount(t)
	w := newRecordingWriter()

	status, err := s.Serve(m, RequestInfo{Method: "GET", Suffix: "sub"}, w)
	require.NoError(t, err)
	assert.Equal(t, 200, status)
	assert.Contains(t, string(w.body), "index")
}

func TestServeNotFoundForMissingFile(t *testing.T) {
	s := NewServer(nil)
	m := newTestMount(t)
	w := newRecordingWriter()

	status, err := s.Serve(m, RequestInfo{Method: "GET", Suffix: "nope.txt"}, w)
	require.NoError(t, err)
	assert.Equal(t, 404, status)
}

func TestServeRangeReturnsPartialContent(t *testing.T) {
	s := NewServer(nil)
	m := newTestMount(t)
	w := newRecordingWriter()

	status, err := s.Serve(m, RequestInfo{Method: "GET", Suffix: "hello.txt", Range: "bytes=0-4"}, w)
	require.NoError(t, err)
	assert.Equal(t, 206, status)
	assert.Equal(t, "hello", string(w.body))
	assert.Equal(t, "bytes 0-4/11", w.headers["Content-Range"])
}

func TestServeRangeUnsatisfiableReturns416(t *testing.T) {
	s := NewServer(nil)
	m := newTestMount(t)
	w := newRecordingWriter()

	status, err := s.Serve(m, RequestInfo{Method: "GET", Suffix: "hello.txt", Range: "bytes=999-1000"}, w)
	require.NoError(t, err)
	assert.Equal(t, 416, status)
}

func TestServeMaxFileSizeRejects(t *testing.T) {
	s := NewServer(nil)
	m := newTestMount(t)
	m.MaxFileSize = 1
	w := newRecordingWriter()

	status, err := s.Serve(m, RequestInfo{Method: "GET", Suffix: "hello.txt"}, w)
	require.NoError(t, err)
	assert.Equal(t, 403, status)
}

type memCache struct{ data map[string][]byte }

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(key string) ([]byte, bool) { v, ok := c.data[key]; return v, ok }
func (c *memCache) Set(key string, data []byte)   { c.data[key] = data }

func TestServeUsesCacheOnSecondRequest(t *testing.T) {
	cache := newMemCache()
	s := NewServer(cache)
	m := newTestMount(t)

	w1 := newRecordingWriter()
	_, err := s.Serve(m, RequestInfo{Method: "GET", Suffix: "hello.txt"}, w1)
	require.NoError(t, err)
	assert.Len(t, cache.data, 1)

	w2 := newRecordingWriter()
	_, err = s.Serve(m, RequestInfo{Method: "GET", Suffix: "hello.txt"}, w2)
	require.NoError(t, err)
	assert.Equal(t, w1.body, w2.body)
}

func TestParseRangeSuffixForm(t *testing.T) {
	start, end, ok := parseRange("bytes=-5", 11)
	require.True(t, ok)
	assert.Equal(t, 6, start)
	assert.Equal(t, 10, end)
}

func TestParseRangeRejectsMultiRange(t *testing.T) {
	_, _, ok := parseRange("bytes=0-1,2-3", 11)
	assert.False(t, ok)
}
