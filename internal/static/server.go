package static

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
)

// RequestInfo is the transport-agnostic slice of an incoming request Serve
// needs: the suffix remaining after the mount prefix has been stripped (not
// yet percent-decoded) and the handful of request headers spec.md §4.8
// conditions on.
type RequestInfo struct {
	Method          string
	Suffix          string
	IfNoneMatch     string
	IfModifiedSince string
	Range           string
	AcceptEncoding  string
}

// ResponseWriter is the minimal write surface Serve needs; app/static.go
// adapts ctx.Ctx to it.
type ResponseWriter interface {
	SetHeader(key, value string)
	WriteStatus(code int)
	Write(b []byte) (int, error)
}

// Server serves files from one or more Mounts, using cache as the optional
// hot-file cache (nil disables it regardless of Mount.CacheEnabled).
type Server struct {
	cache FileCache
}

// NewServer creates a Server. cache may be nil.
func NewServer(cache FileCache) *Server {
	return &Server{cache: cache}
}

// Serve implements spec.md §4.8's nine-step algorithm for one request
// against m. It never returns an os/io error for a client-caused condition;
// those are all translated into an (code, ok) result the caller writes via
// w — only the final w.Write's own I/O error is returned, matching "static
// server failures never produce 500 from security violations" (spec.md §7).
func (s *Server) Serve(m *Mount, req RequestInfo, w ResponseWriter) (status int, err error) {
	decoded, decErr := decodeSuffix(req.Suffix)
	if decErr != nil {
		return writeStatus(w, 400), nil
	}

	full, rErr := m.ResolvedPath(decoded)
	if rErr != nil {
		return writeStatus(w, 403), nil
	}

	resolved, symErr := resolveSymlinks(full)
	if symErr != nil {
		if os.IsNotExist(symErr) {
			return writeStatus(w, 404), nil
		}
		return writeStatus(w, 403), nil
	}
	if !isDescendant(m.Root, resolved) {
		return writeStatus(w, 403), nil
	}

	info, statErr := os.Stat(resolved)
	if statErr != nil {
		return writeStatus(w, 404), nil
	}

	if info.IsDir() {
		return s.serveDir(m, resolved, w)
	}

	if m.MaxFileSize > 0 && info.Size() > m.MaxFileSize {
		return writeStatus(w, 403), nil
	}

	return s.serveFile(m, resolved, info, req, w)
}

func writeStatus(w ResponseWriter, code int) (int, error) {
	w.WriteStatus(code)
	return code, nil
}

// decodeSuffix percent-decodes the mount-relative suffix, failing only on an
// invalid escape; cleaning and the root-containment check happen in
// Mount.ResolvedPath.
func decodeSuffix(suffix string) (string, error) {
	decoded, err := urlPathUnescape(suffix)
	if err != nil {
		return "", err
	}
	return decoded, nil
}

func (s *Server) serveDir(m *Mount, dir string, w ResponseWriter) (int, error) {
	if m.IndexFile != "" {
		indexPath := filepath.Join(dir, m.IndexFile)
		if info, err := os.Stat(indexPath); err == nil && !info.IsDir() {
			return s.serveFile(m, indexPath, info, RequestInfo{Method: "GET"}, w)
		}
	}
	if m.ListDir {
		return s.serveListing(dir, w)
	}
	return writeStatus(w, 403), nil
}

func (s *Server) serveListing(dir string, w ResponseWriter) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return writeStatus(w, 403), nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html><html><body><ul>")
	for _, n := range names {
		buf.WriteString("<li>" + htmlEscape(n) + "</li>")
	}
	buf.WriteString("</ul></body></html>")

	w.SetHeader("Content-Type", "text/html; charset=utf-8")
	w.WriteStatus(200)
	_, err = w.Write(buf.Bytes())
	return 200, err
}

func (s *Server) serveFile(m *Mount, path string, info os.FileInfo, req RequestInfo, w ResponseWriter) (int, error) {
	etag := strongETag(info)

	if req.IfNoneMatch != "" && req.IfNoneMatch == etag {
		w.SetHeader("ETag", etag)
		return writeStatus(w, 304), nil
	}
	if req.IfModifiedSince != "" {
		if t, err := time.Parse(time.RFC1123, req.IfModifiedSince); err == nil {
			if !info.ModTime().Truncate(time.Second).After(t) {
				w.SetHeader("ETag", etag)
				return writeStatus(w, 304), nil
			}
		}
	}

	body, fromCache, err := s.readFile(m, path, etag)
	if err != nil {
		return writeStatus(w, 403), nil
	}

	w.SetHeader("ETag", etag)
	w.SetHeader("Content-Type", contentTypeFor(path))
	if m.RangeEnabled {
		w.SetHeader("Accept-Ranges", "bytes")
	}
	_ = fromCache

	if m.RangeEnabled && req.Range != "" {
		return s.serveRange(body, req.Range, w)
	}

	negotiated := negotiateCompression(req.AcceptEncoding, m.Compress)
	if negotiated == "gzip" {
		compressed, cErr := gzipBytes(body)
		if cErr == nil {
			w.SetHeader("Content-Encoding", "gzip")
			w.SetHeader("Content-Length", strconv.Itoa(len(compressed)))
			w.WriteStatus(200)
			_, err = w.Write(compressed)
			return 200, err
		}
	}

	w.SetHeader("Content-Length", strconv.Itoa(len(body)))
	w.WriteStatus(200)
	_, err = w.Write(body)
	return 200, err
}

func (s *Server) readFile(m *Mount, path, etag string) (data []byte, fromCache bool, err error) {
	key := cacheKey(path, etag)
	if m.CacheEnabled && s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			return cached, true, nil
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	data, err = io.ReadAll(f)
	if err != nil {
		return nil, false, err
	}

	if m.CacheEnabled && s.cache != nil {
		s.cache.Set(key, data)
	}
	return data, false, nil
}

// serveRange implements a single "bytes=start-end" or "bytes=start-" range,
// per spec.md §4.8 item 7 and §5 ("multi-range is not supported").
func (s *Server) serveRange(body []byte, rangeHeader string, w ResponseWriter) (int, error) {
	start, end, ok := parseRange(rangeHeader, len(body))
	if !ok {
		w.SetHeader("Content-Range", "bytes */"+strconv.Itoa(len(body)))
		return writeStatus(w, 416), nil
	}

	w.SetHeader("Content-Range", "bytes "+strconv.Itoa(start)+"-"+strconv.Itoa(end)+"/"+strconv.Itoa(len(body)))
	w.SetHeader("Content-Length", strconv.Itoa(end-start+1))
	w.WriteStatus(206)
	_, err := w.Write(body[start : end+1])
	return 206, err
}

// parseRange parses "bytes=start-end" or "bytes=start-"; returns ok=false on
// any malformed or unsatisfiable range.
func parseRange(header string, size int) (start, end int, ok bool) {
	const prefix = "bytes="
	if !strings.HasPrefix(header, prefix) {
		return 0, 0, false
	}
	spec := strings.TrimPrefix(header, prefix)
	if strings.Contains(spec, ",") {
		return 0, 0, false // multi-range not supported
	}
	parts := strings.SplitN(spec, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	if parts[0] == "" {
		// suffix range "bytes=-N": last N bytes.
		n, err := strconv.Atoi(parts[1])
		if err != nil || n <= 0 {
			return 0, 0, false
		}
		if n > size {
			n = size
		}
		return size - n, size - 1, true
	}
	s, err := strconv.Atoi(parts[0])
	if err != nil || s < 0 || s >= size {
		return 0, 0, false
	}
	if parts[1] == "" {
		return s, size - 1, true
	}
	e, err := strconv.Atoi(parts[1])
	if err != nil || e < s {
		return 0, 0, false
	}
	if e >= size {
		e = size - 1
	}
	return s, e, true
}

func negotiateCompression(acceptEncoding string, enabled bool) string {
	if !enabled {
		return "identity"
	}
	for _, enc := range strings.Split(acceptEncoding, ",") {
		if strings.TrimSpace(strings.SplitN(enc, ";", 2)[0]) == "gzip" {
			return "gzip"
		}
	}
	return "identity"
}

func gzipBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write(data); err != nil {
		return nil, err
	}
	if err := gw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func htmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
