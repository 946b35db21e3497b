package static

import (
	"mime"
	"net/url"
	"os"
	"path/filepath"
)

// urlPathUnescape percent-decodes a URL path segment the same way
// net/http.ServeMux/http.FileServer do, via url.PathUnescape.
func urlPathUnescape(suffix string) (string, error) {
	return url.PathUnescape(suffix)
}

// resolveSymlinks returns the canonical, symlink-resolved form of path. If
// path does not exist, it walks up to the nearest existing ancestor and
// resolves that instead, so a request for a not-yet-existing file still gets
// a meaningful containment check against its parent directory.
func resolveSymlinks(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}
	if !os.IsNotExist(err) {
		return "", err
	}

	parent := filepath.Dir(path)
	if parent == path {
		return "", err
	}
	resolvedParent, parentErr := resolveSymlinks(parent)
	if parentErr != nil {
		return "", parentErr
	}
	return filepath.Join(resolvedParent, filepath.Base(path)), os.ErrNotExist
}

// contentTypeFor derives a Content-Type from path's extension, falling back
// to application/octet-stream for anything mime doesn't recognize.
func contentTypeFor(path string) string {
	ct := mime.TypeByExtension(filepath.Ext(path))
	if ct == "" {
		return "application/octet-stream"
	}
	return ct
}
