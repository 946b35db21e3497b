package app

import (
	"net/http"
	"strings"

	"github.com/catzilla-project/catzilla/ctx"
	"github.com/catzilla-project/catzilla/internal/static"
)

// ctxStaticWriter adapts a ctx.Ctx to static.ResponseWriter. Static.Serve
// issues SetHeader calls, then WriteStatus, then at most one Write, so
// flushing through Ctx.Send on that Write keeps Content-Type/Content-Length
// handling identical to the rest of the framework's response path. Outcomes
// without a body (304, 400, 403, 404, 416) never call Write; the static
// route handler sends those itself.
type ctxStaticWriter struct {
	c      ctx.Ctx
	status int
}

func (w *ctxStaticWriter) SetHeader(key, value string) { w.c.Header(key, value) }

func (w *ctxStaticWriter) WriteStatus(code int) { w.status = code }

func (w *ctxStaticWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.c.Send(w.status, "", b)
}

func staticRequestInfo(c ctx.Ctx, suffix string) static.RequestInfo {
	return static.RequestInfo{
		Method:          c.Method(),
		Suffix:          suffix,
		IfNoneMatch:     c.RequestHeader("If-None-Match"),
		IfModifiedSince: c.RequestHeader("If-Modified-Since"),
		Range:           c.RequestHeader("Range"),
		AcceptEncoding:  c.RequestHeader("Accept-Encoding"),
	}
}

// Static mounts dir at prefix, serving files via internal/static.Server. The
// returned *static.Mount is exposed so callers can tune options
// (CacheEnabled, Compress, RangeEnabled, AllowHidden, ListDir, MaxFileSize)
// before traffic starts flowing; Mounts may be adjusted up until Run.
func (a *DefaultApp) Static(prefix, dir string) (*static.Mount, error) {
	mounts, err := a.StaticDirs(prefix, dir)
	if err != nil {
		return nil, err
	}
	return mounts[0], nil
}

// StaticDirs mounts multiple directories under one prefix, each checked in
// order until one resolves a file; this mirrors the teacher's StaticDirs,
// which layered net/http.FileServers the same way for theme/override
// directories. Unlike Static, repeated calls with the same prefix extend the
// search order for that prefix instead of registering a conflicting route.
func (a *DefaultApp) StaticDirs(prefix string, dirs ...string) ([]*static.Mount, error) {
	mounts := make([]*static.Mount, 0, len(dirs))
	for _, dir := range dirs {
		mount, err := static.NewMount(prefix, dir)
		if err != nil {
			return nil, err
		}
		mounts = append(mounts, mount)
	}

	existing, prefixExists := a.staticGroups[mounts[0].Prefix]
	a.staticGroups[mounts[0].Prefix] = append(existing, mounts...)
	if prefixExists {
		return mounts, nil
	}
	a.registerStaticRoute(mounts[0].Prefix)
	return mounts, nil
}

func (a *DefaultApp) registerStaticRoute(prefix string) {
	pattern := prefix + "/*filepath"
	handler := func(c ctx.Ctx) error {
		suffix := strings.TrimPrefix(c.Path(), prefix)
		suffix = strings.TrimPrefix(suffix, "/")
		req := staticRequestInfo(c, suffix)

		w := &ctxStaticWriter{c: c}
		for _, mount := range a.staticGroups[prefix] {
			status, err := a.staticServer.Serve(mount, req, w)
			if status == http.StatusNotFound {
				continue
			}
			if err == nil && !c.WroteHeader() {
				_, err = c.Send(status, "", nil)
			}
			return err
		}
		return a.NotFoundHandler()(c)
	}
	a.GET(pattern, handler)
	a.HEAD(pattern, handler)
}
