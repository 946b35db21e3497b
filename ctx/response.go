package ctx

import (
	"bufio"
	"errors"
	"net/http"
)

var (
	errFastHTTPNoHijack = errors.New("ctx: Hijack is not supported over fasthttp, use fasthttp.RequestCtx.Hijack instead")
	errNoHijacker       = errors.New("ctx: underlying http.ResponseWriter does not implement http.Hijacker")
)

// Response is a streaming response writer obtained via Ctx.Stream(). It lets
// a handler write a body incrementally (e.g. Server-Sent Events, chunked
// downloads) instead of building the whole payload before calling JSON/Send.
//
// Example:
//
//	func streamNumbers(c ctx.Ctx) error {
//		s := c.Stream()
//		s.Header("Content-Type", "text/plain; charset=utf-8")
//		for i := 0; i < 10; i++ {
//			if _, err := s.Write([]byte(fmt.Sprintf("%d\n", i))); err != nil {
//				return err
//			}
//			_ = s.Flush()
//		}
//		return s.Close()
//	}
type Response struct {
	c      *DefaultContext
	status int
}

// Stream returns a Response bound to c, defaulting to 200 OK if no status
// has been staged yet. The returned Response is only valid for the lifetime
// of the current request.
func (c *DefaultContext) Stream() *Response {
	status := int(c.status)
	if status == 0 {
		status = http.StatusOK
	}
	return &Response{c: c, status: status}
}

// Header sets a response header, delegating to the underlying Ctx.
func (r *Response) Header(key, value string) { r.c.Header(key, value) }

// Write writes chunk to the response body, writing the status line and
// headers first if they have not been written yet. When the context's
// HEAD-synthesized suppressBody flag is set, the byte count is still
// returned (and wroteBytes still advances) but no bytes reach the wire,
// matching a GET/HEAD pair's observable Content-Length.
func (r *Response) Write(chunk []byte) (int, error) {
	c := r.c
	if !c.wroteHeader() {
		if c.isFastHTTP() {
			c.fctx.Response.Header.SetStatusCode(r.status)
			c.fctx.Response.Header.Set("Transfer-Encoding", "chunked")
		} else {
			c.w.Header().Set("Transfer-Encoding", "chunked")
			c.w.WriteHeader(r.status)
		}
		c.setWroteHeader(true)
	}

	c.wroteBytes += len(chunk)
	if c.suppressBody() {
		return len(chunk), nil
	}

	if c.isFastHTTP() {
		c.fctx.Response.AppendBody(chunk)
		return len(chunk), nil
	}
	return c.w.Write(chunk)
}

// Flush pushes any buffered bytes to the client immediately. No-op for
// fasthttp, which flushes at the end of the handler; net/http flushes via
// http.Flusher when the underlying ResponseWriter supports it.
func (r *Response) Flush() error {
	if r.c.isFastHTTP() {
		return nil
	}
	if f, ok := r.c.w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}

// Close finalizes the stream. It does nothing beyond Flush, giving callers
// one method to end the stream regardless of how many chunks were written;
// the framework does not call it on the caller's behalf.
func (r *Response) Close() error {
	return r.Flush()
}

// Hijack exposes the underlying net/http connection for protocol upgrades
// (e.g. WebSocket). Returns an error for the fasthttp transport, which
// handles upgrades via its own Hijack on fasthttp.RequestCtx instead.
func (r *Response) Hijack() (interface {
	Close() error
}, *bufio.ReadWriter, error) {
	if r.c.isFastHTTP() {
		return nil, nil, errFastHTTPNoHijack
	}
	hj, ok := r.c.w.(http.Hijacker)
	if !ok {
		return nil, nil, errNoHijacker
	}
	conn, rw, err := hj.Hijack()
	if err != nil {
		return nil, nil, err
	}
	return conn, rw, nil
}
