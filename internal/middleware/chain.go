// Package middleware implements the C6 middleware execution engine:
// ordered PRE/POST chains with priority, per-route augmentation, and
// short-circuit, per spec.md §4.6.
//
// The pre-compiled, allocation-free execution strategy is grounded on the
// teacher's (_examples/Ari1009-flash/app/app.go) FastChain/newFastChain,
// which special-cases 0/1/2/3-middleware chains to avoid loop overhead on
// the hot path. This package generalizes that idea to PRE/POST phases with
// priority ordering, which the teacher's flat single-phase chain did not
// have.
package middleware

import "sort"

// Phase identifies whether a Spec runs before or after the handler, per
// spec.md §3's MiddlewareSpec.
type Phase uint8

const (
	Pre Phase = iota
	Post
)

// Handler is the generic handler signature this package composes over. The
// concrete context type is supplied by the caller as the type argument C;
// kept generic here so this package has no dependency on app/ctx.
type Handler[C any] func(C) error

// Middleware transforms a Handler. Mirrors app.Middleware.
type Middleware[C any] func(Handler[C]) Handler[C]

// Spec is one registered middleware: its transform, priority (lower runs
// first), phase, and an optional name — spec.md §3's MiddlewareSpec.
type Spec[C any] struct {
	Fn       Middleware[C]
	Priority int
	Phase    Phase
	Name     string
}

// ShortCircuiter lets a PRE middleware signal "stop here" without changing
// the Handler[C] signature: if C implements this interface, the engine
// checks WasShortCircuited() after each PRE middleware runs. Concrete Ctx
// implementations (ctx.DefaultContext) implement this by reporting whether a
// response has been written so far.
type ShortCircuiter interface {
	WasShortCircuited() bool
}

// Chain is a pre-compiled execution path for one route: sorted PRE
// middleware, per-route middleware (registration order), the handler, then
// sorted POST middleware. Execute runs all of it in the order spec.md §4.6
// and §5 require.
type Chain[C ShortCircuiter] struct {
	pre     []Middleware[C]
	post    []Middleware[C]
	handler Handler[C]
}

// Compose builds a Chain from global PRE/POST specs, per-route specs
// (registration order, inserted between global PRE and the handler), and
// the route handler.
func Compose[C ShortCircuiter](global []Spec[C], perRoute []Spec[C], handler Handler[C]) *Chain[C] {
	pre, post := splitAndSort(global)
	var routePre []Middleware[C]
	for _, s := range perRoute {
		if s.Phase == Pre {
			routePre = append(routePre, s.Fn)
		} else {
			post = append(post, s.Fn)
		}
	}
	pre = append(pre, routePre...)
	return &Chain[C]{pre: pre, post: post, handler: handler}
}

// splitAndSort partitions specs into PRE/POST, each sorted ascending by
// (Priority, original registration index) — spec.md §5's ordering
// guarantee.
func splitAndSort[C any](specs []Spec[C]) (pre, post []Middleware[C]) {
	type indexed struct {
		spec Spec[C]
		idx  int
	}
	var preI, postI []indexed
	for i, s := range specs {
		if s.Phase == Pre {
			preI = append(preI, indexed{s, i})
		} else {
			postI = append(postI, indexed{s, i})
		}
	}
	sort.SliceStable(preI, func(i, j int) bool {
		if preI[i].spec.Priority != preI[j].spec.Priority {
			return preI[i].spec.Priority < preI[j].spec.Priority
		}
		return preI[i].idx < preI[j].idx
	})
	sort.SliceStable(postI, func(i, j int) bool {
		if postI[i].spec.Priority != postI[j].spec.Priority {
			return postI[i].spec.Priority < postI[j].spec.Priority
		}
		return postI[i].idx < postI[j].idx
	})
	for _, e := range preI {
		pre = append(pre, e.spec.Fn)
	}
	for _, e := range postI {
		post = append(post, e.spec.Fn)
	}
	return
}

// Execute runs the chain against ctx: all PRE middleware in order (stopping
// early and skipping the handler + remaining PRE middleware the moment one
// short-circuits), then the handler (unless short-circuited), then every
// POST middleware unconditionally. This matches spec.md §4.6's short-circuit
// contract exactly.
func (c *Chain[C]) Execute(ctx C) error {
	err := c.runPre(ctx)
	for _, mw := range c.post {
		if postErr := mw(func(C) error { return err })(ctx); postErr != nil {
			err = postErr
		}
	}
	return err
}

// runPre executes the PRE chain then the handler, stopping the PRE walk and
// skipping the handler as soon as any PRE middleware short-circuits.
func (c *Chain[C]) runPre(ctx C) error {
	exec := c.handler
	for i := len(c.pre) - 1; i >= 0; i-- {
		mw := c.pre[i]
		next := exec
		exec = func(ctx C) error {
			if ctx.WasShortCircuited() {
				return nil
			}
			return mw(next)(ctx)
		}
	}
	return exec(ctx)
}
