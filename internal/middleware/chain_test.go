package middleware

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCtx is a minimal ShortCircuiter for exercising Chain without any
// dependency on app/ctx.
type fakeCtx struct {
	trace   *[]string
	written bool
}

func (c *fakeCtx) WasShortCircuited() bool { return c.written }

func record(trace *[]string, name string) Middleware[*fakeCtx] {
	return func(next Handler[*fakeCtx]) Handler[*fakeCtx] {
		return func(c *fakeCtx) error {
			*trace = append(*trace, name)
			return next(c)
		}
	}
}

func TestComposeRunsGlobalPreThenHandlerThenGlobalPost(t *testing.T) {
	var trace []string
	handler := func(c *fakeCtx) error {
		trace = append(trace, "handler")
		return nil
	}

	chain := Compose[*fakeCtx](
		[]Spec[*fakeCtx]{
			{Fn: record(&trace, "pre"), Phase: Pre},
			{Fn: record(&trace, "post"), Phase: Post},
		},
		nil,
		handler,
	)

	require.NoError(t, chain.Execute(&fakeCtx{trace: &trace}))
	assert.Equal(t, []string{"pre", "handler", "post"}, trace)
}

func TestComposeOrdersByPriorityThenRegistration(t *testing.T) {
	var trace []string
	handler := func(c *fakeCtx) error { return nil }

	chain := Compose[*fakeCtx](
		[]Spec[*fakeCtx]{
			{Fn: record(&trace, "low-priority"), Phase: Pre, Priority: 10},
			{Fn: record(&trace, "high-priority"), Phase: Pre, Priority: 0},
		},
		nil,
		handler,
	)

	require.NoError(t, chain.Execute(&fakeCtx{trace: &trace}))
	assert.Equal(t, []string{"high-priority", "low-priority"}, trace)
}

func TestComposeInsertsPerRouteMiddlewareBetweenGlobalPreAndHandler(t *testing.T) {
	var trace []string
	handler := func(c *fakeCtx) error {
		trace = append(trace, "handler")
		return nil
	}

	chain := Compose[*fakeCtx](
		[]Spec[*fakeCtx]{{Fn: record(&trace, "global-pre"), Phase: Pre}},
		[]Spec[*fakeCtx]{{Fn: record(&trace, "route-pre"), Phase: Pre}},
		handler,
	)

	require.NoError(t, chain.Execute(&fakeCtx{trace: &trace}))
	assert.Equal(t, []string{"global-pre", "route-pre", "handler"}, trace)
}

func TestExecuteShortCircuitsRemainingPreAndHandler(t *testing.T) {
	var trace []string
	handler := func(c *fakeCtx) error {
		trace = append(trace, "handler")
		return nil
	}

	shortCircuit := func(next Handler[*fakeCtx]) Handler[*fakeCtx] {
		return func(c *fakeCtx) error {
			trace = append(trace, "short-circuit")
			c.written = true
			return nil
		}
	}

	chain := Compose[*fakeCtx](
		[]Spec[*fakeCtx]{
			{Fn: shortCircuit, Phase: Pre, Priority: 0},
			{Fn: record(&trace, "never-runs"), Phase: Pre, Priority: 1},
		},
		nil,
		handler,
	)

	require.NoError(t, chain.Execute(&fakeCtx{trace: &trace}))
	assert.Equal(t, []string{"short-circuit"}, trace)
}

func TestExecuteRunsPostMiddlewareEvenAfterShortCircuit(t *testing.T) {
	var trace []string
	handler := func(c *fakeCtx) error { return nil }

	shortCircuit := func(next Handler[*fakeCtx]) Handler[*fakeCtx] {
		return func(c *fakeCtx) error {
			c.written = true
			return nil
		}
	}

	chain := Compose[*fakeCtx](
		[]Spec[*fakeCtx]{
			{Fn: shortCircuit, Phase: Pre},
			{Fn: record(&trace, "post"), Phase: Post},
		},
		nil,
		handler,
	)

	require.NoError(t, chain.Execute(&fakeCtx{trace: &trace}))
	assert.Equal(t, []string{"post"}, trace)
}

func TestExecutePropagatesHandlerError(t *testing.T) {
	wantErr := errors.New("boom")
	handler := func(c *fakeCtx) error { return wantErr }

	chain := Compose[*fakeCtx](nil, nil, handler)

	err := chain.Execute(&fakeCtx{})
	assert.ErrorIs(t, err, wantErr)
}

func TestExecutePostMiddlewareCanOverrideError(t *testing.T) {
	handler := func(c *fakeCtx) error { return errors.New("original") }
	overrideErr := errors.New("overridden")

	override := func(next Handler[*fakeCtx]) Handler[*fakeCtx] {
		return func(c *fakeCtx) error {
			_ = next(c)
			return overrideErr
		}
	}

	chain := Compose[*fakeCtx](
		[]Spec[*fakeCtx]{{Fn: override, Phase: Post}},
		nil,
		handler,
	)

	err := chain.Execute(&fakeCtx{})
	assert.ErrorIs(t, err, overrideErr)
}
