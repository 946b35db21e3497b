package router

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustAdd(t *testing.T, trie *Trie, method, pattern string) *Route {
	t.Helper()
	route := &Route{Method: method, Pattern: pattern}
	require.NoError(t, trie.AddRoute(method, pattern, route))
	return route
}

func TestLiteralBeatsParamBeatsWildcard(t *testing.T) {
	trie := New()
	lit := mustAdd(t, trie, "GET", "/users/me")
	param := mustAdd(t, trie, "GET", "/users/:id")
	wild := mustAdd(t, trie, "GET", "/users/*rest")

	res := trie.Match("GET", "/users/me")
	assert.Same(t, lit, res.Route)

	res = trie.Match("GET", "/users/42")
	assert.Same(t, param, res.Route)
	assert.Equal(t, "42", res.Params.ByName("id"))

	res = trie.Match("GET", "/users/42/orders/7")
	assert.Same(t, wild, res.Route)
	assert.Equal(t, "42/orders/7", res.Params.ByName("rest"))
}

func TestMethodNotAllowedReturnsSortedAllowedSet(t *testing.T) {
	trie := New()
	mustAdd(t, trie, "GET", "/items")
	mustAdd(t, trie, "POST", "/items")

	res := trie.Match("DELETE", "/items")
	assert.Nil(t, res.Route)
	sorted := append([]string(nil), res.Allowed...)
	sort.Strings(sorted)
	assert.Equal(t, sorted, res.Allowed)
	assert.Contains(t, res.Allowed, "GET")
	assert.Contains(t, res.Allowed, "POST")
	assert.Contains(t, res.Allowed, "OPTIONS")
}

func TestHeadSynthesizedFromGet(t *testing.T) {
	trie := New()
	get := mustAdd(t, trie, "GET", "/ping")

	res := trie.Match("HEAD", "/ping")
	require.NotNil(t, res.Route)
	assert.Same(t, get, res.Route)
	assert.True(t, res.HeadFromGet)
}

func TestExplicitHeadIsNotOverridden(t *testing.T) {
	trie := New()
	mustAdd(t, trie, "GET", "/ping")
	head := mustAdd(t, trie, "HEAD", "/ping")

	res := trie.Match("HEAD", "/ping")
	assert.Same(t, head, res.Route)
	assert.False(t, res.HeadFromGet)
}

func TestOptionsSynthesized(t *testing.T) {
	trie := New()
	mustAdd(t, trie, "GET", "/items")
	mustAdd(t, trie, "POST", "/items")

	res := trie.Match("OPTIONS", "/items")
	assert.Nil(t, res.Route)
	assert.True(t, res.SynthOptions)
	assert.ElementsMatch(t, []string{"GET", "HEAD", "OPTIONS", "POST"}, res.Allowed)
}

func TestMalformedPathIsRejected(t *testing.T) {
	trie := New()
	mustAdd(t, trie, "GET", "/items")

	res := trie.Match("GET", "/items//x")
	assert.True(t, res.MalformedPath)
}

func TestDuplicateRouteRejected(t *testing.T) {
	trie := New()
	require.NoError(t, trie.AddRoute("GET", "/x", &Route{}))
	err := trie.AddRoute("GET", "/x", &Route{})
	assert.ErrorIs(t, err, ErrDuplicateRoute)
}

func TestFrozenTrieRejectsNewRoutes(t *testing.T) {
	trie := New()
	trie.Freeze()
	err := trie.AddRoute("GET", "/x", &Route{})
	assert.ErrorIs(t, err, ErrFrozen)
}

func TestCommonPrefixSplitPreservesBothBranches(t *testing.T) {
	trie := New()
	team := mustAdd(t, trie, "GET", "/team")
	teams := mustAdd(t, trie, "GET", "/teams")

	res := trie.Match("GET", "/team")
	assert.Same(t, team, res.Route)
	res = trie.Match("GET", "/teams")
	assert.Same(t, teams, res.Route)
}

func TestWildcardTerminatesWalk(t *testing.T) {
	trie := New()
	wild := mustAdd(t, trie, "GET", "/static/*filepath")

	res := trie.Match("GET", "/static/css/app.css")
	require.NotNil(t, res.Route)
	assert.Same(t, wild, res.Route)
	assert.Equal(t, "css/app.css", res.Params.ByName("filepath"))
}

func TestNoRouteReturnsEmptyResolution(t *testing.T) {
	trie := New()
	mustAdd(t, trie, "GET", "/known")

	res := trie.Match("GET", "/unknown")
	assert.Nil(t, res.Route)
	assert.Empty(t, res.Allowed)
	assert.False(t, res.SynthOptions)
	assert.False(t, res.MalformedPath)
}

func TestNormalizePathIsIdempotent(t *testing.T) {
	cases := []string{"/", "//a//b///c", "a/b", "/a/b/", ""}
	for _, c := range cases {
		once := normalizePath(c)
		twice := normalizePath(once)
		assert.Equal(t, once, twice, "normalizePath not idempotent for %q", c)
	}
}

func TestDuplicateParamNameRejected(t *testing.T) {
	trie := New()
	err := trie.AddRoute("GET", "/a/:id/b/:id", &Route{})
	assert.Error(t, err)
}

func TestWildcardMustBeLastSegment(t *testing.T) {
	trie := New()
	err := trie.AddRoute("GET", "/a/*rest/b", &Route{})
	assert.Error(t, err)
}
