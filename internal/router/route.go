package router

// Route is an immutable, registered endpoint: method + exact path pattern +
// an opaque handler reference + its per-route middleware list, per
// spec.md §3. The handler and middleware types are left as `any` here so
// that this package has no dependency on the `app`/`ctx` packages that
// define them — callers type-assert back to their own Handler/Middleware
// types (see app/router.go).
type Route struct {
	Method     string
	Pattern    string
	Handler    any
	Middleware []any
	Name       string
	Tags       []string
}

// segKind is the variant tag of a PathPattern segment, per spec.md §3.
type segKind uint8

const (
	segLiteral segKind = iota
	segParam
	segWildcard
)

// segment is one element of a parsed PathPattern.
type segment struct {
	kind segKind
	text string // literal text, or the param/wildcard name
}
