package router

import (
	"errors"
	"net/url"
	"strings"
)

// ErrMalformedPath is returned when a path contains an empty segment (e.g.
// a literal "//"), per spec.md §4.3's edge case.
var ErrMalformedPath = errors.New("router: malformed path")

// ErrDuplicateRoute is returned by Trie.AddRoute when a (method,
// exact-pattern) pair is already registered, per spec.md §3/§4.3.
var ErrDuplicateRoute = errors.New("router: duplicate route")

// ErrFrozen is returned by Trie.AddRoute once the trie has been frozen via
// Trie.Freeze, per spec.md §5's immutable-after-startup policy.
var ErrFrozen = errors.New("router: trie is frozen, cannot register new routes")

// normalizePath collapses consecutive slashes, ensures a single leading
// slash, strips a trailing slash (except for the root), and is idempotent:
// normalizePath(normalizePath(p)) == normalizePath(p), per spec.md §8.
func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	var b strings.Builder
	b.Grow(len(p))
	if p[0] != '/' {
		b.WriteByte('/')
	}
	prevSlash := false
	for i := 0; i < len(p); i++ {
		c := p[i]
		if c == '/' {
			if prevSlash {
				continue
			}
			prevSlash = true
			b.WriteByte('/')
			continue
		}
		prevSlash = false
		b.WriteByte(c)
	}
	out := b.String()
	if len(out) > 1 && out[len(out)-1] == '/' {
		out = out[:len(out)-1]
	}
	return out
}

// splitSegments splits a path into its slash-delimited, percent-decoded
// segments. An empty segment (a literal "//") or an invalid percent-escape
// yields ErrMalformedPath; an encoded "%2F" decodes to a "/" inside its
// segment and does not split it.
func splitSegments(path string) ([]string, error) {
	if strings.Contains(path, "//") {
		return nil, ErrMalformedPath
	}
	path = normalizePath(path)
	if path == "/" {
		return nil, nil
	}
	raw := strings.Split(path[1:], "/")
	segs := make([]string, 0, len(raw))
	for _, s := range raw {
		decoded, err := url.PathUnescape(s)
		if err != nil {
			return nil, ErrMalformedPath
		}
		if decoded == "" {
			return nil, ErrMalformedPath
		}
		segs = append(segs, decoded)
	}
	return segs, nil
}

// parsePattern parses a registration-time path pattern (e.g.
// "/users/:id/*rest") into its segment list, validating that parameter
// names are unique within the pattern and that a wildcard segment, if
// present, is the final one — both per spec.md §3's PathPattern invariant.
func parsePattern(pattern string) ([]segment, error) {
	pattern = normalizePath(pattern)
	if pattern == "/" {
		return nil, nil
	}
	parts := strings.Split(pattern[1:], "/")
	segs := make([]segment, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for i, p := range parts {
		switch {
		case len(p) > 0 && (p[0] == ':' || p[0] == '{'):
			name := paramName(p)
			if seen[name] {
				return nil, errors.New("router: duplicate parameter name " + name)
			}
			seen[name] = true
			segs = append(segs, segment{kind: segParam, text: name})
		case len(p) > 0 && p[0] == '*':
			if i != len(parts)-1 {
				return nil, errors.New("router: wildcard segment must be last")
			}
			name := p[1:]
			if name == "" {
				name = "*"
			}
			segs = append(segs, segment{kind: segWildcard, text: name})
		default:
			segs = append(segs, segment{kind: segLiteral, text: p})
		}
	}
	return segs, nil
}

// paramName strips the leading ':' or the surrounding '{'/'}' from a
// pattern segment, supporting both the ":name" and "{name}" conventions
// seen across the example pack's routers.
func paramName(p string) string {
	if p[0] == ':' {
		return p[1:]
	}
	if p[0] == '{' && p[len(p)-1] == '}' {
		return p[1 : len(p)-1]
	}
	return p
}
