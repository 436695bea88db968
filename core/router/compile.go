package router

import (
	"fmt"
	"strings"

	"github.com/teamgrid/gateway/pkg/ratelimiter"
)

// Compile flattens a declarative route tree into a dispatch table. Group
// prefixes concatenate onto leaf paths, group middlewares run before leaf
// middlewares (outermost group first), and the nearest declared rate limit
// wins, leaf over group, inner group over outer.
//
// Compilation fails on the first structural defect: two leaves resolving to
// the same method and pattern, an empty placeholder name, a duplicate
// placeholder within one pattern, or a websocket leaf duplicating an event
// name. A broken table must never serve traffic, so callers are expected to
// treat a Compile error as fatal at startup.
func Compile[H any](nodes ...Node[H]) (*Table[H], error) {
	t := &Table[H]{
		http:   make(map[Method][]*Route[H]),
		events: make(map[string]*Route[H]),
	}
	if err := compileInto(t, nodes, "", nil, ratelimiter.Limit{}); err != nil {
		return nil, err
	}
	return t, nil
}

// MustCompile is Compile that panics on error, for wiring tables in main.
func MustCompile[H any](nodes ...Node[H]) *Table[H] {
	t, err := Compile(nodes...)
	if err != nil {
		panic(err)
	}
	return t
}

func compileInto[H any](t *Table[H], nodes []Node[H], prefix string, mws []string, limit ratelimiter.Limit) error {
	for _, n := range nodes {
		switch node := n.(type) {
		case Group[H]:
			groupPrefix := joinPath(prefix, node.Prefix)
			groupMws := concat(mws, node.Middlewares)
			groupLimit := limit
			if node.RateLimit != nil {
				groupLimit = *node.RateLimit
			}
			if err := compileInto(t, node.Children, groupPrefix, groupMws, groupLimit); err != nil {
				return err
			}

		case Leaf[H]:
			if err := addLeaf(t, node, prefix, mws, limit); err != nil {
				return err
			}

		default:
			return fmt.Errorf("%w: %T", ErrUnknownNode, n)
		}
	}
	return nil
}

func addLeaf[H any](t *Table[H], leaf Leaf[H], prefix string, mws []string, limit ratelimiter.Limit) error {
	if leaf.Method == "" {
		return fmt.Errorf("%w: leaf %q has no method", ErrInvalidRoute, leaf.Path)
	}

	route := &Route[H]{
		Method:      leaf.Method,
		Handler:     leaf.Handler,
		Middlewares: concat(mws, leaf.Middlewares),
		Validator:   leaf.Validator,
		RateLimit:   limit,
	}
	if leaf.RateLimit != nil {
		route.RateLimit = *leaf.RateLimit
	}

	if leaf.Method == MethodWS {
		event := strings.TrimSpace(leaf.Path)
		if event == "" {
			return fmt.Errorf("%w: websocket leaf has no event name", ErrInvalidRoute)
		}
		if _, exists := t.events[event]; exists {
			return fmt.Errorf("%w: event %q", ErrDuplicateRoute, event)
		}
		route.Pattern = event
		t.events[event] = route
		return nil
	}

	pattern := joinPath(prefix, leaf.Path)
	segs, err := parsePattern(pattern)
	if err != nil {
		return err
	}
	route.Pattern = pattern
	route.segments = segs

	for _, existing := range t.http[leaf.Method] {
		if existing.Pattern == pattern {
			return fmt.Errorf("%w: %s %s", ErrDuplicateRoute, leaf.Method, pattern)
		}
	}
	t.http[leaf.Method] = append(t.http[leaf.Method], route)
	return nil
}

// parsePattern splits a normalized pattern into match segments and rejects
// malformed placeholders.
func parsePattern(pattern string) ([]segment, error) {
	if pattern == "/" {
		return nil, nil
	}

	parts := strings.Split(strings.TrimPrefix(pattern, "/"), "/")
	segs := make([]segment, 0, len(parts))
	seen := make(map[string]struct{})

	for _, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("%w: empty segment in %q", ErrInvalidPattern, pattern)
		}
		if part[0] == ':' {
			name := part[1:]
			if name == "" {
				return nil, fmt.Errorf("%w: unnamed placeholder in %q", ErrInvalidPattern, pattern)
			}
			if _, dup := seen[name]; dup {
				return nil, fmt.Errorf("%w: %q in %q", ErrDuplicateParam, name, pattern)
			}
			seen[name] = struct{}{}
			segs = append(segs, segment{param: name})
			continue
		}
		segs = append(segs, segment{literal: part})
	}
	return segs, nil
}

// joinPath concatenates path pieces with exactly one slash between them and
// no trailing slash. The result always starts with "/".
func joinPath(prefix, path string) string {
	p := strings.Trim(prefix, "/")
	s := strings.Trim(path, "/")
	switch {
	case p == "" && s == "":
		return "/"
	case p == "":
		return "/" + s
	case s == "":
		return "/" + p
	default:
		return "/" + p + "/" + s
	}
}

func concat(a, b []string) []string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}
