package router

import (
	"sort"
	"strings"
)

// Table is the compiled dispatch structure: a flat per-method list of HTTP
// routes and a map of websocket event routes. Tables are immutable after
// Compile and safe for concurrent lookups.
type Table[H any] struct {
	http   map[Method][]*Route[H]
	events map[string]*Route[H]
}

// MatchHTTP resolves a request path against the table. Placeholder segments
// capture into params; literal segments must match exactly and the segment
// counts must agree. When several patterns could match, the one with more
// literal segments wins, so /users/me beats /users/:id.
func (t *Table[H]) MatchHTTP(method Method, path string) (*Route[H], map[string]string, bool) {
	routes, ok := t.http[method]
	if !ok {
		return nil, nil, false
	}

	reqSegs := splitPath(path)

	var (
		best       *Route[H]
		bestParams map[string]string
		bestScore  = -1
	)
	for _, route := range routes {
		params, score, matched := matchSegments(route.segments, reqSegs)
		if matched && score > bestScore {
			best, bestParams, bestScore = route, params, score
		}
	}
	if best == nil {
		return nil, nil, false
	}
	return best, bestParams, true
}

// MatchEvent resolves a websocket event name.
func (t *Table[H]) MatchEvent(event string) (*Route[H], bool) {
	route, ok := t.events[event]
	return route, ok
}

// Routes returns every compiled route, HTTP first sorted by method and
// pattern, then websocket events sorted by name. Useful for startup logging
// and registry validation.
func (t *Table[H]) Routes() []*Route[H] {
	var out []*Route[H]
	for _, routes := range t.http {
		out = append(out, routes...)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Method != out[j].Method {
			return out[i].Method < out[j].Method
		}
		return out[i].Pattern < out[j].Pattern
	})

	events := make([]string, 0, len(t.events))
	for e := range t.events {
		events = append(events, e)
	}
	sort.Strings(events)
	for _, e := range events {
		out = append(out, t.events[e])
	}
	return out
}

func matchSegments(pattern []segment, req []string) (map[string]string, int, bool) {
	if len(pattern) != len(req) {
		return nil, 0, false
	}

	var params map[string]string
	literals := 0
	for i, seg := range pattern {
		if seg.param != "" {
			if req[i] == "" {
				return nil, 0, false
			}
			if params == nil {
				params = make(map[string]string, 2)
			}
			params[seg.param] = req[i]
			continue
		}
		if seg.literal != req[i] {
			return nil, 0, false
		}
		literals++
	}
	return params, literals, true
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
