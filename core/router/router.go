package router

import (
	"github.com/teamgrid/gateway/pkg/ratelimiter"
)

// Method is the dispatch method of a route. HTTP methods map to their wire
// names; MethodWS marks a websocket event route whose path is the event name.
type Method string

const (
	GET      Method = "GET"
	POST     Method = "POST"
	PUT      Method = "PUT"
	PATCH    Method = "PATCH"
	DELETE   Method = "DELETE"
	MethodWS Method = "WS"
)

// Node is either a Leaf (a single route) or a Group (a prefix with shared
// middleware and rate limits). Trees of nodes compile into a flat Table.
type Node[H any] interface {
	isNode()
}

// Leaf declares one route. For HTTP methods Path is a URL path that may
// contain :name placeholders; for MethodWS Path is the event name.
type Leaf[H any] struct {
	Method      Method
	Path        string
	Handler     H
	Middlewares []string
	Validator   string
	RateLimit   *ratelimiter.Limit
}

func (Leaf[H]) isNode() {}

// Group scopes children under a path prefix. Its middlewares run before any
// leaf middlewares, and its rate limit applies to children that declare none
// of their own.
type Group[H any] struct {
	Prefix      string
	Middlewares []string
	RateLimit   *ratelimiter.Limit
	Children    []Node[H]
}

func (Group[H]) isNode() {}

// Route is a compiled dispatch entry.
type Route[H any] struct {
	Method      Method
	Pattern     string
	Handler     H
	Middlewares []string
	Validator   string
	RateLimit   ratelimiter.Limit // zero value means unlimited

	segments []segment
}

// segment is one precomputed piece of a compiled pattern. A non-empty param
// captures the request segment under that name.
type segment struct {
	literal string
	param   string
}

// ID returns a stable identifier safe for use in rate limiter keys.
func (r *Route[H]) ID() string {
	id := make([]byte, 0, len(r.Method)+1+len(r.Pattern))
	id = append(id, r.Method...)
	id = append(id, '_')
	for i := 0; i < len(r.Pattern); i++ {
		if r.Pattern[i] == '/' {
			id = append(id, '_')
		} else {
			id = append(id, r.Pattern[i])
		}
	}
	return string(id)
}
