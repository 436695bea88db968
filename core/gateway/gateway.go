package gateway

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/teamgrid/gateway/core/cookie"
	"github.com/teamgrid/gateway/core/router"
	"github.com/teamgrid/gateway/core/session"
	"github.com/teamgrid/gateway/core/validator"
	"github.com/teamgrid/gateway/pkg/ratelimiter"
)

// HandlerFunc processes one request. Handlers queue their response on the
// context; a returned error renders as a structured error envelope instead.
type HandlerFunc func(ctx *Context) error

// MiddlewareFunc runs before the handler. Returning false stops the
// pipeline; the middleware should queue a response first, otherwise the
// client gets a 403.
type MiddlewareFunc func(ctx *Context) bool

// Route declaration aliases, so applications declare tables without
// spelling out the handler type parameter.
type (
	Node  = router.Node[HandlerFunc]
	Leaf  = router.Leaf[HandlerFunc]
	Group = router.Group[HandlerFunc]
	Route = router.Route[HandlerFunc]
	Table = router.Table[HandlerFunc]
)

// Gateway dispatches HTTP requests and websocket events through a shared
// pipeline: rate limit, session, middlewares, validation, handler.
type Gateway struct {
	table       *Table
	sessions    *session.Manager
	cookies     *cookie.Manager
	limiter     ratelimiter.Limiter
	middlewares map[string]MiddlewareFunc
	validators  map[string]validator.Func
	log         *slog.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithLimiter enables rate limiting. Without it, route limits are ignored.
func WithLimiter(l ratelimiter.Limiter) Option {
	return func(g *Gateway) { g.limiter = l }
}

// WithMiddleware registers a named middleware routes can reference.
func WithMiddleware(name string, mw MiddlewareFunc) Option {
	return func(g *Gateway) { g.middlewares[name] = mw }
}

// WithValidator registers a named payload validator routes can reference.
func WithValidator(name string, v validator.Func) Option {
	return func(g *Gateway) { g.validators[name] = v }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(log *slog.Logger) Option {
	return func(g *Gateway) {
		if log != nil {
			g.log = log
		}
	}
}

// New builds a Gateway over a compiled route table. Every middleware and
// validator name referenced by a route must be registered; a dangling
// reference is a construction error, so broken wiring surfaces at startup
// rather than on the first matching request.
func New(table *Table, sessions *session.Manager, cookies *cookie.Manager, opts ...Option) (*Gateway, error) {
	if table == nil {
		return nil, ErrNilTable
	}
	if sessions == nil {
		return nil, ErrNilSessionManager
	}
	if cookies == nil {
		return nil, ErrNilCookieManager
	}

	g := &Gateway{
		table:       table,
		sessions:    sessions,
		cookies:     cookies,
		middlewares: make(map[string]MiddlewareFunc),
		validators:  make(map[string]validator.Func),
		log:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(g)
	}

	for _, route := range table.Routes() {
		for _, name := range route.Middlewares {
			if _, ok := g.middlewares[name]; !ok {
				return nil, fmt.Errorf("%w: middleware %q on %s %s",
					ErrUnknownMiddleware, name, route.Method, route.Pattern)
			}
		}
		if route.Validator != "" {
			if _, ok := g.validators[route.Validator]; !ok {
				return nil, fmt.Errorf("%w: validator %q on %s %s",
					ErrUnknownValidator, route.Validator, route.Method, route.Pattern)
			}
		}
	}
	return g, nil
}

// Sessions exposes the session manager, used by the websocket transport for
// handshake resolution and per-message revalidation.
func (g *Gateway) Sessions() *session.Manager {
	return g.sessions
}

// MatchEvent resolves a websocket event route.
func (g *Gateway) MatchEvent(event string) (*Route, bool) {
	return g.table.MatchEvent(event)
}
