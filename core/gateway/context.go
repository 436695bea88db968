package gateway

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/teamgrid/gateway/core/session"
	"github.com/teamgrid/gateway/pkg/ratelimiter"
)

// Context carries one request through the dispatch pipeline. It is built
// per HTTP request or per websocket message, and is not safe for use after
// the handler returns.
type Context struct {
	base context.Context

	gateway *Gateway
	request *http.Request // nil for websocket messages

	params  map[string]string
	query   url.Values
	payload map[string]any

	sess  *session.Session
	token string // current signed token for sess

	mu         sync.Mutex
	respStatus int
	respData   any
	respErr    error
	respHeader http.Header
	setToken   *string // cookie to (re)issue on flush, "" clears
	rate       *ratelimiter.Result

	values map[any]any
}

// Compile-time check that Context satisfies context.Context like the rest
// of the stack expects.
var _ context.Context = (*Context)(nil)

func (c *Context) Deadline() (time.Time, bool) { return c.base.Deadline() }
func (c *Context) Done() <-chan struct{}       { return c.base.Done() }
func (c *Context) Err() error                  { return c.base.Err() }

func (c *Context) Value(key any) any {
	if v, ok := c.values[key]; ok {
		return v
	}
	return c.base.Value(key)
}

// SetValue stores a request-scoped value, visible to later middlewares and
// the handler.
func (c *Context) SetValue(key, val any) {
	if c.values == nil {
		c.values = make(map[any]any)
	}
	c.values[key] = val
}

// Request returns the underlying HTTP request, or nil for websocket
// messages.
func (c *Context) Request() *http.Request { return c.request }

// Param returns a path placeholder value captured during route matching.
func (c *Context) Param(key string) string { return c.params[key] }

// Query returns a URL query parameter. Always empty for websocket messages.
func (c *Context) Query(key string) string {
	if c.query == nil {
		return ""
	}
	return c.query.Get(key)
}

// Payload returns the decoded request payload: the JSON body for HTTP, the
// message payload for websocket events. Never nil.
func (c *Context) Payload() map[string]any {
	if c.payload == nil {
		return map[string]any{}
	}
	return c.payload
}

// Session returns the established session. It is never nil inside the
// pipeline; an unresolvable token falls back to a fresh anonymous session.
func (c *Context) Session() *session.Session { return c.sess }

// Token returns the signed token for the current session.
func (c *Context) Token() string { return c.token }

// JSON queues a response body with the given status. The response is
// written once, after the handler returns.
func (c *Context) JSON(status int, data any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.respStatus = status
	c.respData = data
	c.respErr = nil
}

// NoContent queues an empty 204 response.
func (c *Context) NoContent() {
	c.JSON(http.StatusNoContent, nil)
}

// Fail queues an error response, replacing any queued body.
func (c *Context) Fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.respErr = err
	c.respData = nil
}

// SetHeader queues a response header. Ignored for websocket messages.
func (c *Context) SetHeader(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.respHeader == nil {
		c.respHeader = make(http.Header)
	}
	c.respHeader.Set(key, value)
}

// replaceSession swaps the active session and schedules the token for
// delivery: a cookie on HTTP, available via Token for websocket handlers.
func (c *Context) replaceSession(sess *session.Session, token string) {
	c.sess = sess
	c.token = token
	t := token
	c.setToken = &t
}

// Response returns the queued response for transports that deliver it
// outside the HTTP flush path, such as websocket replies.
func (c *Context) Response() (status int, data any, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.respStatus, c.respData, c.respErr
}

func (c *Context) responseQueued() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.respStatus != 0 || c.respErr != nil
}

// Auth returns the authentication capability bound to this request.
func (c *Context) Auth() *Auth {
	return &Auth{ctx: c}
}

// SessionAccess returns the session data capability bound to this request.
func (c *Context) SessionAccess() *SessionAccess {
	return &SessionAccess{ctx: c}
}
