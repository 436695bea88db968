package middleware

import (
	"github.com/google/uuid"

	"github.com/teamgrid/gateway/core/gateway"
	"github.com/teamgrid/gateway/core/response"
)

// Registry names under which the standard middlewares register. Route
// declarations reference these strings.
const (
	NameRequireAuth     = "require_auth"
	NameRequireGuest    = "require_guest"
	NameRequestID       = "request_id"
	NameSecurityHeaders = "security_headers"
)

// requestIDKey is the context key RequestID stores its value under.
type requestIDKey struct{}

// RequireAuth stops requests that do not carry an authenticated session.
func RequireAuth() gateway.MiddlewareFunc {
	return func(ctx *gateway.Context) bool {
		if !ctx.Auth().Check() {
			ctx.Fail(response.ErrUnauthorized)
			return false
		}
		return true
	}
}

// RequireGuest stops requests from authenticated users, for routes like
// login that make no sense mid-session.
func RequireGuest() gateway.MiddlewareFunc {
	return func(ctx *gateway.Context) bool {
		if ctx.Auth().Check() {
			ctx.Fail(response.ErrForbidden.WithMessage("already authenticated"))
			return false
		}
		return true
	}
}

// RequestID tags each request with a unique id, echoed in the X-Request-ID
// response header and available to handlers via RequestIDFrom.
func RequestID() gateway.MiddlewareFunc {
	return func(ctx *gateway.Context) bool {
		id := uuid.NewString()
		ctx.SetValue(requestIDKey{}, id)
		ctx.SetHeader("X-Request-ID", id)
		return true
	}
}

// RequestIDFrom extracts the request id set by RequestID, or "".
func RequestIDFrom(ctx *gateway.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// SecurityHeaders sets the baseline browser hardening headers on HTTP
// responses. A no-op for websocket events, which have no response headers.
func SecurityHeaders() gateway.MiddlewareFunc {
	return func(ctx *gateway.Context) bool {
		if ctx.Request() == nil {
			return true
		}
		ctx.SetHeader("X-Content-Type-Options", "nosniff")
		ctx.SetHeader("X-Frame-Options", "DENY")
		ctx.SetHeader("Referrer-Policy", "strict-origin-when-cross-origin")
		return true
	}
}

// Standard returns the gateway options registering every middleware in
// this package under its conventional name.
func Standard() []gateway.Option {
	return []gateway.Option{
		gateway.WithMiddleware(NameRequireAuth, RequireAuth()),
		gateway.WithMiddleware(NameRequireGuest, RequireGuest()),
		gateway.WithMiddleware(NameRequestID, RequestID()),
		gateway.WithMiddleware(NameSecurityHeaders, SecurityHeaders()),
	}
}
