// Package gateway dispatches HTTP requests and websocket events through a
// single pipeline.
//
// A Gateway wraps a compiled route table and runs every request through the
// same stages in a fixed order: route match, rate limit, session
// establishment, named middlewares, payload validation, handler. Handlers
// queue their response on the Context; the gateway writes it once at the
// end, so an aborted connection or a mid-handler failure never produces a
// partial reply.
//
// Middlewares and validators are registered by name at construction and
// referenced by name in route declarations. A route referencing an
// unregistered name fails Gateway construction, not the first request.
//
// Session establishment never rejects a request: an expired, forged, or
// missing token silently yields a fresh anonymous session. Routes that
// require authentication opt in through the require_auth middleware.
package gateway
