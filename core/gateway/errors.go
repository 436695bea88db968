package gateway

import "errors"

var (
	ErrNilTable          = errors.New("nil route table")
	ErrNilSessionManager = errors.New("nil session manager")
	ErrNilCookieManager  = errors.New("nil cookie manager")
	ErrUnknownMiddleware = errors.New("unknown middleware")
	ErrUnknownValidator  = errors.New("unknown validator")

	// errShortCircuit signals that a middleware stopped the pipeline and
	// the queued response should be flushed as-is.
	errShortCircuit = errors.New("middleware short-circuit")
)
