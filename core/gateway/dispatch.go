package gateway

import (
	"errors"
	"fmt"

	"github.com/teamgrid/gateway/core/logger"
	"github.com/teamgrid/gateway/core/response"
	"github.com/teamgrid/gateway/core/validator"
)

// Dispatch runs the transport-independent part of the pipeline: rate limit,
// middlewares, payload validation, then the handler. Both the HTTP server
// and the websocket transport funnel through here so the two surfaces never
// drift apart.
//
// The rate limiter fails open: when it is unreachable the request proceeds
// and the outage is logged, because dropping traffic over a limiter hiccup
// is worse than briefly over-admitting.
func (g *Gateway) Dispatch(ctx *Context, route *Route, rateKey string) error {
	if !route.RateLimit.IsZero() && g.limiter != nil {
		res, err := g.limiter.Allow(ctx, rateKey, route.RateLimit)
		if err != nil {
			g.log.Warn("rate limiter unavailable, failing open",
				logger.Error(err),
				logger.Path(route.Pattern),
			)
		} else {
			ctx.rate = res
			if !res.Allowed() {
				return response.ErrTooManyRequests.
					WithRetryAfter(int(res.RetryAfter().Seconds()) + 1)
			}
		}
	}

	for _, name := range route.Middlewares {
		if !g.middlewares[name](ctx) {
			if !ctx.responseQueued() {
				ctx.Fail(response.ErrForbidden)
			}
			return errShortCircuit
		}
	}

	if route.Validator != "" {
		if err := g.validators[route.Validator](ctx.Payload()); err != nil {
			var verr *validator.ValidationError
			if errors.As(err, &verr) {
				return response.ErrUnprocessableEntity.WithMessages(verr.Fields)
			}
			return response.ErrUnprocessableEntity.WithError(err)
		}
	}

	if err := route.Handler(ctx); err != nil {
		return err
	}
	return nil
}

// IsShortCircuit reports whether a Dispatch error means a middleware
// stopped the pipeline with its own queued response, as opposed to a
// handler failure.
func IsShortCircuit(err error) bool {
	return errors.Is(err, errShortCircuit)
}

// recoverPanic converts a handler panic into an error so a single broken
// route cannot take the process down.
func recoverPanic(p any) error {
	if err, ok := p.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", p)
}
