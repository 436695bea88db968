// Package middleware provides the standard named middlewares routes can
// reference.
//
// Middlewares run after session establishment and before payload
// validation. Returning false stops the pipeline with whatever response
// the middleware queued. Registration happens by name through
// gateway.WithMiddleware; Standard bundles the whole set.
package middleware
