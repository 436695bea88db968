// Package health provides liveness and readiness probe handlers for the
// gateway pipeline.
//
// Liveness reports that the process is running; Readiness additionally
// verifies dependencies through func(context.Context) error checks such
// as pg.Healthcheck or redis.Healthcheck. Routes bundles both under
// /health/live and /health/ready.
package health
