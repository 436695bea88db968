package health

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/teamgrid/gateway/core/gateway"
	"github.com/teamgrid/gateway/core/logger"
	"github.com/teamgrid/gateway/core/response"
	"github.com/teamgrid/gateway/core/router"
)

// Check verifies one dependency, for example pg.Healthcheck(pool) or
// redis.Healthcheck(client).
type Check func(context.Context) error

// Liveness reports that the process is running. No dependencies are
// consulted.
func Liveness() gateway.HandlerFunc {
	return func(ctx *gateway.Context) error {
		ctx.JSON(http.StatusOK, map[string]string{"status": "alive"})
		return nil
	}
}

// Readiness runs every dependency check and fails with 503 on the first
// failure.
func Readiness(log *slog.Logger, checks ...Check) gateway.HandlerFunc {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return func(ctx *gateway.Context) error {
		for _, check := range checks {
			if err := check(ctx); err != nil {
				log.ErrorContext(ctx, "readiness check failed", logger.Error(err))
				ctx.Fail(response.ErrServiceUnavailable)
				return nil
			}
		}
		ctx.JSON(http.StatusOK, map[string]string{"status": "ready"})
		return nil
	}
}

// Routes declares the probe endpoints.
func Routes(log *slog.Logger, checks ...Check) gateway.Node {
	return gateway.Group{
		Prefix: "/health",
		Children: []gateway.Node{
			gateway.Leaf{Method: router.GET, Path: "/live", Handler: Liveness()},
			gateway.Leaf{Method: router.GET, Path: "/ready", Handler: Readiness(log, checks...)},
		},
	}
}
