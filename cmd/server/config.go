package main

import (
	"time"

	"github.com/teamgrid/gateway/core/cookie"
	"github.com/teamgrid/gateway/core/logger"
	"github.com/teamgrid/gateway/core/server"
	"github.com/teamgrid/gateway/core/ws"
	"github.com/teamgrid/gateway/integration/database/pg"
	redisdb "github.com/teamgrid/gateway/integration/database/redis"
)

// Config aggregates every component's configuration so one MustLoad call
// at startup surfaces all missing variables at once.
type Config struct {
	AppName string `env:"APP_NAME" envDefault:"gateway"`
	Env     string `env:"APP_ENV" envDefault:"development"`

	// SessionSecret signs session tokens. Startup refuses to run with a
	// short or known-weak secret.
	SessionSecret string        `env:"SESSION_SECRET,required"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	WSTicketTTL   time.Duration `env:"WS_TICKET_TTL" envDefault:"30s"`

	Logger logger.Config
	Server server.Config
	Cookie cookie.Config
	DB     pg.Config
	Redis  redisdb.Config
	WS     ws.Config
}
