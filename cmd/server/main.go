package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/teamgrid/gateway/app/auth"
	"github.com/teamgrid/gateway/app/migrations"
	"github.com/teamgrid/gateway/app/notes"
	"github.com/teamgrid/gateway/core/config"
	"github.com/teamgrid/gateway/core/cookie"
	"github.com/teamgrid/gateway/core/gateway"
	"github.com/teamgrid/gateway/core/health"
	"github.com/teamgrid/gateway/core/logger"
	"github.com/teamgrid/gateway/core/presence"
	"github.com/teamgrid/gateway/core/router"
	"github.com/teamgrid/gateway/core/server"
	"github.com/teamgrid/gateway/core/session"
	"github.com/teamgrid/gateway/core/token"
	"github.com/teamgrid/gateway/core/ws"
	"github.com/teamgrid/gateway/integration/database/pg"
	redisdb "github.com/teamgrid/gateway/integration/database/redis"
	"github.com/teamgrid/gateway/middleware"
	"github.com/teamgrid/gateway/pkg/ratelimiter"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg Config
	config.MustLoad(&cfg)

	log := logger.New(cfg.Logger).With("app", cfg.AppName, "env", cfg.Env)

	// Infrastructure.
	rdb, err := redisdb.Connect(ctx, cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", logger.Error(err))
		os.Exit(1)
	}
	defer rdb.Close()

	pool, err := pg.Connect(ctx, cfg.DB)
	if err != nil {
		log.Error("failed to connect to postgres", logger.Error(err))
		os.Exit(1)
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, migrations.FS, cfg.DB, log.With(logger.Component("migrations"))); err != nil {
		log.Error("failed to apply migrations", logger.Error(err))
		os.Exit(1)
	}

	// Session stack. A weak signing secret is a refusal to start.
	signer, err := token.New(cfg.SessionSecret)
	if err != nil {
		log.Error("rejecting session secret", logger.Error(err))
		os.Exit(1)
	}
	store, err := session.NewRedisStore(rdb, session.WithTTL(cfg.SessionTTL))
	if err != nil {
		log.Error("failed to create session store", logger.Error(err))
		os.Exit(1)
	}
	sessions, err := session.NewManager(store, signer, session.WithLogger(log))
	if err != nil {
		log.Error("failed to create session manager", logger.Error(err))
		os.Exit(1)
	}
	cookies := cookie.NewFromConfig(cfg.Cookie)

	limiter, err := ratelimiter.NewRedis(rdb)
	if err != nil {
		log.Error("failed to create rate limiter", logger.Error(err))
		os.Exit(1)
	}
	tickets, err := ws.NewTicketStore(rdb, ws.WithTicketTTL(cfg.WSTicketTTL))
	if err != nil {
		log.Error("failed to create ticket store", logger.Error(err))
		os.Exit(1)
	}

	// Application services.
	authSvc, err := auth.NewService(auth.NewPGRepository(pool), tickets, auth.WithLogger(log))
	if err != nil {
		log.Error("failed to create auth service", logger.Error(err))
		os.Exit(1)
	}
	notesSvc, err := notes.NewService(notes.NewPGRepository(pool), notes.WithLogger(log))
	if err != nil {
		log.Error("failed to create notes service", logger.Error(err))
		os.Exit(1)
	}

	// Route table; any structural defect is fatal before the listener opens.
	table := router.MustCompile[gateway.HandlerFunc](
		health.Routes(log, pg.Healthcheck(pool), redisdb.Healthcheck(rdb)),
		auth.Routes(authSvc),
		notes.Routes(notesSvc),
		notes.EventRoutes(notesSvc),
	)

	opts := middleware.Standard()
	opts = append(opts, auth.Validators()...)
	opts = append(opts, notes.Validators()...)
	opts = append(opts,
		gateway.WithLimiter(limiter),
		gateway.WithLogger(log.With(logger.Component("gateway"))),
	)
	core, err := gateway.New(table, sessions, cookies, opts...)
	if err != nil {
		log.Error("failed to create gateway", logger.Error(err))
		os.Exit(1)
	}

	sockets, err := ws.New(core, tickets, presence.NewRegistry(), cfg.WS,
		ws.WithLogger(log.With(logger.Component("ws"))))
	if err != nil {
		log.Error("failed to create websocket gateway", logger.Error(err))
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.Handle("/ws", sockets)
	mux.Handle("/", core)

	srv, err := server.NewFromConfig(cfg.Server, server.WithLogger(log.With(logger.Component("server"))))
	if err != nil {
		log.Error("failed to create server", logger.Error(err))
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Run(gctx, mux))
	g.Go(func() error {
		<-gctx.Done()
		sockets.Shutdown()
		return nil
	})

	log.Info("gateway started", "addr", cfg.Server.Addr)
	if err := g.Wait(); err != nil {
		log.Error("gateway exited with error", logger.Error(err))
		os.Exit(1)
	}
	log.Info("gateway stopped")
}
