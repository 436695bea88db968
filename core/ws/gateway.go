package ws

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/teamgrid/gateway/core/gateway"
	"github.com/teamgrid/gateway/core/logger"
	"github.com/teamgrid/gateway/core/presence"
	"github.com/teamgrid/gateway/core/response"
	"github.com/teamgrid/gateway/pkg/clientip"
)

// Config tunes the websocket transport.
type Config struct {
	ReadBufferSize  int           `env:"WS_READ_BUFFER_SIZE" envDefault:"1024"`
	WriteBufferSize int           `env:"WS_WRITE_BUFFER_SIZE" envDefault:"1024"`
	MaxMessageSize  int64         `env:"WS_MAX_MESSAGE_SIZE" envDefault:"65536"`
	WriteTimeout    time.Duration `env:"WS_WRITE_TIMEOUT" envDefault:"10s"`
	PongTimeout     time.Duration `env:"WS_PONG_TIMEOUT" envDefault:"60s"`
	SendBuffer      int           `env:"WS_SEND_BUFFER" envDefault:"256"`
}

// pingPeriod keeps pings comfortably inside the pong timeout.
func (c Config) pingPeriod() time.Duration {
	return c.PongTimeout * 9 / 10
}

func (c Config) withDefaults() Config {
	if c.ReadBufferSize <= 0 {
		c.ReadBufferSize = 1024
	}
	if c.WriteBufferSize <= 0 {
		c.WriteBufferSize = 1024
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = 65536
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.PongTimeout <= 0 {
		c.PongTimeout = 60 * time.Second
	}
	if c.SendBuffer <= 0 {
		c.SendBuffer = 256
	}
	return c
}

// Gateway is the websocket transport: it authenticates handshakes through
// single-use tickets, tracks presence, and dispatches event messages
// through the shared request pipeline.
type Gateway struct {
	core     *gateway.Gateway
	tickets  *TicketStore
	registry *presence.Registry
	upgrader websocket.Upgrader
	cfg      Config
	log      *slog.Logger

	baseCtx    context.Context
	cancelBase context.CancelFunc
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(log *slog.Logger) Option {
	return func(g *Gateway) {
		if log != nil {
			g.log = log
		}
	}
}

// WithCheckOrigin overrides the upgrader's origin policy.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(g *Gateway) {
		g.upgrader.CheckOrigin = fn
	}
}

// New creates a websocket gateway over the shared dispatch core.
func New(core *gateway.Gateway, tickets *TicketStore, registry *presence.Registry, cfg Config, opts ...Option) (*Gateway, error) {
	if core == nil {
		return nil, errors.New("nil dispatch core")
	}
	if tickets == nil {
		return nil, errors.New("nil ticket store")
	}
	if registry == nil {
		return nil, errors.New("nil presence registry")
	}

	cfg = cfg.withDefaults()
	baseCtx, cancel := context.WithCancel(context.Background())

	g := &Gateway{
		core:     core,
		tickets:  tickets,
		registry: registry,
		cfg:      cfg,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
		},
		baseCtx:    baseCtx,
		cancelBase: cancel,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Registry exposes the presence registry for application handlers that
// push messages to connected users.
func (g *Gateway) Registry() *presence.Registry {
	return g.registry
}

// Shutdown cancels every connection's context, which unwinds the pumps and
// runs each connection's cleanup exactly once.
func (g *Gateway) Shutdown() {
	g.cancelBase()
}

// ServeHTTP performs the websocket handshake.
//
// The ticket is checked in two stages. A structurally invalid ticket
// (wrong length or alphabet) is rejected before the upgrade with a plain
// 401: no socket is spent on garbage. A well-formed ticket upgrades first
// and is resolved after, so a stale-but-plausible ticket gets an in-band
// service error and close code 4001 that browser clients can actually
// observe, which a failed upgrade would hide from them.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ticket := r.URL.Query().Get("token")
	if !WellFormedTicket(ticket) {
		_ = response.Error(w, response.ErrUnauthorized)
		return
	}

	sock, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the handshake failure.
		return
	}

	// Resolution happens before the pumps start, so rejection frames can
	// be written directly without racing the write pump.
	token, err := g.resolveTicket(r.Context(), ticket)
	if err == nil {
		var sess *sessionRecord
		sess, err = g.resolveSession(r.Context(), token)
		if err == nil {
			g.serve(sock, r, sess, token)
			return
		}
	}
	rejectSocket(sock, g.cfg.WriteTimeout)
}

type sessionRecord struct {
	userID    string
	sessionID string
}

func (g *Gateway) resolveSession(ctx context.Context, token string) (*sessionRecord, error) {
	sess, err := g.core.Sessions().Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	return &sessionRecord{userID: sess.UserID, sessionID: sess.ID}, nil
}

// rejectSocket delivers the in-band unauthorized error and the 4001 close
// frame on a connection that never entered service.
func rejectSocket(sock *websocket.Conn, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	_ = sock.SetWriteDeadline(deadline)
	_ = sock.WriteMessage(websocket.TextMessage, marshalReply(errorReply(EventError, response.ErrUnauthorized)))
	_ = sock.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(CloseUnauthorized, "unauthorized"), deadline)
	_ = sock.Close()
}

// serve runs an authenticated connection until it dies.
func (g *Gateway) serve(sock *websocket.Conn, r *http.Request, sess *sessionRecord, token string) {
	connCtx, cancel := context.WithCancel(g.baseCtx)
	c := &conn{
		id:        uuid.NewString(),
		ws:        sock,
		send:      make(chan []byte, g.cfg.SendBuffer),
		userID:    sess.userID,
		sessionID: sess.sessionID,
		token:     token,
		gw:        g,
		ctx:       connCtx,
		cancel:    cancel,
	}

	// The welcome frame is written before the pumps start, so it is
	// guaranteed to be the first frame the client reads and no other
	// writer can race it.
	welcome := marshalReply(Reply{
		Event:  EventConnectionEstablished,
		Status: http.StatusOK,
		Data: map[string]any{
			"socketId":        c.id,
			"activityTimeout": int(g.cfg.PongTimeout.Seconds()),
		},
	})
	_ = sock.SetWriteDeadline(time.Now().Add(g.cfg.WriteTimeout))
	if err := sock.WriteMessage(websocket.TextMessage, welcome); err != nil {
		cancel()
		_ = sock.Close()
		return
	}

	entry := presence.Entry{
		UserID:    c.userID,
		ConnID:    c.id,
		IP:        clientip.GetIP(r),
		UserAgent: r.UserAgent(),
	}
	if first := g.registry.Add(entry, c); first {
		g.log.Info("user online",
			logger.UserID(c.userID),
			logger.ConnectionID(c.id),
		)
	}

	go c.writePump()
	c.readPump()
}

func (g *Gateway) resolveTicket(ctx context.Context, ticket string) (string, error) {
	token, err := g.tickets.Redeem(ctx, ticket)
	if err != nil {
		if !errors.Is(err, ErrTicketNotFound) {
			g.log.Warn("ticket store unavailable", logger.Error(err))
		}
		return "", err
	}
	return token, nil
}

// handleMessage processes one inbound frame. Returns false when the
// connection must close.
func (g *Gateway) handleMessage(c *conn, message []byte) bool {
	// Bare "ping" bypasses JSON entirely.
	if bytes.Equal(bytes.TrimSpace(message), rawPing) {
		c.Send(rawPong)
		return true
	}

	var env Envelope
	if err := json.Unmarshal(message, &env); err != nil || env.Event == "" {
		c.sendReply(errorReply(EventError, response.ErrBadRequest.WithMessage("malformed message")))
		return true
	}

	if env.Event == EventPing {
		c.sendReply(Reply{
			Event:  EventPong,
			Status: http.StatusOK,
			Data:   map[string]any{"time": time.Now().UTC().Format(time.RFC3339)},
		})
		return true
	}

	// The session may have been destroyed since the handshake (logout on
	// another tab, admin revocation). Every message revalidates it; a dead
	// session closes the connection the same way a bad handshake does.
	sess, err := g.core.Sessions().Resolve(c.ctx, c.token)
	if err != nil {
		c.sendReply(errorReply(EventError, response.ErrUnauthorized))
		c.closeAfterFlush(CloseUnauthorized, "session expired")
		return false
	}

	route, ok := g.core.MatchEvent(env.Event)
	if !ok {
		c.sendReply(errorReply(env.Event, response.ErrNotFound.WithMessage("unknown event")))
		return true
	}

	ctx := gateway.NewEventContext(c.ctx, g.core, sess, c.token, env.Payload)
	err = g.core.Dispatch(ctx, route, gateway.RateKey(route.ID(), sess.UserID))

	status, data, respErr := ctx.Response()
	if err != nil && !gateway.IsShortCircuit(err) {
		respErr = err
	}

	if respErr != nil {
		var httpErr response.HTTPError
		if !errors.As(respErr, &httpErr) {
			httpErr = response.ErrInternalServerError
			g.log.Error("event handler failed",
				logger.Error(respErr),
				logger.Event(env.Event),
				logger.UserID(sess.UserID),
			)
		}
		c.sendReply(errorReply(env.Event, httpErr))
		return true
	}

	if status == 0 {
		status = http.StatusOK
	}
	c.sendReply(Reply{Event: env.Event, Status: status, Data: data})
	return true
}
