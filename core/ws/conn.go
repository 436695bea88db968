package ws

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teamgrid/gateway/core/logger"
)

// flushGrace is how long a closing connection waits for the write pump to
// drain a final in-band error frame.
const flushGrace = 50 * time.Millisecond

// conn is one upgraded websocket connection. All writes funnel through the
// send channel so the write pump is the only goroutine touching the socket
// for output.
type conn struct {
	id        string
	ws        *websocket.Conn
	send      chan []byte
	userID    string
	sessionID string
	token     string

	gw     *Gateway
	ctx    context.Context
	cancel context.CancelFunc

	closeOnce sync.Once
}

// Send queues a message for delivery. Returns false when the connection is
// gone or its buffer is full; a full buffer means the client stopped
// reading, so the connection is torn down rather than blocking the caller.
func (c *conn) Send(message []byte) bool {
	select {
	case <-c.ctx.Done():
		return false
	default:
	}

	select {
	case c.send <- message:
		return true
	default:
		c.gw.log.Warn("send buffer full, dropping connection",
			logger.ConnectionID(c.id),
			logger.UserID(c.userID),
		)
		c.close(websocket.ClosePolicyViolation, "send buffer overflow")
		return false
	}
}

// sendReply queues a JSON reply envelope.
func (c *conn) sendReply(r Reply) bool {
	return c.Send(marshalReply(r))
}

// closeAfterFlush gives the write pump a brief grace period to flush
// queued frames, then closes. Used when an in-band error precedes the
// close frame mid-stream.
func (c *conn) closeAfterFlush(code int, reason string) {
	time.Sleep(flushGrace)
	c.close(code, reason)
}

// close tears the connection down exactly once: presence deregistration,
// close frame, socket close, pump cancellation. Every exit path funnels
// here, so a read error racing a server shutdown still cleans up once.
func (c *conn) close(code int, reason string) {
	c.closeOnce.Do(func() {
		if c.userID != "" {
			if last := c.gw.registry.Remove(c.userID, c.id); last {
				c.gw.log.Info("user offline",
					logger.UserID(c.userID),
					logger.ConnectionID(c.id),
				)
			}
		}

		deadline := time.Now().Add(c.gw.cfg.WriteTimeout)
		msg := websocket.FormatCloseMessage(code, reason)
		_ = c.ws.WriteControl(websocket.CloseMessage, msg, deadline)
		_ = c.ws.Close()

		c.cancel()
	})
}

// readPump consumes inbound frames until the connection dies. It owns the
// read side: deadlines, pong handling, and message dispatch.
func (c *conn) readPump() {
	defer c.close(websocket.CloseNormalClosure, "")

	c.ws.SetReadLimit(c.gw.cfg.MaxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(c.gw.cfg.PongTimeout))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(c.gw.cfg.PongTimeout))
	})

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
			) {
				c.gw.log.Warn("websocket read failed",
					logger.Error(err),
					logger.ConnectionID(c.id),
				)
			}
			return
		}
		if !c.gw.handleMessage(c, message) {
			return
		}
	}
}

// writePump drains the send channel onto the socket and keeps the
// connection alive with periodic pings.
func (c *conn) writePump() {
	ticker := time.NewTicker(c.gw.cfg.pingPeriod())
	defer func() {
		ticker.Stop()
		c.close(websocket.CloseNormalClosure, "")
	}()

	for {
		select {
		case <-c.ctx.Done():
			return
		case message := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.gw.cfg.WriteTimeout))
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.gw.cfg.WriteTimeout))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
