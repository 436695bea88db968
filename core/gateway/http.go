package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/teamgrid/gateway/core/logger"
	"github.com/teamgrid/gateway/core/response"
	"github.com/teamgrid/gateway/core/router"
	"github.com/teamgrid/gateway/core/session"
	"github.com/teamgrid/gateway/pkg/clientip"
)

// maxBodySize caps JSON request bodies at 1MB.
const maxBodySize = 1 << 20

// ServeHTTP implements http.Handler. The pipeline order is fixed: route
// match (404), rate limit (429), session establishment, middlewares,
// payload validation (422), handler. The response is buffered on the
// context and written once at the end, so a handler that fails midway
// never leaves a half-written reply on the wire.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	route, params, ok := g.table.MatchHTTP(router.Method(r.Method), r.URL.Path)
	if !ok {
		_ = response.Error(w, response.ErrNotFound)
		return
	}

	payload, err := decodeBody(r)
	if err != nil {
		_ = response.Error(w, response.ErrBadRequest.WithError(err))
		return
	}

	ctx := &Context{
		base:    r.Context(),
		gateway: g,
		request: r,
		params:  params,
		query:   r.URL.Query(),
		payload: payload,
	}

	defer func() {
		if p := recover(); p != nil {
			err := recoverPanic(p)
			g.log.Error("handler panic",
				logger.Error(err),
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
			)
			ctx.Fail(response.ErrInternalServerError)
			g.flush(ctx, w, r)
		}
	}()

	ip := clientip.GetIP(r)
	g.establishSession(ctx, r)

	err = g.Dispatch(ctx, route, RateKey(route.ID(), ip))
	switch {
	case err == nil, errors.Is(err, errShortCircuit):
		// Queued response stands.
	default:
		ctx.Fail(err)
	}

	g.flush(ctx, w, r)

	g.log.Debug("request served",
		logger.Method(r.Method),
		logger.Path(r.URL.Path),
		logger.ClientIP(ip),
		logger.UserID(ctx.sess.UserID),
		logger.Duration(time.Since(start)),
	)
}

// establishSession resolves the token cookie into a session. Any failure
// falls back to a fresh anonymous session without surfacing an error: an
// expired or forged token must look exactly like a first visit. When even
// the store is down the request still proceeds on an unsaved anonymous
// session, and only the cookie refresh is skipped.
func (g *Gateway) establishSession(ctx *Context, r *http.Request) {
	if tok, err := g.cookies.Read(r); err == nil {
		if sess, err := g.sessions.Resolve(ctx, tok); err == nil {
			ctx.sess = sess
			ctx.token = tok
			return
		} else if !errors.Is(err, session.ErrInvalidToken) && !errors.Is(err, session.ErrNotFound) {
			g.log.Warn("session resolve failed", logger.Error(err))
		}
	}

	sess, token, err := g.sessions.StartAnonymous(ctx)
	if err != nil {
		g.log.Warn("session store unavailable, serving unsaved anonymous session",
			logger.Error(err))
		ctx.sess = session.NewAnonymous()
		return
	}
	ctx.replaceSession(sess, token)
}

// flush writes the queued response in one pass: rate limit headers, queued
// headers, cookie changes, then the body. Nothing is written when the
// client has already gone away.
func (g *Gateway) flush(ctx *Context, w http.ResponseWriter, r *http.Request) {
	if r.Context().Err() != nil {
		return
	}

	ctx.mu.Lock()
	status := ctx.respStatus
	data := ctx.respData
	respErr := ctx.respErr
	header := ctx.respHeader
	setToken := ctx.setToken
	rate := ctx.rate
	ctx.mu.Unlock()

	if rate != nil {
		h := w.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(rate.Limit))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(max(rate.Remaining, 0)))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(rate.ResetAt.Unix(), 10))
		if !rate.Allowed() {
			h.Set("Retry-After", strconv.Itoa(int(rate.RetryAfter().Seconds())+1))
		}
	}
	for key, vals := range header {
		for _, v := range vals {
			w.Header().Add(key, v)
		}
	}
	if setToken != nil {
		if *setToken == "" {
			g.cookies.Clear(w)
		} else {
			g.cookies.Set(w, *setToken)
		}
	}

	if respErr != nil {
		_ = response.Error(w, respErr)
		return
	}
	if status == 0 {
		status = http.StatusOK
		if data == nil {
			status = http.StatusNoContent
		}
	}
	_ = response.JSON(w, status, data)
}

// RateKey builds a limiter key from a route id and a caller identity. The
// identity may be an IP literal whose dots and zone separators fall outside
// the store key allow-list, so those map to hyphens.
func RateKey(routeID, identity string) string {
	return routeID + ":" + strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == ':' || r == '_' || r == '-':
			return r
		default:
			return '-'
		}
	}, identity)
}

// decodeBody parses a JSON request body into a payload map. Non-JSON
// content types and empty bodies yield an empty payload; malformed JSON is
// a client error.
func decodeBody(r *http.Request) (map[string]any, error) {
	if r.Body == nil || r.ContentLength == 0 {
		return map[string]any{}, nil
	}
	if ct := r.Header.Get("Content-Type"); ct != "" {
		if mt, _, err := mime.ParseMediaType(ct); err != nil || mt != "application/json" {
			return map[string]any{}, nil
		}
	}

	payload := make(map[string]any)
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodySize))
	if err := dec.Decode(&payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// NewEventContext builds a context for one websocket message. The websocket
// transport owns session establishment; dispatch picks up from the rate
// limit stage.
func NewEventContext(base context.Context, gw *Gateway, sess *session.Session, token string, payload map[string]any) *Context {
	if payload == nil {
		payload = map[string]any{}
	}
	return &Context{
		base:    base,
		gateway: gw,
		sess:    sess,
		token:   token,
		payload: payload,
	}
}
