package gateway_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamgrid/gateway/core/cookie"
	"github.com/teamgrid/gateway/core/gateway"
	"github.com/teamgrid/gateway/core/response"
	"github.com/teamgrid/gateway/core/router"
	"github.com/teamgrid/gateway/core/session"
	"github.com/teamgrid/gateway/core/token"
	"github.com/teamgrid/gateway/core/validator"
	"github.com/teamgrid/gateway/pkg/ratelimiter"
)

const testSecret = "0123456789abcdef0123456789abcdef-gateway"

type testEnv struct {
	gw       *gateway.Gateway
	sessions *session.Manager
	redis    *miniredis.Miniredis
	cookies  *cookie.Manager
}

func newEnv(t *testing.T, nodes []gateway.Node, opts ...gateway.Option) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store, err := session.NewRedisStore(client)
	require.NoError(t, err)
	signer, err := token.New(testSecret)
	require.NoError(t, err)
	sessions, err := session.NewManager(store, signer)
	require.NoError(t, err)

	cookies := cookie.New()

	table, err := router.Compile(nodes...)
	require.NoError(t, err)

	limiter, err := ratelimiter.NewRedis(client)
	require.NoError(t, err)
	opts = append([]gateway.Option{gateway.WithLimiter(limiter)}, opts...)

	gw, err := gateway.New(table, sessions, cookies, opts...)
	require.NoError(t, err)

	return &testEnv{gw: gw, sessions: sessions, redis: mr, cookies: cookies}
}

func decode(t *testing.T, body string) map[string]any {
	t.Helper()
	out := make(map[string]any)
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	return out
}

func TestServeHTTPNotFound(t *testing.T) {
	t.Parallel()

	env := newEnv(t, []gateway.Node{
		gateway.Leaf{Method: router.GET, Path: "/exists", Handler: func(ctx *gateway.Context) error {
			ctx.NoContent()
			return nil
		}},
	})

	w := httptest.NewRecorder()
	env.gw.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decode(t, w.Body.String())["code"])
}

func TestServeHTTPHandlerAndAnonymousSession(t *testing.T) {
	t.Parallel()

	env := newEnv(t, []gateway.Node{
		gateway.Leaf{Method: router.GET, Path: "/whoami", Handler: func(ctx *gateway.Context) error {
			ctx.JSON(http.StatusOK, map[string]any{
				"user_id":   ctx.Auth().UserID(),
				"anonymous": !ctx.Auth().Check(),
			})
			return nil
		}},
	})

	w := httptest.NewRecorder()
	env.gw.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w.Body.String())
	assert.Equal(t, "0", body["user_id"])
	assert.Equal(t, true, body["anonymous"])

	// First visit gets an anonymous session cookie.
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, cookie.DefaultName, cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
}

func TestServeHTTPPathParams(t *testing.T) {
	t.Parallel()

	env := newEnv(t, []gateway.Node{
		gateway.Leaf{Method: router.GET, Path: "/notes/:id", Handler: func(ctx *gateway.Context) error {
			ctx.JSON(http.StatusOK, map[string]any{"id": ctx.Param("id")})
			return nil
		}},
	})

	w := httptest.NewRecorder()
	env.gw.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/notes/n42", nil))
	assert.Equal(t, "n42", decode(t, w.Body.String())["id"])
}

func TestServeHTTPForgedTokenFallsBackToAnonymous(t *testing.T) {
	t.Parallel()

	env := newEnv(t, []gateway.Node{
		gateway.Leaf{Method: router.GET, Path: "/whoami", Handler: func(ctx *gateway.Context) error {
			ctx.JSON(http.StatusOK, map[string]any{"user_id": ctx.Auth().UserID()})
			return nil
		}},
	})

	r := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	r.AddCookie(&http.Cookie{Name: cookie.DefaultName, Value: "forged-token"})

	w := httptest.NewRecorder()
	env.gw.ServeHTTP(w, r)

	// No error surfaces; a fresh anonymous session is issued.
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", decode(t, w.Body.String())["user_id"])
	require.Len(t, w.Result().Cookies(), 1)
}

func TestServeHTTPMiddlewareShortCircuit(t *testing.T) {
	t.Parallel()

	handlerRan := false
	env := newEnv(t, []gateway.Node{
		gateway.Leaf{
			Method:      router.GET,
			Path:        "/secure",
			Middlewares: []string{"require_auth"},
			Handler: func(ctx *gateway.Context) error {
				handlerRan = true
				ctx.NoContent()
				return nil
			},
		},
	}, gateway.WithMiddleware("require_auth", func(ctx *gateway.Context) bool {
		if !ctx.Auth().Check() {
			ctx.Fail(response.ErrUnauthorized)
			return false
		}
		return true
	}))

	w := httptest.NewRecorder()
	env.gw.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/secure", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, handlerRan, "handler must not run after short-circuit")
}

func TestServeHTTPMiddlewareDefaultForbidden(t *testing.T) {
	t.Parallel()

	env := newEnv(t, []gateway.Node{
		gateway.Leaf{
			Method:      router.GET,
			Path:        "/blocked",
			Middlewares: []string{"deny"},
			Handler:     func(ctx *gateway.Context) error { return nil },
		},
	}, gateway.WithMiddleware("deny", func(ctx *gateway.Context) bool {
		return false // no response queued
	}))

	w := httptest.NewRecorder()
	env.gw.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/blocked", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestServeHTTPValidation(t *testing.T) {
	t.Parallel()

	env := newEnv(t, []gateway.Node{
		gateway.Leaf{
			Method:    router.POST,
			Path:      "/notes",
			Validator: "note",
			Handler: func(ctx *gateway.Context) error {
				ctx.JSON(http.StatusCreated, map[string]any{"title": ctx.Payload()["title"]})
				return nil
			},
		},
	}, gateway.WithValidator("note", func(payload map[string]any) error {
		c := validator.NewCheck(payload)
		c.RequireString("title", 1, 200)
		return c.Err()
	}))

	// Invalid payload: 422 with per-field messages at the top level.
	r := httptest.NewRequest(http.MethodPost, "/notes", strings.NewReader(`{}`))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.gw.ServeHTTP(w, r)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode(t, w.Body.String())
	assert.Equal(t, "unprocessable_entity", body["code"])
	assert.Contains(t, body["messages"], "title")
	assert.NotContains(t, body, "details")

	// Valid payload reaches the handler.
	r = httptest.NewRequest(http.MethodPost, "/notes", strings.NewReader(`{"title":"hello"}`))
	r.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	env.gw.ServeHTTP(w, r)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "hello", decode(t, w.Body.String())["title"])
}

func TestServeHTTPMalformedJSON(t *testing.T) {
	t.Parallel()

	env := newEnv(t, []gateway.Node{
		gateway.Leaf{Method: router.POST, Path: "/notes", Handler: func(ctx *gateway.Context) error {
			ctx.NoContent()
			return nil
		}},
	})

	r := httptest.NewRequest(http.MethodPost, "/notes", strings.NewReader(`{"broken`))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.gw.ServeHTTP(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServeHTTPRateLimit(t *testing.T) {
	t.Parallel()

	env := newEnv(t, []gateway.Node{
		gateway.Leaf{
			Method:    router.GET,
			Path:      "/limited",
			RateLimit: &ratelimiter.Limit{Window: time.Minute, MaxRequests: 2},
			Handler: func(ctx *gateway.Context) error {
				ctx.NoContent()
				return nil
			},
		},
	})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		env.gw.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/limited", nil))
		require.Equal(t, http.StatusNoContent, w.Code, "request %d within limit", i+1)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := httptest.NewRecorder()
	env.gw.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/limited", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	body := decode(t, w.Body.String())
	assert.Equal(t, "too_many_requests", body["code"])
	retry, ok := body["retryAfter"].(float64)
	require.True(t, ok, "retryAfter must be a top-level number")
	assert.Positive(t, retry)
	assert.NotContains(t, body, "details")
}

func TestServeHTTPRateLimitFailsOpen(t *testing.T) {
	t.Parallel()

	env := newEnv(t, []gateway.Node{
		gateway.Leaf{
			Method:    router.GET,
			Path:      "/limited",
			RateLimit: &ratelimiter.Limit{Window: time.Minute, MaxRequests: 1},
			Handler: func(ctx *gateway.Context) error {
				ctx.NoContent()
				return nil
			},
		},
	})

	// With redis gone both the limiter and session store fail; the request
	// must still be served.
	env.redis.Close()

	w := httptest.NewRecorder()
	env.gw.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/limited", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestServeHTTPLoginFlow(t *testing.T) {
	t.Parallel()

	env := newEnv(t, []gateway.Node{
		gateway.Leaf{Method: router.POST, Path: "/login", Handler: func(ctx *gateway.Context) error {
			if _, err := ctx.Auth().Login(42); err != nil {
				return err
			}
			ctx.JSON(http.StatusOK, map[string]any{"user_id": ctx.Auth().UserID()})
			return nil
		}},
		gateway.Leaf{Method: router.GET, Path: "/whoami", Handler: func(ctx *gateway.Context) error {
			ctx.JSON(http.StatusOK, map[string]any{"user_id": ctx.Auth().UserID()})
			return nil
		}},
	})

	// Establish an anonymous session first.
	w := httptest.NewRecorder()
	env.gw.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	anonCookie := w.Result().Cookies()[0]

	// Login rotates the session and reissues the cookie.
	r := httptest.NewRequest(http.MethodPost, "/login", nil)
	r.AddCookie(anonCookie)
	w = httptest.NewRecorder()
	env.gw.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "42", decode(t, w.Body.String())["user_id"])

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	authCookie := cookies[0]
	assert.NotEqual(t, anonCookie.Value, authCookie.Value, "login must rotate the token")

	// The pre-login token is dead: it resolves to a fresh anonymous session.
	r = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	r.AddCookie(anonCookie)
	w = httptest.NewRecorder()
	env.gw.ServeHTTP(w, r)
	assert.Equal(t, "0", decode(t, w.Body.String())["user_id"])

	// The new token carries the authenticated session.
	r = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	r.AddCookie(authCookie)
	w = httptest.NewRecorder()
	env.gw.ServeHTTP(w, r)
	assert.Equal(t, "42", decode(t, w.Body.String())["user_id"])
}

func TestServeHTTPPanicRecovery(t *testing.T) {
	t.Parallel()

	env := newEnv(t, []gateway.Node{
		gateway.Leaf{Method: router.GET, Path: "/boom", Handler: func(ctx *gateway.Context) error {
			panic("kaboom")
		}},
	})

	w := httptest.NewRecorder()
	env.gw.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "kaboom")
}

func TestNewRejectsDanglingReferences(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store, err := session.NewRedisStore(client)
	require.NoError(t, err)
	signer, err := token.New(testSecret)
	require.NoError(t, err)
	sessions, err := session.NewManager(store, signer)
	require.NoError(t, err)

	table, err := router.Compile[gateway.HandlerFunc](
		gateway.Leaf{
			Method:      router.GET,
			Path:        "/x",
			Middlewares: []string{"nope"},
			Handler:     func(ctx *gateway.Context) error { return nil },
		},
	)
	require.NoError(t, err)

	_, err = gateway.New(table, sessions, cookie.New())
	assert.ErrorIs(t, err, gateway.ErrUnknownMiddleware)

	table, err = router.Compile[gateway.HandlerFunc](
		gateway.Leaf{
			Method:    router.GET,
			Path:      "/y",
			Validator: "nope",
			Handler:   func(ctx *gateway.Context) error { return nil },
		},
	)
	require.NoError(t, err)

	_, err = gateway.New(table, sessions, cookie.New())
	assert.ErrorIs(t, err, gateway.ErrUnknownValidator)
}
