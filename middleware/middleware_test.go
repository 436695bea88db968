package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamgrid/gateway/core/cookie"
	"github.com/teamgrid/gateway/core/gateway"
	"github.com/teamgrid/gateway/core/router"
	"github.com/teamgrid/gateway/core/session"
	"github.com/teamgrid/gateway/core/token"
	"github.com/teamgrid/gateway/middleware"
)

const testSecret = "0123456789abcdef0123456789abcdef-mwtest"

func newGateway(t *testing.T, nodes ...gateway.Node) (*gateway.Gateway, *session.Manager) {
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

	table, err := router.Compile(nodes...)
	require.NoError(t, err)

	gw, err := gateway.New(table, sessions, cookie.New(), middleware.Standard()...)
	require.NoError(t, err)
	return gw, sessions
}

func okHandler(ctx *gateway.Context) error {
	ctx.JSON(http.StatusOK, map[string]any{"ok": true})
	return nil
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	gw, sessions := newGateway(t, gateway.Leaf{
		Method:      router.GET,
		Path:        "/private",
		Middlewares: []string{middleware.NameRequireAuth},
		Handler:     okHandler,
	})

	// Anonymous request is rejected.
	w := httptest.NewRecorder()
	gw.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Authenticated request passes.
	anon, _, err := sessions.StartAnonymous(t.Context())
	require.NoError(t, err)
	_, tok, err := sessions.Login(t.Context(), anon, 42)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/private", nil)
	r.AddCookie(&http.Cookie{Name: cookie.DefaultName, Value: tok})
	w = httptest.NewRecorder()
	gw.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireGuest(t *testing.T) {
	t.Parallel()

	gw, sessions := newGateway(t, gateway.Leaf{
		Method:      router.GET,
		Path:        "/login-page",
		Middlewares: []string{middleware.NameRequireGuest},
		Handler:     okHandler,
	})

	w := httptest.NewRecorder()
	gw.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login-page", nil))
	assert.Equal(t, http.StatusOK, w.Code, "guests pass")

	anon, _, err := sessions.StartAnonymous(t.Context())
	require.NoError(t, err)
	_, tok, err := sessions.Login(t.Context(), anon, 42)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/login-page", nil)
	r.AddCookie(&http.Cookie{Name: cookie.DefaultName, Value: tok})
	w = httptest.NewRecorder()
	gw.ServeHTTP(w, r)
	assert.Equal(t, http.StatusForbidden, w.Code, "authenticated users are turned away")
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	var seen string
	gw, _ := newGateway(t, gateway.Leaf{
		Method:      router.GET,
		Path:        "/traced",
		Middlewares: []string{middleware.NameRequestID},
		Handler: func(ctx *gateway.Context) error {
			seen = middleware.RequestIDFrom(ctx)
			ctx.NoContent()
			return nil
		},
	})

	w := httptest.NewRecorder()
	gw.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/traced", nil))

	header := w.Header().Get("X-Request-ID")
	assert.NotEmpty(t, header)
	assert.Equal(t, header, seen, "handler sees the same id the client gets")
}

func TestSecurityHeaders(t *testing.T) {
	t.Parallel()

	gw, _ := newGateway(t, gateway.Leaf{
		Method:      router.GET,
		Path:        "/page",
		Middlewares: []string{middleware.NameSecurityHeaders},
		Handler:     okHandler,
	})

	w := httptest.NewRecorder()
	gw.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/page", nil))

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", w.Header().Get("Referrer-Policy"))
}
