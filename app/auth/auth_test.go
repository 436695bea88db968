package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamgrid/gateway/app/auth"
	"github.com/teamgrid/gateway/core/cookie"
	"github.com/teamgrid/gateway/core/gateway"
	"github.com/teamgrid/gateway/core/router"
	"github.com/teamgrid/gateway/core/session"
	"github.com/teamgrid/gateway/core/token"
	"github.com/teamgrid/gateway/core/ws"
	"github.com/teamgrid/gateway/middleware"
	"github.com/teamgrid/gateway/pkg/ratelimiter"
)

const testSecret = "0123456789abcdef0123456789abcdef-authtest"

type fakeRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*auth.User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[int64]*auth.User)}
}

func (r *fakeRepo) Create(_ context.Context, email, name string, hash []byte) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return nil, auth.ErrEmailTaken
		}
	}
	r.nextID++
	u := &auth.User{ID: r.nextID, Email: email, Name: name, PasswordHash: hash}
	r.users[u.ID] = u
	return u, nil
}

func (r *fakeRepo) ByEmail(_ context.Context, email string) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (r *fakeRepo) ByID(_ context.Context, id int64) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return u, nil
}

type authEnv struct {
	server  *httptest.Server
	client  *http.Client
	tickets *ws.TicketStore
	repo    *fakeRepo
	redis   *miniredis.Miniredis
}

func newAuthEnv(t *testing.T) *authEnv {
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

	tickets, err := ws.NewTicketStore(client)
	require.NoError(t, err)

	repo := newFakeRepo()
	svc, err := auth.NewService(repo, tickets)
	require.NoError(t, err)

	table, err := router.Compile[gateway.HandlerFunc](auth.Routes(svc))
	require.NoError(t, err)

	limiter, err := ratelimiter.NewRedis(client)
	require.NoError(t, err)

	opts := append(middleware.Standard(), auth.Validators()...)
	opts = append(opts, gateway.WithLimiter(limiter))
	gw, err := gateway.New(table, sessions, cookie.New(), opts...)
	require.NoError(t, err)

	server := httptest.NewServer(gw)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &authEnv{
		server:  server,
		client:  &http.Client{Jar: jar},
		tickets: tickets,
		repo:    repo,
		redis:   mr,
	}
}

func (e *authEnv) post(t *testing.T, path string, payload map[string]any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := e.client.Post(e.server.URL+path, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func (e *authEnv) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := e.client.Get(e.server.URL + path)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	out := make(map[string]any)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func register(t *testing.T, env *authEnv, email, password string) map[string]any {
	t.Helper()
	resp := env.post(t, "/auth/register", map[string]any{
		"email":    email,
		"password": password,
		"name":     "Test User",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode(t, resp)
}

func TestRegisterSignsIn(t *testing.T) {
	t.Parallel()
	env := newAuthEnv(t)

	body := register(t, env, "alice@example.com", "s3cret-pass")
	assert.Equal(t, "1", body["id"])
	assert.Equal(t, "alice@example.com", body["email"])
	assert.NotContains(t, body, "password_hash")

	// The session cookie now belongs to the new user.
	me := env.get(t, "/auth/me")
	assert.Equal(t, http.StatusOK, me.StatusCode)
	assert.Equal(t, "alice@example.com", decode(t, me)["email"])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()
	env := newAuthEnv(t)

	register(t, env, "alice@example.com", "s3cret-pass")

	// A second client, same email with different case.
	fresh := newAuthEnvClient(t, env)
	resp := fresh.post(t, "/auth/register", map[string]any{
		"email":    "Alice@Example.com",
		"password": "other-pass-123",
		"name":     "Imposter",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

// newAuthEnvClient returns a copy of env with its own cookie jar.
func newAuthEnvClient(t *testing.T, env *authEnv) *authEnv {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	clone := *env
	clone.client = &http.Client{Jar: jar}
	return &clone
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()
	env := newAuthEnv(t)

	resp := env.post(t, "/auth/register", map[string]any{
		"email":    "not-an-email",
		"password": "short",
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	body := decode(t, resp)
	messages, ok := body["messages"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, messages, "email")
	assert.Contains(t, messages, "password")
	assert.Contains(t, messages, "name")
}

func TestLoginWrongPasswordMatchesUnknownEmail(t *testing.T) {
	t.Parallel()
	env := newAuthEnv(t)

	register(t, env, "alice@example.com", "s3cret-pass")
	require.Equal(t, http.StatusNoContent, env.post(t, "/auth/logout", nil).StatusCode)

	wrongPass := env.post(t, "/auth/login", map[string]any{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	unknown := env.post(t, "/auth/login", map[string]any{
		"email":    "nobody@example.com",
		"password": "wrong-password",
	})

	require.Equal(t, http.StatusUnauthorized, wrongPass.StatusCode)
	require.Equal(t, http.StatusUnauthorized, unknown.StatusCode)

	// Indistinguishable responses: no account enumeration.
	assert.Equal(t, decode(t, wrongPass)["message"], decode(t, unknown)["message"])
}

func TestLoginLogoutFlow(t *testing.T) {
	t.Parallel()
	env := newAuthEnv(t)

	register(t, env, "alice@example.com", "s3cret-pass")

	// Logging in again while authenticated is blocked by the guest guard.
	blocked := env.post(t, "/auth/login", map[string]any{
		"email":    "alice@example.com",
		"password": "s3cret-pass",
	})
	assert.Equal(t, http.StatusForbidden, blocked.StatusCode)
	blocked.Body.Close()

	resp := env.post(t, "/auth/logout", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	// Back to anonymous: /auth/me now requires auth.
	me := env.get(t, "/auth/me")
	assert.Equal(t, http.StatusUnauthorized, me.StatusCode)
	me.Body.Close()

	login := env.post(t, "/auth/login", map[string]any{
		"email":    "alice@example.com",
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, login.StatusCode)
	assert.Equal(t, "alice@example.com", decode(t, login)["email"])
}

func TestLogoutAllRevokesSessions(t *testing.T) {
	t.Parallel()
	env := newAuthEnv(t)

	register(t, env, "alice@example.com", "s3cret-pass")

	// A second device logs into the same account.
	second := newAuthEnvClient(t, env)
	resp := second.post(t, "/auth/login", map[string]any{
		"email":    "alice@example.com",
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	out := env.post(t, "/auth/logout-all", nil)
	require.Equal(t, http.StatusOK, out.StatusCode)
	assert.InDelta(t, 2, decode(t, out)["sessions_revoked"], 0)

	// Both devices are anonymous again.
	me := second.get(t, "/auth/me")
	assert.Equal(t, http.StatusUnauthorized, me.StatusCode)
	me.Body.Close()
}

func TestWSTicketMintAndRedeem(t *testing.T) {
	t.Parallel()
	env := newAuthEnv(t)

	// Anonymous callers cannot mint tickets.
	denied := env.post(t, "/auth/ws-ticket", nil)
	assert.Equal(t, http.StatusUnauthorized, denied.StatusCode)
	denied.Body.Close()

	register(t, env, "alice@example.com", "s3cret-pass")

	resp := env.post(t, "/auth/ws-ticket", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)

	ticket, _ := body["ticket"].(string)
	assert.True(t, ws.WellFormedTicket(ticket))
	assert.InDelta(t, ws.DefaultTicketTTL.Seconds(), body["expires_in"], 0)

	// The ticket resolves to the caller's session token, once.
	tok, err := env.tickets.Redeem(t.Context(), ticket)
	require.NoError(t, err)
	assert.NotEmpty(t, tok)

	_, err = env.tickets.Redeem(t.Context(), ticket)
	assert.ErrorIs(t, err, ws.ErrTicketNotFound)
}
