package gateway

import (
	"github.com/teamgrid/gateway/core/session"
)

// Auth exposes login state transitions to handlers. Every transition swaps
// the session record wholesale: logging in or out mints a fresh session id
// and invalidates the previous token.
type Auth struct {
	ctx *Context
}

// UserID returns the normalized user id of the current session,
// userid.Anonymous for guests.
func (a *Auth) UserID() string {
	return a.ctx.sess.UserID
}

// Check reports whether the current session belongs to an authenticated
// user.
func (a *Auth) Check() bool {
	return !a.ctx.sess.IsAnonymous()
}

// Login rotates the current session onto the given user and returns the new
// signed token. On HTTP the token is also queued as a cookie.
func (a *Auth) Login(rawUserID any) (string, error) {
	sess, token, err := a.ctx.gateway.sessions.Login(a.ctx, a.ctx.sess, rawUserID)
	if err != nil {
		return "", err
	}
	a.ctx.replaceSession(sess, token)
	return token, nil
}

// Logout destroys the current session and starts a fresh anonymous one.
func (a *Auth) Logout() error {
	sess, token, err := a.ctx.gateway.sessions.Logout(a.ctx, a.ctx.sess)
	if err != nil {
		return err
	}
	a.ctx.replaceSession(sess, token)
	return nil
}

// LogoutAll destroys every session of the current user, this one included,
// then starts a fresh anonymous session. Returns the number of sessions
// removed.
func (a *Auth) LogoutAll() (int, error) {
	if a.ctx.sess.IsAnonymous() {
		return 0, session.ErrAnonymousLogin
	}
	removed, err := a.ctx.gateway.sessions.LogoutAll(a.ctx, a.ctx.sess.UserID)
	if err != nil {
		return 0, err
	}
	sess, token, err := a.ctx.gateway.sessions.StartAnonymous(a.ctx)
	if err != nil {
		return removed, err
	}
	a.ctx.replaceSession(sess, token)
	return removed, nil
}

// SessionAccess exposes session data operations to handlers.
type SessionAccess struct {
	ctx *Context
}

// Info returns the current session.
func (s *SessionAccess) Info() *session.Session {
	return s.ctx.sess
}

// UpdateData merges a patch into the session data. Keys present in the
// patch overwrite, others survive.
func (s *SessionAccess) UpdateData(patch map[string]any) error {
	sess, err := s.ctx.gateway.sessions.UpdateData(s.ctx, s.ctx.sess, patch)
	if err != nil {
		return err
	}
	s.ctx.sess = sess
	return nil
}

// ChangeData replaces the session data wholesale.
func (s *SessionAccess) ChangeData(data map[string]any) error {
	sess, err := s.ctx.gateway.sessions.ChangeData(s.ctx, s.ctx.sess, data)
	if err != nil {
		return err
	}
	s.ctx.sess = sess
	return nil
}

// Destroy removes the session record and clears the cookie on HTTP.
func (s *SessionAccess) Destroy() error {
	if err := s.ctx.gateway.sessions.Destroy(s.ctx, s.ctx.sess); err != nil {
		return err
	}
	s.ctx.sess = session.NewAnonymous()
	s.ctx.token = ""
	empty := ""
	s.ctx.setToken = &empty
	return nil
}
