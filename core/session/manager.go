package session

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/teamgrid/gateway/core/logger"
	"github.com/teamgrid/gateway/core/token"
	"github.com/teamgrid/gateway/pkg/userid"
)

// Manager coordinates session lifecycle: anonymous bootstrap, token
// resolution, and the login/logout rotation that prevents session
// fixation. It owns the pairing of Store and token.Signer so callers
// never handle raw tokens and store keys separately.
type Manager struct {
	store  Store
	signer *token.Signer
	log    *slog.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger for session lifecycle events.
func WithLogger(log *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// NewManager creates a session manager.
func NewManager(store Store, signer *token.Signer, opts ...ManagerOption) (*Manager, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	if signer == nil {
		return nil, ErrNilSigner
	}

	m := &Manager{
		store:  store,
		signer: signer,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// StartAnonymous creates and persists a fresh anonymous session, returning
// the record and its signed token.
func (m *Manager) StartAnonymous(ctx context.Context) (*Session, string, error) {
	sess := NewAnonymous()
	if err := m.store.Save(ctx, sess); err != nil {
		return nil, "", err
	}
	return sess, m.Token(sess), nil
}

// Resolve verifies a token and fetches the session it references.
// Any failure, whether a bad signature, malformed identifiers, or a
// missing record, surfaces as ErrInvalidToken or ErrNotFound; callers
// treat both by falling back to a fresh anonymous session.
func (m *Manager) Resolve(ctx context.Context, tok string) (*Session, error) {
	rawUID, sessionID, ok := m.signer.Verify(tok)
	if !ok {
		return nil, ErrInvalidToken
	}

	// The signer only authenticates the token; the identifiers inside
	// still pass normalization before touching the store.
	uid, err := userid.Normalize(rawUID)
	if err != nil || uid != rawUID {
		m.log.ErrorContext(ctx, "signed token carried non-canonical user id",
			logger.Component("session"), logger.UserID(rawUID))
		return nil, ErrInvalidToken
	}

	return m.store.Get(ctx, uid, sessionID)
}

// Token returns the signed token referencing the session.
func (m *Manager) Token(sess *Session) string {
	return m.signer.Sign(sess.ID, sess.UserID)
}

// Login rotates the current session into an authenticated one: the old
// record is destroyed first, then a brand-new session id is minted for
// the normalized user, carrying the old data forward. Rotating instead of
// mutating means an attacker who planted the pre-login session id holds a
// dead reference afterwards.
func (m *Manager) Login(ctx context.Context, current *Session, rawUserID any) (*Session, string, error) {
	uid, err := userid.Normalize(rawUserID)
	if err != nil {
		return nil, "", err
	}
	if userid.IsAnonymous(uid) {
		return nil, "", ErrAnonymousLogin
	}

	if current != nil {
		if err := m.store.Destroy(ctx, current.UserID, current.ID); err != nil && !errors.Is(err, ErrNotFound) {
			return nil, "", err
		}
	}

	var data map[string]any
	if current != nil {
		data = current.Data
	}
	sess := New(uid, data)
	if err := m.store.Save(ctx, sess); err != nil {
		return nil, "", err
	}

	m.log.InfoContext(ctx, "session rotated on login",
		logger.Component("session"), logger.UserID(uid), logger.SessionID(sess.ID))

	return sess, m.Token(sess), nil
}

// Logout destroys the current session and starts a fresh anonymous one,
// mirroring the rotation performed by Login.
func (m *Manager) Logout(ctx context.Context, current *Session) (*Session, string, error) {
	if current != nil {
		if err := m.store.Destroy(ctx, current.UserID, current.ID); err != nil && !errors.Is(err, ErrNotFound) {
			return nil, "", err
		}
	}
	return m.StartAnonymous(ctx)
}

// LogoutAll destroys every session belonging to the user and returns the
// count of removed records.
func (m *Manager) LogoutAll(ctx context.Context, rawUserID any) (int, error) {
	uid, err := userid.Normalize(rawUserID)
	if err != nil {
		return 0, err
	}
	if userid.IsAnonymous(uid) {
		return 0, ErrAnonymousLogin
	}
	return m.store.DestroyAll(ctx, uid)
}

// UpdateData merges patch into the session's data map. Last write wins
// when two requests patch the same session concurrently.
func (m *Manager) UpdateData(ctx context.Context, sess *Session, patch map[string]any) (*Session, error) {
	return m.store.Update(ctx, sess.UserID, sess.ID, patch)
}

// ChangeData replaces the session's data map wholesale.
func (m *Manager) ChangeData(ctx context.Context, sess *Session, data map[string]any) (*Session, error) {
	return m.store.Replace(ctx, sess.UserID, sess.ID, data)
}

// Destroy removes the session record.
func (m *Manager) Destroy(ctx context.Context, sess *Session) error {
	return m.store.Destroy(ctx, sess.UserID, sess.ID)
}

// Validate re-checks that the session still exists in the store. WS
// message handling calls this so that revocation takes effect on the next
// message, not only at handshake time.
func (m *Manager) Validate(ctx context.Context, sess *Session) (*Session, error) {
	return m.store.Get(ctx, sess.UserID, sess.ID)
}
