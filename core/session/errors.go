package session

import "errors"

var (
	// ErrNotFound is returned when a session record does not exist or
	// has expired.
	ErrNotFound = errors.New("session not found")
	// ErrInvalidToken is returned when a token fails verification or
	// carries malformed identifiers.
	ErrInvalidToken = errors.New("invalid session token")
	// ErrInvalidKey wraps store-key sanitization failures.
	ErrInvalidKey = errors.New("invalid session store key")
	// ErrSaveSession is returned when persisting a record fails.
	ErrSaveSession = errors.New("failed to save session")
	// ErrDeleteSession is returned when removing records fails.
	ErrDeleteSession = errors.New("failed to delete session")
	// ErrAnonymousLogin is returned when Login or LogoutAll is called
	// with the anonymous user id.
	ErrAnonymousLogin = errors.New("cannot authenticate the anonymous user")
	// ErrNilStore is returned when constructing a manager without a store.
	ErrNilStore = errors.New("session store is required")
	// ErrNilSigner is returned when constructing a manager without a signer.
	ErrNilSigner = errors.New("token signer is required")
	// ErrNilClient is returned when constructing a redis store without a client.
	ErrNilClient = errors.New("redis client is required")
)
