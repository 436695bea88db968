package storekey

import (
	"errors"
	"fmt"
	"strings"
)

// MaxKeyLength bounds sanitized keys. Redis itself tolerates far larger
// keys, but anything beyond this is attacker-shaped rather than
// application-shaped.
const MaxKeyLength = 256

var (
	// ErrEmptyKey is returned for empty keys or key parts.
	ErrEmptyKey = errors.New("empty store key")
	// ErrKeyTooLong is returned when a key exceeds MaxKeyLength.
	ErrKeyTooLong = errors.New("store key too long")
	// ErrForbiddenCharacter is returned when a key contains characters
	// outside the allow-list.
	ErrForbiddenCharacter = errors.New("forbidden character in store key")
)

// Sanitize validates a full store key against a strict allow-list:
// ASCII letters, digits, colon, underscore, and hyphen, bounded length.
// It returns the key unchanged on success. Violations are hard errors,
// never repaired: key material derives from external identifiers and a
// rejected key means rejected input.
func Sanitize(key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	if len(key) > MaxKeyLength {
		return "", fmt.Errorf("%w: %d bytes", ErrKeyTooLong, len(key))
	}
	for i := 0; i < len(key); i++ {
		if !allowed(key[i]) {
			return "", fmt.Errorf("%w: %q at position %d", ErrForbiddenCharacter, key[i], i)
		}
	}
	return key, nil
}

// Join sanitizes each part individually (colon is forbidden inside a part)
// and joins them with colons into a namespaced key.
func Join(parts ...string) (string, error) {
	if len(parts) == 0 {
		return "", ErrEmptyKey
	}
	for _, p := range parts {
		if p == "" {
			return "", ErrEmptyKey
		}
		if strings.ContainsRune(p, ':') {
			return "", fmt.Errorf("%w: ':' inside key part %q", ErrForbiddenCharacter, p)
		}
	}
	return Sanitize(strings.Join(parts, ":"))
}

func allowed(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == ':' || c == '_' || c == '-':
		return true
	default:
		return false
	}
}
