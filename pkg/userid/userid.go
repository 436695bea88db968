package userid

import (
	"errors"
	"fmt"
	"strings"
)

// Anonymous is the canonical identifier for requests without an
// authenticated user.
const Anonymous = "0"

// ErrInvalidUserID is returned when a raw identifier cannot be coerced to a
// canonical digit-only string. Invalid input is never silently coerced:
// identifier confusion between users is a security boundary, not a
// formatting nuisance.
var ErrInvalidUserID = errors.New("invalid user id")

// Normalize coerces an externally supplied user identifier to its canonical
// form: a digit-only string without leading zeros, or Anonymous for absent
// values. Strings, signed and unsigned integers, and integral floats are
// accepted. Anything else, including digit strings polluted with other
// characters, is rejected with ErrInvalidUserID.
//
// Normalize is idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(v any) (string, error) {
	switch id := v.(type) {
	case nil:
		return Anonymous, nil
	case string:
		return normalizeString(id)
	case int:
		return normalizeInt64(int64(id))
	case int8:
		return normalizeInt64(int64(id))
	case int16:
		return normalizeInt64(int64(id))
	case int32:
		return normalizeInt64(int64(id))
	case int64:
		return normalizeInt64(id)
	case uint:
		return normalizeUint64(uint64(id))
	case uint8:
		return normalizeUint64(uint64(id))
	case uint16:
		return normalizeUint64(uint64(id))
	case uint32:
		return normalizeUint64(uint64(id))
	case uint64:
		return normalizeUint64(id)
	case float64:
		// JSON numbers decode as float64; only non-negative integral
		// values are acceptable identifiers.
		if id < 0 || id != float64(int64(id)) {
			return "", fmt.Errorf("%w: %v", ErrInvalidUserID, id)
		}
		return normalizeInt64(int64(id))
	default:
		return "", fmt.Errorf("%w: unsupported type %T", ErrInvalidUserID, v)
	}
}

// IsAnonymous reports whether a normalized identifier denotes the anonymous
// user.
func IsAnonymous(id string) bool {
	return id == "" || id == Anonymous
}

func normalizeString(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Anonymous, nil
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("%w: %q", ErrInvalidUserID, s)
		}
	}
	// Trim leading zeros manually: identifiers may exceed int64 range.
	trimmed := strings.TrimLeft(s, "0")
	if trimmed == "" {
		return Anonymous, nil
	}
	return trimmed, nil
}

func normalizeInt64(id int64) (string, error) {
	if id < 0 {
		return "", fmt.Errorf("%w: %d", ErrInvalidUserID, id)
	}
	if id == 0 {
		return Anonymous, nil
	}
	return fmt.Sprintf("%d", id), nil
}

func normalizeUint64(id uint64) (string, error) {
	if id == 0 {
		return Anonymous, nil
	}
	return fmt.Sprintf("%d", id), nil
}
