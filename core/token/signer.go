package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

// signatureLength is the hex-encoded length of the truncated HMAC digest.
// Truncating SHA-256 to 16 bytes keeps tokens compact while leaving the
// forgery bound far beyond reach.
const signatureLength = 32

// weakSecrets are placeholder values that tend to survive from example
// configuration into production. Starting up with one of these would make
// every session token forgeable, so construction refuses them outright.
var weakSecrets = map[string]struct{}{
	"secret":                           {},
	"changeme":                         {},
	"change-me-in-production-please!!": {},
	"00000000000000000000000000000000": {},
	"0123456789abcdef0123456789abcdef": {},
	"your-256-bit-secret-your-256-bit": {},
}

// Signer produces and verifies compact session-reference tokens. A token
// carries the user id and session id in plaintext plus an HMAC-SHA256
// signature over both, so possession of the signing secret is required to
// mint one but no store round-trip is needed to check authenticity.
type Signer struct {
	secret []byte
}

// New creates a Signer, validating the secret. Secrets shorter than
// MinSecretLength or matching a known placeholder are rejected: this is a
// startup-fatal condition by design, the process must not come up with a
// forgeable token scheme.
func New(secret string) (*Signer, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: have %d bytes, need at least %d",
			ErrSecretTooShort, len(secret), MinSecretLength)
	}
	if _, weak := weakSecrets[secret]; weak {
		return nil, ErrWeakSecret
	}
	return &Signer{secret: []byte(secret)}, nil
}

// Sign builds a token for the given session and user identifiers:
// base64url("<userID>.<sessionID>.<signature>") where the signature is the
// truncated, hex-encoded HMAC-SHA256 of "<userID>.<sessionID>".
func (s *Signer) Sign(sessionID, userID string) string {
	payload := userID + "." + sessionID
	raw := payload + "." + s.signature(payload)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// Verify parses and authenticates a token, returning the embedded user and
// session identifiers. All failure modes (malformed base64, wrong field
// count, signature length mismatch, signature mismatch) are reported
// identically as ok == false; callers must not be able to distinguish why
// a token was rejected.
func (s *Signer) Verify(tok string) (userID, sessionID string, ok bool) {
	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil {
		return "", "", false
	}

	parts := strings.Split(string(raw), ".")
	if len(parts) != 3 {
		return "", "", false
	}
	userID, sessionID, sig := parts[0], parts[1], parts[2]
	if len(sig) != signatureLength {
		return "", "", false
	}

	expected := s.signature(userID + "." + sessionID)
	if subtle.ConstantTimeCompare([]byte(sig), []byte(expected)) != 1 {
		return "", "", false
	}

	return userID, sessionID, true
}

func (s *Signer) signature(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))[:signatureLength]
}
