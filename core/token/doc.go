// Package token implements the signed session-reference token used as the
// session cookie value and the WebSocket handshake credential.
//
// A token is the base64url wrapping of "<userID>.<sessionID>.<signature>",
// where the signature is a truncated hex-encoded HMAC-SHA256 over the two
// identifiers. Verification is purely computational: authenticity can be
// checked without a store lookup, and the identifiers carried inside point
// at the authoritative server-side session record.
//
// Verification is strictly boolean. Tampered, truncated, or otherwise
// malformed tokens all fail the same way, with constant-time signature
// comparison, so the rejection reason leaks nothing to the caller.
package token
