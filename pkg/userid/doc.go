// Package userid canonicalizes externally supplied user identifiers.
//
// Session store keys and presence registry entries are namespaced by user
// id, so every identifier that crosses a trust boundary (tokens, login
// payloads, handshake tickets) is funneled through Normalize before use.
// The canonical form is a digit-only string; "0" denotes the anonymous
// user. Values that cannot be represented that way are rejected outright
// rather than coerced, which closes the door on key-confusion attacks via
// crafted identifiers.
package userid
