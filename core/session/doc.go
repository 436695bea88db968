// Package session provides server-side session state for the gateway.
//
// A session record lives in a TTL-backed external store under a key
// namespaced by (user id, session id); clients hold only a signed token
// referencing it. Every successful read slides the TTL forward, so active
// sessions stay alive and abandoned ones expire on their own.
//
// The Manager enforces the one security-critical lifecycle rule: a
// session's user binding is immutable. Login and logout never mutate a
// live record: they destroy it and mint a new session id, so a session
// id captured before authentication is worthless afterwards.
//
// Concurrent requests for the same session are expected. Data mutations
// are read-modify-write against the store with last-write-wins semantics;
// no optimistic locking is attempted.
package session
