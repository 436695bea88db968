// Package presence tracks open websocket connections per user.
//
// The registry is purely in-memory: it reflects connections held by this
// process, not cluster-wide presence. Add and Remove report first/last
// transitions so the transport can emit online and offline events exactly
// once per user, regardless of how many tabs they keep open.
package presence
