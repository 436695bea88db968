// Package ws is the websocket transport of the gateway.
//
// Connections authenticate with single-use handshake tickets minted over
// authenticated HTTP and presented as a query parameter. A structurally
// invalid ticket is rejected with 401 before the upgrade; a well-formed
// ticket that fails to resolve upgrades first, receives an in-band
// service:error, and is closed with code 4001 so browser clients can
// distinguish auth failure from network failure.
//
// Inbound messages are JSON envelopes with an event name and payload,
// dispatched through the same pipeline as HTTP requests: rate limit,
// middlewares, validation, handler. The session is revalidated on every
// message. Two liveness mechanisms coexist: the bare-text "ping"/"pong"
// fast path and the JSON service:ping/service:pong pair, alongside
// protocol-level ping frames driven by the write pump.
package ws
