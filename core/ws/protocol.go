package ws

import (
	"encoding/json"

	"github.com/teamgrid/gateway/core/response"
)

// Service events are emitted by the transport itself, never by application
// handlers. Event names are namespaced under "service:" so they can never
// collide with application routes.
const (
	// EventError reports a transport-level failure to the client, such as
	// an unresolvable handshake token or a dead session.
	EventError = "service:error"
	// EventPing is a client-initiated liveness probe answered with
	// EventPong and the server timestamp.
	EventPing = "service:ping"
	// EventPong answers EventPing.
	EventPong = "service:pong"
	// EventConnectionEstablished is the first frame on every accepted
	// connection, carrying the socket id and the activity timeout the
	// client should ping within.
	EventConnectionEstablished = "service:connection_established"
)

// CloseUnauthorized is the close code sent when a connection's credentials
// cannot be resolved, at handshake or on a later message.
const CloseUnauthorized = 4001

// rawPing and rawPong implement the bare text fast path: a client sending
// the literal bytes "ping" receives "pong" without any JSON framing.
var (
	rawPing = []byte("ping")
	rawPong = []byte("pong")
)

// Envelope is an inbound client message: an event name resolving to a
// websocket route, plus an optional payload.
type Envelope struct {
	Event   string         `json:"event"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Reply is an outbound message. Exactly one of Data and Error is set.
type Reply struct {
	Event  string              `json:"event"`
	Status int                 `json:"status"`
	Data   any                 `json:"data,omitempty"`
	Error  *response.HTTPError `json:"error,omitempty"`
}

func marshalReply(r Reply) []byte {
	b, err := json.Marshal(r)
	if err != nil {
		// Reply bodies come from handlers; an unmarshalable one degrades
		// to a generic error rather than killing the connection.
		fallback := Reply{
			Event:  r.Event,
			Status: response.ErrInternalServerError.Status,
			Error:  &response.ErrInternalServerError,
		}
		b, _ = json.Marshal(fallback)
	}
	return b
}

func errorReply(event string, httpErr response.HTTPError) Reply {
	return Reply{
		Event:  event,
		Status: httpErr.Status,
		Error:  &httpErr,
	}
}
