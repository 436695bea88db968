package presence

import "sync"

// Sender delivers a message to one connection. Implementations must not
// block: the websocket connection buffers outbound messages and drops the
// connection itself when the buffer is full.
type Sender interface {
	Send(message []byte) bool
}

// Entry describes one live connection: who holds it and the handshake
// metadata captured when it was opened.
type Entry struct {
	UserID    string
	ConnID    string
	IP        string
	UserAgent string

	sender Sender
}

// Send delivers a message to the entry's connection.
func (e Entry) Send(message []byte) bool {
	if e.sender == nil {
		return false
	}
	return e.sender.Send(message)
}

// Registry tracks which users hold open websocket connections. A user may
// hold several connections (tabs, devices); the registry answers presence
// queries and fans out messages without touching the session store.
type Registry struct {
	mu    sync.RWMutex
	users map[string]map[string]Entry // userID -> connectionID -> entry
}

// NewRegistry creates an empty presence registry.
func NewRegistry() *Registry {
	return &Registry{
		users: make(map[string]map[string]Entry),
	}
}

// Add registers a connection for the entry's user. Reports whether this
// is the user's first open connection.
func (r *Registry) Add(e Entry, s Sender) (first bool) {
	e.sender = s

	r.mu.Lock()
	defer r.mu.Unlock()

	conns, ok := r.users[e.UserID]
	if !ok {
		conns = make(map[string]Entry, 1)
		r.users[e.UserID] = conns
	}
	conns[e.ConnID] = e
	return !ok
}

// Remove unregisters a connection. Reports whether the user has no
// remaining connections, so callers can emit an offline event exactly when
// the last tab closes.
func (r *Registry) Remove(userID, connID string) (last bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns, ok := r.users[userID]
	if !ok {
		return false
	}
	if _, ok := conns[connID]; !ok {
		return false
	}
	delete(conns, connID)
	if len(conns) == 0 {
		delete(r.users, userID)
		return true
	}
	return false
}

// Entry returns the registered entry for one connection.
func (r *Registry) Entry(userID, connID string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.users[userID][connID]
	return e, ok
}

// Entries returns the user's live connection entries.
func (r *Registry) Entries(userID string) []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, 0, len(r.users[userID]))
	for _, e := range r.users[userID] {
		out = append(out, e)
	}
	return out
}

// Online reports whether the user holds at least one open connection.
func (r *Registry) Online(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users[userID]) > 0
}

// Connections returns how many connections the user holds.
func (r *Registry) Connections(userID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users[userID])
}

// Users returns the ids of all users currently online.
func (r *Registry) Users() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.users))
	for id := range r.users {
		out = append(out, id)
	}
	return out
}

// Send delivers a message to every connection of a user. Returns the
// number of connections that accepted it.
func (r *Registry) Send(userID string, message []byte) int {
	entries := r.Entries(userID)

	delivered := 0
	for _, e := range entries {
		if e.Send(message) {
			delivered++
		}
	}
	return delivered
}

// Broadcast delivers a message to every connection of every user.
func (r *Registry) Broadcast(message []byte) int {
	r.mu.RLock()
	var entries []Entry
	for _, conns := range r.users {
		for _, e := range conns {
			entries = append(entries, e)
		}
	}
	r.mu.RUnlock()

	delivered := 0
	for _, e := range entries {
		if e.Send(message) {
			delivered++
		}
	}
	return delivered
}
