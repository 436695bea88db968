package ws

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/teamgrid/gateway/pkg/storekey"
)

const (
	// TicketLength is the exact length of a handshake ticket in hex
	// characters.
	TicketLength = 32

	// DefaultTicketTTL bounds how long a minted ticket stays redeemable.
	// Tickets bridge one HTTP response to one websocket dial, so seconds
	// suffice.
	DefaultTicketTTL = 30 * time.Second

	ticketPrefix = "wsauth"
)

var (
	ErrTicketNotFound = errors.New("websocket ticket not found")
	ErrNilRedis       = errors.New("nil redis client")
)

// TicketStore mints single-use handshake tickets. Browsers cannot attach
// headers or cookies to cross-origin websocket dials, so the client first
// requests a ticket over authenticated HTTP and presents it as a query
// parameter. The ticket is an opaque hex string whose record holds the
// signed session token; redemption deletes the record, making replay a
// miss.
type TicketStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// TicketOption configures a TicketStore.
type TicketOption func(*TicketStore)

// WithTicketTTL overrides the redemption window.
func WithTicketTTL(ttl time.Duration) TicketOption {
	return func(s *TicketStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// NewTicketStore creates a redis-backed ticket store.
func NewTicketStore(client redis.UniversalClient, opts ...TicketOption) (*TicketStore, error) {
	if client == nil {
		return nil, ErrNilRedis
	}
	s := &TicketStore{client: client, ttl: DefaultTicketTTL}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TTL returns the redemption window tickets are minted with.
func (s *TicketStore) TTL() time.Duration { return s.ttl }

// Mint issues a ticket redeemable for the given session token.
func (s *TicketStore) Mint(ctx context.Context, sessionToken string) (string, error) {
	var raw [TicketLength / 2]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	ticket := hex.EncodeToString(raw[:])

	key, err := storekey.Join(ticketPrefix, ticket)
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, key, sessionToken, s.ttl).Err(); err != nil {
		return "", err
	}
	return ticket, nil
}

// Redeem resolves and consumes a ticket, returning the session token it
// was minted for. A second redemption of the same ticket fails with
// ErrTicketNotFound.
func (s *TicketStore) Redeem(ctx context.Context, ticket string) (string, error) {
	if !WellFormedTicket(ticket) {
		return "", ErrTicketNotFound
	}
	key, err := storekey.Join(ticketPrefix, ticket)
	if err != nil {
		return "", err
	}

	token, err := s.client.GetDel(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrTicketNotFound
		}
		return "", err
	}
	return token, nil
}

// WellFormedTicket reports whether a candidate has the exact shape of a
// minted ticket: fixed length, lowercase hex. This is the cheap structural
// check the transport runs before upgrading; it says nothing about whether
// the ticket resolves.
func WellFormedTicket(ticket string) bool {
	if len(ticket) != TicketLength {
		return false
	}
	for i := 0; i < len(ticket); i++ {
		c := ticket[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
