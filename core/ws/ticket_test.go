package ws_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamgrid/gateway/core/ws"
)

func TestTicketMintRedeem(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store, err := ws.NewTicketStore(client)
	require.NoError(t, err)
	ctx := context.Background()

	ticket, err := store.Mint(ctx, "signed-session-token")
	require.NoError(t, err)
	assert.True(t, ws.WellFormedTicket(ticket))

	token, err := store.Redeem(ctx, ticket)
	require.NoError(t, err)
	assert.Equal(t, "signed-session-token", token)

	// Single use: the second redemption misses.
	_, err = store.Redeem(ctx, ticket)
	assert.ErrorIs(t, err, ws.ErrTicketNotFound)
}

func TestTicketExpiry(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store, err := ws.NewTicketStore(client, ws.WithTicketTTL(10*time.Second))
	require.NoError(t, err)
	ctx := context.Background()

	ticket, err := store.Mint(ctx, "tok")
	require.NoError(t, err)

	mr.FastForward(11 * time.Second)

	_, err = store.Redeem(ctx, ticket)
	assert.ErrorIs(t, err, ws.ErrTicketNotFound)
}

func TestRedeemMalformed(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store, err := ws.NewTicketStore(client)
	require.NoError(t, err)

	_, err = store.Redeem(context.Background(), "not-a-ticket")
	assert.ErrorIs(t, err, ws.ErrTicketNotFound)
}
