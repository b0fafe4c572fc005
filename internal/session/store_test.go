package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warblerhq/warbler/internal/session"
)

func newTestStore(t *testing.T) (*session.Store, *miniredis.Miniredis) {
	server, err := miniredis.Run()
	require.NoError(t, err, "Failed to start miniredis")
	t.Cleanup(server.Close)

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	return session.NewStoreWithClient(client, time.Hour), server
}

func TestNewSession_Anonymous(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	sess, err := store.New(ctx)

	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Zero(t, sess.UserID, "A fresh session must not carry an identity")
}

func TestLoginLogout_RoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	sess, err := store.New(ctx)
	require.NoError(t, err)

	require.NoError(t, store.Login(ctx, sess, 7))

	loaded, err := store.Get(ctx, sess.Token)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, uint(7), loaded.UserID)

	require.NoError(t, store.Logout(ctx, sess))

	loaded, err = store.Get(ctx, sess.Token)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Zero(t, loaded.UserID, "Logout must clear the session identity")
}

func TestGet_UnknownToken(t *testing.T) {
	store, _ := newTestStore(t)

	sess, err := store.Get(context.Background(), "no-such-token")

	require.NoError(t, err)
	assert.Nil(t, sess, "Unknown token is the same as no session")
}

func TestGet_ExpiredToken(t *testing.T) {
	store, server := newTestStore(t)
	ctx := context.Background()

	sess, err := store.New(ctx)
	require.NoError(t, err)

	server.FastForward(2 * time.Hour)

	loaded, err := store.Get(ctx, sess.Token)
	require.NoError(t, err)
	assert.Nil(t, loaded, "Expired session is the same as no session")
}

func TestFlashes_PopDrains(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	sess, err := store.New(ctx)
	require.NoError(t, err)

	require.NoError(t, store.AddFlash(ctx, sess.Token, session.Flash{Level: "danger", Message: "You must be logged in to do that."}))
	require.NoError(t, store.AddFlash(ctx, sess.Token, session.Flash{Level: "success", Message: "Welcome back."}))

	flashes, err := store.PopFlashes(ctx, sess.Token)
	require.NoError(t, err)
	require.Len(t, flashes, 2)
	assert.Equal(t, "You must be logged in to do that.", flashes[0].Message)
	assert.Equal(t, "success", flashes[1].Level)

	flashes, err = store.PopFlashes(ctx, sess.Token)
	require.NoError(t, err)
	assert.Empty(t, flashes, "Flashes render once and only once")
}

func TestDestroy_RemovesSession(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	sess, err := store.New(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Login(ctx, sess, 3))

	require.NoError(t, store.Destroy(ctx, sess.Token))

	loaded, err := store.Get(ctx, sess.Token)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
