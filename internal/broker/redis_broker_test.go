package broker_test

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warblerhq/warbler/internal/broker"
)

func newTestBroker(t *testing.T) *broker.RedisWarbleBroker {
	server, err := miniredis.Run()
	require.NoError(t, err, "Failed to start miniredis")
	t.Cleanup(server.Close)

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	return broker.NewRedisWarbleBrokerWithClient(client)
}

func TestPublishSubscribe_RoundTrip(t *testing.T) {
	b := newTestBroker(t)

	sub, err := b.Subscribe()
	require.NoError(t, err)
	defer sub.Close()

	warble := broker.Warble{
		MessageID: 1,
		UserID:    7,
		Username:  "Spongebob",
		Text:      "I'm ready.",
		Timestamp: time.Now().Format(time.RFC3339),
	}
	require.NoError(t, b.Publish(warble))

	select {
	case got := <-sub.Warbles():
		assert.Equal(t, warble, got)
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for published warble")
	}
}

func TestSubscribe_IndependentSubscriptions(t *testing.T) {
	b := newTestBroker(t)

	sub1, err := b.Subscribe()
	require.NoError(t, err)
	sub2, err := b.Subscribe()
	require.NoError(t, err)
	defer sub2.Close()

	// Closing one subscription must not end the other
	require.NoError(t, sub1.Close())

	require.NoError(t, b.Publish(broker.Warble{MessageID: 2, Username: "Patrick", Text: "hi"}))

	select {
	case got := <-sub2.Warbles():
		assert.Equal(t, uint(2), got.MessageID)
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for published warble")
	}
}
