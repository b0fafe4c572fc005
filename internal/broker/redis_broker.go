package broker

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

const feedChannel = "warbles:new"

// RedisWarbleBroker implements WarbleBroker over Redis pub/sub.
type RedisWarbleBroker struct {
	client *redis.Client
	ctx    context.Context
}

func NewRedisWarbleBroker(redisURL string) (*RedisWarbleBroker, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewRedisWarbleBrokerWithClient(client), nil
}

// NewRedisWarbleBrokerWithClient wraps an existing client (tests pass a
// miniredis-backed one).
func NewRedisWarbleBrokerWithClient(client *redis.Client) *RedisWarbleBroker {
	return &RedisWarbleBroker{
		client: client,
		ctx:    context.Background(),
	}
}

func (r *RedisWarbleBroker) Publish(w Warble) error {
	data, err := json.Marshal(w)
	if err != nil {
		return err
	}

	return r.client.Publish(r.ctx, feedChannel, data).Err()
}

func (r *RedisWarbleBroker) Subscribe() (Subscription, error) {
	pubsub := r.client.Subscribe(r.ctx, feedChannel)

	// Force the subscription onto the wire before the caller relies on it
	if _, err := pubsub.Receive(r.ctx); err != nil {
		pubsub.Close()
		return nil, err
	}

	warbleChan := make(chan Warble, 100)

	go func() {
		defer close(warbleChan)

		for redisMsg := range pubsub.Channel() {
			var w Warble

			if err := json.Unmarshal([]byte(redisMsg.Payload), &w); err != nil {
				continue
			}

			warbleChan <- w
		}
	}()

	return &redisSubscription{pubsub: pubsub, ch: warbleChan}, nil
}

func (r *RedisWarbleBroker) Close() error {
	return r.client.Close()
}

type redisSubscription struct {
	pubsub *redis.PubSub
	ch     chan Warble
}

func (s *redisSubscription) Warbles() <-chan Warble {
	return s.ch
}

func (s *redisSubscription) Close() error {
	return s.pubsub.Close()
}
