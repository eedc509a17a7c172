package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

// PubSubRepo carries real-time events between the API process and
// connected websocket clients over Redis channels.
type PubSubRepo struct {
	client *goredis.Client
}

func NewPubSubRepo(client *goredis.Client) *PubSubRepo {
	return &PubSubRepo{client: client}
}

func (r *PubSubRepo) Publish(ctx context.Context, channel string, payload []byte) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if channel == "" {
		return fmt.Errorf("channel is required")
	}

	if err := r.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}
	return nil
}

// Subscribe opens a subscription on the given channels. The caller owns the
// returned PubSub and must Close it.
func (r *PubSubRepo) Subscribe(ctx context.Context, channels ...string) (*goredis.PubSub, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	if len(channels) == 0 {
		return nil, fmt.Errorf("at least one channel is required")
	}

	sub := r.client.Subscribe(ctx, channels...)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	return sub, nil
}
