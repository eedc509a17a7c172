package notify_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	redrepo "github.com/praytyushpande/crewlyx/internal/repo/redis"
	"github.com/praytyushpande/crewlyx/internal/services/notify"
)

func TestDispatcherPublishesEnvelope(t *testing.T) {
	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mini.Close()

	client := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	defer client.Close()

	ctx := context.Background()
	pubsub := redrepo.NewPubSubRepo(client)

	sub, err := pubsub.Subscribe(ctx, notify.UserChannel(7))
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()

	dispatcher := notify.NewDispatcher(pubsub, nil)
	dispatcher.NotifyUser(ctx, 7, notify.EventNewMatch, map[string]int64{"matchId": 12})

	select {
	case msg := <-sub.Channel():
		var envelope notify.Envelope
		if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
			t.Fatalf("unmarshal envelope: %v", err)
		}
		if envelope.Event != notify.EventNewMatch {
			t.Fatalf("expected event %q, got %q", notify.EventNewMatch, envelope.Event)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no message received on user channel")
	}
}

func TestDispatcherSwallowsBrokerFailures(t *testing.T) {
	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	client := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	defer client.Close()

	mini.Close()

	dispatcher := notify.NewDispatcher(redrepo.NewPubSubRepo(client), nil)
	dispatcher.NotifyMatch(context.Background(), 3, notify.EventNewMessage, map[string]string{"content": "hi"})
}

func TestChannelNames(t *testing.T) {
	if got := notify.UserChannel(42); got != "user-42" {
		t.Fatalf("user channel: got %q", got)
	}
	if got := notify.MatchChannel(9); got != "match-9" {
		t.Fatalf("match channel: got %q", got)
	}
}
