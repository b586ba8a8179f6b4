package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultChannel = "deptbook:reservations"

// Event announces a committed reservation change.
type Event struct {
	Type          string    `json:"type"`
	ResourceID    string    `json:"resource_id"`
	ReservationID string    `json:"reservation_id"`
	At            time.Time `json:"at"`
}

type EventHandler func(ctx context.Context, e Event)

type Broker interface {
	Publish(ctx context.Context, e Event) error
}

// LocalBroker delivers events to a handler in the same process.
type LocalBroker struct {
	handler EventHandler
}

func NewLocalBroker(handler EventHandler) *LocalBroker {
	return &LocalBroker{handler: handler}
}

func (b *LocalBroker) Publish(ctx context.Context, e Event) error {
	b.handler(ctx, e)
	return nil
}

// RedisBroker shares events between API instances over a Redis channel.
type RedisBroker struct {
	client  *redis.Client
	channel string
	handler EventHandler
}

func NewRedisBroker(client *redis.Client, channel string, handler EventHandler) *RedisBroker {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisBroker{client: client, channel: channel, handler: handler}
}

// NewRedisClient parses a redis:// URL.
func NewRedisClient(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opt), nil
}

func (b *RedisBroker) Publish(ctx context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.channel, string(data)).Err()
}

// Run subscribes to the channel and hands every event to the handler until
// ctx is done.
func (b *RedisBroker) Run(ctx context.Context) error {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}
	log.Printf("realtime: subscribed to redis channel %s", b.channel)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var e Event
			if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
				log.Printf("realtime: bad event on %s: %v", b.channel, err)
				continue
			}
			b.handler(ctx, e)
		}
	}
}
