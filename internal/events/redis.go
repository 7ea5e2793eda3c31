package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"alugaai-backend/internal/config"
	"alugaai-backend/internal/domain"
	"alugaai-backend/internal/logger"
)

// NewRedisClient builds a go-redis client from config and verifies connectivity.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	var opts *redis.Options
	switch {
	case cfg.URL != "":
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	case cfg.Address != "":
		opts = &redis.Options{Addr: cfg.Address, Password: cfg.Password, DB: cfg.DB}
	default:
		return nil, errors.New("redis url or address is required")
	}
	if opts.PoolSize == 0 {
		opts.PoolSize = cfg.PoolSize
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

type pubSubClient interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
	Subscribe(ctx context.Context, channels ...string) *redis.PubSub
}

// RedisBroker publishes events on a Redis channel so every replica sees
// every write. Run relays the channel into the local broker that serves
// this process's subscribers.
type RedisBroker struct {
	client  pubSubClient
	channel string
	local   *Broker
}

func NewRedisBroker(client pubSubClient, channel string, local *Broker) *RedisBroker {
	return &RedisBroker{client: client, channel: channel, local: local}
}

func (b *RedisBroker) Publish(ctx context.Context, ev domain.Event) error {
	payload, err := encodeEvent(ev)
	if err != nil {
		return err
	}
	logger.ExternalServiceCall("redis", "publish", "channel", b.channel, "type", ev.Type)
	err = b.client.Publish(ctx, b.channel, payload).Err()
	logger.ExternalServiceResult("redis", "publish", err)
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

func (b *RedisBroker) Subscribe() (<-chan domain.Event, func()) {
	return b.local.Subscribe()
}

// Run relays the Redis channel until ctx is done.
func (b *RedisBroker) Run(ctx context.Context) error {
	log := logger.WithComponent("redis-events")
	ps := b.client.Subscribe(ctx, b.channel)
	defer ps.Close()

	if _, err := ps.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}
	log.Info("Subscribed to event channel", "channel", b.channel)

	msgs := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			ev, err := decodeEvent([]byte(msg.Payload))
			if err != nil {
				log.Warn("Discarding malformed event", "error", err)
				continue
			}
			_ = b.local.Publish(ctx, ev)
		}
	}
}

func encodeEvent(ev domain.Event) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	return data, nil
}

func decodeEvent(data []byte) (domain.Event, error) {
	var ev domain.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return domain.Event{}, fmt.Errorf("decode event: %w", err)
	}
	if ev.Type == "" {
		return domain.Event{}, errors.New("decode event: missing type")
	}
	return ev, nil
}
