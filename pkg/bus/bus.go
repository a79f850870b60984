package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/atriumcare/carecoord-backend/pkg/config"
	"github.com/atriumcare/carecoord-backend/pkg/logger"
)

// Message is a single event received from the bus.
type Message struct {
	Topic   string
	Payload []byte
}

// Publisher is the narrow surface components need to emit events.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

type publishCmdable interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

type messageSource interface {
	Channel(opts ...redis.ChannelOption) <-chan *redis.Message
	Close() error
}

// Bus glues domain services together over Redis pub/sub. Delivery is
// fire-and-forget: subscribers that are down miss messages, and redelivery by
// upstream publishers means consumers must dedupe by event id.
type Bus struct {
	client *redis.Client
	pub    publishCmdable
	prefix string
	logg   *logger.Logger
}

// New wires a Bus on top of an established redis connection.
func New(client *redis.Client, cfg config.BusConfig, logg *logger.Logger) (*Bus, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	prefix := strings.TrimSpace(cfg.TopicPrefix)
	if prefix == "" {
		prefix = "carecoord"
	}
	return &Bus{
		client: client,
		pub:    client,
		prefix: prefix,
		logg:   logg,
	}, nil
}

// Publish marshals the payload to JSON and emits it on the prefixed topic.
func (b *Bus) Publish(ctx context.Context, topic string, payload any) error {
	if b == nil || b.pub == nil {
		return errors.New("bus not initialized")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload for %s: %w", topic, err)
	}
	if err := b.pub.Publish(ctx, b.topicName(topic), data).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Subscribe opens a subscription covering the given topics.
func (b *Bus) Subscribe(ctx context.Context, topics ...string) (*Subscription, error) {
	if b == nil || b.client == nil {
		return nil, errors.New("bus not initialized")
	}
	if len(topics) == 0 {
		return nil, errors.New("at least one topic is required")
	}
	names := make([]string, 0, len(topics))
	for _, topic := range topics {
		trimmed := strings.TrimSpace(topic)
		if trimmed == "" {
			return nil, errors.New("topic name must not be empty")
		}
		names = append(names, b.topicName(trimmed))
	}

	pubsub := b.client.Subscribe(ctx, names...)
	// Confirm the subscription before handing it to a consumer loop.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %v: %w", topics, err)
	}

	return &Subscription{source: pubsub, prefix: b.prefix}, nil
}

func (b *Bus) topicName(topic string) string {
	return b.prefix + ":" + topic
}

// Subscription is a handle to one consumer's stream of bus messages.
type Subscription struct {
	source messageSource
	prefix string
}

// Receive pumps messages into the handler until the context is canceled or
// the subscription is closed. The handler owns all error handling; Receive
// never interprets handler outcomes.
func (s *Subscription) Receive(ctx context.Context, handler func(ctx context.Context, msg Message)) error {
	if s == nil || s.source == nil {
		return errors.New("subscription not initialized")
	}
	ch := s.source.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			handler(ctx, Message{
				Topic:   strings.TrimPrefix(m.Channel, s.prefix+":"),
				Payload: []byte(m.Payload),
			})
		}
	}
}

// Close tears the subscription down; a blocked Receive returns afterwards.
func (s *Subscription) Close() error {
	if s == nil || s.source == nil {
		return nil
	}
	return s.source.Close()
}
