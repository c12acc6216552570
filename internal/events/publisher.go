package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"vibesrm/internal/observability/metrics"
)

// Publisher sends fire-and-forget notifications after state has been
// committed. Implementations must not block past the caller's context.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

// Channel is the pub/sub channel a topic is published on.
func Channel(topic string) string { return "vibesrm:" + topic }

type RedisPublisher struct {
	client  *redis.Client
	timeout time.Duration
}

func NewRedisPublisher(client *redis.Client, timeout time.Duration) *RedisPublisher {
	return &RedisPublisher{client: client, timeout: timeout}
}

func (p *RedisPublisher) Publish(ctx context.Context, topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		metrics.EventsPublishedTotal.WithLabelValues(topic, "failure").Inc()
		return fmt.Errorf("encode %s event: %w", topic, err)
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.client.Publish(ctx, Channel(topic), body).Err(); err != nil {
		metrics.EventsPublishedTotal.WithLabelValues(topic, "failure").Inc()
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	metrics.EventsPublishedTotal.WithLabelValues(topic, "success").Inc()
	return nil
}

// LogPublisher writes events to the log instead of a broker.
type LogPublisher struct {
	Log *slog.Logger
}

func (p LogPublisher) Publish(ctx context.Context, topic string, payload any) error {
	log := p.Log
	if log == nil {
		log = slog.Default()
	}
	log.DebugContext(ctx, "event", "topic", topic, "payload", payload)
	return nil
}
