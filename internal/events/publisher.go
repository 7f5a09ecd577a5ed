// Package events announces completed scrapes on a Redis stream so downstream
// consumers (translation, caching) can react without polling the API.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// EventType names the kind of scrape event.
type EventType string

const (
	EventTypeListScraped   EventType = "BOOK_LIST_SCRAPED"
	EventTypeDetailScraped EventType = "BOOK_DETAIL_SCRAPED"
	EventTypeScrapeFailed  EventType = "SCRAPE_FAILED"
)

// Event describes one finished scrape. Error is set for failures only.
type Event struct {
	ID        string
	Type      EventType
	Provider  string
	URL       string
	Books     int
	Duration  time.Duration
	Error     string
	Timestamp time.Time
}

// Publisher announces scrape events.
type Publisher interface {
	Publish(ctx context.Context, event *Event) error
}

// RedisClient is the part of the redis client used for publishing.
type RedisClient interface {
	XAdd(ctx context.Context, args *redis.XAddArgs) *redis.StringCmd
}

// StreamPublisher appends events to a capped Redis stream.
type StreamPublisher struct {
	redis  RedisClient
	stream string
	maxLen int64
	logger *slog.Logger
}

// NewStreamPublisher trims the stream to about maxLen entries; zero keeps
// everything.
func NewStreamPublisher(client RedisClient, stream string, maxLen int64, logger *slog.Logger) *StreamPublisher {
	return &StreamPublisher{
		redis:  client,
		stream: stream,
		maxLen: maxLen,
		logger: logger.With("component", "event_publisher"),
	}
}

// Publish fills in ID and Timestamp when unset and XADDs the event.
func (p *StreamPublisher) Publish(ctx context.Context, event *Event) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(eventPayload(event))
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: p.maxLen > 0,
		Values: map[string]interface{}{
			"data":       string(data),
			"event_type": string(event.Type),
			"event_id":   event.ID,
			"provider":   event.Provider,
			"timestamp":  fmt.Sprintf("%d", event.Timestamp.UnixNano()),
		},
	}

	id, err := p.redis.XAdd(ctx, args).Result()
	if err != nil {
		return fmt.Errorf("failed to publish to redis: %w", err)
	}

	p.logger.Debug("event published", "event_id", event.ID, "event_type", event.Type, "stream_id", id)
	return nil
}

func eventPayload(e *Event) map[string]any {
	return map[string]any{
		"event_id":    e.ID,
		"event_type":  e.Type,
		"provider":    e.Provider,
		"url":         e.URL,
		"books":       e.Books,
		"duration_ms": e.Duration.Milliseconds(),
		"error":       e.Error,
		"timestamp":   e.Timestamp,
	}
}

// NopPublisher drops every event. It is used when no Redis is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *Event) error { return nil }
