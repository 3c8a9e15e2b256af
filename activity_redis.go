package auth

import (
	"context"
	"encoding/json"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/redis/go-redis/v9"
)

// DefaultActivityStream is the stream key used when none is configured.
const DefaultActivityStream = "orgauth:activity"

// RedisActivitySink publishes activity events onto a Redis stream so external
// consumers can tail the audit feed. Writes stay best-effort from the caller's
// perspective: Auther and the organization service log and absorb sink errors.
type RedisActivitySink struct {
	client *redis.Client
	stream string
}

// NewRedisActivitySink returns a sink writing to the given stream. An empty
// stream name falls back to DefaultActivityStream.
func NewRedisActivitySink(client *redis.Client, stream string) *RedisActivitySink {
	if stream == "" {
		stream = DefaultActivityStream
	}
	return &RedisActivitySink{client: client, stream: stream}
}

var _ ActivitySink = (*RedisActivitySink)(nil)

// Record implements ActivitySink.
func (s *RedisActivitySink) Record(ctx context.Context, event ActivityEvent) error {
	if s.client == nil {
		return goerrors.New("redis activity sink has no client", goerrors.CategoryInternal)
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	values := map[string]any{
		"event_type":  string(event.EventType),
		"actor_id":    event.Actor.ID,
		"actor_type":  event.Actor.Type,
		"user_id":     event.UserID,
		"occurred_at": event.OccurredAt.UTC().Format(time.RFC3339Nano),
	}

	if len(event.Metadata) > 0 {
		meta, err := json.Marshal(event.Metadata)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode activity metadata")
		}
		values["metadata"] = string(meta)
	}

	if err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: values,
	}).Err(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to publish activity event")
	}

	return nil
}
