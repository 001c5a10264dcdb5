// Package redis records secondary audit events on a Redis stream.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gosuda/seguro/internal/domain"
)

// DefaultStream is the stream key used when none is configured.
const DefaultStream = "seguro:audit"

// StatusSuccess marks an event describing a committed mutation.
const StatusSuccess = "SUCCESS"

// Recorder appends one stream entry per audit event with XADD.
type Recorder struct {
	client *redis.Client
	stream string
	maxLen int64
}

var _ domain.AuditRecorder = (*Recorder)(nil)

// New connects to uri (redis:// or rediss://) and verifies the connection.
func New(ctx context.Context, uri, stream string, maxLen int64) (*Recorder, error) {
	opts, err := redis.ParseURL(uri)
	if err != nil {
		return nil, fmt.Errorf("redis.New: parse url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis.New: ping: %w", err)
	}

	return NewWithClient(client, stream, maxLen), nil
}

// NewWithClient wraps an existing client. maxLen <= 0 keeps every entry.
func NewWithClient(client *redis.Client, stream string, maxLen int64) *Recorder {
	if stream == "" {
		stream = DefaultStream
	}
	return &Recorder{client: client, stream: stream, maxLen: maxLen}
}

func (r *Recorder) Close() error {
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("redis.Recorder.Close: %w", err)
	}
	return nil
}

func (r *Recorder) Record(ctx context.Context, ev *domain.AuditEvent) error {
	values, err := Fields(ev)
	if err != nil {
		return fmt.Errorf("redis.Recorder.Record: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: r.stream,
		Values: values,
	}
	if r.maxLen > 0 {
		args.MaxLen = r.maxLen
		args.Approx = true
	}

	if err := r.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("redis.Recorder.Record: xadd %s: %w", r.stream, err)
	}
	return nil
}

// Fields flattens ev into stream entry fields. details holds the payload as
// JSON.
func Fields(ev *domain.AuditEvent) (map[string]any, error) {
	details, err := json.Marshal(ev.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal details: %w", err)
	}

	return map[string]any{
		"event_id":  ev.ID.String(),
		"user":      ev.Actor,
		"role":      string(ev.ActorRole),
		"operation": string(ev.Operation),
		"status":    StatusSuccess,
		"entity":    string(ev.EntityType),
		"entity_id": ev.EntityID.String(),
		"details":   string(details),
		"timestamp": ev.CreatedAt.UTC().Format(time.RFC3339Nano),
	}, nil
}
