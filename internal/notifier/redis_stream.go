package notifier

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

// RedisStreamNotifier appends notifications to a Redis stream for downstream consumers
type RedisStreamNotifier struct {
	client *redis.Client
	stream string
	now    func() time.Time
}

// NewRedisStreamNotifier creates a notifier writing to stream
func NewRedisStreamNotifier(client *redis.Client, stream string) *RedisStreamNotifier {
	return &RedisStreamNotifier{
		client: client,
		stream: stream,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// encodeStreamMessage packs a message into the stream entry layout: msgpack, base64, under "data"
func encodeStreamMessage(m Message) (map[string]any, error) {
	raw, err := msgpack.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("msgpack marshal error: %w", err)
	}
	return map[string]any{
		"data": base64.StdEncoding.EncodeToString(raw),
	}, nil
}

func (r *RedisStreamNotifier) Notify(ctx context.Context, userID int64, kind Kind, payload Payload) error {
	values, err := encodeStreamMessage(Message{UserID: userID, Kind: kind, Payload: payload, SentAt: r.now()})
	if err != nil {
		return fmt.Errorf("redis notifier: %w", err)
	}
	if err := r.client.XAdd(ctx, &redis.XAddArgs{Stream: r.stream, Values: values}).Err(); err != nil {
		return fmt.Errorf("redis notifier: xadd %s: %w", r.stream, err)
	}
	return nil
}
