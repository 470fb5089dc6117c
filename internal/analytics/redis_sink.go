package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SergeiKhy/affiliate-storefront/internal/config"
	"github.com/redis/go-redis/v9"
)

// maxStreamLen примерная длина стрима, старые события вытесняются
const maxStreamLen = 100000

// RedisSink пишет события в Redis Stream, дальше их разбирают потребители
type RedisSink struct {
	client *redis.Client
	stream string
}

func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		PoolSize:     20,
		MinIdleConns: 2,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

func NewRedisSink(client *redis.Client, stream string) *RedisSink {
	return &RedisSink{client: client, stream: stream}
}

func (s *RedisSink) Send(ctx context.Context, events ...Event) error {
	if len(events) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	for _, event := range events {
		params, err := json.Marshal(event.Params)
		if err != nil {
			return fmt.Errorf("failed to encode event params: %w", err)
		}

		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: s.stream,
			MaxLen: maxStreamLen,
			Approx: true,
			Values: map[string]any{
				"id":         event.ID,
				"name":       event.Name,
				"session_id": event.SessionID,
				"params":     string(params),
				"timestamp":  event.Timestamp.Format(time.RFC3339Nano),
			},
		})
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write events to stream %s: %w", s.stream, err)
	}
	return nil
}

func (s *RedisSink) Close() error {
	return s.client.Close()
}
