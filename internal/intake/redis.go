package intake

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// blockInterval bounds each blocking pop so shutdown is noticed promptly.
const blockInterval = 5 * time.Second

// Queue consumes wallet addresses from a Redis list.
type Queue struct {
	client *redis.Client
	key    string
}

// NewQueue connects to Redis and verifies the connection.
func NewQueue(ctx context.Context, addr, password, key string) (*Queue, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Queue{client: client, key: key}, nil
}

// Next blocks until an address is available or ctx is done.
func (q *Queue) Next(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		res, err := q.client.BLPop(ctx, blockInterval, q.key).Result()
		if err == redis.Nil {
			continue // timed out, re-check ctx
		}
		if err != nil {
			return "", fmt.Errorf("blpop %s: %w", q.key, err)
		}
		// BLPOP returns [key, value].
		if len(res) != 2 {
			continue
		}
		if address := strings.TrimSpace(res[1]); address != "" {
			return address, nil
		}
	}
}

// Push enqueues an address; used by the CLI and tests.
func (q *Queue) Push(ctx context.Context, address string) error {
	if err := q.client.RPush(ctx, q.key, address).Err(); err != nil {
		return fmt.Errorf("rpush %s: %w", q.key, err)
	}
	return nil
}

// Close releases the underlying client.
func (q *Queue) Close() error {
	return q.client.Close()
}
