package counter

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/redis/go-redis/v9"

	"aurum_leasing/internal/metrics"
)

const GlobalVisitsKey = "global_visits"

// VisitCounter is a process-external counter shared by every API instance.
type VisitCounter interface {
	Incr(ctx context.Context) (int64, error)
	Get(ctx context.Context) (int64, error)
}

type RedisCounter struct {
	rdb *redis.Client
	key string
}

func NewRedisCounter(rdb *redis.Client, key string) *RedisCounter {
	if key == "" {
		key = GlobalVisitsKey
	}
	return &RedisCounter{rdb: rdb, key: key}
}

func (c *RedisCounter) Incr(ctx context.Context) (int64, error) {
	n, err := c.rdb.Incr(ctx, c.key).Result()
	if err != nil {
		return 0, fmt.Errorf("incr %s: %w", c.key, err)
	}
	metrics.VisitsCounted.Inc()
	return n, nil
}

func (c *RedisCounter) Get(ctx context.Context) (int64, error) {
	n, err := c.rdb.Get(ctx, c.key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get %s: %w", c.key, err)
	}
	return n, nil
}

// Memory counts in-process; used when no Redis is configured.
type Memory struct {
	n atomic.Int64
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Incr(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	metrics.VisitsCounted.Inc()
	return m.n.Add(1), nil
}

func (m *Memory) Get(ctx context.Context) (int64, error) {
	return m.n.Load(), ctx.Err()
}
