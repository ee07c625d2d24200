package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Sequencer hands out monotonically increasing per-session request numbers.
// Only the most recently issued number is current; results tagged with an
// older number are stale and get discarded (last request wins).
type Sequencer interface {
	Next(ctx context.Context, sessionID string) (int64, error)
	Current(ctx context.Context, sessionID string) (int64, error)
	Forget(ctx context.Context, sessionID string) error
}

// MemorySequencer is the single-process Sequencer.
type MemorySequencer struct {
	mu  sync.Mutex
	seq map[string]int64
}

func NewMemorySequencer() *MemorySequencer {
	return &MemorySequencer{seq: make(map[string]int64)}
}

func (m *MemorySequencer) Next(_ context.Context, sessionID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq[sessionID]++
	return m.seq[sessionID], nil
}

func (m *MemorySequencer) Current(_ context.Context, sessionID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seq[sessionID], nil
}

func (m *MemorySequencer) Forget(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.seq, sessionID)
	return nil
}

// RedisSequencer keeps counters under "<prefix><sessionID>". The TTL is
// refreshed on every Next, so counters of abandoned sessions expire in Redis
// even when Forget never runs.
type RedisSequencer struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisSequencer creates a Redis-backed sequencer. Prefix may be empty;
// ttl bounds how long an idle counter survives (0 keeps it forever).
func NewRedisSequencer(client *redis.Client, prefix string, ttl time.Duration) *RedisSequencer {
	if prefix == "" {
		prefix = "rewrite:seq:"
	}
	return &RedisSequencer{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisSequencer) key(sessionID string) string {
	return r.prefix + sessionID
}

func (r *RedisSequencer) Next(ctx context.Context, sessionID string) (int64, error) {
	n, err := r.client.Incr(ctx, r.key(sessionID)).Result()
	if err != nil {
		return 0, err
	}
	if r.ttl > 0 {
		_ = r.client.Expire(ctx, r.key(sessionID), r.ttl).Err()
	}
	return n, nil
}

func (r *RedisSequencer) Current(ctx context.Context, sessionID string) (int64, error) {
	n, err := r.client.Get(ctx, r.key(sessionID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}

func (r *RedisSequencer) Forget(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, r.key(sessionID)).Err()
}
