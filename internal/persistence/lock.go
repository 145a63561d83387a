package persistence

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/ticket-bot/internal/config"
)

// ErrLockHeld is returned when another holder owns the key.
var ErrLockHeld = errors.New("lock held")

// ReleaseFunc gives a lock back. Releasing an expired lock is a no-op.
type ReleaseFunc func(ctx context.Context) error

// Locker serializes work on a key, such as the check-then-create window of a
// ticket channel. Locks expire on their own so a crashed holder cannot wedge a key.
type Locker interface {
	Acquire(ctx context.Context, key string) (ReleaseFunc, error)
}

// NewLocker returns a Redis-backed locker when Redis is configured and an
// in-process one otherwise.
func NewLocker(r *Redis, cfg config.LockConfig) Locker {
	if r.Enabled() {
		return NewRedisLocker(r.Client, cfg.KeyPrefix, cfg.TTL())
	}
	return NewLocalLocker(cfg.TTL())
}

// only delete the key if we still own it
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisLocker implements Locker with SET NX PX.
type RedisLocker struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisLocker builds a RedisLocker.
func NewRedisLocker(client *redis.Client, prefix string, ttl time.Duration) *RedisLocker {
	return &RedisLocker{client: client, prefix: prefix, ttl: ttl}
}

// Acquire takes key or returns ErrLockHeld.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (ReleaseFunc, error) {
	fullKey := l.prefix + key
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, fullKey, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", fullKey, err)
	}
	if !ok {
		return nil, ErrLockHeld
	}

	return func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{fullKey}, token).Err(); err != nil {
			return fmt.Errorf("release lock %s: %w", fullKey, err)
		}
		return nil
	}, nil
}

// LocalLocker implements Locker for a single process.
type LocalLocker struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	held map[string]localLease
}

type localLease struct {
	token     string
	expiresAt time.Time
}

// NewLocalLocker builds a LocalLocker.
func NewLocalLocker(ttl time.Duration) *LocalLocker {
	return &LocalLocker{ttl: ttl, now: time.Now, held: make(map[string]localLease)}
}

// Acquire takes key or returns ErrLockHeld.
func (l *LocalLocker) Acquire(_ context.Context, key string) (ReleaseFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if lease, ok := l.held[key]; ok && now.Before(lease.expiresAt) {
		return nil, ErrLockHeld
	}

	token := uuid.NewString()
	l.held[key] = localLease{token: token, expiresAt: now.Add(l.ttl)}

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if lease, ok := l.held[key]; ok && lease.token == token {
			delete(l.held, key)
		}
		return nil
	}, nil
}
