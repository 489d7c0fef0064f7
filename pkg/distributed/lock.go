package distributed

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Lock provides distributed locking using Redis SET NX.
type Lock struct {
	client *redis.Client
	key    string
	value  string // unique identifier for this lock holder
	ttl    time.Duration
}

// NewLock creates a new distributed lock for the given key.
func NewLock(client *redis.Client, key string, ttl time.Duration) *Lock {
	b := make([]byte, 16)
	rand.Read(b)

	return &Lock{
		client: client,
		key:    key,
		value:  hex.EncodeToString(b),
		ttl:    ttl,
	}
}

// TryLock attempts to acquire the lock without blocking.
func (l *Lock) TryLock(ctx context.Context) (bool, error) {
	acquired, err := l.client.SetNX(ctx, l.key, l.value, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to try lock: %w", err)
	}
	return acquired, nil
}

// Lock acquires the lock, polling until available or the timeout elapses.
func (l *Lock) Lock(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)

	for {
		acquired, err := l.client.SetNX(ctx, l.key, l.value, l.ttl).Result()
		if err != nil {
			return fmt.Errorf("failed to acquire lock: %w", err)
		}
		if acquired {
			return nil
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("lock acquisition timeout")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// unlockScript deletes the key only if this instance still holds it.
const unlockScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`

// Unlock releases the lock.
func (l *Lock) Unlock(ctx context.Context) error {
	result, err := l.client.Eval(ctx, unlockScript, []string{l.key}, l.value).Result()
	if err != nil {
		return fmt.Errorf("failed to unlock: %w", err)
	}
	if result.(int64) == 0 {
		return fmt.Errorf("lock was not held by this instance")
	}
	return nil
}

// Manager creates locks under a common key prefix.
type Manager struct {
	client *redis.Client
	prefix string
}

// NewManager creates a new lock manager
func NewManager(client *redis.Client, prefix string) *Manager {
	return &Manager{client: client, prefix: prefix}
}

// AcquireLock returns a lock handle for the given key
func (m *Manager) AcquireLock(key string, ttl time.Duration) *Lock {
	return NewLock(m.client, m.prefix+key, ttl)
}
