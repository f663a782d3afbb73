// File: utils/lock.go
package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// Mutex is a coarse redis-backed lock used to serialize service-scoped
// operations (waitlist position renumbering, candidate selection).
type Mutex struct {
	client *redis.Client
	key    string
	token  string
}

// NewMutex builds a mutex for the given scope key (e.g. a service id).
func NewMutex(client *redis.Client, scope string) *Mutex {
	return &Mutex{
		client: client,
		key:    LockPrefix + scope,
		token:  uuid.New().String(),
	}
}

// Lock acquires the mutex, polling until acquired or ctx is done.
func (m *Mutex) Lock(ctx context.Context) error {
	for {
		ok, err := m.client.SetNX(ctx, m.key, m.token, LockTTL).Result()
		if err != nil {
			return fmt.Errorf("acquire lock %s: %w", m.key, err)
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("acquire lock %s: %w", m.key, ctx.Err())
		case <-time.After(50 * time.Millisecond):
		}
	}
}

var unlockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Unlock releases the mutex if this instance still holds it.
func (m *Mutex) Unlock(ctx context.Context) error {
	if err := unlockScript.Run(ctx, m.client, []string{m.key}, m.token).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("release lock %s: %w", m.key, err)
	}
	return nil
}

// Locker hands out scoped mutexes. Services take this instead of a raw redis
// client so tests can substitute a no-op implementation.
type Locker interface {
	Acquire(ctx context.Context, scope string) (release func(), err error)
}

// RedisLocker is the production Locker.
type RedisLocker struct {
	Client *redis.Client
}

func (l *RedisLocker) Acquire(ctx context.Context, scope string) (func(), error) {
	m := NewMutex(l.Client, scope)
	if err := m.Lock(ctx); err != nil {
		return nil, err
	}
	return func() { _ = m.Unlock(context.Background()) }, nil
}

// NoopLocker satisfies Locker without any coordination, for single-process
// tests.
type NoopLocker struct{}

func (NoopLocker) Acquire(context.Context, string) (func(), error) {
	return func() {}, nil
}
