package cache

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockNotAcquired is returned when the lock is held by someone else for the
// whole retry window.
var ErrLockNotAcquired = errors.New("lock not acquired")

// releaseScript deletes the lock key only if it still holds the value written
// by the acquirer, so an expired lock taken over by another holder is not
// released by mistake.
var releaseScript = redis.NewScript(`
    if redis.call("get", KEYS[1]) == ARGV[1] then
        return redis.call("del", KEYS[1])
    else
        return 0
    end
`)

// Locker is a small mutual-exclusion primitive backed by Redis SET NX + TTL.
type Locker struct {
	rdb *redis.Client
}

func NewLocker(rdb *redis.Client) *Locker {
	return &Locker{rdb: rdb}
}

// TryLock attempts a single acquisition of key. On success it returns a
// release func that must be called when the critical section ends.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	lockValue := uuid.NewString()

	ok, err := l.rdb.SetNX(ctx, key, lockValue, ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		// Use a fresh context: the caller's may already be cancelled.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		deleted, err := releaseScript.Run(releaseCtx, l.rdb, []string{key}, lockValue).Result()
		if err != nil {
			log.Printf("ERROR: Failed to release lock %s: %v", key, err)
			return
		}
		if n, _ := deleted.(int64); n != 1 {
			log.Printf("WARN: Did not release lock %s; it might have expired or been taken by another.", key)
		}
	}
	return release, true, nil
}

// LockWithRetry keeps trying to acquire key until it succeeds, the attempts
// run out, or ctx is cancelled.
func (l *Locker) LockWithRetry(ctx context.Context, key string, ttl time.Duration, attempts int, backoff time.Duration) (func(), error) {
	for i := 0; i < attempts; i++ {
		release, ok, err := l.TryLock(ctx, key, ttl)
		if err != nil {
			return nil, err
		}
		if ok {
			return release, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
	return nil, ErrLockNotAcquired
}
