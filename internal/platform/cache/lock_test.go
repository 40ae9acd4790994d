package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLocker(t *testing.T) (*Locker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewLocker(rdb), mr
}

func TestTryLockAcquireAndRelease(t *testing.T) {
	locker, mr := newTestLocker(t)
	ctx := context.Background()

	release, ok, err := locker.TryLock(ctx, "lock:test", time.Minute)
	if err != nil {
		t.Fatalf("TryLock failed: %v", err)
	}
	if !ok {
		t.Fatal("expected to acquire a free lock")
	}
	if !mr.Exists("lock:test") {
		t.Fatal("lock key missing in redis")
	}

	// A second acquirer is refused while the lock is held.
	_, ok2, err := locker.TryLock(ctx, "lock:test", time.Minute)
	if err != nil {
		t.Fatalf("second TryLock failed: %v", err)
	}
	if ok2 {
		t.Fatal("second acquirer must not get the lock")
	}

	release()
	if mr.Exists("lock:test") {
		t.Fatal("lock key still present after release")
	}

	// Free again after release.
	_, ok3, err := locker.TryLock(ctx, "lock:test", time.Minute)
	if err != nil || !ok3 {
		t.Fatalf("re-acquire after release: ok=%v err=%v", ok3, err)
	}
}

func TestReleaseDoesNotDeleteForeignLock(t *testing.T) {
	locker, mr := newTestLocker(t)
	ctx := context.Background()

	release, ok, err := locker.TryLock(ctx, "lock:test", 50*time.Millisecond)
	if err != nil || !ok {
		t.Fatalf("TryLock: ok=%v err=%v", ok, err)
	}

	// Simulate expiry plus takeover by another holder.
	mr.FastForward(time.Second)
	mr.Set("lock:test", "someone-else")

	release()

	got, err := mr.Get("lock:test")
	if err != nil || got != "someone-else" {
		t.Fatalf("foreign lock value = %q err=%v, want untouched someone-else", got, err)
	}
}

func TestLockWithRetryExhaustsAttempts(t *testing.T) {
	locker, _ := newTestLocker(t)
	ctx := context.Background()

	release, _, err := locker.TryLock(ctx, "lock:test", time.Minute)
	if err != nil {
		t.Fatalf("TryLock failed: %v", err)
	}
	defer release()

	_, err = locker.LockWithRetry(ctx, "lock:test", time.Minute, 3, time.Millisecond)
	if !errors.Is(err, ErrLockNotAcquired) {
		t.Fatalf("err = %v, want ErrLockNotAcquired", err)
	}
}

func TestLockWithRetrySucceedsAfterRelease(t *testing.T) {
	locker, _ := newTestLocker(t)
	ctx := context.Background()

	release, _, err := locker.TryLock(ctx, "lock:test", time.Minute)
	if err != nil {
		t.Fatalf("TryLock failed: %v", err)
	}

	go func() {
		time.Sleep(30 * time.Millisecond)
		release()
	}()

	got, err := locker.LockWithRetry(ctx, "lock:test", time.Minute, 50, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("LockWithRetry failed: %v", err)
	}
	got()
}

func TestLockWithRetryHonorsContext(t *testing.T) {
	locker, _ := newTestLocker(t)

	release, _, err := locker.TryLock(context.Background(), "lock:test", time.Minute)
	if err != nil {
		t.Fatalf("TryLock failed: %v", err)
	}
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = locker.LockWithRetry(ctx, "lock:test", time.Minute, 100, 10*time.Millisecond)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
