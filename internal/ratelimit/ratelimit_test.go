package ratelimit

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestAllowWithinLimit(t *testing.T) {
	limiter := NewFixedWindow(5, time.Minute)

	for i := 0; i < 5; i++ {
		if !limiter.Allow("10.0.0.1") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if limiter.Allow("10.0.0.1") {
		t.Fatalf("sixth attempt within the window should be denied")
	}
	if limiter.Allow("10.0.0.1") {
		t.Fatalf("seventh attempt within the window should be denied")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	limiter := NewFixedWindow(2, time.Minute)

	limiter.Allow("10.0.0.1")
	limiter.Allow("10.0.0.1")
	if limiter.Allow("10.0.0.1") {
		t.Fatalf("third attempt for first key should be denied")
	}
	if !limiter.Allow("10.0.0.2") {
		t.Fatalf("first attempt for second key should be allowed")
	}
}

func TestWindowExpiry(t *testing.T) {
	current := time.Now()
	limiter := NewFixedWindow(2, time.Minute)
	limiter.now = func() time.Time { return current }

	limiter.Allow("10.0.0.1")
	limiter.Allow("10.0.0.1")
	if limiter.Allow("10.0.0.1") {
		t.Fatalf("attempt over the limit should be denied")
	}

	// Just shy of expiry the key stays blocked.
	current = current.Add(time.Minute - time.Second)
	if limiter.Allow("10.0.0.1") {
		t.Fatalf("attempt before window expiry should be denied")
	}

	current = current.Add(2 * time.Second)
	if !limiter.Allow("10.0.0.1") {
		t.Fatalf("attempt after window expiry should start a fresh window")
	}
}

func TestConcurrentAllowDoesNotExceedLimit(t *testing.T) {
	const limit = 5
	limiter := NewFixedWindow(limit, time.Minute)

	var allowed atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Allow("10.0.0.1") {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := allowed.Load(); got != limit {
		t.Fatalf("allowed %d attempts, want %d", got, limit)
	}
}
