// Package ratelimit provides a fixed-window request counter keyed by
// an arbitrary string, typically a client network address.
package ratelimit

import (
	"sync"
	"time"
)

type window struct {
	start time.Time
	count int
}

// FixedWindow allows at most limit hits per key within each window.
// The check-and-increment is performed under a single lock so
// concurrent callers on the same key cannot race past the limit.
type FixedWindow struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*window
}

// NewFixedWindow constructs a limiter allowing limit hits per period.
func NewFixedWindow(limit int, period time.Duration) *FixedWindow {
	return &FixedWindow{
		limit:   limit,
		window:  period,
		now:     time.Now,
		entries: make(map[string]*window),
	}
}

// Allow records a hit for key and reports whether it is within the
// limit for the current window.
func (f *FixedWindow) Allow(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	entry, ok := f.entries[key]
	if !ok || now.Sub(entry.start) >= f.window {
		f.entries[key] = &window{start: now, count: 1}
		f.maybeSweep(now)
		return true
	}

	entry.count++
	return entry.count <= f.limit
}

// maybeSweep drops expired windows so the map does not grow without
// bound under many distinct keys. Called with the lock held.
func (f *FixedWindow) maybeSweep(now time.Time) {
	if len(f.entries) < 1024 {
		return
	}
	for key, entry := range f.entries {
		if now.Sub(entry.start) >= f.window {
			delete(f.entries, key)
		}
	}
}
