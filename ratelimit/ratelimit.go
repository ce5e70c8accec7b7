// Package ratelimit provides a per-key cooldown gate for public form
// submissions. One allowed call per key per window; everything in between is
// denied with a retry delay.
package ratelimit

import (
	"math"
	"sync"
	"time"
)

const pruneInterval = time.Minute

// Limiter tracks the last allowed call per key, in memory, for one process.
// Safe for concurrent use.
type Limiter struct {
	window   time.Duration
	done     chan struct{}
	stopOnce sync.Once

	mu       sync.Mutex
	lastSeen map[string]time.Time
}

// New starts a limiter with the given cooldown window. Call Stop when done to
// release the pruning goroutine.
func New(window time.Duration) *Limiter {
	l := &Limiter{
		window:   window,
		done:     make(chan struct{}),
		lastSeen: map[string]time.Time{},
	}
	go l.pruneLoop()
	return l
}

// Allow records and admits the first call for a key, or any call made after
// the cooldown window has elapsed. Denied calls report the whole seconds
// (rounded up, at least 1) until the key is admitted again. The empty key is
// never limited.
func (l *Limiter) Allow(key string) (ok bool, retryAfterSeconds int) {
	if key == "" {
		return true, 0
	}

	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if last, seen := l.lastSeen[key]; seen {
		elapsed := now.Sub(last)
		if elapsed < l.window {
			retry := int(math.Ceil((l.window - elapsed).Seconds()))
			if retry < 1 {
				retry = 1
			}
			return false, retry
		}
	}

	l.lastSeen[key] = now
	return true, 0
}

// Stop ends the background pruning goroutine. The limiter stays usable, it
// just no longer reclaims stale entries. Safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		close(l.done)
	})
}

func (l *Limiter) pruneLoop() {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
			l.prune(time.Now())
		}
	}
}

func (l *Limiter) prune(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, ts := range l.lastSeen {
		if now.Sub(ts) > l.window {
			delete(l.lastSeen, key)
		}
	}
}
