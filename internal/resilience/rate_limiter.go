package resilience

import (
	"sync"
	"time"
)

// RateLimiter admits up to Max requests per key within a sliding Window.
// Advisory only: the ticket validator's conditional update stays correct
// even if the limiter is bypassed.
type RateLimiter struct {
	Max    int
	Window time.Duration

	Now func() time.Time // test hook

	mu      sync.Mutex
	buckets map[string][]time.Time
	stop    chan struct{}
	once    sync.Once
}

func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		Max:     max,
		Window:  window,
		Now:     time.Now,
		buckets: map[string][]time.Time{},
		stop:    make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// IsAllowed prunes timestamps older than the window, then admits and records
// the request when the key is under its quota.
func (rl *RateLimiter) IsAllowed(key string) bool {
	now := rl.Now()
	cutoff := now.Add(-rl.Window)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	stamps := rl.buckets[key]
	kept := stamps[:0]
	for _, ts := range stamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= rl.Max {
		rl.buckets[key] = kept
		return false
	}

	rl.buckets[key] = append(kept, now)
	return true
}

// Stop terminates the background cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.Window)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stop:
			return
		}
	}
}

// cleanup drops keys with no activity inside the window to bound memory.
func (rl *RateLimiter) cleanup() {
	cutoff := rl.Now().Add(-rl.Window)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, stamps := range rl.buckets {
		idle := true
		for _, ts := range stamps {
			if ts.After(cutoff) {
				idle = false
				break
			}
		}
		if idle {
			delete(rl.buckets, key)
		}
	}
}
