package server

import (
	"sync"
	"time"
)

// failureRateLimiter blocks a client once it accumulates maxFailures failed
// admin token checks inside window.
type failureRateLimiter struct {
	mu          sync.Mutex
	clients     map[string]failureEntry
	maxFailures int
	window      time.Duration
	blockedFor  time.Duration
	staleAfter  time.Duration
	ops         int
	sweepEvery  int
}

type failureEntry struct {
	failures     int
	windowStart  time.Time
	blockedUntil time.Time
	lastSeen     time.Time
}

func newFailureRateLimiter(maxFailures int, window, blockedFor time.Duration) *failureRateLimiter {
	if maxFailures <= 0 || window <= 0 || blockedFor <= 0 {
		return nil
	}
	staleAfter := 2 * max(window, blockedFor)
	if staleAfter < 10*time.Minute {
		staleAfter = 10 * time.Minute
	}
	return &failureRateLimiter{
		clients:     make(map[string]failureEntry),
		maxFailures: maxFailures,
		window:      window,
		blockedFor:  blockedFor,
		staleAfter:  staleAfter,
		sweepEvery:  64,
	}
}

// RetryAfter returns how long key stays blocked, or zero when it may try.
func (l *failureRateLimiter) RetryAfter(key string, now time.Time) time.Duration {
	if l == nil || key == "" {
		return 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.clients[key]
	if !ok {
		return 0
	}
	entry.lastSeen = now
	l.clients[key] = entry
	l.sweepLocked(now)

	if now.Before(entry.blockedUntil) {
		return entry.blockedUntil.Sub(now)
	}
	return 0
}

// RegisterFailure counts one failure for key and reports whether key is now
// blocked.
func (l *failureRateLimiter) RegisterFailure(key string, now time.Time) bool {
	if l == nil || key == "" {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entry := l.clients[key]
	if entry.windowStart.IsZero() || now.Sub(entry.windowStart) > l.window {
		entry.failures = 0
		entry.windowStart = now
	}
	entry.failures++
	blocked := false
	if entry.failures >= l.maxFailures {
		entry.blockedUntil = now.Add(l.blockedFor)
		entry.failures = 0
		entry.windowStart = time.Time{}
		blocked = true
	}
	entry.lastSeen = now
	l.clients[key] = entry
	l.sweepLocked(now)
	return blocked
}

// Reset forgets key after a successful check.
func (l *failureRateLimiter) Reset(key string) {
	if l == nil || key == "" {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.clients, key)
}

func (l *failureRateLimiter) sweepLocked(now time.Time) {
	l.ops++
	if l.ops%l.sweepEvery != 0 {
		return
	}
	for key, entry := range l.clients {
		if now.Sub(entry.lastSeen) > l.staleAfter {
			delete(l.clients, key)
		}
	}
}
