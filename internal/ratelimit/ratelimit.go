package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// Limiter is a fixed-window in-memory rate limiter keyed by caller identity.
type Limiter struct {
	mu       sync.Mutex
	counters map[string]*counter
	window   time.Duration
	max      int
}

type counter struct {
	count     int
	expiresAt time.Time
}

// NewLimiter creates a limiter allowing max requests per key per window.
func NewLimiter(window time.Duration, max int) *Limiter {
	l := &Limiter{
		counters: make(map[string]*counter),
		window:   window,
		max:      max,
	}
	go l.cleanup()
	return l
}

// Allow records a request for key and reports whether it fits the window.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	c, exists := l.counters[key]
	if !exists || now.After(c.expiresAt) {
		l.counters[key] = &counter{count: 1, expiresAt: now.Add(l.window)}
		return true
	}
	if c.count >= l.max {
		return false
	}
	c.count++
	return true
}

// Remaining returns how many requests key has left in the current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, exists := l.counters[key]
	if !exists || time.Now().After(c.expiresAt) {
		return l.max
	}
	if remaining := l.max - c.count; remaining > 0 {
		return remaining
	}
	return 0
}

func (l *Limiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		l.mu.Lock()
		now := time.Now()
		for key, c := range l.counters {
			if now.After(c.expiresAt) {
				delete(l.counters, key)
			}
		}
		l.mu.Unlock()
	}
}

// TrackingLimiter bounds the public tracking endpoints per client IP. Visits
// are cheap inserts so the ceiling is generous; conversion events are rarer
// and capped tighter to blunt metric-stuffing.
type TrackingLimiter struct {
	visits *Limiter
	events *Limiter
}

func NewTrackingLimiter() *TrackingLimiter {
	return &TrackingLimiter{
		visits: NewLimiter(time.Minute, 120),
		events: NewLimiter(time.Minute, 30),
	}
}

// CheckVisit verifies a visit write is allowed from the given IP.
func (t *TrackingLimiter) CheckVisit(ip string) error {
	if !t.visits.Allow(ip) {
		return fmt.Errorf("too many visit events from this address, please slow down")
	}
	return nil
}

// CheckEvent verifies a conversion event write is allowed from the given IP.
func (t *TrackingLimiter) CheckEvent(ip string) error {
	if !t.events.Allow(ip) {
		return fmt.Errorf("too many conversion events from this address, please slow down")
	}
	return nil
}
