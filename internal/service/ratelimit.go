package service

import (
	"context"
	"sync"
	"time"

	"coursebot/internal/clock"
	"coursebot/internal/domain"
)

// Limiter caps outbound sends over rolling minute and hour windows.
// A limit <= 0 disables that window.
type Limiter struct {
	perMinute int
	perHour   int
	clock     clock.Clock

	mu   sync.Mutex
	sent []time.Time
}

// NewLimiter creates a limiter
func NewLimiter(perMinute, perHour int, clk clock.Clock) *Limiter {
	return &Limiter{
		perMinute: perMinute,
		perHour:   perHour,
		clock:     clk,
	}
}

// Exhausted reports whether the minute window is already full
func (l *Limiter) Exhausted() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	l.prune(now)
	return l.perMinute > 0 && l.countSince(now.Add(-time.Minute)) >= l.perMinute
}

// Acquire blocks until a send is permitted and records it
func (l *Limiter) Acquire(ctx context.Context) error {
	for {
		l.mu.Lock()
		now := l.clock.Now()
		l.prune(now)
		wait := l.delay(now)
		if wait == 0 {
			l.sent = append(l.sent, now)
			l.mu.Unlock()
			return nil
		}
		l.mu.Unlock()

		if err := l.clock.Sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// Snapshot reports current window usage
func (l *Limiter) Snapshot() domain.RateLimitSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	l.prune(now)
	return domain.RateLimitSnapshot{
		SentLastMinute: l.countSince(now.Add(-time.Minute)),
		SentLastHour:   len(l.sent),
		MaxPerMinute:   l.perMinute,
		MaxPerHour:     l.perHour,
	}
}

// delay returns how long until both windows have room. Caller holds mu.
func (l *Limiter) delay(now time.Time) time.Duration {
	var wait time.Duration
	if d := l.windowDelay(now, time.Minute, l.perMinute); d > wait {
		wait = d
	}
	if d := l.windowDelay(now, time.Hour, l.perHour); d > wait {
		wait = d
	}
	return wait
}

func (l *Limiter) windowDelay(now time.Time, window time.Duration, limit int) time.Duration {
	if limit <= 0 {
		return 0
	}
	start := now.Add(-window)
	inWindow := l.sent[l.firstAfter(start):]
	if len(inWindow) < limit {
		return 0
	}
	// the oldest entries that must expire before one more send fits
	release := inWindow[len(inWindow)-limit].Add(window)
	if d := release.Sub(now); d > 0 {
		return d
	}
	return time.Nanosecond
}

func (l *Limiter) countSince(start time.Time) int {
	return len(l.sent) - l.firstAfter(start)
}

// firstAfter returns the index of the first send strictly after start
func (l *Limiter) firstAfter(start time.Time) int {
	for i, t := range l.sent {
		if t.After(start) {
			return i
		}
	}
	return len(l.sent)
}

func (l *Limiter) prune(now time.Time) {
	i := l.firstAfter(now.Add(-time.Hour))
	if i > 0 {
		l.sent = append(l.sent[:0], l.sent[i:]...)
	}
}
