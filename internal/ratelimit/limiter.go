package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter decides whether another request for key fits in its budget.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// LocalLimiter keeps one token bucket per key in process memory.
type LocalLimiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	r       rate.Limit
	burst   int
	idle    time.Duration
	stop    chan struct{}
	once    sync.Once
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLocalLimiter allows perMinute events per key with the given burst.
// Entries idle for longer than idleTTL are swept every minute.
func NewLocalLimiter(perMinute, burst int, idleTTL time.Duration) *LocalLimiter {
	l := &LocalLimiter{
		entries: make(map[string]*entry),
		r:       rate.Limit(float64(perMinute) / 60.0),
		burst:   burst,
		idle:    idleTTL,
		stop:    make(chan struct{}),
	}
	go l.sweep(time.Minute)
	return l
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, error) {
	return l.limiter(key, time.Now()).Allow(), nil
}

func (l *LocalLimiter) limiter(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.r, l.burst)}
		l.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter
}

func (l *LocalLimiter) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case now := <-ticker.C:
			l.evictIdle(now)
		}
	}
}

func (l *LocalLimiter) evictIdle(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	evicted := 0
	for key, e := range l.entries {
		if now.Sub(e.lastSeen) > l.idle {
			delete(l.entries, key)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of tracked keys.
func (l *LocalLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Stop ends the sweeper goroutine.
func (l *LocalLimiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}
