package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const window = time.Minute

// Counter — внешний атомарный счётчик (redis). Второй результат false,
// когда бэкенд недоступен — тогда лимитер считает в памяти.
type Counter interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, bool)
}

// Limiter — лимит запросов в минуту на пользователя, счётчик со сбросом.
type Limiter struct {
	counter Counter
	limit   int

	mu  sync.Mutex
	mem map[int64][]time.Time
	now func() time.Time
}

func New(counter Counter, perMinute int) *Limiter {
	return &Limiter{
		counter: counter,
		limit:   perMinute,
		mem:     make(map[int64][]time.Time),
		now:     time.Now,
	}
}

func (l *Limiter) Allow(ctx context.Context, userID int64) bool {
	if l.limit <= 0 {
		return true
	}

	if l.counter != nil {
		key := fmt.Sprintf("rate_limit:%d:%d", userID, int(window.Seconds()))
		if n, ok := l.counter.Incr(ctx, key, window); ok {
			return n <= int64(l.limit)
		}
	}

	return l.allowInMemory(userID)
}

func (l *Limiter) allowInMemory(userID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-window)

	recent := l.mem[userID][:0]
	for _, t := range l.mem[userID] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= l.limit {
		l.mem[userID] = recent
		return false
	}

	l.mem[userID] = append(recent, now)
	return true
}
