package ratelimit

import (
	"context"
	"testing"
	"time"
)

type fakeCounter struct {
	counts    map[string]int64
	available bool
}

func (f *fakeCounter) Incr(_ context.Context, key string, _ time.Duration) (int64, bool) {
	if !f.available {
		return 0, false
	}
	f.counts[key]++
	return f.counts[key], true
}

func TestAllowWithCounterBackend(t *testing.T) {
	counter := &fakeCounter{counts: make(map[string]int64), available: true}
	l := New(counter, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if !l.Allow(ctx, 1) {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow(ctx, 1) {
		t.Fatalf("4th request should be denied")
	}

	// другой пользователь не задет
	if !l.Allow(ctx, 2) {
		t.Fatalf("other user should be allowed")
	}
}

func TestAllowFallsBackToMemory(t *testing.T) {
	counter := &fakeCounter{counts: make(map[string]int64), available: false}
	l := New(counter, 2)
	ctx := context.Background()

	if !l.Allow(ctx, 1) || !l.Allow(ctx, 1) {
		t.Fatalf("first two requests should be allowed")
	}
	if l.Allow(ctx, 1) {
		t.Fatalf("3rd request should be denied in memory fallback")
	}
}

func TestMemoryWindowReset(t *testing.T) {
	l := New(nil, 2)

	now := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	ctx := context.Background()
	if !l.Allow(ctx, 1) || !l.Allow(ctx, 1) {
		t.Fatalf("first two requests should be allowed")
	}
	if l.Allow(ctx, 1) {
		t.Fatalf("over limit inside window")
	}

	// окно прошло — счётчик сбрасывается
	now = now.Add(61 * time.Second)
	if !l.Allow(ctx, 1) {
		t.Fatalf("request after window should be allowed")
	}
}

func TestZeroLimitDisablesLimiter(t *testing.T) {
	l := New(nil, 0)
	for i := 0; i < 100; i++ {
		if !l.Allow(context.Background(), 1) {
			t.Fatalf("zero limit must not restrict")
		}
	}
}
