package backoff

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNextGrowsAndStops(t *testing.T) {
	b, err := New(Options{Min: 10 * time.Millisecond, Max: 50 * time.Millisecond, Jitter: 1.0, MaxAttempts: 5})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	expected := []time.Duration{20, 40, 50, 50}
	for i, e := range expected {
		got, ok := b.Next()
		if !ok {
			t.Fatalf("attempt %d: stopped early", i)
		}
		if got != e*time.Millisecond {
			t.Fatalf("attempt %d: expected = %v, got = %v", i, e*time.Millisecond, got)
		}
	}
	if _, ok := b.Next(); ok {
		t.Fatalf("expected backoff to stop")
	}
	b.Reset()
	if _, ok := b.Next(); !ok {
		t.Fatalf("expected backoff to restart after reset")
	}
}

func TestBadOptions(t *testing.T) {
	for _, o := range []Options{
		{Min: -1},
		{Grow: 0.5},
		{Jitter: 0.9},
		{Min: time.Second, Max: time.Millisecond},
	} {
		if _, err := New(o); err == nil {
			t.Fatalf("expected error for %+v", o)
		}
	}
}

func TestRetryHonorsContext(t *testing.T) {
	b, err := New(Options{Min: time.Hour, Max: time.Hour})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := b.Retry(ctx, errors.New("busy")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
