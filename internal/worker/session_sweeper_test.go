package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type countingEvicter struct {
	calls atomic.Int32
	ttl   atomic.Int64
}

func (e *countingEvicter) EvictIdle(ttl time.Duration) int {
	e.calls.Add(1)
	e.ttl.Store(int64(ttl))
	return 1
}

func TestSessionSweeperEvictsUntilCancelled(t *testing.T) {
	ev := &countingEvicter{}
	w := NewSessionSweeper(ev, time.Hour, 5*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for ev.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("sweeper ran %d times", ev.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
	if got := time.Duration(ev.ttl.Load()); got != time.Hour {
		t.Fatalf("ttl = %v, want 1h", got)
	}
}

func TestSessionSweeperDisabled(t *testing.T) {
	ev := &countingEvicter{}
	w := NewSessionSweeper(ev, 0, time.Millisecond, zerolog.Nop())

	// Returns immediately without a cancelled context.
	w.Start(context.Background())
	if ev.calls.Load() != 0 {
		t.Fatalf("evicted with ttl 0")
	}
}

func TestNewSessionSweeperDefaultsInterval(t *testing.T) {
	w := NewSessionSweeper(&countingEvicter{}, time.Minute, 0, zerolog.Nop())
	if w.interval != DefaultSweepInterval {
		t.Fatalf("interval = %v", w.interval)
	}
}
