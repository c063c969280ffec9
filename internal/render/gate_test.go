package render

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestGateAwaitAlreadyReady(t *testing.T) {
	t.Parallel()

	g := Gate{Interval: time.Hour} // interval must not matter on the fast path
	ready := func() bool { return true }

	start := time.Now()
	if err := g.Await(context.Background(), ready, ready); err != nil {
		t.Fatalf("Await: %v", err)
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Error("fast path took too long")
	}
}

func TestGateAwaitWaitsForProbes(t *testing.T) {
	t.Parallel()

	var a, b atomic.Bool
	time.AfterFunc(30*time.Millisecond, func() { a.Store(true) })
	time.AfterFunc(80*time.Millisecond, func() { b.Store(true) })

	g := Gate{Interval: 5 * time.Millisecond, Timeout: 5 * time.Second}
	if err := g.Await(context.Background(), a.Load, b.Load); err != nil {
		t.Fatalf("Await: %v", err)
	}
	// both must report ready before the gate opens
	if !a.Load() || !b.Load() {
		t.Error("gate opened before all probes were ready")
	}
}

func TestGateAwaitTimeout(t *testing.T) {
	t.Parallel()

	never := func() bool { return false }
	g := Gate{Interval: 5 * time.Millisecond, Timeout: 50 * time.Millisecond}

	err := g.Await(context.Background(), never)
	if !errors.Is(err, ErrNotReady) {
		t.Fatalf("Await = %v, want ErrNotReady", err)
	}
}

func TestGateAwaitCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	never := func() bool { return false }
	g := Gate{Interval: 5 * time.Millisecond}

	err := g.Await(ctx, never)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Await = %v, want context.Canceled", err)
	}
}

func TestGateAwaitNoProbes(t *testing.T) {
	t.Parallel()

	var g Gate
	if err := g.Await(context.Background()); err != nil {
		t.Fatalf("Await with no probes: %v", err)
	}
}
