package render

import (
	"context"
	"errors"
	"time"
)

// ErrNotReady reports that rendering dependencies did not come up within
// the gate's timeout.
var ErrNotReady = errors.New("render: dependencies not ready")

type Probe func() bool

// Gate holds the single-post render path until every readiness probe
// reports true. It re-checks on a fixed interval; a zero Timeout means
// wait as long as the request context allows.
type Gate struct {
	Interval time.Duration
	Timeout  time.Duration
}

func (g Gate) Await(ctx context.Context, probes ...Probe) error {
	if allReady(probes) {
		return nil
	}

	interval := g.Interval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}

	tick := time.NewTicker(interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return ErrNotReady
			}
			return ctx.Err()
		case <-tick.C:
			if allReady(probes) {
				return nil
			}
		}
	}
}

func allReady(probes []Probe) bool {
	for _, p := range probes {
		if !p() {
			return false
		}
	}
	return true
}
