package epoch

import (
	"context"
	"time"
)

// Epoch runs f once per trigger, one run at a time.
// Triggers that arrive while a run is in progress coalesce into one.
type Epoch struct {
	f func()
	c chan struct{}
}

func NewEpoch(f func()) *Epoch {
	return &Epoch{
		f: f,
		c: make(chan struct{}, 1),
	}
}

func (e *Epoch) Trigger() {
	select {
	case e.c <- struct{}{}:
	default:
	}
}

// StartEpochRoutine blocks until ctx is done. A positive interval also
// triggers a run on every tick.
func (e *Epoch) StartEpochRoutine(ctx context.Context, interval time.Duration) {
	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			e.f()
		case <-e.c:
			e.f()
		}
	}
}
