// Package debounce provides a cancellable scheduled task: each Schedule call
// supersedes the pending one, so only the last call inside the quiescence
// window runs.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is the quiescence window used for search input
const DefaultDelay = 100 * time.Millisecond

// Debouncer runs the most recently scheduled func once no new Schedule call
// arrives for the configured delay. It is safe for concurrent use.
type Debouncer struct {
	delay      time.Duration
	mu         sync.Mutex
	timer      *time.Timer
	generation uint64
	stopped    bool
}

// New creates a Debouncer with the given delay
func New(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{delay: delay}
}

// Delay returns the quiescence window
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Schedule discards any pending func and schedules fn after the delay.
// A func that has already started is not interrupted.
func (d *Debouncer) Schedule(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.generation++
	gen := d.generation
	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		// A timer that fired while being superseded must not run
		if gen != d.generation || d.stopped {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()

		fn()
	})
}

// Cancel discards the pending func, if any
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.generation++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Pending reports whether a func is waiting to run
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Stop cancels the pending func and rejects future Schedule calls
func (d *Debouncer) Stop() {
	d.Cancel()

	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
}
