package util

import (
	"sync"
	"time"
)

// Debouncer runs only the last of a burst of calls, once the burst has been
// quiet for the configured delay.
type Debouncer struct {
	mu       sync.Mutex
	delay    time.Duration
	timer    *time.Timer
	inflight sync.WaitGroup
}

// NewDebouncer returns a Debouncer with the given quiet period.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger schedules fn and cancels any call still pending from an earlier
// Trigger. fn runs on its own goroutine. Trigger must not be called
// concurrently with Stop.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
	d.inflight.Add(1)
	d.timer = time.AfterFunc(d.delay, func() {
		defer d.inflight.Done()
		fn()
	})
}

// Stop cancels the pending call, if any, and waits for a call whose timer
// has already fired to return.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.cancelLocked()
	d.timer = nil
	d.mu.Unlock()
	d.inflight.Wait()
}

// cancelLocked stops the current timer. A timer that had not fired yet never
// runs its wrapper, so its slot in inflight is released here.
func (d *Debouncer) cancelLocked() {
	if d.timer != nil && d.timer.Stop() {
		d.inflight.Done()
	}
}
