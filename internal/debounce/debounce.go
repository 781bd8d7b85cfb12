package debounce

import (
	"sync"
	"time"
)

// Debouncer delays running a callback until its input stream has been quiet for
// the configured interval. Scheduling a new callback cancels the pending one,
// so at most one callback is pending at any time. Safe for concurrent use.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	seq   uint64
}

// New returns a Debouncer with the given quiet interval. Non-positive delays
// fall back to 300ms, the interactive autocomplete default.
func New(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = 300 * time.Millisecond
	}
	return &Debouncer{delay: delay}
}

// Schedule arms the debouncer to run fn after the quiet interval, discarding
// any previously scheduled callback. fn runs on the timer goroutine.
func (d *Debouncer) Schedule(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.timer = time.AfterFunc(d.delay, func() {
		// A Stop that races the timer firing may let fn reach here after a
		// newer Schedule; the sequence check drops it.
		d.mu.Lock()
		stale := seq != d.seq
		d.mu.Unlock()
		if stale {
			return
		}
		fn()
	})
}

// Cancel discards the pending callback, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
}

// Delay returns the configured quiet interval.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}
