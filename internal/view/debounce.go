package view

import (
	"sync"
	"time"
)

// Debouncer delays fn until Trigger has not been called for a full window,
// then calls it once with the last value. Each call of fn runs on its own
// goroutine.
type Debouncer struct {
	window time.Duration
	fn     func(string)

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// NewDebouncer creates a new Debouncer that calls fn after window of quiet.
func NewDebouncer(window time.Duration, fn func(string)) *Debouncer {
	return &Debouncer{window: window, fn: fn}
}

// Trigger restarts the quiet window with value as the pending argument.
func (d *Debouncer) Trigger(value string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, func() { d.fn(value) })
}

// Stop cancels a pending call; later Triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
