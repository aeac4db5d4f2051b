package ui

import (
	"sync"
	"time"
)

// deferred is a single pending delayed task. Scheduling replaces whatever
// was pending.
type deferred struct {
	mu    sync.Mutex
	timer *time.Timer
}

// Schedule runs fn after delay unless cancelled or rescheduled first.
func (d *deferred) Schedule(delay time.Duration, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(delay, fn)
}

// Cancel drops the pending task, if any.
func (d *deferred) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
