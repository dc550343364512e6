// Package clock provides the cooperative scheduler that drives a session.
//
// Every callback registered through a Scheduler runs on a single goroutine,
// one at a time, and every registration returns a Handle. A stopped Handle
// never runs its callback, even when the underlying timer already fired and
// the callback is waiting in the queue.
package clock

import (
	"sync"
	"time"
)

// Handle cancels a scheduled callback.
type Handle interface {
	Stop()
}

// Scheduler is the session's only source of time.
type Scheduler interface {
	Now() time.Time
	// AfterFunc runs fn once after d.
	AfterFunc(d time.Duration, fn func()) Handle
	// Every runs fn every d until the handle is stopped.
	Every(d time.Duration, fn func()) Handle
	// Post runs fn on the scheduler goroutine.
	Post(fn func())
}

type oneShot interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Handle
}

// repeater re-arms a one-shot timer against the planned due time, so late
// callbacks do not push later ticks back.
type repeater struct {
	mu      sync.Mutex
	clock   oneShot
	period  time.Duration
	due     time.Time
	fn      func()
	current Handle
	stopped bool
}

func every(clock oneShot, period time.Duration, fn func()) Handle {
	if period <= 0 {
		period = time.Nanosecond
	}
	r := &repeater{
		clock:  clock,
		period: period,
		due:    clock.Now().Add(period),
		fn:     fn,
	}
	r.mu.Lock()
	r.current = clock.AfterFunc(period, r.run)
	r.mu.Unlock()
	return r
}

func (r *repeater) run() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.due = r.due.Add(r.period)
	delay := r.due.Sub(r.clock.Now())
	if delay < 0 {
		delay = 0
	}
	r.current = r.clock.AfterFunc(delay, r.run)
	r.mu.Unlock()

	r.fn()
}

func (r *repeater) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	r.stopped = true
	if r.current != nil {
		r.current.Stop()
	}
}
