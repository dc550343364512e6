package clock

import "time"

// Pausable layers suspend/resume over a base Scheduler. Timers registered
// on it keep their remaining duration while suspended and continue from
// there on Resume. Its own Now is virtual: it does not move while suspended.
//
// Pausable is not safe for concurrent use; call it from the base
// scheduler's goroutine only.
type Pausable struct {
	base        Scheduler
	offset      time.Duration
	suspendedAt time.Time
	suspended   bool
	timers      []*pausableTimer
}

// NewPausable wraps base.
func NewPausable(base Scheduler) *Pausable {
	return &Pausable{base: base}
}

// Now returns virtual time, excluding every suspended interval.
func (pausable *Pausable) Now() time.Time {
	if pausable.suspended {
		return pausable.suspendedAt.Add(-pausable.offset)
	}
	return pausable.base.Now().Add(-pausable.offset)
}

func (pausable *Pausable) AfterFunc(d time.Duration, fn func()) Handle {
	if d < 0 {
		d = 0
	}
	timer := &pausableTimer{owner: pausable, due: pausable.Now().Add(d), fn: fn}
	pausable.timers = append(pausable.timers, timer)
	if !pausable.suspended {
		timer.arm()
	}
	return timer
}

func (pausable *Pausable) Every(d time.Duration, fn func()) Handle {
	return every(pausable, d, fn)
}

func (pausable *Pausable) Post(fn func()) {
	pausable.base.Post(fn)
}

// Suspended reports whether the clock is frozen.
func (pausable *Pausable) Suspended() bool {
	return pausable.suspended
}

// Suspend freezes every timer. Repeated calls are no-ops.
func (pausable *Pausable) Suspend() {
	if pausable.suspended {
		return
	}
	pausable.suspended = true
	pausable.suspendedAt = pausable.base.Now()
	for _, timer := range pausable.timers {
		timer.disarm()
	}
}

// Resume re-arms every timer with its remaining duration. Repeated calls
// are no-ops.
func (pausable *Pausable) Resume() {
	if !pausable.suspended {
		return
	}
	pausable.offset += pausable.base.Now().Sub(pausable.suspendedAt)
	pausable.suspended = false
	for _, timer := range pausable.timers {
		timer.arm()
	}
}

// Pending returns the number of live timers, armed or frozen.
func (pausable *Pausable) Pending() int {
	return len(pausable.timers)
}

// StopAll cancels every live timer.
func (pausable *Pausable) StopAll() {
	timers := pausable.timers
	pausable.timers = nil
	for _, timer := range timers {
		timer.done = true
		timer.disarm()
	}
}

func (pausable *Pausable) remove(timer *pausableTimer) {
	for index, candidate := range pausable.timers {
		if candidate == timer {
			pausable.timers = append(pausable.timers[:index], pausable.timers[index+1:]...)
			return
		}
	}
}

type pausableTimer struct {
	owner  *Pausable
	due    time.Time
	fn     func()
	handle Handle
	done   bool
}

func (timer *pausableTimer) arm() {
	timer.handle = timer.owner.base.AfterFunc(timer.due.Sub(timer.owner.Now()), timer.fire)
}

func (timer *pausableTimer) disarm() {
	if timer.handle != nil {
		timer.handle.Stop()
		timer.handle = nil
	}
}

func (timer *pausableTimer) fire() {
	if timer.done {
		return
	}
	timer.done = true
	timer.handle = nil
	timer.owner.remove(timer)
	timer.fn()
}

func (timer *pausableTimer) Stop() {
	if timer.done {
		return
	}
	timer.done = true
	timer.disarm()
	timer.owner.remove(timer)
}
