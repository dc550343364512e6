package clock

import (
	"sync"
	"time"
)

// Fake is a manually advanced Scheduler for deterministic tests.
// Callbacks run synchronously inside Advance, in due order; timers due at
// the same instant run in registration order. Post runs fn immediately.
type Fake struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	timers []*fakeTimer
}

// NewFake returns a fake clock starting at start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

func (fake *Fake) Now() time.Time {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	return fake.now
}

func (fake *Fake) AfterFunc(d time.Duration, fn func()) Handle {
	if d < 0 {
		d = 0
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()
	fake.seq++
	timer := &fakeTimer{fake: fake, due: fake.now.Add(d), seq: fake.seq, fn: fn}
	fake.timers = append(fake.timers, timer)
	return timer
}

func (fake *Fake) Every(d time.Duration, fn func()) Handle {
	return every(fake, d, fn)
}

func (fake *Fake) Post(fn func()) {
	fn()
}

// Advance moves time forward by d, firing every timer that comes due.
func (fake *Fake) Advance(d time.Duration) {
	fake.mu.Lock()
	target := fake.now.Add(d)
	for {
		next := fake.nextLocked(target)
		if next == nil {
			break
		}
		fake.now = next.due
		fake.removeLocked(next)
		next.fired = true
		fake.mu.Unlock()
		next.fn()
		fake.mu.Lock()
	}
	fake.now = target
	fake.mu.Unlock()
}

// Pending returns the number of timers that have not fired or been stopped.
func (fake *Fake) Pending() int {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	return len(fake.timers)
}

func (fake *Fake) nextLocked(target time.Time) *fakeTimer {
	var next *fakeTimer
	for _, timer := range fake.timers {
		if timer.due.After(target) {
			continue
		}
		if next == nil || timer.due.Before(next.due) || (timer.due.Equal(next.due) && timer.seq < next.seq) {
			next = timer
		}
	}
	return next
}

func (fake *Fake) removeLocked(timer *fakeTimer) {
	for index, candidate := range fake.timers {
		if candidate == timer {
			fake.timers = append(fake.timers[:index], fake.timers[index+1:]...)
			return
		}
	}
}

type fakeTimer struct {
	fake  *Fake
	due   time.Time
	seq   uint64
	fn    func()
	fired bool
}

func (timer *fakeTimer) Stop() {
	timer.fake.mu.Lock()
	defer timer.fake.mu.Unlock()
	if timer.fired {
		return
	}
	timer.fired = true
	timer.fake.removeLocked(timer)
}
