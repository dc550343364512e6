package clock

import (
	"sync"
	"sync/atomic"
	"time"
)

// Loop is a real-time Scheduler that serializes callbacks and posted
// commands on one goroutine.
type Loop struct {
	mu        sync.Mutex
	queue     []func()
	wake      chan struct{}
	quit      chan struct{}
	done      chan struct{}
	closed    bool
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewLoop creates a stopped loop. Call Start before posting work.
func NewLoop() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Start launches the loop goroutine.
func (loop *Loop) Start() {
	loop.startOnce.Do(func() {
		go loop.run()
	})
}

// Stop terminates the loop and drops queued work.
func (loop *Loop) Stop() {
	loop.stopOnce.Do(func() {
		loop.mu.Lock()
		loop.closed = true
		loop.queue = nil
		loop.mu.Unlock()
		close(loop.quit)
	})
}

// Done is closed once the loop goroutine exits.
func (loop *Loop) Done() <-chan struct{} {
	return loop.done
}

// Now returns the wall clock.
func (loop *Loop) Now() time.Time {
	return time.Now()
}

// Post queues fn for the loop goroutine. Work posted after Stop is dropped.
func (loop *Loop) Post(fn func()) {
	loop.mu.Lock()
	if loop.closed {
		loop.mu.Unlock()
		return
	}
	loop.queue = append(loop.queue, fn)
	loop.mu.Unlock()

	select {
	case loop.wake <- struct{}{}:
	default:
	}
}

// AfterFunc schedules fn on the loop after d.
func (loop *Loop) AfterFunc(d time.Duration, fn func()) Handle {
	if d < 0 {
		d = 0
	}
	handle := &loopTimer{}
	handle.timer = time.AfterFunc(d, func() {
		loop.Post(func() {
			if !handle.stopped.CompareAndSwap(false, true) {
				return
			}
			fn()
		})
	})
	return handle
}

// Every schedules fn on the loop every d.
func (loop *Loop) Every(d time.Duration, fn func()) Handle {
	return every(loop, d, fn)
}

func (loop *Loop) run() {
	defer close(loop.done)
	for {
		select {
		case <-loop.quit:
			return
		case <-loop.wake:
		}
		for {
			task := loop.pop()
			if task == nil {
				break
			}
			task()
		}
	}
}

func (loop *Loop) pop() func() {
	loop.mu.Lock()
	defer loop.mu.Unlock()
	if loop.closed || len(loop.queue) == 0 {
		return nil
	}
	task := loop.queue[0]
	loop.queue[0] = nil
	loop.queue = loop.queue[1:]
	return task
}

type loopTimer struct {
	timer   *time.Timer
	stopped atomic.Bool
}

func (handle *loopTimer) Stop() {
	handle.stopped.Store(true)
	handle.timer.Stop()
}
