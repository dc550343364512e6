package clock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeFiresInDueOrder(t *testing.T) {
	fake := NewFake(epoch)
	var order []string
	fake.AfterFunc(2*time.Second, func() { order = append(order, "b") })
	fake.AfterFunc(time.Second, func() { order = append(order, "a") })
	fake.AfterFunc(2*time.Second, func() { order = append(order, "c") })

	fake.Advance(1500 * time.Millisecond)
	assert.Equal(t, []string{"a"}, order)

	fake.Advance(time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, epoch.Add(2500*time.Millisecond), fake.Now())
	assert.Zero(t, fake.Pending())
}

func TestFakeStopDuringAdvance(t *testing.T) {
	fake := NewFake(epoch)
	fired := false
	var second Handle
	fake.AfterFunc(time.Second, func() { second.Stop() })
	second = fake.AfterFunc(time.Second, func() { fired = true })

	fake.Advance(2 * time.Second)
	assert.False(t, fired)
	assert.Zero(t, fake.Pending())
}

func TestEveryKeepsPeriod(t *testing.T) {
	fake := NewFake(epoch)
	var at []time.Duration
	handle := fake.Every(time.Second, func() { at = append(at, fake.Now().Sub(epoch)) })

	fake.Advance(3500 * time.Millisecond)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 3 * time.Second}, at)

	handle.Stop()
	fake.Advance(5 * time.Second)
	assert.Len(t, at, 3)
	assert.Zero(t, fake.Pending())
}

func TestEveryStoppedFromCallback(t *testing.T) {
	fake := NewFake(epoch)
	count := 0
	var handle Handle
	handle = fake.Every(time.Second, func() {
		count++
		if count == 2 {
			handle.Stop()
		}
	})
	fake.Advance(10 * time.Second)
	assert.Equal(t, 2, count)
	assert.Zero(t, fake.Pending())
}

func TestPausablePreservesRemaining(t *testing.T) {
	fake := NewFake(epoch)
	pausable := NewPausable(fake)
	fired := false
	pausable.AfterFunc(3*time.Second, func() { fired = true })

	fake.Advance(2 * time.Second)
	pausable.Suspend()
	assert.Zero(t, fake.Pending())
	assert.Equal(t, 1, pausable.Pending())

	fake.Advance(time.Minute)
	assert.False(t, fired)

	pausable.Resume()
	fake.Advance(999 * time.Millisecond)
	assert.False(t, fired)
	fake.Advance(time.Millisecond)
	assert.True(t, fired)
	assert.Zero(t, pausable.Pending())
}

func TestPausableVirtualNowFreezes(t *testing.T) {
	fake := NewFake(epoch)
	pausable := NewPausable(fake)

	fake.Advance(time.Second)
	pausable.Suspend()
	fake.Advance(10 * time.Second)
	assert.Equal(t, epoch.Add(time.Second), pausable.Now())

	pausable.Resume()
	fake.Advance(time.Second)
	assert.Equal(t, epoch.Add(2*time.Second), pausable.Now())
}

func TestPausableEverySurvivesToggling(t *testing.T) {
	fake := NewFake(epoch)
	pausable := NewPausable(fake)
	ticks := 0
	pausable.Every(time.Second, func() { ticks++ })

	fake.Advance(500 * time.Millisecond)
	for i := 0; i < 10; i++ {
		pausable.Suspend()
		pausable.Suspend()
		pausable.Resume()
		pausable.Resume()
	}
	assert.Equal(t, 1, fake.Pending())

	fake.Advance(500 * time.Millisecond)
	assert.Equal(t, 1, ticks)
	fake.Advance(time.Second)
	assert.Equal(t, 2, ticks)
}

func TestPausableCreatedWhileSuspended(t *testing.T) {
	fake := NewFake(epoch)
	pausable := NewPausable(fake)
	pausable.Suspend()
	fired := false
	pausable.AfterFunc(time.Second, func() { fired = true })

	fake.Advance(5 * time.Second)
	assert.False(t, fired)
	pausable.Resume()
	fake.Advance(time.Second)
	assert.True(t, fired)
}

func TestPausableStopAll(t *testing.T) {
	fake := NewFake(epoch)
	pausable := NewPausable(fake)
	fired := 0
	pausable.AfterFunc(time.Second, func() { fired++ })
	pausable.Every(time.Second, func() { fired++ })

	pausable.StopAll()
	fake.Advance(5 * time.Second)
	assert.Zero(t, fired)
	assert.Zero(t, fake.Pending())
	assert.Zero(t, pausable.Pending())
}

func TestLoopSerializesCallbacks(t *testing.T) {
	loop := NewLoop()
	loop.Start()
	defer loop.Stop()

	var mu sync.Mutex
	var order []int
	done := make(chan struct{})
	for i := 0; i < 5; i++ {
		value := i
		loop.Post(func() {
			mu.Lock()
			order = append(order, value)
			mu.Unlock()
		})
	}
	loop.AfterFunc(10*time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestLoopStoppedHandleNeverRuns(t *testing.T) {
	loop := NewLoop()
	loop.Start()
	defer loop.Stop()

	fired := make(chan struct{}, 1)
	handle := loop.AfterFunc(20*time.Millisecond, func() { fired <- struct{}{} })
	handle.Stop()

	select {
	case <-fired:
		t.Fatal("stopped handle fired")
	case <-time.After(60 * time.Millisecond):
	}
}

func TestLoopStaleCallbackDropped(t *testing.T) {
	loop := NewLoop()
	loop.Start()
	defer loop.Stop()

	fired := make(chan struct{}, 1)
	blocked := make(chan struct{})
	release := make(chan struct{})
	// Hold the loop so the timer's callback queues behind this task.
	loop.Post(func() {
		close(blocked)
		<-release
	})
	<-blocked
	handle := loop.AfterFunc(0, func() { fired <- struct{}{} })
	time.Sleep(20 * time.Millisecond)
	handle.Stop()
	close(release)

	select {
	case <-fired:
		t.Fatal("stale callback ran after Stop")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestLoopStopDropsWork(t *testing.T) {
	loop := NewLoop()
	loop.Start()
	loop.Stop()

	select {
	case <-loop.Done():
	case <-time.After(time.Second):
		t.Fatal("loop did not exit")
	}
	ran := false
	loop.Post(func() { ran = true })
	require.False(t, ran)
}
