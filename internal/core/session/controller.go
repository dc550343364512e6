package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"zenbreath/internal/core/clock"
	"zenbreath/internal/core/model"
	"zenbreath/internal/core/phase"
)

// ErrCanceled is returned by Wait when the session was canceled.
var ErrCanceled = errors.New("session canceled")

// Result is reported when the last round completes.
type Result = phase.Result

// Audio is the cue emitter driven by the controller.
type Audio interface {
	CueBreath(direction model.Direction, duration time.Duration)
	SilenceBreath()
	CueBell()
	SetMuted(muted bool)
	SuspendAll()
	ResumeAll()
	StartTheme(theme model.AudioTheme)
	StopTheme()
	Close()
}

// Config contains runtime options for a Controller.
type Config struct {
	// Clock runs every callback and command. It must serialize them, as
	// clock.Loop and clock.Fake do.
	Clock   clock.Scheduler
	Audio   Audio
	Timings model.Timings
	Logger  *slog.Logger
	Muted   bool
}

// Controller runs one breathing session on a single scheduler goroutine.
type Controller struct {
	mu      sync.Mutex
	id      string
	config  model.SessionConfig
	base    clock.Scheduler
	phases  *clock.Pausable
	machine *phase.Machine
	audio   Audio
	logger  *slog.Logger

	chain   []clock.Handle
	elapsed clock.Handle

	started bool
	paused  bool
	muted   bool
	closed  bool

	events []chan Event
	done   chan struct{}
	result Result
	err    error
}

// New creates a controller for a validated configuration.
func New(config model.SessionConfig, options Config) *Controller {
	if options.Clock == nil {
		loop := clock.NewLoop()
		loop.Start()
		options.Clock = loop
	}
	if options.Audio == nil {
		options.Audio = silentAudio{}
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	id := uuid.NewString()
	controller := &Controller{
		id:     id,
		config: config,
		base:   options.Clock,
		phases: clock.NewPausable(options.Clock),
		audio:  options.Audio,
		logger: options.Logger.With("session_id", id),
		muted:  options.Muted,
		done:   make(chan struct{}),
	}
	controller.machine = phase.New(config, options.Timings, cueForwarder{controller: controller})
	return controller
}

// ID returns the session identifier used in logs and events.
func (controller *Controller) ID() string {
	return controller.id
}

// Subscribe registers a new observer channel. Slow observers miss events
// rather than block the session.
func (controller *Controller) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	controller.mu.Lock()
	if controller.closed {
		close(ch)
	} else {
		controller.events = append(controller.events, ch)
	}
	controller.mu.Unlock()
	return ch
}

// State returns a snapshot of the runtime state.
func (controller *Controller) State() phase.State {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	return controller.machine.State()
}

// Wait blocks until the session finishes, is canceled, or ctx is done.
func (controller *Controller) Wait(ctx context.Context) (Result, error) {
	select {
	case <-controller.done:
		controller.mu.Lock()
		defer controller.mu.Unlock()
		return controller.result, controller.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Done is closed when the session finishes or is canceled.
func (controller *Controller) Done() <-chan struct{} {
	return controller.done
}

// Start begins the session with the prepare countdown.
func (controller *Controller) Start() {
	controller.base.Post(controller.start)
}

// Pause freezes phase timers, the elapsed counter and audio.
func (controller *Controller) Pause() {
	controller.base.Post(controller.pause)
}

// Resume reverses Pause.
func (controller *Controller) Resume() {
	controller.base.Post(controller.resume)
}

// TogglePause pauses a running session or resumes a paused one.
func (controller *Controller) TogglePause() {
	controller.base.Post(func() {
		controller.mu.Lock()
		paused := controller.paused
		controller.mu.Unlock()
		if paused {
			controller.resume()
			return
		}
		controller.pause()
	})
}

// Skip ends the current phase as if its timer ran out.
func (controller *Controller) Skip() {
	controller.base.Post(controller.skip)
}

// Cancel tears the session down without a result.
func (controller *Controller) Cancel() {
	controller.base.Post(controller.cancel)
}

// SetMuted toggles ambient audio and the completion bell.
func (controller *Controller) SetMuted(muted bool) {
	controller.base.Post(func() {
		controller.mu.Lock()
		defer controller.mu.Unlock()
		if controller.closed {
			return
		}
		controller.muted = muted
		controller.audio.SetMuted(muted)
		controller.emitLocked(Event{Type: EventMuted, Muted: muted})
	})
}

func (controller *Controller) start() {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.started || controller.closed {
		return
	}
	controller.started = true
	controller.logger.Info("session started",
		"rounds", controller.config.Rounds,
		"breaths_per_round", controller.config.BreathsPerRound,
		"theme", controller.config.AudioTheme,
		"retention_mode", controller.config.RetentionMode)

	controller.audio.SetMuted(controller.muted)
	controller.audio.StartTheme(controller.config.AudioTheme)
	controller.elapsed = controller.base.Every(time.Second, controller.countSecond)
	controller.stepLocked(controller.machine.Start)
}

func (controller *Controller) pause() {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if !controller.started || controller.closed || controller.paused {
		return
	}
	controller.paused = true
	controller.machine.SetPaused(true)
	controller.phases.Suspend()
	controller.stopElapsedLocked()
	controller.audio.SuspendAll()
	controller.logger.Debug("session paused", "phase", controller.machine.State().Phase)
	controller.emitLocked(Event{Type: EventPaused})
}

func (controller *Controller) resume() {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if !controller.started || controller.closed || !controller.paused {
		return
	}
	controller.paused = false
	controller.machine.SetPaused(false)
	controller.audio.ResumeAll()
	controller.phases.Resume()
	controller.elapsed = controller.base.Every(time.Second, controller.countSecond)
	controller.logger.Debug("session resumed", "phase", controller.machine.State().Phase)
	controller.emitLocked(Event{Type: EventResumed})
}

func (controller *Controller) skip() {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if !controller.started || controller.closed {
		return
	}
	controller.logger.Debug("phase skipped", "phase", controller.machine.State().Phase)
	controller.stepLocked(controller.machine.Expire)
}

func (controller *Controller) cancel() {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.closed {
		return
	}
	state := controller.machine.State()
	controller.teardownLocked()
	controller.audio.Close()
	controller.err = ErrCanceled
	controller.logger.Info("session canceled", "phase", state.Phase, "round", state.Round+1)
	controller.emitLocked(Event{Type: EventCanceled})
	controller.closeLocked()
}

func (controller *Controller) onTick() {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	controller.stepLocked(controller.machine.Tick)
}

func (controller *Controller) onBoundary() {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	controller.stepLocked(controller.machine.Boundary)
}

func (controller *Controller) onDeadline() {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	controller.stepLocked(controller.machine.Expire)
}

func (controller *Controller) countSecond() {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.closed {
		return
	}
	if controller.machine.CountSecond() {
		controller.emitLocked(Event{Type: EventElapsed})
	}
}

// stepLocked applies one transition and re-arms the timer chain when the
// machine asks for new timers.
func (controller *Controller) stepLocked(transition func()) {
	if controller.closed {
		return
	}
	before := controller.machine.State()
	epoch := controller.machine.Epoch()

	transition()

	after := controller.machine.State()
	if controller.machine.Epoch() != epoch {
		controller.rearmLocked()
	}
	switch {
	case epoch == 0 || before.Phase != after.Phase || before.Round != after.Round:
		controller.logger.Debug("phase changed", "from", before.Phase, "to", after.Phase, "round", after.Round+1)
		controller.emitLocked(Event{Type: EventPhaseChange})
	case before != after:
		controller.emitLocked(Event{Type: EventProgress})
	}
	if after.Phase == phase.Finished {
		controller.finishLocked()
	}
}

// rearmLocked cancels every handle of the previous chain before installing
// the next, so a stale callback can never reach the new phase.
func (controller *Controller) rearmLocked() {
	controller.disarmLocked()
	timers := controller.machine.Timers()
	if timers.Tick > 0 {
		controller.chain = append(controller.chain, controller.phases.Every(timers.Tick, controller.onTick))
	}
	if timers.Boundary > 0 {
		controller.chain = append(controller.chain, controller.phases.AfterFunc(timers.Boundary, controller.onBoundary))
	}
	if timers.Deadline > 0 {
		controller.chain = append(controller.chain, controller.phases.AfterFunc(timers.Deadline, controller.onDeadline))
	}
}

func (controller *Controller) disarmLocked() {
	for _, handle := range controller.chain {
		handle.Stop()
	}
	controller.chain = controller.chain[:0]
}

func (controller *Controller) stopElapsedLocked() {
	if controller.elapsed != nil {
		controller.elapsed.Stop()
		controller.elapsed = nil
	}
}

func (controller *Controller) teardownLocked() {
	controller.disarmLocked()
	controller.phases.StopAll()
	controller.stopElapsedLocked()
	controller.audio.StopTheme()
}

func (controller *Controller) finishLocked() {
	controller.teardownLocked()
	controller.audio.SilenceBreath()
	controller.audio.Close()
	result := controller.machine.Result()
	controller.result = result
	controller.logger.Info("session finished",
		"rounds", result.Rounds,
		"elapsed_seconds", result.ElapsedSeconds)
	controller.emitLocked(Event{Type: EventFinished, Result: &result})
	controller.closeLocked()
}

// closeLocked marks the session closed and releases observers.
func (controller *Controller) closeLocked() {
	controller.closed = true
	events := controller.events
	controller.events = nil
	for _, ch := range events {
		close(ch)
	}
	close(controller.done)
}

func (controller *Controller) emitLocked(event Event) {
	event.SessionID = controller.id
	event.State = controller.machine.State()
	if event.At.IsZero() {
		event.At = controller.base.Now()
	}
	for _, ch := range controller.events {
		select {
		case ch <- event:
		default:
		}
	}
}

// cueForwarder turns machine cue requests into emitter calls and events.
// It runs inside stepLocked, with the controller lock held.
type cueForwarder struct {
	controller *Controller
}

func (forwarder cueForwarder) Breath(direction model.Direction, duration time.Duration) {
	forwarder.controller.audio.CueBreath(direction, duration)
	forwarder.controller.emitLocked(Event{Type: EventCue, Cue: CueBreath, Direction: direction, Duration: duration})
}

func (forwarder cueForwarder) Silence() {
	forwarder.controller.audio.SilenceBreath()
	forwarder.controller.emitLocked(Event{Type: EventCue, Cue: CueSilence})
}

func (forwarder cueForwarder) Bell() {
	if !forwarder.controller.muted {
		forwarder.controller.audio.CueBell()
	}
	forwarder.controller.emitLocked(Event{Type: EventCue, Cue: CueBell})
}

type silentAudio struct{}

func (silentAudio) CueBreath(model.Direction, time.Duration) {}
func (silentAudio) SilenceBreath()                           {}
func (silentAudio) CueBell()                                 {}
func (silentAudio) SetMuted(bool)                            {}
func (silentAudio) SuspendAll()                              {}
func (silentAudio) ResumeAll()                               {}
func (silentAudio) StartTheme(model.AudioTheme)              {}
func (silentAudio) StopTheme()                               {}
func (silentAudio) Close()                                   {}
