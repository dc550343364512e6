// Package phase implements the breathing session state machine.
//
// The machine holds no timers. It publishes the Timers the current phase
// needs and an Epoch that changes whenever the previous timers must be
// replaced; the caller arms them and feeds back Tick, Boundary and Expire.
package phase

import (
	"time"

	"zenbreath/internal/core/model"
)

// Machine owns the runtime state of one session.
type Machine struct {
	config  model.SessionConfig
	timings model.Timings
	cues    Cues
	state   State
	// remaining backs countdown phases; counted backs retention.
	remaining time.Duration
	counted   time.Duration
	timers    Timers
	epoch     uint64
	started   bool
}

// New creates a machine for a validated configuration.
func New(config model.SessionConfig, timings model.Timings, cues Cues) *Machine {
	if config.RetentionMode == "" {
		config.RetentionMode = model.RetentionSelfPaced
	}
	return &Machine{
		config:  config,
		timings: timings.WithDefaults(),
		cues:    cues,
		state:   State{Phase: Prepare, Inhaling: true},
	}
}

// State returns a copy of the runtime state.
func (machine *Machine) State() State {
	return machine.state
}

// Timers returns the timers the current phase needs.
func (machine *Machine) Timers() Timers {
	return machine.timers
}

// Epoch increments every time the current timers are replaced.
func (machine *Machine) Epoch() uint64 {
	return machine.epoch
}

// Done reports whether the session reached Finished.
func (machine *Machine) Done() bool {
	return machine.state.Phase == Finished
}

// Start enters Prepare. Repeated calls are no-ops.
func (machine *Machine) Start() {
	if machine.started {
		return
	}
	machine.started = true
	machine.state = State{Phase: Prepare, Inhaling: true}
	machine.enterCountdown(Prepare, machine.timings.Prepare, machine.timings.Tick)
}

// SetPaused records the pause flag used by CountSecond.
func (machine *Machine) SetPaused(paused bool) {
	machine.state.Paused = paused
}

// CountSecond adds one second of session time unless paused or finished.
func (machine *Machine) CountSecond() bool {
	if !machine.started || machine.state.Paused || machine.state.Phase == Finished {
		return false
	}
	machine.state.ElapsedSeconds++
	return true
}

// Tick advances the phase timer by one period.
func (machine *Machine) Tick() {
	if !machine.started {
		return
	}
	switch machine.state.Phase {
	case Prepare, RecoveryHold, Intermission:
		machine.countDown(machine.timings.Tick)
	case RecoveryInhale:
		machine.countDown(machine.timings.RecoveryStep)
	case Retention:
		machine.counted += machine.timings.Tick
		machine.state.Timer = machine.counted.Seconds()
		if machine.targetReached() {
			machine.Expire()
		}
	}
}

// Boundary ends the current inhale or exhale of the breathing phase.
func (machine *Machine) Boundary() {
	if machine.state.Phase != Breathing {
		return
	}
	if machine.state.Inhaling {
		machine.state.Inhaling = false
		exhale := machine.timings.Exhale
		if machine.state.BreathCount == machine.config.BreathsPerRound-1 {
			exhale = machine.timings.FinalExhale()
		}
		machine.cues.Breath(model.Exhale, exhale)
		machine.arm(Timers{Boundary: exhale})
		return
	}
	if machine.state.BreathCount+1 >= machine.config.BreathsPerRound {
		machine.enterRetention()
		return
	}
	machine.state.BreathCount++
	machine.startInhale()
}

// Expire ends the current phase as if its timer ran out. Skip and natural
// expiry share this path.
func (machine *Machine) Expire() {
	if !machine.started {
		return
	}
	switch machine.state.Phase {
	case Prepare:
		machine.enterBreathing()
	case Breathing:
		machine.enterRetention()
	case Retention:
		machine.enterRecoveryInhale()
	case RecoveryInhale:
		machine.enterRecoveryHold()
	case RecoveryHold:
		machine.completeRound()
	case Intermission:
		machine.state.Round++
		machine.enterBreathing()
	}
}

// Result reports the configured rounds and the elapsed session time.
func (machine *Machine) Result() Result {
	return Result{
		Rounds:         machine.config.Rounds,
		ElapsedSeconds: machine.state.ElapsedSeconds,
		ElapsedMinutes: float64(machine.state.ElapsedSeconds) / 60,
	}
}

func (machine *Machine) countDown(step time.Duration) {
	machine.remaining -= step
	if machine.remaining <= 0 {
		machine.remaining = 0
		machine.state.Timer = 0
		machine.Expire()
		return
	}
	machine.state.Timer = machine.remaining.Seconds()
}

func (machine *Machine) enterBreathing() {
	machine.state.Phase = Breathing
	machine.state.BreathCount = 0
	machine.state.Timer = 0
	machine.startInhale()
}

func (machine *Machine) startInhale() {
	machine.state.Inhaling = true
	machine.cues.Breath(model.Inhale, machine.timings.Inhale)
	machine.arm(Timers{Boundary: machine.timings.Inhale})
}

func (machine *Machine) enterRetention() {
	machine.state.Phase = Retention
	machine.state.Inhaling = false
	machine.state.Timer = 0
	machine.counted = 0
	machine.cues.Silence()
	machine.arm(Timers{Tick: machine.timings.Tick})
	if machine.targetReached() {
		machine.enterRecoveryInhale()
	}
}

// targetReached reports whether a target-mode hold has run its course.
func (machine *Machine) targetReached() bool {
	return machine.config.RetentionMode == model.RetentionTarget &&
		machine.state.Timer >= float64(machine.config.RetentionTarget(machine.state.Round))
}

func (machine *Machine) enterRecoveryInhale() {
	machine.state.Inhaling = true
	machine.cues.Breath(model.Inhale, machine.timings.RecoveryInhale)
	machine.enterCountdown(RecoveryInhale, machine.timings.RecoveryInhale, machine.timings.RecoveryStep)
	machine.timers.Deadline = machine.timings.RecoveryInhale
}

func (machine *Machine) enterRecoveryHold() {
	machine.state.Inhaling = false
	machine.cues.Silence()
	machine.enterCountdown(RecoveryHold, machine.timings.RecoveryHold, machine.timings.Tick)
}

func (machine *Machine) completeRound() {
	machine.cues.Bell()
	if machine.state.Round+1 >= machine.config.Rounds {
		machine.state.Phase = Finished
		machine.state.Timer = 0
		machine.arm(Timers{})
		return
	}
	machine.enterCountdown(Intermission, machine.timings.Intermission, machine.timings.Tick)
}

func (machine *Machine) enterCountdown(phase Phase, duration, tick time.Duration) {
	machine.state.Phase = phase
	machine.remaining = duration
	machine.state.Timer = duration.Seconds()
	machine.arm(Timers{Tick: tick})
}

func (machine *Machine) arm(timers Timers) {
	machine.timers = timers
	machine.epoch++
}
