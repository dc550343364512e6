package phase

import (
	"time"

	"zenbreath/internal/core/model"
)

// Phase identifies a segment of a round.
type Phase string

const (
	Prepare        Phase = "prepare"
	Breathing      Phase = "breathing"
	Retention      Phase = "retention"
	RecoveryInhale Phase = "recovery_inhale"
	RecoveryHold   Phase = "recovery_hold"
	Intermission   Phase = "intermission"
	Finished       Phase = "finished"
)

// State is a snapshot of the session's runtime counters.
type State struct {
	Round       int
	Phase       Phase
	BreathCount int
	// Timer is in seconds: a countdown, a count-up during retention, or a
	// fractional countdown during the recovery inhale.
	Timer          float64
	Paused         bool
	Inhaling       bool
	ElapsedSeconds int
}

// Cues receives the audio requests issued on transitions.
type Cues interface {
	Breath(direction model.Direction, duration time.Duration)
	Silence()
	Bell()
}

// Timers describes the callbacks the current phase needs. Zero means none.
type Timers struct {
	// Tick is the period of the phase timer.
	Tick time.Duration
	// Boundary is a one-shot breath sub-phase boundary.
	Boundary time.Duration
	// Deadline is a one-shot forced expiry.
	Deadline time.Duration
}

// Result is the outcome reported when the last round completes.
type Result struct {
	Rounds         int
	ElapsedSeconds int
	ElapsedMinutes float64
}
