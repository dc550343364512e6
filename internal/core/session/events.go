package session

import (
	"time"

	"zenbreath/internal/core/model"
	"zenbreath/internal/core/phase"
)

// EventType defines the type of session event.
type EventType string

const (
	EventPhaseChange EventType = "phase_change"
	EventProgress    EventType = "progress"
	EventElapsed     EventType = "elapsed"
	EventCue         EventType = "cue"
	EventPaused      EventType = "paused"
	EventResumed     EventType = "resumed"
	EventMuted       EventType = "muted"
	EventFinished    EventType = "finished"
	EventCanceled    EventType = "canceled"
)

// CueKind names the audio request carried by an EventCue.
type CueKind string

const (
	CueBreath  CueKind = "breath"
	CueSilence CueKind = "silence"
	CueBell    CueKind = "bell"
)

// Event represents a session update for observers.
type Event struct {
	Type      EventType
	SessionID string
	State     phase.State

	Cue       CueKind
	Direction model.Direction
	// Duration is the length of a breath cue.
	Duration time.Duration

	Muted  bool
	Result *Result
	At     time.Time
}
