package main

import (
	"fmt"
	"io"
	"sync"

	"zenbreath/internal/core/model"
	"zenbreath/internal/core/session"
	"zenbreath/internal/ui/overlay"
)

const clearLine = "\r\033[K"

// terminalDisplay renders session events as text. In raw mode the status
// line is redrawn in place; otherwise one line is written per phase change,
// pause or mute toggle.
type terminalDisplay struct {
	out    io.Writer
	config model.SessionConfig
	raw    bool

	mu      sync.Mutex
	muted   bool
	started bool
}

func (display *terminalDisplay) handle(event session.Event) {
	switch event.Type {
	case session.EventMuted:
		display.mu.Lock()
		display.muted = event.Muted
		display.mu.Unlock()
		display.status(event, false)
	case session.EventPhaseChange:
		display.status(event, true)
	case session.EventPaused, session.EventResumed:
		display.status(event, false)
	case session.EventProgress, session.EventElapsed:
		if display.raw {
			display.status(event, false)
		}
	case session.EventFinished, session.EventCanceled:
		if display.raw && display.started {
			fmt.Fprint(display.out, "\r\n")
		}
	}
}

func (display *terminalDisplay) status(event session.Event, newPhase bool) {
	line := overlay.Describe(event.State, display.config).Line()
	if display.isMuted() {
		line += " | muted"
	}

	if !display.raw {
		fmt.Fprintln(display.out, line)
		return
	}
	if newPhase && display.started {
		fmt.Fprint(display.out, "\r\n")
	}
	display.started = true
	fmt.Fprint(display.out, clearLine+line)
}

func (display *terminalDisplay) isMuted() bool {
	display.mu.Lock()
	defer display.mu.Unlock()
	return display.muted
}

func (display *terminalDisplay) println(text string) {
	if display.raw {
		fmt.Fprint(display.out, text+"\r\n")
		return
	}
	fmt.Fprintln(display.out, text)
}
