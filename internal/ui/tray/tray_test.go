package tray

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManagerLabelsFollowSession(t *testing.T) {
	manager := New(nil, Callbacks{})
	assert.Equal(t, "Status: ready", manager.statusItem.Label)
	assert.True(t, manager.pauseItem.Disabled)
	assert.True(t, manager.skipItem.Disabled)

	manager.SetInSession(true)
	manager.SetStatus("Hold your breath")
	manager.SetPaused(true)
	assert.False(t, manager.pauseItem.Disabled)
	assert.Equal(t, "Resume", manager.pauseItem.Label)
	assert.Equal(t, "Status: Hold your breath (paused)", manager.statusItem.Label)

	manager.SetMuted(true)
	manager.SetAudioStatus("ready")
	assert.Equal(t, "Unmute", manager.muteItem.Label)
	assert.Equal(t, "Sound: ready", manager.audioItem.Label)

	manager.SetInSession(false)
	assert.Equal(t, "Pause", manager.pauseItem.Label)
	assert.True(t, manager.endItem.Disabled)
	assert.Equal(t, "Status: Hold your breath", manager.statusItem.Label)
}

func TestMenuActionsCallHandlers(t *testing.T) {
	var calls []string
	manager := New(nil, Callbacks{
		OnTogglePause: func() { calls = append(calls, "pause") },
		OnSkip:        func() { calls = append(calls, "skip") },
		OnEndSession:  func() { calls = append(calls, "end") },
	})

	manager.pauseItem.Action()
	manager.skipItem.Action()
	manager.endItem.Action()
	manager.muteItem.Action()

	assert.Equal(t, []string{"pause", "skip", "end"}, calls)
}
