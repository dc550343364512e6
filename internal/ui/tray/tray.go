package tray

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnShow        func()
	OnTogglePause func()
	OnSkip        func()
	OnToggleMute  func()
	OnEndSession  func()
	OnQuit        func()
}

// Manager handles system tray state.
type Manager struct {
	app         desktop.App
	statusItem  *fyne.MenuItem
	audioItem   *fyne.MenuItem
	showItem    *fyne.MenuItem
	pauseItem   *fyne.MenuItem
	skipItem    *fyne.MenuItem
	muteItem    *fyne.MenuItem
	endItem     *fyne.MenuItem
	quitItem    *fyne.MenuItem
	callbacks   Callbacks
	paused      bool
	statusLabel string
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:         app,
		callbacks:   callbacks,
		statusLabel: "ready",
	}

	manager.statusItem = fyne.NewMenuItem("Status: ready", nil)
	manager.statusItem.Disabled = true
	manager.audioItem = fyne.NewMenuItem("Sound: idle", nil)
	manager.audioItem.Disabled = true

	manager.showItem = fyne.NewMenuItem("Show ZenBreath", func() { call(manager.callbacks.OnShow) })
	manager.pauseItem = fyne.NewMenuItem("Pause", func() { call(manager.callbacks.OnTogglePause) })
	manager.skipItem = fyne.NewMenuItem("Skip phase", func() { call(manager.callbacks.OnSkip) })
	manager.muteItem = fyne.NewMenuItem("Mute", func() { call(manager.callbacks.OnToggleMute) })
	manager.endItem = fyne.NewMenuItem("End session", func() { call(manager.callbacks.OnEndSession) })
	manager.quitItem = fyne.NewMenuItem("Quit", func() { call(manager.callbacks.OnQuit) })
	manager.quitItem.IsQuit = true

	manager.SetInSession(false)
	return manager
}

// SetStatus updates the status label.
func (manager *Manager) SetStatus(status string) {
	manager.statusLabel = status
	manager.refreshStatus()
}

// SetAudioStatus updates the sound status label.
func (manager *Manager) SetAudioStatus(status string) {
	manager.audioItem.Label = fmt.Sprintf("Sound: %s", status)
	manager.refreshMenu()
}

// SetPaused updates pause state.
func (manager *Manager) SetPaused(paused bool) {
	manager.paused = paused
	if paused {
		manager.pauseItem.Label = "Resume"
	} else {
		manager.pauseItem.Label = "Pause"
	}
	manager.refreshStatus()
}

// SetMuted updates the mute label.
func (manager *Manager) SetMuted(muted bool) {
	if muted {
		manager.muteItem.Label = "Unmute"
	} else {
		manager.muteItem.Label = "Mute"
	}
	manager.refreshMenu()
}

// SetInSession toggles session-related menu items.
func (manager *Manager) SetInSession(inSession bool) {
	manager.pauseItem.Disabled = !inSession
	manager.skipItem.Disabled = !inSession
	manager.endItem.Disabled = !inSession
	if !inSession {
		manager.paused = false
		manager.pauseItem.Label = "Pause"
	}
	manager.refreshStatus()
}

func (manager *Manager) refreshStatus() {
	status := manager.statusLabel
	if manager.paused {
		status = fmt.Sprintf("%s (paused)", status)
	}
	manager.statusItem.Label = fmt.Sprintf("Status: %s", status)
	manager.refreshMenu()
}

func (manager *Manager) refreshMenu() {
	if manager.app != nil {
		manager.app.SetSystemTrayMenu(fyne.NewMenu("ZenBreath",
			manager.statusItem,
			manager.audioItem,
			fyne.NewMenuItemSeparator(),
			manager.showItem,
			manager.pauseItem,
			manager.skipItem,
			manager.muteItem,
			manager.endItem,
			fyne.NewMenuItemSeparator(),
			manager.quitItem,
		))
	}
}

func call(handler func()) {
	if handler != nil {
		handler()
	}
}
