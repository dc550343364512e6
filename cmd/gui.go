package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"zenbreath/internal/audio"
	"zenbreath/internal/core/clock"
	"zenbreath/internal/core/model"
	"zenbreath/internal/core/session"
	"zenbreath/internal/insight"
	"zenbreath/internal/platform"
	"zenbreath/internal/storage"
	"zenbreath/internal/ui/animation"
	"zenbreath/internal/ui/overlay"
	"zenbreath/internal/ui/preferences"
	"zenbreath/internal/ui/summary"
	"zenbreath/internal/ui/tray"
	"zenbreath/resources"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
)

// shell owns the windows and the running session. Its fields are only
// touched on the Fyne goroutine.
type shell struct {
	app     fyne.App
	trayApp desktop.App
	device  *audio.Device
	fetcher audio.Fetcher
	picker  *insight.Picker

	settings preferences.Settings

	setupWindow   *preferences.Window
	sessionWindow *overlay.Window
	summaryWindow *summary.Window
	tray          *tray.Manager
	preview       *audio.Emitter

	controller *session.Controller
	config     model.SessionConfig
	muted      bool
	wakeLock   platform.WakeLock
}

func runDesktop() error {
	guard, err := platform.AcquireSingleInstance(appName)
	if err != nil {
		if errors.Is(err, platform.ErrAlreadyRunning) {
			if activateErr := platform.ActivateRunning(appName); activateErr != nil {
				slog.Warn("activate running instance", "error", activateErr)
			}
			return nil
		}
		return err
	}
	defer func() {
		_ = guard.Release()
	}()

	settings, err := storage.LoadSettings(appName)
	if err != nil {
		slog.Warn("load settings, using defaults", "error", err)
	}

	device, err := audio.OpenDevice(audio.DefaultSampleRate)
	if err != nil {
		slog.Warn("audio output unavailable, sessions will be silent", "error", err)
	}

	fyneApp := app.NewWithID(appID)
	fyneApp.SetIcon(resources.MustLogo(resources.LogoActive))
	trayApp, _ := fyneApp.(desktop.App)

	s := &shell{
		app:      fyneApp,
		trayApp:  trayApp,
		device:   device,
		fetcher:  newFetcher(settings),
		picker:   insight.NewPicker(uint64(time.Now().UnixNano())),
		settings: settings,
	}
	s.build()

	go guard.Serve(func() {
		fyne.Do(s.showSetup)
	})

	s.showSetup()
	fyneApp.Run()
	return nil
}

func (s *shell) build() {
	var sessionWindow *overlay.Window
	engine := animation.New(animation.DefaultConfig(), func(scale float64) {
		sessionWindow.SetBubbleScale(scale)
	})
	sessionWindow = overlay.New(s.app, s.overlayConfig(), engine)
	sessionWindow.SetCallbacks(overlay.Callbacks{
		OnTogglePause: s.togglePause,
		OnSkip:        s.skip,
		OnEnd:         s.endRequested,
		OnToggleMute:  s.toggleMute,
	})
	s.sessionWindow = sessionWindow

	s.setupWindow = preferences.New(s.app, s.settings, preferences.Callbacks{
		OnStart:   s.startSession,
		OnPreview: s.previewTheme,
		OnClose: func() {
			if s.trayApp == nil {
				s.quit()
				return
			}
			s.setupWindow.Hide()
		},
	})
	s.summaryWindow = summary.New(s.app, s.showSetup)

	s.tray = tray.New(s.trayApp, tray.Callbacks{
		OnShow:        s.showSetup,
		OnTogglePause: s.togglePause,
		OnSkip:        s.skip,
		OnToggleMute:  s.toggleMute,
		OnEndSession:  s.endRequested,
		OnQuit:        s.quit,
	})
	s.setTrayIcon(false)
}

func (s *shell) overlayConfig() overlay.Config {
	return overlay.Config{
		Opacity:    opacityToAlpha(s.settings.SessionOpacity),
		Fullscreen: s.settings.Fullscreen,
	}
}

func (s *shell) showSetup() {
	if s.controller != nil {
		return
	}
	s.setupWindow.SetQuote(s.picker.Quote())
	s.setupWindow.Show()
}

func (s *shell) startSession(settings preferences.Settings) {
	if s.controller != nil {
		return
	}
	s.settings = settings
	if err := storage.SaveSettings(appName, settings); err != nil {
		slog.Warn("save settings", "error", err)
	}
	s.stopPreview()

	config := settings.SessionConfig()
	loop := clock.NewLoop()
	loop.Start()
	options := session.Config{
		Clock:   loop,
		Timings: model.DefaultTimings(),
		Logger:  slog.Default(),
		Muted:   settings.Muted,
	}
	s.setAudioStatus(audio.StatusIdle)
	if emitter := s.newEmitter(s.reportAudioStatus); emitter != nil {
		options.Audio = emitter
	} else {
		s.setAudioStatus(audio.StatusUnavailable)
	}

	controller := session.New(config, options)
	events := controller.Subscribe(64)
	s.controller = controller
	s.config = config
	s.muted = settings.Muted

	s.setupWindow.Hide()
	s.summaryWindow.Hide()
	s.sessionWindow.UpdateConfig(s.overlayConfig())
	s.sessionWindow.Show(config)
	s.sessionWindow.SetMuted(s.muted)
	s.tray.SetInSession(true)
	s.tray.SetMuted(s.muted)
	s.holdWakeLock()

	go s.forward(controller, loop, events)
	controller.Start()
}

// forward hands session events to the UI goroutine. The outcome is taken
// from Wait, since a full channel may have dropped the final event.
func (s *shell) forward(controller *session.Controller, loop *clock.Loop, events <-chan session.Event) {
	defer loop.Stop()
	for event := range events {
		fyne.Do(func() {
			s.handleEvent(controller, event)
		})
	}

	result, err := controller.Wait(context.Background())
	fyne.Do(func() {
		s.sessionClosed(controller, result, err)
	})
}

func (s *shell) handleEvent(controller *session.Controller, event session.Event) {
	if controller != s.controller {
		return
	}

	switch event.Type {
	case session.EventPhaseChange, session.EventProgress, session.EventElapsed:
		s.sessionWindow.Update(event.State, s.config)
		s.tray.SetStatus(overlay.Describe(event.State, s.config).Instruction)
	case session.EventCue:
		if event.Cue == session.CueBreath {
			s.sessionWindow.Breathe(animation.Motion{Direction: event.Direction, Duration: event.Duration})
		}
	case session.EventPaused, session.EventResumed:
		paused := event.Type == session.EventPaused
		s.sessionWindow.SetPaused(paused)
		s.sessionWindow.Update(event.State, s.config)
		s.tray.SetPaused(paused)
		s.setTrayIcon(paused)
	case session.EventMuted:
		s.muted = event.Muted
		s.sessionWindow.SetMuted(s.muted)
		s.tray.SetMuted(s.muted)
	}
}

func (s *shell) sessionClosed(controller *session.Controller, result session.Result, err error) {
	if controller != s.controller {
		return
	}
	s.controller = nil
	s.sessionWindow.Hide()
	s.tray.SetInSession(false)
	s.tray.SetStatus("ready")
	s.tray.SetAudioStatus(string(audio.StatusIdle))
	s.setTrayIcon(false)
	s.releaseWakeLock()

	if err != nil {
		if !errors.Is(err, session.ErrCanceled) {
			slog.Warn("session ended", "error", err)
		}
		s.showSetup()
		return
	}
	s.summaryWindow.Show(result, s.picker.Reflection())
}

func (s *shell) togglePause() {
	if s.controller != nil {
		s.controller.TogglePause()
	}
}

func (s *shell) skip() {
	if s.controller != nil {
		s.controller.Skip()
	}
}

func (s *shell) endRequested() {
	if s.controller != nil {
		s.controller.Cancel()
	}
}

func (s *shell) toggleMute() {
	if s.controller != nil {
		s.controller.SetMuted(!s.muted)
		return
	}
	s.settings.Muted = !s.settings.Muted
	s.setupWindow.UpdateSettings(s.settings)
	s.tray.SetMuted(s.settings.Muted)
}

func (s *shell) quit() {
	if s.controller != nil {
		s.controller.Cancel()
	}
	s.stopPreview()
	s.releaseWakeLock()
	s.app.Quit()
}

// newEmitter returns nil when no audio device could be opened.
func (s *shell) newEmitter(onStatus func(audio.Status)) *audio.Emitter {
	if s.device == nil {
		return nil
	}
	return audio.NewEmitter(s.device, audio.Config{
		Fetcher:  s.fetcher,
		Logger:   slog.Default(),
		OnStatus: onStatus,
	})
}

func (s *shell) previewTheme(theme model.AudioTheme) {
	if theme == "" {
		s.stopPreview()
		return
	}
	if s.preview == nil {
		s.preview = s.newEmitter(nil)
		if s.preview == nil {
			return
		}
	}
	s.preview.StartTheme(theme)
}

func (s *shell) stopPreview() {
	if s.preview != nil {
		s.preview.Close()
		s.preview = nil
	}
}

// reportAudioStatus is called from the emitter's loader goroutine.
func (s *shell) reportAudioStatus(status audio.Status) {
	fyne.Do(func() {
		s.setAudioStatus(status)
	})
}

func (s *shell) setAudioStatus(status audio.Status) {
	s.sessionWindow.SetAudioStatus(audioStatusText(status))
	s.tray.SetAudioStatus(string(status))
}

func (s *shell) holdWakeLock() {
	if s.wakeLock != nil {
		return
	}
	lock, err := platform.AcquireWakeLock(appName, "Breathing session in progress")
	if err != nil {
		slog.Info("screen may sleep during the session", "error", err)
		return
	}
	s.wakeLock = lock
}

func (s *shell) releaseWakeLock() {
	if s.wakeLock == nil {
		return
	}
	if err := s.wakeLock.Release(); err != nil {
		slog.Warn("release wake lock", "error", err)
	}
	s.wakeLock = nil
}

func (s *shell) setTrayIcon(paused bool) {
	if s.trayApp == nil {
		return
	}
	if paused {
		s.trayApp.SetSystemTrayIcon(resources.MustLogo(resources.LogoPaused))
		return
	}
	s.trayApp.SetSystemTrayIcon(resources.MustLogo(resources.LogoActive))
}

func audioStatusText(status audio.Status) string {
	switch status {
	case audio.StatusLoading:
		return "Loading sounds..."
	case audio.StatusUnavailable:
		return "Sound unavailable"
	default:
		return ""
	}
}
