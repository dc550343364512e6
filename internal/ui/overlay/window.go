package overlay

import (
	"context"
	"image/color"

	"zenbreath/internal/core/model"
	"zenbreath/internal/core/phase"
	"zenbreath/internal/ui/animation"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Config defines session window visuals.
type Config struct {
	Opacity    uint8
	Fullscreen bool
}

// Callbacks defines session control handlers.
type Callbacks struct {
	OnTogglePause func()
	OnSkip        func()
	OnEnd         func()
	OnToggleMute  func()
}

// Window manages the session UI.
type Window struct {
	app        fyne.App
	window     fyne.Window
	config     Config
	callbacks  Callbacks
	background *canvas.Rectangle
	bubble     *canvas.Circle
	bubbleArea *fyne.Container
	bubbleFit  *bubbleLayout

	roundLabel  *canvas.Text
	totalLabel  *canvas.Text
	timerLabel  *canvas.Text
	instruction *canvas.Text
	detail      *canvas.Text
	audioLabel  *widget.Label

	pauseButton *widget.Button
	skipButton  *widget.Button
	muteButton  *widget.Button
	endButton   *widget.Button

	engine    *animation.Engine
	ctx       context.Context
	cancelCtx context.CancelFunc
	phase     phase.Phase
}

const (
	windowWidthFraction  = float32(0.35)
	windowHeightFraction = float32(0.6)
	defaultScreenWidth   = float32(1920)
	defaultScreenHeight  = float32(1080)
)

var (
	textColor      = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	mutedTextColor = color.NRGBA{R: 148, G: 163, B: 184, A: 255}
	accentColor    = color.NRGBA{R: 103, G: 232, B: 249, A: 255}
	successColor   = color.NRGBA{R: 52, G: 211, B: 153, A: 255}
	bubbleColor    = color.NRGBA{R: 56, G: 189, B: 248, A: 220}
)

type splashWindowDriver interface {
	CreateSplashWindow() fyne.Window
}

// New creates the session window. The engine's scale updates must be routed
// to SetBubbleScale.
func New(app fyne.App, config Config, engine *animation.Engine) *Window {
	window := app.NewWindow("ZenBreath")
	if config.Fullscreen {
		if driver, ok := app.Driver().(splashWindowDriver); ok {
			// Splash window is undecorated (no native frame/buttons).
			window = driver.CreateSplashWindow()
		}
	}
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}
	window.SetPadded(false)

	background := canvas.NewRectangle(backgroundFor(phase.Prepare, config.Opacity))

	roundLabel := newText("", mutedTextColor, 14, false)
	totalLabel := newText("", mutedTextColor, 14, false)
	totalLabel.Alignment = fyne.TextAlignTrailing

	timerLabel := newText("", textColor, 48, true)
	timerLabel.Alignment = fyne.TextAlignCenter
	instruction := newText("", textColor, 28, true)
	instruction.Alignment = fyne.TextAlignCenter
	detail := newText("", accentColor, 17, false)
	detail.Alignment = fyne.TextAlignCenter

	audioLabel := widget.NewLabel("")
	audioLabel.Alignment = fyne.TextAlignCenter

	bubble := canvas.NewCircle(bubbleColor)
	bubbleFit := &bubbleLayout{scale: 0.6}
	bubbleArea := container.New(bubbleFit, bubble, timerLabel)

	overlay := &Window{
		app:         app,
		window:      window,
		config:      config,
		background:  background,
		bubble:      bubble,
		bubbleArea:  bubbleArea,
		bubbleFit:   bubbleFit,
		roundLabel:  roundLabel,
		totalLabel:  totalLabel,
		timerLabel:  timerLabel,
		instruction: instruction,
		detail:      detail,
		audioLabel:  audioLabel,
		engine:      engine,
		ctx:         context.Background(),
	}

	overlay.endButton = widget.NewButton("End", func() { overlay.call(overlay.callbacks.OnEnd) })
	overlay.pauseButton = widget.NewButton("Pause", func() { overlay.call(overlay.callbacks.OnTogglePause) })
	overlay.skipButton = widget.NewButton("Skip", func() { overlay.call(overlay.callbacks.OnSkip) })
	overlay.muteButton = widget.NewButton("Mute", func() { overlay.call(overlay.callbacks.OnToggleMute) })
	overlay.endButton.Importance = widget.DangerImportance
	overlay.pauseButton.Importance = widget.HighImportance

	header := container.NewPadded(container.NewGridWithColumns(2, roundLabel, totalLabel))
	texts := container.NewVBox(instruction, detail, audioLabel)
	controls := container.NewHBox(layout.NewSpacer(), overlay.endButton, overlay.pauseButton, overlay.skipButton, overlay.muteButton, layout.NewSpacer())
	content := container.NewBorder(header, container.NewPadded(container.NewVBox(texts, controls)), nil, nil, bubbleArea)
	window.SetContent(container.NewStack(background, content))
	window.SetCloseIntercept(func() { overlay.call(overlay.callbacks.OnEnd) })

	overlay.applyNativeOpacity(config.Opacity)
	return overlay
}

// SetCallbacks sets the control handlers.
func (overlay *Window) SetCallbacks(callbacks Callbacks) {
	overlay.callbacks = callbacks
}

// Show displays the window for a new session.
func (overlay *Window) Show(config model.SessionConfig) {
	overlay.stopEngine()
	overlay.ctx, overlay.cancelCtx = context.WithCancel(context.Background())
	overlay.phase = ""
	overlay.SetPaused(false)
	overlay.Update(phase.State{Phase: phase.Prepare}, config)
	overlay.applyWindowMode()
	overlay.window.Show()
	overlay.window.RequestFocus()
}

// Hide closes the window and stops the bubble.
func (overlay *Window) Hide() {
	overlay.stopEngine()
	if overlay.engine != nil {
		overlay.engine.Rest()
	}
	if overlay.config.Fullscreen {
		overlay.window.SetFullScreen(false)
	}
	overlay.window.Hide()
}

// Update renders a state snapshot. It must run on the UI goroutine.
func (overlay *Window) Update(state phase.State, config model.SessionConfig) {
	hud := Describe(state, config)
	setText(overlay.roundLabel, hud.Round)
	setText(overlay.totalLabel, hud.Total)
	setText(overlay.instruction, hud.Instruction)
	setText(overlay.detail, hud.Detail)
	setText(overlay.timerLabel, hud.Timer)

	if state.Phase != overlay.phase {
		overlay.phase = state.Phase
		overlay.enterPhase(state.Phase)
	}
	if state.Phase == phase.Finished {
		overlay.skipButton.Disable()
	} else {
		overlay.skipButton.Enable()
	}
}

// Breathe animates one breath of the given direction and length.
func (overlay *Window) Breathe(motion animation.Motion) {
	if overlay.engine != nil {
		overlay.engine.Breathe(overlay.ctx, motion)
	}
}

// SetPaused toggles the pause button label and freezes the bubble.
func (overlay *Window) SetPaused(paused bool) {
	if paused {
		overlay.pauseButton.SetText("Resume")
	} else {
		overlay.pauseButton.SetText("Pause")
	}
	if overlay.engine != nil {
		overlay.engine.SetPaused(paused)
	}
}

// SetMuted toggles the mute button label.
func (overlay *Window) SetMuted(muted bool) {
	if muted {
		overlay.muteButton.SetText("Unmute")
		return
	}
	overlay.muteButton.SetText("Mute")
}

// SetAudioStatus shows the background audio status.
func (overlay *Window) SetAudioStatus(status string) {
	overlay.audioLabel.SetText(status)
}

// SetBubbleScale resizes the bubble. Safe to call from any goroutine.
func (overlay *Window) SetBubbleScale(scale float64) {
	fyne.Do(func() {
		overlay.bubbleFit.scale = float32(scale)
		overlay.bubbleArea.Refresh()
	})
}

// UpdateConfig updates window visuals.
func (overlay *Window) UpdateConfig(config Config) {
	overlay.config = config
	overlay.background.FillColor = backgroundFor(overlay.phase, config.Opacity)
	overlay.applyNativeOpacity(config.Opacity)
	canvas.Refresh(overlay.background)
}

func (overlay *Window) enterPhase(current phase.Phase) {
	overlay.background.FillColor = backgroundFor(current, overlay.config.Opacity)
	canvas.Refresh(overlay.background)

	overlay.detail.Color = accentColor
	overlay.bubble.FillColor = bubbleColor
	if current == phase.Intermission {
		overlay.detail.Color = successColor
		overlay.bubble.FillColor = successColor
	}
	overlay.detail.Refresh()
	overlay.bubble.Refresh()

	if overlay.engine == nil {
		return
	}
	switch current {
	case phase.Retention:
		overlay.engine.Hold(overlay.ctx, 0.5)
	case phase.RecoveryHold:
		overlay.engine.Hold(overlay.ctx, 1)
	case phase.Intermission:
		overlay.engine.Hold(overlay.ctx, 0.75)
	case phase.Prepare, phase.Finished:
		overlay.engine.Rest()
	}
}

func (overlay *Window) stopEngine() {
	if overlay.cancelCtx != nil {
		overlay.cancelCtx()
		overlay.cancelCtx = nil
	}
}

func (overlay *Window) call(handler func()) {
	if handler != nil {
		handler()
	}
}

func (overlay *Window) applyWindowMode() {
	if overlay.config.Fullscreen {
		overlay.window.SetFullScreen(true)
		return
	}
	overlay.window.SetFullScreen(false)
	overlay.resizeToScreenFraction()
}

func (overlay *Window) resizeToScreenFraction() {
	screenSize := fyne.NewSize(defaultScreenWidth, defaultScreenHeight)
	canvasSize := overlay.window.Canvas().Size()
	// Canvas size can be reused as a proxy for monitor size when it is clearly screen-like.
	if canvasSize.Width >= 1024 && canvasSize.Height >= 720 {
		screenSize = canvasSize
	}

	width := screenSize.Width * windowWidthFraction
	height := screenSize.Height * windowHeightFraction
	minSize := overlay.window.Content().MinSize()
	width = max(width, minSize.Width)
	height = max(height, minSize.Height)

	overlay.window.Resize(fyne.NewSize(width, height))
	overlay.window.CenterOnScreen()
}

func backgroundFor(current phase.Phase, opacity uint8) color.Color {
	switch current {
	case phase.Retention:
		return color.NRGBA{R: 2, G: 6, B: 23, A: opacity}
	case phase.RecoveryInhale, phase.RecoveryHold:
		return color.NRGBA{R: 8, G: 47, B: 73, A: opacity}
	case phase.Intermission:
		return color.NRGBA{R: 6, G: 46, B: 37, A: opacity}
	default:
		return color.NRGBA{R: 15, G: 23, B: 42, A: opacity}
	}
}

func newText(value string, fill color.Color, size float32, bold bool) *canvas.Text {
	text := canvas.NewText(value, fill)
	text.TextSize = size
	text.TextStyle = fyne.TextStyle{Bold: bold}
	return text
}

func setText(text *canvas.Text, value string) {
	if text.Text == value {
		return
	}
	text.Text = value
	text.Refresh()
}

// bubbleLayout centers the bubble, sized by scale, with the timer on top.
type bubbleLayout struct {
	scale float32
}

func (layout *bubbleLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	if len(objects) < 2 {
		return
	}
	bubble := objects[0]
	timer := objects[1]

	side := min(size.Width, size.Height) * 0.8 * layout.scale
	bubble.Resize(fyne.NewSize(side, side))
	bubble.Move(fyne.NewPos((size.Width-side)/2, (size.Height-side)/2))

	timerSize := timer.MinSize()
	timer.Resize(fyne.NewSize(size.Width, timerSize.Height))
	timer.Move(fyne.NewPos(0, (size.Height-timerSize.Height)/2))
}

func (layout *bubbleLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	return fyne.NewSize(240, 240)
}
