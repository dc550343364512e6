package preferences

import (
	"fmt"
	"strconv"

	"zenbreath/internal/core/model"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Callbacks defines setup form handlers.
type Callbacks struct {
	OnStart   func(Settings)
	OnPreview func(model.AudioTheme)
	OnClose   func()
}

// Window is the session setup form.
type Window struct {
	window    fyne.Window
	settings  Settings
	callbacks Callbacks

	quote        *widget.Label
	roundsLabel  *widget.Label
	rounds       *widget.Slider
	breathsLabel *widget.Label
	breaths      *widget.Slider
	retention    *fyne.Container
	entries      []*widget.Entry
	theme        *widget.Select
	preview      *widget.Check
	target       *widget.Check
	muted        *widget.Check
	fullscreen   *widget.Check
	errorLabel   *widget.Label
}

// New creates the setup window.
func New(app fyne.App, settings Settings, callbacks Callbacks) *Window {
	window := app.NewWindow("ZenBreath")

	prefs := &Window{
		window:       window,
		settings:     settings,
		callbacks:    callbacks,
		quote:        widget.NewLabel(""),
		roundsLabel:  widget.NewLabel(""),
		breathsLabel: widget.NewLabel(""),
		retention:    container.NewGridWithColumns(2),
		errorLabel:   widget.NewLabel(""),
	}
	prefs.quote.Wrapping = fyne.TextWrapWord
	prefs.quote.Alignment = fyne.TextAlignCenter
	prefs.quote.TextStyle = fyne.TextStyle{Italic: true}
	prefs.errorLabel.Importance = widget.DangerImportance

	prefs.rounds = widget.NewSlider(model.MinRounds, model.MaxRounds)
	prefs.rounds.Step = 1
	prefs.rounds.OnChanged = func(value float64) {
		prefs.settings = prefs.collect().WithRounds(int(value))
		prefs.refreshRounds()
	}

	prefs.breaths = widget.NewSlider(model.MinBreaths, model.MaxBreaths)
	prefs.breaths.Step = 5
	prefs.breaths.OnChanged = func(value float64) {
		prefs.settings = prefs.settings.WithBreaths(int(value))
		prefs.breathsLabel.SetText(fmt.Sprintf("Breaths per round: %d", prefs.settings.BreathsPerRound))
	}

	options := make([]string, 0, len(model.Themes()))
	for _, theme := range model.Themes() {
		options = append(options, string(theme))
	}
	prefs.theme = widget.NewSelect(options, func(value string) {
		prefs.settings.AudioTheme = model.AudioTheme(value)
		prefs.previewTheme()
	})
	prefs.preview = widget.NewCheck("Preview sound", func(bool) { prefs.previewTheme() })

	prefs.target = widget.NewCheck("End the hold automatically at the target time", nil)
	prefs.muted = widget.NewCheck("Start muted", nil)
	prefs.fullscreen = widget.NewCheck("Fullscreen session", nil)

	form := container.NewVBox(
		prefs.quote,
		widget.NewSeparator(),
		prefs.roundsLabel,
		prefs.rounds,
		prefs.breathsLabel,
		prefs.breaths,
		widget.NewLabelWithStyle("Retention per round (seconds)", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		prefs.retention,
		widget.NewLabelWithStyle("Sound", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(prefs.theme, prefs.preview),
		prefs.target,
		prefs.muted,
		prefs.fullscreen,
		prefs.errorLabel,
	)

	startButton := widget.NewButton("Start session", prefs.handleStart)
	startButton.Importance = widget.HighImportance
	buttons := container.NewHBox(layout.NewSpacer(), startButton)

	content := container.NewBorder(nil, buttons, nil, nil, container.NewVScroll(form))
	window.SetContent(container.NewPadded(content))
	window.Resize(fyne.NewSize(460, 640))
	window.SetCloseIntercept(func() {
		prefs.stopPreview()
		if prefs.callbacks.OnClose != nil {
			prefs.callbacks.OnClose()
		}
	})

	prefs.UpdateSettings(settings)
	return prefs
}

// Show displays the setup window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// Hide hides the setup window and stops any preview.
func (prefs *Window) Hide() {
	prefs.stopPreview()
	prefs.window.Hide()
}

// SetQuote sets the motivational line at the top of the form.
func (prefs *Window) SetQuote(quote string) {
	prefs.quote.SetText(quote)
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings Settings) {
	settings = settings.WithRounds(settings.Rounds)
	prefs.settings = settings
	prefs.refreshRounds()

	// Widgets first, sliders last: slider callbacks collect from them.
	prefs.theme.SetSelected(string(settings.AudioTheme))
	prefs.target.SetChecked(settings.RetentionMode == model.RetentionTarget)
	prefs.muted.SetChecked(settings.Muted)
	prefs.fullscreen.SetChecked(settings.Fullscreen)
	prefs.rounds.SetValue(float64(settings.Rounds))
	prefs.breaths.SetValue(float64(settings.BreathsPerRound))
	prefs.breathsLabel.SetText(fmt.Sprintf("Breaths per round: %d", prefs.settings.BreathsPerRound))
}

func (prefs *Window) refreshRounds() {
	prefs.roundsLabel.SetText(fmt.Sprintf("Rounds: %d", prefs.settings.Rounds))

	prefs.entries = prefs.entries[:0]
	prefs.retention.RemoveAll()
	for index, seconds := range prefs.settings.RetentionTimes {
		entry := widget.NewEntry()
		entry.SetText(strconv.Itoa(seconds))
		prefs.entries = append(prefs.entries, entry)
		prefs.retention.Add(widget.NewLabel(fmt.Sprintf("Round %d", index+1)))
		prefs.retention.Add(entry)
	}
	prefs.retention.Refresh()
}

// collect reads the widgets into a Settings value.
func (prefs *Window) collect() Settings {
	settings := prefs.settings
	times := make([]int, len(prefs.entries))
	for index, entry := range prefs.entries {
		times[index] = settings.RetentionTimes[index]
		if seconds, ok := parseSeconds(entry.Text); ok {
			times[index] = seconds
		}
	}
	settings.RetentionTimes = times
	settings.AudioTheme = model.AudioTheme(prefs.theme.Selected)
	settings.RetentionMode = model.RetentionSelfPaced
	if prefs.target.Checked {
		settings.RetentionMode = model.RetentionTarget
	}
	settings.Muted = prefs.muted.Checked
	settings.Fullscreen = prefs.fullscreen.Checked
	return settings
}

func (prefs *Window) handleStart() {
	settings := prefs.collect()
	if err := settings.SessionConfig().Validate(); err != nil {
		prefs.errorLabel.SetText(err.Error())
		return
	}
	prefs.errorLabel.SetText("")
	prefs.settings = settings
	prefs.stopPreview()
	if prefs.callbacks.OnStart != nil {
		prefs.callbacks.OnStart(settings)
	}
}

func (prefs *Window) previewTheme() {
	if prefs.callbacks.OnPreview == nil || prefs.preview == nil {
		return
	}
	if !prefs.preview.Checked {
		prefs.callbacks.OnPreview("")
		return
	}
	prefs.callbacks.OnPreview(prefs.settings.AudioTheme)
}

func (prefs *Window) stopPreview() {
	if prefs.preview != nil && prefs.preview.Checked {
		prefs.preview.SetChecked(false)
	}
}

func parseSeconds(value string) (int, bool) {
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return 0, false
	}
	return parsed, true
}
