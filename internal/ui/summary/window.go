// Package summary shows the outcome of a finished session.
package summary

import (
	"fmt"

	"zenbreath/internal/core/session"
	"zenbreath/internal/insight"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Window is the end-of-session report.
type Window struct {
	window     fyne.Window
	headline   *widget.Label
	rounds     *widget.Label
	minutes    *widget.Label
	reflection *widget.Label
	onNew      func()
}

// New creates the summary window. onNew runs when the user asks for another
// session.
func New(app fyne.App, onNew func()) *Window {
	window := app.NewWindow("ZenBreath - Session complete")

	summary := &Window{
		window:     window,
		headline:   widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		rounds:     widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		minutes:    widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		reflection: widget.NewLabel(""),
		onNew:      onNew,
	}
	summary.reflection.Wrapping = fyne.TextWrapWord
	summary.reflection.Alignment = fyne.TextAlignCenter
	summary.reflection.TextStyle = fyne.TextStyle{Italic: true}

	stats := container.NewGridWithColumns(2,
		container.NewVBox(widget.NewLabelWithStyle("Rounds", fyne.TextAlignCenter, fyne.TextStyle{}), summary.rounds),
		container.NewVBox(widget.NewLabelWithStyle("Minutes", fyne.TextAlignCenter, fyne.TextStyle{}), summary.minutes),
	)

	newButton := widget.NewButton("New session", summary.handleNew)
	newButton.Importance = widget.HighImportance

	window.SetContent(container.NewPadded(container.NewVBox(
		summary.headline,
		stats,
		widget.NewSeparator(),
		summary.reflection,
		layout.NewSpacer(),
		container.NewCenter(newButton),
	)))
	window.Resize(fyne.NewSize(420, 320))
	window.SetCloseIntercept(summary.handleNew)
	return summary
}

// Show displays a session result with a closing reflection.
func (summary *Window) Show(result session.Result, reflection string) {
	summary.headline.SetText(insight.Headline(result.Rounds, result.ElapsedMinutes))
	summary.rounds.SetText(fmt.Sprintf("%d", result.Rounds))
	summary.minutes.SetText(fmt.Sprintf("%.1f", result.ElapsedMinutes))
	summary.reflection.SetText(reflection)
	summary.window.Show()
	summary.window.RequestFocus()
}

// Hide hides the summary.
func (summary *Window) Hide() {
	summary.window.Hide()
}

func (summary *Window) handleNew() {
	summary.window.Hide()
	if summary.onNew != nil {
		summary.onNew()
	}
}
