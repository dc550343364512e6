package main

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zenbreath/internal/audio"
	"zenbreath/internal/core/model"
	"zenbreath/internal/core/phase"
	"zenbreath/internal/core/session"
	"zenbreath/internal/ui/preferences"
)

func TestParseLevel(t *testing.T) {
	level, err := parseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	level, err = parseLevel(" WARN ")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, err = parseLevel("loud")
	assert.Error(t, err)
}

func TestOpacityToAlpha(t *testing.T) {
	assert.Equal(t, uint8(0), opacityToAlpha(-1))
	assert.Equal(t, uint8(255), opacityToAlpha(2))
	assert.Equal(t, uint8(127), opacityToAlpha(0.5))
}

func TestAudioStatusText(t *testing.T) {
	assert.Equal(t, "Loading sounds...", audioStatusText(audio.StatusLoading))
	assert.Equal(t, "Sound unavailable", audioStatusText(audio.StatusUnavailable))
	assert.Empty(t, audioStatusText(audio.StatusReady))
}

func TestRunFlagsOverrideSettings(t *testing.T) {
	command := newRunCommand()
	require.NoError(t, command.ParseFlags([]string{"--rounds", "2", "--theme", "forest", "--retention-mode", "target"}))

	options := runOptions{rounds: 2, theme: "forest", mode: "target"}
	settings, err := options.apply(command, preferences.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, 2, settings.Rounds)
	assert.Equal(t, []int{90, 120}, settings.RetentionTimes)
	assert.Equal(t, model.ThemeForest, settings.AudioTheme)
	assert.Equal(t, model.RetentionTarget, settings.RetentionMode)
	assert.Equal(t, 30, settings.BreathsPerRound)
}

func TestRunFlagsRejectInvalidConfig(t *testing.T) {
	command := newRunCommand()
	require.NoError(t, command.ParseFlags([]string{"--retention", "60"}))

	options := runOptions{retention: []int{60}}
	_, err := options.apply(command, preferences.DefaultSettings())
	assert.ErrorIs(t, err, model.ErrInvalidConfig)

	command = newRunCommand()
	require.NoError(t, command.ParseFlags([]string{"--rounds", "1", "--retention=-5"}))
	_, err = runOptions{rounds: 1, retention: []int{-5}}.apply(command, preferences.DefaultSettings())
	assert.ErrorIs(t, err, model.ErrInvalidConfig)

	command = newRunCommand()
	require.NoError(t, command.ParseFlags([]string{"--theme", "jungle"}))
	_, err = runOptions{theme: "jungle"}.apply(command, preferences.DefaultSettings())
	assert.ErrorIs(t, err, model.ErrInvalidConfig)
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCommand()
	names := make([]string, 0)
	for _, command := range root.Commands() {
		names = append(names, command.Name())
	}
	assert.Contains(t, names, "run")
	assert.Contains(t, names, "config")
	assert.NotNil(t, root.PersistentFlags().Lookup("log-level"))
}

func TestTerminalDisplayPlainOutput(t *testing.T) {
	var out bytes.Buffer
	config := model.SessionConfig{Rounds: 1, BreathsPerRound: 30, RetentionTimes: []int{90}}
	display := &terminalDisplay{out: &out, config: config}

	display.handle(session.Event{Type: session.EventPhaseChange, State: phase.State{Phase: phase.Prepare, Timer: 3}})
	display.handle(session.Event{Type: session.EventProgress, State: phase.State{Phase: phase.Prepare, Timer: 2}})
	display.handle(session.Event{Type: session.EventMuted, Muted: true, State: phase.State{Phase: phase.Prepare, Timer: 2}})
	display.handle(session.Event{Type: session.EventPaused, State: phase.State{Phase: phase.Prepare, Timer: 2, Paused: true}})
	display.println("done")

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Round 1 / 1 | 0:00 | Get ready... | 3", lines[0])
	assert.Equal(t, "Round 1 / 1 | 0:00 | Get ready... | 2 | muted", lines[1])
	assert.Equal(t, "Round 1 / 1 | 0:00 | Get ready... | Paused | 2 | muted", lines[2])
	assert.Equal(t, "done", lines[3])
	assert.True(t, display.isMuted())
}

func TestTerminalDisplayRawRedrawsInPlace(t *testing.T) {
	var out bytes.Buffer
	config := model.SessionConfig{Rounds: 1, BreathsPerRound: 30, RetentionTimes: []int{90}}
	display := &terminalDisplay{out: &out, config: config, raw: true}

	display.handle(session.Event{Type: session.EventPhaseChange, State: phase.State{Phase: phase.Prepare, Timer: 3}})
	display.handle(session.Event{Type: session.EventProgress, State: phase.State{Phase: phase.Prepare, Timer: 2}})
	display.handle(session.Event{Type: session.EventPhaseChange, State: phase.State{Phase: phase.Breathing, Inhaling: true}})

	assert.Equal(t,
		clearLine+"Round 1 / 1 | 0:00 | Get ready... | 3"+
			clearLine+"Round 1 / 1 | 0:00 | Get ready... | 2"+
			"\r\n"+clearLine+"Round 1 / 1 | 0:00 | Inhale... | 1 / 30",
		out.String())
}

func TestNewFetcherReadsAssetDir(t *testing.T) {
	dir := t.TempDir()
	settings := preferences.DefaultSettings()
	settings.AssetDir = dir

	fetcher := newFetcher(settings)
	_, err := fetcher.Fetch(t.Context(), "audio/sea.mp3")
	assert.Error(t, err)
}
