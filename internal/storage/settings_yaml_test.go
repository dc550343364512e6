package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zenbreath/internal/core/model"
	"zenbreath/internal/ui/preferences"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	settings, err := LoadSettingsFile(filepath.Join(t.TempDir(), "absent", settingsFileName))
	require.NoError(t, err)
	assert.Equal(t, preferences.DefaultSettings(), settings)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ZenBreath", settingsFileName)
	saved := preferences.DefaultSettings().WithRounds(4)
	saved.BreathsPerRound = 40
	saved.AudioTheme = model.ThemeCity
	saved.RetentionMode = model.RetentionTarget
	saved.Muted = true
	saved.AssetDir = "/opt/zenbreath"

	require.NoError(t, SaveSettingsFile(path, saved))
	loaded, err := LoadSettingsFile(path)
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
	assert.Equal(t, []int{90, 120, 150, 180}, loaded.RetentionTimes)
}

func TestLoadIgnoresOutOfRangeValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), settingsFileName)
	raw := []byte(`rounds: 12
breaths_per_round: 3
retention_seconds: [60, -5]
audio_theme: desert
retention_mode: forever
session_opacity: 0.2
fullscreen: true
`)
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	settings, err := LoadSettingsFile(path)
	require.NoError(t, err)
	defaults := preferences.DefaultSettings()
	assert.Equal(t, defaults.Rounds, settings.Rounds)
	assert.Equal(t, defaults.BreathsPerRound, settings.BreathsPerRound)
	assert.Equal(t, defaults.RetentionTimes, settings.RetentionTimes)
	assert.Equal(t, defaults.AudioTheme, settings.AudioTheme)
	assert.Equal(t, defaults.RetentionMode, settings.RetentionMode)
	assert.Equal(t, defaults.SessionOpacity, settings.SessionOpacity)
	assert.True(t, settings.Fullscreen)
}

func TestLoadResizesRetentionToRounds(t *testing.T) {
	path := filepath.Join(t.TempDir(), settingsFileName)
	require.NoError(t, os.WriteFile(path, []byte("rounds: 2\nretention_seconds: [45]\n"), 0o644))

	settings, err := LoadSettingsFile(path)
	require.NoError(t, err)
	assert.Equal(t, []int{45, 75}, settings.RetentionTimes)
	require.NoError(t, settings.SessionConfig().Validate())
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), settingsFileName)
	require.NoError(t, os.WriteFile(path, []byte("rounds: ["), 0o644))

	settings, err := LoadSettingsFile(path)
	require.Error(t, err)
	assert.Equal(t, preferences.DefaultSettings(), settings)
}
