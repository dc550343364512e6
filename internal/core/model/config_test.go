package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() SessionConfig {
	return SessionConfig{
		Rounds:          3,
		BreathsPerRound: 30,
		RetentionTimes:  []int{90, 120, 150},
		AudioTheme:      ThemeSea,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SessionConfig)
		valid  bool
	}{
		{name: "defaults", mutate: func(*SessionConfig) {}, valid: true},
		{name: "target mode", mutate: func(c *SessionConfig) { c.RetentionMode = RetentionTarget }, valid: true},
		{name: "zero retention", mutate: func(c *SessionConfig) { c.RetentionTimes[1] = 0 }, valid: true},
		{name: "no rounds", mutate: func(c *SessionConfig) { c.Rounds = 0; c.RetentionTimes = nil }},
		{name: "too many rounds", mutate: func(c *SessionConfig) { c.Rounds = 11; c.RetentionTimes = ResizeRetention(nil, 11) }},
		{name: "too few breaths", mutate: func(c *SessionConfig) { c.BreathsPerRound = 4 }},
		{name: "too many breaths", mutate: func(c *SessionConfig) { c.BreathsPerRound = 61 }},
		{name: "retention count mismatch", mutate: func(c *SessionConfig) { c.RetentionTimes = c.RetentionTimes[:2] }},
		{name: "negative retention", mutate: func(c *SessionConfig) { c.RetentionTimes[0] = -1 }},
		{name: "unknown theme", mutate: func(c *SessionConfig) { c.AudioTheme = "rain" }},
		{name: "unknown mode", mutate: func(c *SessionConfig) { c.RetentionMode = "auto" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validConfig()
			tt.mutate(&config)
			err := config.Validate()
			if tt.valid {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestResizeRetention(t *testing.T) {
	assert.Equal(t, []int{90, 120, 150}, ResizeRetention(nil, 3))
	assert.Equal(t, []int{60, 90}, ResizeRetention([]int{60}, 2))
	assert.Equal(t, []int{90}, ResizeRetention([]int{90, 120, 150}, 1))
	assert.Empty(t, ResizeRetention([]int{90}, 0))
}

func TestRetentionTargetOutOfRange(t *testing.T) {
	config := validConfig()
	assert.Equal(t, 120, config.RetentionTarget(1))
	assert.Equal(t, 0, config.RetentionTarget(3))
	assert.Equal(t, 0, config.RetentionTarget(-1))
}

func TestParseTheme(t *testing.T) {
	theme, err := ParseTheme(" Forest ")
	require.NoError(t, err)
	assert.Equal(t, ThemeForest, theme)

	_, err = ParseTheme("rain")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestTimingsWithDefaults(t *testing.T) {
	timings := Timings{Inhale: time.Second}.WithDefaults()
	assert.Equal(t, time.Second, timings.Inhale)
	assert.Equal(t, 1900*time.Millisecond, timings.Exhale)
	assert.Equal(t, 3800*time.Millisecond, timings.FinalExhale())
	assert.Equal(t, 2*DefaultTimings().Inhale, DefaultTimings().RecoveryInhale)
}
