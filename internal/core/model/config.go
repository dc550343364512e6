package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidConfig indicates a session configuration that fails validation.
var ErrInvalidConfig = errors.New("invalid session config")

const (
	MinRounds  = 1
	MaxRounds  = 10
	MinBreaths = 5
	MaxBreaths = 60

	firstRetentionSeconds = 90
	retentionStepSeconds  = 30
)

// AudioTheme selects the background loop played during a session.
type AudioTheme string

const (
	ThemeSea     AudioTheme = "sea"
	ThemeForest  AudioTheme = "forest"
	ThemeCity    AudioTheme = "city"
	ThemeAutoway AudioTheme = "autoway"
)

// Themes returns every supported theme in display order.
func Themes() []AudioTheme {
	return []AudioTheme{ThemeSea, ThemeForest, ThemeCity, ThemeAutoway}
}

// ParseTheme converts user input into an AudioTheme.
func ParseTheme(value string) (AudioTheme, error) {
	theme := AudioTheme(strings.ToLower(strings.TrimSpace(value)))
	for _, known := range Themes() {
		if theme == known {
			return theme, nil
		}
	}
	return "", fmt.Errorf("%w: unknown audio theme %q", ErrInvalidConfig, value)
}

// RetentionMode decides how the breath hold ends.
type RetentionMode string

const (
	// RetentionSelfPaced counts up until the user skips.
	RetentionSelfPaced RetentionMode = "self_paced"
	// RetentionTarget also ends the hold once the round's target is reached.
	RetentionTarget RetentionMode = "target"
)

// ParseRetentionMode converts user input into a RetentionMode.
func ParseRetentionMode(value string) (RetentionMode, error) {
	switch mode := RetentionMode(strings.ToLower(strings.TrimSpace(value))); mode {
	case "", RetentionSelfPaced:
		return RetentionSelfPaced, nil
	case RetentionTarget:
		return RetentionTarget, nil
	default:
		return "", fmt.Errorf("%w: unknown retention mode %q", ErrInvalidConfig, value)
	}
}

// Direction is the breath direction of a cue.
type Direction int

const (
	Inhale Direction = iota
	Exhale
)

func (direction Direction) String() string {
	if direction == Exhale {
		return "exhale"
	}
	return "inhale"
}

// SessionConfig is the immutable input of a breathing session.
type SessionConfig struct {
	Rounds          int
	BreathsPerRound int
	// RetentionTimes holds the target hold in seconds for each round.
	RetentionTimes []int
	AudioTheme     AudioTheme
	RetentionMode  RetentionMode
}

// Validate checks the configuration against the setup form limits.
func (config SessionConfig) Validate() error {
	if config.Rounds < MinRounds || config.Rounds > MaxRounds {
		return fmt.Errorf("%w: rounds %d outside [%d,%d]", ErrInvalidConfig, config.Rounds, MinRounds, MaxRounds)
	}
	if config.BreathsPerRound < MinBreaths || config.BreathsPerRound > MaxBreaths {
		return fmt.Errorf("%w: breaths per round %d outside [%d,%d]", ErrInvalidConfig, config.BreathsPerRound, MinBreaths, MaxBreaths)
	}
	if len(config.RetentionTimes) != config.Rounds {
		return fmt.Errorf("%w: %d retention times for %d rounds", ErrInvalidConfig, len(config.RetentionTimes), config.Rounds)
	}
	for index, seconds := range config.RetentionTimes {
		if seconds < 0 {
			return fmt.Errorf("%w: negative retention time in round %d", ErrInvalidConfig, index+1)
		}
	}
	if _, err := ParseTheme(string(config.AudioTheme)); err != nil {
		return err
	}
	if config.RetentionMode != "" && config.RetentionMode != RetentionSelfPaced && config.RetentionMode != RetentionTarget {
		return fmt.Errorf("%w: unknown retention mode %q", ErrInvalidConfig, config.RetentionMode)
	}
	return nil
}

// RetentionTarget returns the configured hold for a round, or 0 when out of range.
func (config SessionConfig) RetentionTarget(round int) int {
	if round < 0 || round >= len(config.RetentionTimes) {
		return 0
	}
	return config.RetentionTimes[round]
}

// ResizeRetention grows or shrinks retention times to match rounds.
// New rounds hold 30 seconds longer than the one before.
func ResizeRetention(times []int, rounds int) []int {
	if rounds < 0 {
		rounds = 0
	}
	resized := make([]int, 0, rounds)
	for index := 0; index < rounds; index++ {
		if index < len(times) {
			resized = append(resized, times[index])
			continue
		}
		previous := firstRetentionSeconds - retentionStepSeconds
		if index > 0 {
			previous = resized[index-1]
		}
		resized = append(resized, previous+retentionStepSeconds)
	}
	return resized
}

// Timings contains the fixed phase durations of the exercise.
type Timings struct {
	Prepare        time.Duration
	Inhale         time.Duration
	Exhale         time.Duration
	RecoveryInhale time.Duration
	RecoveryHold   time.Duration
	Intermission   time.Duration

	// Tick is the period of whole-second phase timers.
	Tick time.Duration
	// RecoveryStep is the period of the fractional recovery inhale countdown.
	RecoveryStep time.Duration
}

// DefaultTimings returns the pacing of the guided exercise.
func DefaultTimings() Timings {
	return Timings{
		Prepare:        3 * time.Second,
		Inhale:         1600 * time.Millisecond,
		Exhale:         1900 * time.Millisecond,
		RecoveryInhale: 3200 * time.Millisecond,
		RecoveryHold:   15 * time.Second,
		Intermission:   5 * time.Second,
		Tick:           time.Second,
		RecoveryStep:   100 * time.Millisecond,
	}
}

// FinalExhale is the longer exhale that closes each round's breathing.
func (timings Timings) FinalExhale() time.Duration {
	return 2 * timings.Exhale
}

// WithDefaults fills zero durations from DefaultTimings.
func (timings Timings) WithDefaults() Timings {
	defaults := DefaultTimings()
	fill := func(value *time.Duration, fallback time.Duration) {
		if *value <= 0 {
			*value = fallback
		}
	}
	fill(&timings.Prepare, defaults.Prepare)
	fill(&timings.Inhale, defaults.Inhale)
	fill(&timings.Exhale, defaults.Exhale)
	fill(&timings.RecoveryInhale, defaults.RecoveryInhale)
	fill(&timings.RecoveryHold, defaults.RecoveryHold)
	fill(&timings.Intermission, defaults.Intermission)
	fill(&timings.Tick, defaults.Tick)
	fill(&timings.RecoveryStep, defaults.RecoveryStep)
	return timings
}
