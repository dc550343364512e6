package preferences

import "zenbreath/internal/core/model"

// Settings defines the setup form defaults remembered between launches.
type Settings struct {
	Rounds          int
	BreathsPerRound int
	RetentionTimes  []int
	AudioTheme      model.AudioTheme
	RetentionMode   model.RetentionMode
	Muted           bool

	SessionOpacity float64
	Fullscreen     bool

	// AssetDir and AssetURL locate the theme and bell recordings.
	AssetDir string
	AssetURL string
}

// DefaultSettings returns default settings for ZenBreath.
func DefaultSettings() Settings {
	return Settings{
		Rounds:          3,
		BreathsPerRound: 30,
		RetentionTimes:  []int{90, 120, 150},
		AudioTheme:      model.ThemeSea,
		RetentionMode:   model.RetentionSelfPaced,
		SessionOpacity:  0.92,
		Fullscreen:      false,
	}
}

// SessionConfig converts settings to a session configuration.
func (settings Settings) SessionConfig() model.SessionConfig {
	return model.SessionConfig{
		Rounds:          settings.Rounds,
		BreathsPerRound: settings.BreathsPerRound,
		RetentionTimes:  model.ResizeRetention(settings.RetentionTimes, settings.Rounds),
		AudioTheme:      settings.AudioTheme,
		RetentionMode:   settings.RetentionMode,
	}
}

// WithRounds changes the round count and resizes the retention list.
func (settings Settings) WithRounds(rounds int) Settings {
	rounds = min(max(rounds, model.MinRounds), model.MaxRounds)
	settings.Rounds = rounds
	settings.RetentionTimes = model.ResizeRetention(settings.RetentionTimes, rounds)
	return settings
}

// WithBreaths snaps the breath count to the form's step of five.
func (settings Settings) WithBreaths(breaths int) Settings {
	breaths = (breaths + 2) / 5 * 5
	settings.BreathsPerRound = min(max(breaths, model.MinBreaths), model.MaxBreaths)
	return settings
}
