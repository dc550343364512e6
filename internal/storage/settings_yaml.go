package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"zenbreath/internal/core/model"
	"zenbreath/internal/platform"
	"zenbreath/internal/ui/preferences"

	"gopkg.in/yaml.v3"
)

const settingsFileName = "settings.yaml"

type yamlSettings struct {
	Rounds          int     `yaml:"rounds"`
	BreathsPerRound int     `yaml:"breaths_per_round"`
	RetentionTimes  []int   `yaml:"retention_seconds"`
	AudioTheme      string  `yaml:"audio_theme"`
	RetentionMode   string  `yaml:"retention_mode"`
	Muted           bool    `yaml:"muted"`
	SessionOpacity  float64 `yaml:"session_opacity"`
	Fullscreen      bool    `yaml:"fullscreen"`
	AssetDir        string  `yaml:"asset_dir,omitempty"`
	AssetURL        string  `yaml:"asset_url,omitempty"`
}

// LoadSettings reads user preferences from YAML.
// If the config file does not exist, default settings are returned.
func LoadSettings(appName string) (preferences.Settings, error) {
	configPath, err := SettingsPath(appName)
	if err != nil {
		return preferences.DefaultSettings(), err
	}
	return LoadSettingsFile(configPath)
}

// LoadSettingsFile reads user preferences from a YAML file.
func LoadSettingsFile(configPath string) (preferences.Settings, error) {
	settings := preferences.DefaultSettings()
	rawData, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes user preferences to YAML.
func SaveSettings(appName string, settings preferences.Settings) error {
	configPath, err := SettingsPath(appName)
	if err != nil {
		return err
	}
	return SaveSettingsFile(configPath, settings)
}

// SaveSettingsFile writes user preferences to a YAML file.
func SaveSettingsFile(configPath string, settings preferences.Settings) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	serialized, err := MarshalSettings(settings)
	if err != nil {
		return err
	}

	if err := os.WriteFile(configPath, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

// MarshalSettings renders settings in the on-disk YAML layout.
func MarshalSettings(settings preferences.Settings) ([]byte, error) {
	fileData := yamlSettings{
		Rounds:          settings.Rounds,
		BreathsPerRound: settings.BreathsPerRound,
		RetentionTimes:  settings.RetentionTimes,
		AudioTheme:      string(settings.AudioTheme),
		RetentionMode:   string(settings.RetentionMode),
		Muted:           settings.Muted,
		SessionOpacity:  settings.SessionOpacity,
		Fullscreen:      settings.Fullscreen,
		AssetDir:        settings.AssetDir,
		AssetURL:        settings.AssetURL,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return nil, fmt.Errorf("marshal settings yaml: %w", err)
	}
	return serialized, nil
}

// SettingsPath returns the settings file location for appName.
func SettingsPath(appName string) (string, error) {
	configDir, err := platform.ConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, settingsFileName), nil
}

func applyYamlSettings(settings *preferences.Settings, fileData yamlSettings) {
	if fileData.Rounds >= model.MinRounds && fileData.Rounds <= model.MaxRounds {
		settings.Rounds = fileData.Rounds
	}
	if fileData.BreathsPerRound >= model.MinBreaths && fileData.BreathsPerRound <= model.MaxBreaths {
		settings.BreathsPerRound = fileData.BreathsPerRound
	}
	if len(fileData.RetentionTimes) > 0 && !containsNegative(fileData.RetentionTimes) {
		settings.RetentionTimes = fileData.RetentionTimes
	}
	settings.RetentionTimes = model.ResizeRetention(settings.RetentionTimes, settings.Rounds)

	if theme, err := model.ParseTheme(fileData.AudioTheme); err == nil {
		settings.AudioTheme = theme
	}
	if mode, err := model.ParseRetentionMode(fileData.RetentionMode); err == nil && fileData.RetentionMode != "" {
		settings.RetentionMode = mode
	}
	if fileData.SessionOpacity >= 0.7 && fileData.SessionOpacity <= 1 {
		settings.SessionOpacity = fileData.SessionOpacity
	}

	settings.Muted = fileData.Muted
	settings.Fullscreen = fileData.Fullscreen
	settings.AssetDir = fileData.AssetDir
	settings.AssetURL = fileData.AssetURL
}

func containsNegative(values []int) bool {
	for _, value := range values {
		if value < 0 {
			return true
		}
	}
	return false
}
