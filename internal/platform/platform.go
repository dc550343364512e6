package platform

import (
	"errors"
	"fmt"
	"os"
)

// ErrWakeLockUnsupported indicates the OS offers no way to keep the display on.
var ErrWakeLockUnsupported = errors.New("wake lock unsupported")

// WakeLock keeps the display awake until released.
type WakeLock interface {
	Release() error
}

// AcquireWakeLock prevents the screen from sleeping while a session runs.
func AcquireWakeLock(appName, reason string) (WakeLock, error) {
	lock, err := acquireWakeLock(appName, reason)
	if err != nil {
		return nil, fmt.Errorf("acquire wake lock: %w", err)
	}
	return lock, nil
}

// ConfigDir returns the OS-standard configuration directory.
func ConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err == nil && configDir != "" {
		return configDir, nil
	}

	homeDir, homeErr := os.UserHomeDir()
	if homeErr != nil {
		if err != nil {
			return "", fmt.Errorf("get config dir: %w", err)
		}
		return "", fmt.Errorf("get config dir: %w", homeErr)
	}

	return fallbackConfigDir(homeDir), nil
}
