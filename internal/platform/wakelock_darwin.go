//go:build darwin

package platform

import "path/filepath"

func acquireWakeLock(_, _ string) (WakeLock, error) {
	// -d keeps the display on, -i prevents idle sleep.
	return startInhibitor("caffeinate", "-d", "-i")
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, "Library", "Application Support")
}
