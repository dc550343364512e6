//go:build linux

package platform

import "path/filepath"

func acquireWakeLock(appName, reason string) (WakeLock, error) {
	return startInhibitor("systemd-inhibit",
		"--what=idle:sleep",
		"--who="+appName,
		"--why="+reason,
		"--mode=block",
		"sleep", "infinity",
	)
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config")
}
