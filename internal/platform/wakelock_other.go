//go:build !linux && !darwin && !windows

package platform

import "path/filepath"

func acquireWakeLock(_, _ string) (WakeLock, error) {
	return nil, ErrWakeLockUnsupported
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config")
}
