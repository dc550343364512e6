//go:build windows

package platform

import (
	"fmt"
	"path/filepath"
	"runtime"
	"sync"

	"golang.org/x/sys/windows"
)

const (
	esSystemRequired  = 0x00000001
	esDisplayRequired = 0x00000002
	esContinuous      = 0x80000000
)

var procSetThreadExecutionState = windows.NewLazySystemDLL("kernel32.dll").NewProc("SetThreadExecutionState")

// threadLock pins the execution state to one OS thread, since Windows
// tracks it per thread.
type threadLock struct {
	once    sync.Once
	release chan struct{}
	done    chan struct{}
}

func acquireWakeLock(_, _ string) (WakeLock, error) {
	if err := procSetThreadExecutionState.Find(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWakeLockUnsupported, err)
	}

	lock := &threadLock{release: make(chan struct{}), done: make(chan struct{})}
	failed := make(chan error, 1)
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer close(lock.done)

		previous, _, callErr := procSetThreadExecutionState.Call(esContinuous | esSystemRequired | esDisplayRequired)
		if previous == 0 {
			failed <- fmt.Errorf("set thread execution state: %w", callErr)
			return
		}
		failed <- nil
		<-lock.release
		_, _, _ = procSetThreadExecutionState.Call(esContinuous)
	}()
	if err := <-failed; err != nil {
		return nil, err
	}
	return lock, nil
}

func (lock *threadLock) Release() error {
	lock.once.Do(func() {
		close(lock.release)
		<-lock.done
	})
	return nil
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, "AppData", "Roaming")
}
