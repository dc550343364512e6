//go:build linux || darwin

package platform

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
)

// startInhibitor runs name with args until the lock is released.
func startInhibitor(name string, args ...string) (WakeLock, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s not found", ErrWakeLockUnsupported, name)
	}
	command := exec.Command(path, args...)
	if err := command.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", name, err)
	}
	lock := &processLock{process: command.Process, done: make(chan struct{})}
	go func() {
		_ = command.Wait()
		close(lock.done)
	}()
	return lock, nil
}

// processLock holds a helper process that inhibits sleep while it lives.
type processLock struct {
	once    sync.Once
	process *os.Process
	done    chan struct{}
}

func (lock *processLock) Release() error {
	var err error
	lock.once.Do(func() {
		if killErr := lock.process.Kill(); killErr != nil && !errors.Is(killErr, os.ErrProcessDone) {
			err = fmt.Errorf("release wake lock: %w", killErr)
		}
		<-lock.done
	})
	return err
}
