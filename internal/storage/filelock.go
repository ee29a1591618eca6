package storage

import (
	"fmt"
	"os"
	"syscall"
)

// fileLock is an exclusive advisory lock held on a sidecar file, shared by
// every process that opens the same YAML store.
type fileLock struct {
	f *os.File
}

// acquireLock blocks until the lock on path is held.
func acquireLock(path string) (*fileLock, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening lock file %s: %w", path, err)
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("locking %s: %w", path, err)
	}
	return &fileLock{f: f}, nil
}

func (l *fileLock) release() error {
	unlockErr := syscall.Flock(int(l.f.Fd()), syscall.LOCK_UN)
	closeErr := l.f.Close()
	if unlockErr != nil {
		return fmt.Errorf("unlocking %s: %w", l.f.Name(), unlockErr)
	}
	return closeErr
}
