package main

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

var errLocked = errors.New("lock is held by another process")

// acquireLock takes a non-blocking exclusive lock on the given file,
// returned func releases the lock
func acquireLock(path string) (func(), error) {
	fl := flock.New(path)

	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("unable to lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%s: %w", path, errLocked)
	}

	return func() {
		if err := fl.Unlock(); err != nil {
			logger.Error("unable to release lock", "path", path, "err", err)
		}
	}, nil
}
