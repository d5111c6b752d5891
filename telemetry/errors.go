package telemetry

import "errors"

// ErrAlreadyRunning is returned by AcquireLock when another process holds the lock.
var ErrAlreadyRunning = errors.New("another instance is already running")
