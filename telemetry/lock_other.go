//go:build !unix

package telemetry

// Lock is a no-op outside unix; the relay relies on the user running one copy.
type Lock struct{}

// AcquireLock always succeeds on this platform.
func AcquireLock(string) (*Lock, error) {
	return &Lock{}, nil
}

// Release is a no-op.
func (*Lock) Release() error {
	return nil
}
