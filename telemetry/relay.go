package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"fortio.org/log"
)

// Relay timing defaults.
const (
	DefaultActiveInterval   = time.Second / 30
	DefaultInactiveInterval = 5 * time.Second
	DefaultInactiveAfter    = 10 * time.Second
)

// Relay copies the shared record from Source to Dest whenever its tick
// advances. After InactiveAfter without a new tick it slows down to
// InactiveInterval until the game writes again.
type Relay struct {
	Source io.ReaderAt
	Dest   io.WriterAt

	ActiveInterval   time.Duration
	InactiveInterval time.Duration
	InactiveAfter    time.Duration

	buf      []byte
	prevTick uint32
	seen     bool
	missed   int
	Written  int // records copied so far
}

// NewRelay returns a relay with the default timings.
func NewRelay(src io.ReaderAt, dst io.WriterAt) *Relay {
	return &Relay{
		Source:           src,
		Dest:             dst,
		ActiveInterval:   DefaultActiveInterval,
		InactiveInterval: DefaultInactiveInterval,
		InactiveAfter:    DefaultInactiveAfter,
	}
}

// ErrInvalidInterval is returned for relay timings that would poll in a
// busy loop or never slow down.
var ErrInvalidInterval = errors.New("invalid relay interval")

// CheckIntervals validates relay timings: both poll intervals must be
// positive and InactiveAfter must not be negative.
func CheckIntervals(active, inactive, after time.Duration) error {
	switch {
	case active <= 0:
		return fmt.Errorf("%w: active interval %v must be positive", ErrInvalidInterval, active)
	case inactive <= 0:
		return fmt.Errorf("%w: inactive interval %v must be positive", ErrInvalidInterval, inactive)
	case after < 0:
		return fmt.Errorf("%w: inactive after %v is negative", ErrInvalidInterval, after)
	}
	return nil
}

func (r *Relay) missLimit() int {
	if r.ActiveInterval <= 0 {
		return 0
	}
	return int(r.InactiveAfter / r.ActiveInterval)
}

// Inactive reports whether enough ticks were missed to poll slowly.
func (r *Relay) Inactive() bool {
	return r.missed > r.missLimit()
}

// Interval is the delay before the next Step.
func (r *Relay) Interval() time.Duration {
	if r.Inactive() {
		return r.InactiveInterval
	}
	return r.ActiveInterval
}

// Step performs one poll. It reports whether a record was written.
func (r *Relay) Step() (bool, error) {
	if r.buf == nil {
		r.buf = make([]byte, PageSize)
	}
	n, err := r.Source.ReadAt(r.buf, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("relay read: %w", err)
	}
	data := r.buf[:n]
	tick := Tick(data)
	if tick == 0 || (r.seen && tick == r.prevTick) {
		wasInactive := r.Inactive()
		r.missed++
		if !wasInactive && r.Inactive() {
			log.Infof("No new tick for %d polls (last %d), slowing to %v", r.missed, tick, r.InactiveInterval)
		}
		r.prevTick, r.seen = tick, true
		return false, nil
	}
	if r.Inactive() {
		log.Infof("Tick %d received, resuming at %v", tick, r.ActiveInterval)
	}
	r.missed = 0
	r.prevTick, r.seen = tick, true
	if _, err := r.Dest.WriteAt(data, 0); err != nil {
		return false, fmt.Errorf("relay write: %w", err)
	}
	r.Written++
	log.LogVf("Relayed tick %d (%d bytes)", tick, len(data))
	return true, nil
}

// Run polls until ctx is done. Read and write errors stop the relay, and
// invalid timings are rejected before the first poll.
func (r *Relay) Run(ctx context.Context) error {
	if err := CheckIntervals(r.ActiveInterval, r.InactiveInterval, r.InactiveAfter); err != nil {
		return err
	}
	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
		if _, err := r.Step(); err != nil {
			return err
		}
		timer.Reset(r.Interval())
	}
}
