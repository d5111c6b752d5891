package telemetry

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"sync"
	"testing"
	"time"
)

// region is an in-memory shared block usable as both ends of a relay.
type region struct {
	mu     sync.Mutex
	data   []byte
	writes int
}

func newRegion(tick uint32) *region {
	r := &region{data: make([]byte, PageSize)}
	r.setTick(tick)
	return r
}

func (r *region) setTick(tick uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	binary.LittleEndian.PutUint32(r.data[4:], tick)
}

func (r *region) ReadAt(p []byte, off int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if off >= int64(len(r.data)) {
		return 0, io.EOF
	}
	n := copy(p, r.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (r *region) WriteAt(p []byte, off int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if need := int(off) + len(p); need > len(r.data) {
		r.data = append(r.data, make([]byte, need-len(r.data))...)
	}
	r.writes++
	return copy(r.data[off:], p), nil
}

func (r *region) tick() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Tick(r.data)
}

func TestRelayStepWritesOnNewTick(t *testing.T) {
	src := newRegion(0)
	dst := &region{}
	relay := NewRelay(src, dst)

	steps := []struct {
		tick  uint32
		wrote bool
	}{
		{0, false},
		{5, true},
		{5, false},
		{6, true},
		{0, false},
		{6, true},
	}
	for i, s := range steps {
		src.setTick(s.tick)
		wrote, err := relay.Step()
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if wrote != s.wrote {
			t.Errorf("step %d (tick %d): wrote=%v, want %v", i, s.tick, wrote, s.wrote)
		}
	}
	if relay.Written != 3 || dst.writes != 3 {
		t.Errorf("Written=%d dst writes=%d, want 3", relay.Written, dst.writes)
	}
	if dst.tick() != 6 {
		t.Errorf("destination tick = %d, want 6", dst.tick())
	}
	if len(dst.data) != PageSize {
		t.Errorf("destination size = %d, want %d", len(dst.data), PageSize)
	}
}

func TestRelayGoesInactive(t *testing.T) {
	src := newRegion(1)
	relay := NewRelay(src, &region{})
	relay.ActiveInterval = 10 * time.Millisecond
	relay.InactiveInterval = time.Second
	relay.InactiveAfter = 30 * time.Millisecond

	if _, err := relay.Step(); err != nil {
		t.Fatal(err)
	}
	for i := range 3 {
		if _, err := relay.Step(); err != nil {
			t.Fatal(err)
		}
		if relay.Inactive() {
			t.Fatalf("inactive after %d misses", i+1)
		}
	}
	if _, err := relay.Step(); err != nil {
		t.Fatal(err)
	}
	if !relay.Inactive() || relay.Interval() != time.Second {
		t.Errorf("expected inactive polling, interval %v", relay.Interval())
	}

	src.setTick(2)
	wrote, err := relay.Step()
	if err != nil || !wrote {
		t.Fatalf("resume: wrote=%v err=%v", wrote, err)
	}
	if relay.Inactive() || relay.Interval() != 10*time.Millisecond {
		t.Errorf("expected active polling after a new tick, interval %v", relay.Interval())
	}
}

type failingWriter struct{}

func (failingWriter) WriteAt([]byte, int64) (int, error) {
	return 0, errors.New("disk full")
}

func TestRelayWriteError(t *testing.T) {
	relay := NewRelay(newRegion(3), failingWriter{})
	if _, err := relay.Step(); err == nil {
		t.Error("expected write error")
	}
}

func TestRelayRunStopsOnCancel(t *testing.T) {
	src := newRegion(1)
	dst := &region{}
	relay := NewRelay(src, dst)
	relay.ActiveInterval = time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := relay.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run returned %v, want deadline exceeded", err)
	}
	if relay.Written != 1 {
		t.Errorf("Written = %d, want 1 for an unchanged tick", relay.Written)
	}
	if dst.tick() != 1 {
		t.Errorf("destination tick = %d, want 1", dst.tick())
	}
}

func TestCheckIntervals(t *testing.T) {
	tests := []struct {
		name                    string
		active, inactive, after time.Duration
		ok                      bool
	}{
		{"defaults", DefaultActiveInterval, DefaultInactiveInterval, DefaultInactiveAfter, true},
		{"slow down at once", time.Millisecond, time.Second, 0, true},
		{"zero active", 0, time.Second, time.Second, false},
		{"negative active", -time.Millisecond, time.Second, time.Second, false},
		{"zero inactive", time.Millisecond, 0, time.Second, false},
		{"negative inactive after", time.Millisecond, time.Second, -time.Second, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckIntervals(tt.active, tt.inactive, tt.after)
			if tt.ok && err != nil {
				t.Errorf("CheckIntervals failed: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidInterval) {
				t.Errorf("got %v, want ErrInvalidInterval", err)
			}
		})
	}
}

func TestRelayRunRejectsZeroInterval(t *testing.T) {
	dst := &region{}
	relay := NewRelay(newRegion(1), dst)
	relay.ActiveInterval = 0
	err := relay.Run(context.Background())
	if !errors.Is(err, ErrInvalidInterval) {
		t.Errorf("Run returned %v, want ErrInvalidInterval", err)
	}
	if dst.writes != 0 {
		t.Errorf("relay wrote %d records before rejecting its timings", dst.writes)
	}
}
