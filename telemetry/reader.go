package telemetry

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// DefaultLinkFile is where the relay publishes the record on the Linux side.
const DefaultLinkFile = "/tmp/gw2_mumble_link"

// Reader re-reads a MumbleLink file from the start on every call and tracks
// the last tick seen. It is not safe for concurrent use.
type Reader struct {
	f        *os.File
	buf      []byte
	lastTick uint32
}

// NewReader opens the record file at path.
func NewReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mumble link: %w", err)
	}
	return &Reader{f: f, buf: make([]byte, PageSize)}, nil
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.f.Close()
}

// ReadRaw reads the current page into the reader's buffer and returns it.
// The slice is only valid until the next call.
func (r *Reader) ReadRaw() ([]byte, error) {
	n, err := r.f.ReadAt(r.buf, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read mumble link: %w", err)
	}
	return r.buf[:n], nil
}

// Read decodes the current record.
func (r *Reader) Read() (Snapshot, error) {
	raw, err := r.ReadRaw()
	if err != nil {
		return Snapshot{}, err
	}
	return Decode(raw)
}

// Poll decodes the current record and reports whether it is fresh: the tick
// is non-zero and differs from the previous Poll.
func (r *Reader) Poll() (Snapshot, bool, error) {
	s, err := r.Read()
	if err != nil {
		return Snapshot{}, false, err
	}
	fresh := s.Tick != 0 && s.Tick != r.lastTick
	r.lastTick = s.Tick
	return s, fresh, nil
}
