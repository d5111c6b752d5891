package render

import (
	"errors"
	"testing"

	"github.com/ansipixels/mumbleview/math3d"
	"github.com/ansipixels/mumbleview/telemetry"
)

func lookingNorth() telemetry.Snapshot {
	return telemetry.Snapshot{
		Tick:           1,
		CameraPosition: math3d.V3(0, 0, 0),
		CameraFront:    math3d.V3(0, 0, 1),
		AvatarPosition: math3d.V3(0, 0, 10),
	}
}

func TestBuildFrame(t *testing.T) {
	anchors := []Anchor{
		{Name: "Home", Position: math3d.V3(0, 0, 50)},
		{Name: "Behind", Position: math3d.V3(0, 0, -50)},
	}
	f, err := BuildFrame(lookingNorth(), 800, 600, anchors)
	if err != nil {
		t.Fatalf("BuildFrame failed: %v", err)
	}
	if got := len(f.MarkerLines()); got != 12 {
		t.Errorf("marker lines = %d, want 12 (one visible box)", got)
	}
	if f.Culled != 12 {
		t.Errorf("culled = %d, want 12 (box behind camera)", f.Culled)
	}
	if got := len(f.Lines) - len(f.MarkerLines()); got != 2 {
		t.Errorf("crosshair lines = %d, want 2", got)
	}

	texts := map[string]bool{}
	for _, lb := range f.Labels {
		texts[lb.Text] = true
		if lb.At.X < 0 || lb.At.X >= 800 || lb.At.Y < 0 || lb.At.Y >= 600 {
			t.Errorf("label %q off screen at %v", lb.Text, lb.At)
		}
	}
	if !texts["Home"] || texts["Behind"] {
		t.Errorf("anchor labels = %v", texts)
	}
	for _, name := range MarkerLabels {
		if !texts[name] {
			t.Errorf("missing avatar corner label %s", name)
		}
	}
	if f.Camera.FOV() != DefaultFOV {
		t.Errorf("FOV = %v, want default %v", f.Camera.FOV(), DefaultFOV)
	}
}

func TestBuildFrameUsesIdentityFOV(t *testing.T) {
	snap := lookingNorth()
	snap.Identity = telemetry.Identity{FOV: 0.75, Valid: true}
	f, err := BuildFrame(snap, 1920, 1080, nil)
	if err != nil {
		t.Fatalf("BuildFrame failed: %v", err)
	}
	if f.Camera.FOV() != 0.75 {
		t.Errorf("FOV = %v, want 0.75", f.Camera.FOV())
	}
}

func TestFOVFor(t *testing.T) {
	tests := []struct {
		name string
		id   telemetry.Identity
		want float64
	}{
		{"missing identity", telemetry.Identity{}, DefaultFOV},
		{"valid", telemetry.Identity{FOV: 1.0, Valid: true}, 1.0},
		{"zero fov", telemetry.Identity{Valid: true}, DefaultFOV},
		{"too wide", telemetry.Identity{FOV: 4, Valid: true}, DefaultFOV},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FOVFor(tt.id); got != tt.want {
				t.Errorf("FOVFor = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildFrameDegenerateCamera(t *testing.T) {
	snap := lookingNorth()
	snap.CameraFront = math3d.Zero3()
	if _, err := BuildFrame(snap, 800, 600, nil); !errors.Is(err, math3d.ErrDegenerateVector) {
		t.Errorf("got %v, want ErrDegenerateVector", err)
	}
	if _, err := BuildFrame(lookingNorth(), 0, 600, nil); !errors.Is(err, ErrInvalidCamera) {
		t.Errorf("got %v, want ErrInvalidCamera", err)
	}
}

func TestBuildFrameCentredAnchor(t *testing.T) {
	f, err := BuildFrame(lookingNorth(), 800, 600, []Anchor{{Position: math3d.V3(0, -1, 50)}})
	if err != nil {
		t.Fatal(err)
	}
	// The box straddles the view axis so its lines surround the centre.
	minX, maxX := 800, 0
	for _, l := range f.MarkerLines() {
		minX = min(minX, l.From.X, l.To.X)
		maxX = max(maxX, l.From.X, l.To.X)
	}
	if minX >= 400 || maxX <= 400 {
		t.Errorf("marker x range [%d, %d] does not surround the centre", minX, maxX)
	}
	if len(f.Labels) != len(MarkerLabels) {
		t.Errorf("unnamed anchor should add no label, got %d labels", len(f.Labels))
	}
}
