package render

import (
	"math"

	"github.com/ansipixels/mumbleview/math3d"
	"github.com/ansipixels/mumbleview/telemetry"
)

// CrosshairSize is the half length, in pixels, of the centre crosshair arms.
const CrosshairSize = 6

// LineKind tells frontends how to style a line.
type LineKind int

const (
	LineMarker    LineKind = iota // marker box edge
	LineCrosshair                 // screen centre
)

// Line is a projected segment in overlay pixels.
type Line struct {
	From, To Pixel
	Kind     LineKind
}

// Label is a short text placed at a projected point.
type Label struct {
	At   Pixel
	Text string
}

// Frame is everything a frontend draws for one telemetry snapshot.
type Frame struct {
	Camera *Camera
	Lines  []Line
	Labels []Label
	// Culled counts marker edges dropped because an end was not visible.
	Culled int
}

// FOVFor returns the identity field of view, or DefaultFOV when the
// identity is missing or carries an unusable value.
func FOVFor(id telemetry.Identity) float64 {
	if id.Valid && id.FOV > 0 && id.FOV < math.Pi {
		return id.FOV
	}
	return DefaultFOV
}

// CameraFor builds the camera for a snapshot on a width x height overlay.
func CameraFor(snap telemetry.Snapshot, width, height int) (*Camera, error) {
	return NewCamera(snap.CameraPosition, snap.CameraFront, width, height, FOVFor(snap.Identity))
}

// BuildFrame projects the anchor boxes, the labelled corners of a box around
// the avatar and a centre crosshair. Camera errors are returned as is; the
// caller is expected to skip the frame.
func BuildFrame(snap telemetry.Snapshot, width, height int, anchors []Anchor) (Frame, error) {
	cam, err := CameraFor(snap, width, height)
	if err != nil {
		return Frame{}, err
	}
	f := Frame{Camera: cam}
	for _, a := range anchors {
		f.addMarker(a)
	}
	f.addAvatarCorners(snap.AvatarPosition)
	f.addCrosshair(width, height)
	return f, nil
}

func (f *Frame) addMarker(a Anchor) {
	for _, e := range WireframeAround(a.Position) {
		from, to, ok := f.Camera.ProjectEdge(e)
		if !ok {
			f.Culled++
			continue
		}
		f.Lines = append(f.Lines, Line{From: from, To: to, Kind: LineMarker})
	}
	if a.Name == "" {
		return
	}
	top := a.Position.Add(math3d.V3(0, MarkerHeight, 0))
	if p, ok := f.Camera.Project(top); ok {
		f.Labels = append(f.Labels, Label{At: p, Text: a.Name})
	}
}

func (f *Frame) addAvatarCorners(avatar math3d.Vec3) {
	verts := VerticesAround(avatar)
	for _, name := range MarkerLabels {
		if p, ok := f.Camera.Project(verts[name]); ok {
			f.Labels = append(f.Labels, Label{At: p, Text: name})
		}
	}
}

func (f *Frame) addCrosshair(width, height int) {
	cx, cy := width/2, height/2
	f.Lines = append(f.Lines,
		Line{From: Pixel{cx - CrosshairSize, cy}, To: Pixel{cx + CrosshairSize, cy}, Kind: LineCrosshair},
		Line{From: Pixel{cx, cy - CrosshairSize}, To: Pixel{cx, cy + CrosshairSize}, Kind: LineCrosshair},
	)
}

// MarkerLines returns only the marker edges of the frame.
func (f Frame) MarkerLines() []Line {
	var out []Line
	for _, l := range f.Lines {
		if l.Kind == LineMarker {
			out = append(out, l)
		}
	}
	return out
}
