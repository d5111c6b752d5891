// Package render turns one frame of game telemetry into 2D overlay primitives:
// a camera derived from the telemetry, world-to-screen projection, marker
// geometry, and small raster helpers used by the frontends.
package render

import (
	"errors"
	"fmt"
	"math"

	"github.com/ansipixels/mumbleview/math3d"
)

// Projection constants. The clip planes are fixed in world units and are not
// derived from telemetry.
const (
	NearPlane = 0.01
	FarPlane  = 150.0
	// CanvasScale is the sum of the canvas half-extents; it is split between
	// width and height in proportion to the screen sides.
	CanvasScale = 5.0
	// DefaultFOV is used when the telemetry does not carry a field of view.
	DefaultFOV = 1.222
)

// ErrInvalidCamera is returned for non-positive screen sizes or a field of view outside (0, π).
var ErrInvalidCamera = errors.New("invalid camera")

// Pixel is an overlay screen coordinate; Y grows downward.
type Pixel struct {
	X, Y int
}

// Camera is rebuilt from telemetry every frame and never mutated afterwards.
type Camera struct {
	location math3d.Vec3
	forward  math3d.Vec3
	right    math3d.Vec3
	up       math3d.Vec3

	width, height int
	fov           float64

	cameraToWorld math3d.Mat4
	worldToCamera math3d.Mat4
	perspective   math3d.Mat4

	canvasW, canvasH float64
}

// NewCamera builds the view and perspective transforms for one frame.
// focus is the viewing direction and need not be normalized. A zero focus
// fails with math3d.ErrDegenerateVector; the caller should skip the frame.
func NewCamera(location, focus math3d.Vec3, width, height int, fov float64) (*Camera, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: screen %dx%d", ErrInvalidCamera, width, height)
	}
	if !(fov > 0 && fov < math.Pi) {
		return nil, fmt.Errorf("%w: fov %v outside (0, π)", ErrInvalidCamera, fov)
	}
	forward, err := focus.Normalize()
	if err != nil {
		return nil, fmt.Errorf("camera focus %v: %w", focus, err)
	}
	right, err := rightAxis(forward)
	if err != nil {
		return nil, err
	}
	up, err := forward.Cross(right).Normalize()
	if err != nil {
		return nil, fmt.Errorf("camera up axis: %w", err)
	}

	c := &Camera{
		location: location,
		forward:  forward,
		right:    right,
		up:       up,
		width:    width,
		height:   height,
		fov:      fov,
	}
	c.cameraToWorld = math3d.FromBasis(right, up, forward, location)
	c.worldToCamera, err = c.cameraToWorld.Inverse()
	if err != nil {
		return nil, fmt.Errorf("camera view transform: %w", err)
	}
	c.perspective = PerspectiveFovLH(fov, float64(width)/float64(height), NearPlane, FarPlane)

	w, h := float64(width), float64(height)
	c.canvasW = w / (w + h) * CanvasScale
	c.canvasH = h / (w + h) * CanvasScale
	return c, nil
}

// rightAxis returns WorldUp × forward. When the camera looks straight up or
// down that product vanishes and north is used as the reference instead, which
// keeps north at the top of the screen.
func rightAxis(forward math3d.Vec3) (math3d.Vec3, error) {
	right, err := math3d.WorldUp.Cross(forward).Normalize()
	if err == nil {
		return right, nil
	}
	right, err = math3d.Forward().Cross(forward).Normalize()
	if err != nil {
		return math3d.Vec3{}, fmt.Errorf("camera right axis for %v: %w", forward, err)
	}
	return right, nil
}

// PerspectiveFovLH builds a left-handed perspective matrix for row vectors.
// The w output equals the camera-space depth.
func PerspectiveFovLH(fov, aspect, zn, zf float64) math3d.Mat4 {
	f := 1 / math.Tan(fov/2)
	var m math3d.Mat4
	m.Set(0, 0, f/aspect)
	m.Set(1, 1, f)
	m.Set(2, 2, zf/(zf-zn))
	m.Set(2, 3, 1)
	m.Set(3, 2, (zf*zn)/(zn-zf))
	m.Set(3, 3, 0)
	return m
}

// Project maps a world point to overlay pixels. ok is false when the point
// is behind the camera, inside the near plane, or outside the canvas.
func (c *Camera) Project(p math3d.Vec3) (px Pixel, ok bool) {
	cam := c.worldToCamera.Apply(p)
	if cam.Z <= math3d.Epsilon {
		return Pixel{}, false
	}
	clip := c.perspective.Apply(cam)
	if clip.Z <= math3d.Epsilon {
		return Pixel{}, false
	}
	sx := clip.X / clip.Z
	sy := clip.Y / clip.Z
	if math.Abs(sx) > c.canvasW || math.Abs(sy) > c.canvasH {
		return Pixel{}, false
	}
	nx := (sx + c.canvasW/2) / c.canvasW
	ny := (sy + c.canvasH/2) / c.canvasH
	return Pixel{
		X: int(math.Floor(nx * float64(c.width))),
		Y: int(math.Floor((1 - ny) * float64(c.height))),
	}, true
}

// ProjectEdge projects both ends of an edge; ok only if both are visible.
func (c *Camera) ProjectEdge(e Edge) (a, b Pixel, ok bool) {
	a, okA := c.Project(e.Start)
	b, okB := c.Project(e.End)
	return a, b, okA && okB
}

// ToCamera returns p in camera space (right, up, forward).
func (c *Camera) ToCamera(p math3d.Vec3) math3d.Vec3 {
	return c.worldToCamera.Apply(p)
}

// Location returns the camera position in world space.
func (c *Camera) Location() math3d.Vec3 { return c.location }

// Forward returns the unit viewing direction.
func (c *Camera) Forward() math3d.Vec3 { return c.forward }

// Right returns the unit right axis.
func (c *Camera) Right() math3d.Vec3 { return c.right }

// Up returns the unit screen-up axis.
func (c *Camera) Up() math3d.Vec3 { return c.up }

// Size returns the screen size in pixels.
func (c *Camera) Size() (width, height int) { return c.width, c.height }

// FOV returns the field of view in radians.
func (c *Camera) FOV() float64 { return c.fov }

// WorldToCamera returns the view transform.
func (c *Camera) WorldToCamera() math3d.Mat4 { return c.worldToCamera }

// CameraToWorld returns the inverse of the view transform.
func (c *Camera) CameraToWorld() math3d.Mat4 { return c.cameraToWorld }

// Perspective returns the perspective transform.
func (c *Camera) Perspective() math3d.Mat4 { return c.perspective }

// Canvas returns the canvas half-extents used by the visibility test.
func (c *Camera) Canvas() (w, h float64) { return c.canvasW, c.canvasH }
