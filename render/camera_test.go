package render

import (
	"errors"
	"math"
	"testing"

	"github.com/ansipixels/mumbleview/math3d"
)

func newTestCamera(t *testing.T) *Camera {
	t.Helper()
	cam, err := NewCamera(math3d.V3(0, 0, 0), math3d.V3(0, 0, 1), 800, 600, 1.22)
	if err != nil {
		t.Fatalf("NewCamera failed: %v", err)
	}
	return cam
}

func near(a, b Pixel, tol int) bool {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx >= -tol && dx <= tol && dy >= -tol && dy <= tol
}

func TestProjectCenter(t *testing.T) {
	cam := newTestCamera(t)
	px, ok := cam.Project(math3d.V3(0, 0, 50))
	if !ok {
		t.Fatal("point straight ahead should be visible")
	}
	if !near(px, Pixel{400, 300}, 2) {
		t.Errorf("Project((0,0,50)) = %v, want ~(400,300)", px)
	}
}

func TestProjectNotVisible(t *testing.T) {
	cam := newTestCamera(t)
	tests := []struct {
		name  string
		point math3d.Vec3
	}{
		{"behind camera", math3d.V3(0, 0, -10)},
		{"far outside fov", math3d.V3(10000, 0, 50)},
		{"far above", math3d.V3(0, 10000, 50)},
		{"at camera", math3d.V3(0, 0, 0)},
		{"inside near plane", math3d.V3(0, 0, 0.005)},
		{"beside camera", math3d.V3(5, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if px, ok := cam.Project(tt.point); ok {
				t.Errorf("Project(%v) = %v, want not visible", tt.point, px)
			}
		})
	}
}

func TestProjectOrientation(t *testing.T) {
	cam := newTestCamera(t)
	east, ok := cam.Project(math3d.V3(10, 0, 50))
	if !ok {
		t.Fatal("east point should be visible")
	}
	if east.X <= 400 || !near(east, Pixel{460, 300}, 2) {
		t.Errorf("east point = %v, want right of centre near (460,300)", east)
	}
	above, ok := cam.Project(math3d.V3(0, 10, 50))
	if !ok {
		t.Fatal("raised point should be visible")
	}
	if above.Y >= 300 || !near(above, Pixel{400, 219}, 2) {
		t.Errorf("raised point = %v, want above centre near (400,219)", above)
	}
}

func TestProjectFartherIsCloserToCenter(t *testing.T) {
	cam := newTestCamera(t)
	a, okA := cam.Project(math3d.V3(2, 0, 8))
	b, okB := cam.Project(math3d.V3(2, 0, 40))
	if !okA || !okB {
		t.Fatal("both points should be visible")
	}
	if a.X-400 <= b.X-400 {
		t.Errorf("perspective: near point %v should be farther from centre than %v", a, b)
	}
}

func TestCameraTranslatedAndRotated(t *testing.T) {
	// Looking north-east from (5,3,-2).
	cam, err := NewCamera(math3d.V3(5, 3, -2), math3d.V3(1, 0, 1), 1920, 1080, 1.0)
	if err != nil {
		t.Fatalf("NewCamera failed: %v", err)
	}
	px, ok := cam.Project(math3d.V3(35, 3, 28))
	if !ok || !near(px, Pixel{960, 540}, 2) {
		t.Errorf("point along the view ray = %v (%v), want ~(960,540)", px, ok)
	}
	up, ok := cam.Project(math3d.V3(35, 4, 28))
	if !ok || up.Y >= px.Y {
		t.Errorf("raised point = %v, want above %v", up, px)
	}
}

func TestCameraBasisOrthonormal(t *testing.T) {
	foci := []math3d.Vec3{
		math3d.V3(0, 0, 1),
		math3d.V3(1, 0.3, -2),
		math3d.V3(-0.2, -0.9, 0.1),
		math3d.V3(0, -1, 0),
		math3d.V3(0, 5, 0),
	}
	for _, f := range foci {
		cam, err := NewCamera(math3d.V3(1, 2, 3), f, 640, 480, 1.0)
		if err != nil {
			t.Fatalf("NewCamera(focus %v) failed: %v", f, err)
		}
		r, u, fw := cam.Right(), cam.Up(), cam.Forward()
		for _, v := range []math3d.Vec3{r, u, fw} {
			if math.Abs(v.Len()-1) > 1e-9 {
				t.Errorf("focus %v: basis vector %v not unit", f, v)
			}
		}
		if math.Abs(r.Dot(u)) > 1e-9 || math.Abs(r.Dot(fw)) > 1e-9 || math.Abs(u.Dot(fw)) > 1e-9 {
			t.Errorf("focus %v: basis not orthogonal: %v %v %v", f, r, u, fw)
		}
		if !cam.WorldToCamera().Mul(cam.CameraToWorld()).ApproxEqual(math3d.Identity(), 1e-9) {
			t.Errorf("focus %v: view transforms are not inverses", f)
		}
	}
}

func TestCameraLookingStraightDown(t *testing.T) {
	cam, err := NewCamera(math3d.V3(0, 10, 0), math3d.V3(0, -1, 0), 800, 600, 1.22)
	if err != nil {
		t.Fatalf("NewCamera looking down failed: %v", err)
	}
	if cam.Up() != math3d.Forward() {
		t.Errorf("looking down: screen up = %v, want north", cam.Up())
	}
	center, ok := cam.Project(math3d.V3(0, 0, 0))
	if !ok || !near(center, Pixel{400, 300}, 1) {
		t.Errorf("point below = %v, want centre", center)
	}
	east, ok := cam.Project(math3d.V3(5, 0, 0))
	if !ok || east.X <= center.X {
		t.Errorf("east point = %v, want right of centre", east)
	}
	north, ok := cam.Project(math3d.V3(0, 0, 5))
	if !ok || north.Y >= center.Y {
		t.Errorf("north point = %v, want above centre", north)
	}
}

func TestNewCameraErrors(t *testing.T) {
	if _, err := NewCamera(math3d.V3(0, 0, 0), math3d.Zero3(), 800, 600, 1.22); !errors.Is(err, math3d.ErrDegenerateVector) {
		t.Errorf("zero focus: got %v, want ErrDegenerateVector", err)
	}
	bad := []struct {
		name string
		w, h int
		fov  float64
	}{
		{"zero width", 0, 600, 1},
		{"negative height", 800, -1, 1},
		{"zero fov", 800, 600, 0},
		{"fov pi", 800, 600, math.Pi},
		{"nan fov", 800, 600, math.NaN()},
	}
	for _, tt := range bad {
		if _, err := NewCamera(math3d.V3(0, 0, 0), math3d.V3(0, 0, 1), tt.w, tt.h, tt.fov); !errors.Is(err, ErrInvalidCamera) {
			t.Errorf("%s: got %v, want ErrInvalidCamera", tt.name, err)
		}
	}
}

func TestPerspectiveMatrixLayout(t *testing.T) {
	p := PerspectiveFovLH(math.Pi/2, 2, NearPlane, FarPlane)
	if math.Abs(p.Get(0, 0)-0.5) > 1e-12 || math.Abs(p.Get(1, 1)-1) > 1e-12 {
		t.Errorf("scale terms wrong: %v", p)
	}
	if p.Get(2, 3) != 1 || p.Get(3, 3) != 0 {
		t.Errorf("w must come from camera depth: %v", p)
	}
	// w equals depth, so Apply divides by z.
	got := p.ApplyVec4(math3d.V4(1, 1, 10, 1))
	if got.W != 10 {
		t.Errorf("w = %v, want 10", got.W)
	}
}

func TestCanvasSplit(t *testing.T) {
	cam := newTestCamera(t)
	w, h := cam.Canvas()
	if math.Abs(w+h-CanvasScale) > 1e-12 {
		t.Errorf("canvas %v+%v != %v", w, h, CanvasScale)
	}
	if math.Abs(w/h-800.0/600.0) > 1e-12 {
		t.Errorf("canvas ratio %v, want 4/3", w/h)
	}
}
