package math3d

import (
	"fmt"
	"math"
)

// Vec2 represents a 2D vector.
type Vec2 struct {
	X, Y float64
}

// V2 creates a new Vec2.
func V2(x, y float64) Vec2 {
	return Vec2{x, y}
}

// Vec2FromSlice creates a Vec2 from exactly two components.
func Vec2FromSlice(s []float64) (Vec2, error) {
	if len(s) != 2 {
		return Vec2{}, fmt.Errorf("vec2 from %d components: %w", len(s), ErrDimensionMismatch)
	}
	return Vec2{s[0], s[1]}, nil
}

// Zero2 returns the zero vector.
func Zero2() Vec2 {
	return Vec2{}
}

// Up2 returns (0, 1).
func Up2() Vec2 { return Vec2{0, 1} }

// Down2 returns (0, -1).
func Down2() Vec2 { return Vec2{0, -1} }

// Left2 returns (-1, 0).
func Left2() Vec2 { return Vec2{-1, 0} }

// Right2 returns (1, 0).
func Right2() Vec2 { return Vec2{1, 0} }

// Add returns the vector sum a + b.
func (a Vec2) Add(b Vec2) Vec2 {
	return Vec2{a.X + b.X, a.Y + b.Y}
}

// Sub returns the vector difference a - b.
func (a Vec2) Sub(b Vec2) Vec2 {
	return Vec2{a.X - b.X, a.Y - b.Y}
}

// Scale returns the scalar product a * s.
func (a Vec2) Scale(s float64) Vec2 {
	return Vec2{a.X * s, a.Y * s}
}

// Mul returns the component-wise product a * b.
func (a Vec2) Mul(b Vec2) Vec2 {
	return Vec2{a.X * b.X, a.Y * b.Y}
}

// Dot returns the dot product a · b.
func (a Vec2) Dot(b Vec2) float64 {
	return a.X*b.X + a.Y*b.Y
}

// Len returns the length of the vector.
func (a Vec2) Len() float64 {
	return math.Sqrt(a.X*a.X + a.Y*a.Y)
}

// LenSq returns the squared length (faster, no sqrt).
func (a Vec2) LenSq() float64 {
	return a.X*a.X + a.Y*a.Y
}

// Normalize returns the unit vector, or ErrDegenerateVector for a zero vector.
func (a Vec2) Normalize() (Vec2, error) {
	l := a.Len()
	if l < Epsilon {
		return Vec2{}, ErrDegenerateVector
	}
	return Vec2{a.X / l, a.Y / l}, nil
}

// Negate returns the negated vector.
func (a Vec2) Negate() Vec2 {
	return Vec2{-a.X, -a.Y}
}

// Lerp returns linear interpolation between a and b.
func (a Vec2) Lerp(b Vec2, t float64) Vec2 {
	return Vec2{
		a.X + (b.X-a.X)*t,
		a.Y + (b.Y-a.Y)*t,
	}
}

// Perpendicular returns a perpendicular vector (90° counter-clockwise).
func (a Vec2) Perpendicular() Vec2 {
	return Vec2{-a.Y, a.X}
}

// Angle returns the angle of the vector in radians.
func (a Vec2) Angle() float64 {
	return math.Atan2(a.Y, a.X)
}

// Distance returns the distance between two points.
func (a Vec2) Distance(b Vec2) float64 {
	return a.Sub(b).Len()
}

// ApproxEqual reports whether every component differs by at most tol.
func (a Vec2) ApproxEqual(b Vec2, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol
}

// Array returns the components as a fixed array.
func (a Vec2) Array() [2]float64 {
	return [2]float64{a.X, a.Y}
}
