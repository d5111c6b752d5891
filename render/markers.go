package render

import "github.com/ansipixels/mumbleview/math3d"

// Marker box dimensions in world units.
const (
	MarkerHalfWidth = 2.0
	MarkerHeight    = 2.0
)

// Corner labels: '+' is the top face, '-' the bottom; N/S run along Z, E/W along X.
const (
	TopNorthWest    = "+NW"
	TopNorthEast    = "+NE"
	TopSouthEast    = "+SE"
	TopSouthWest    = "+SW"
	BottomNorthWest = "-NW"
	BottomNorthEast = "-NE"
	BottomSouthEast = "-SE"
	BottomSouthWest = "-SW"
)

// MarkerLabels lists the corner labels in a stable drawing order.
var MarkerLabels = [8]string{
	TopSouthWest, TopNorthWest, TopSouthEast, TopNorthEast,
	BottomSouthWest, BottomNorthWest, BottomSouthEast, BottomNorthEast,
}

// Edge is a wireframe segment in world space.
type Edge struct {
	Start, End math3d.Vec3
}

// Anchor is a named world position that gets a marker box.
type Anchor struct {
	Name     string
	Position math3d.Vec3
}

// Cuboid holds the eight corners of an axis-aligned marker box.
type Cuboid struct {
	TopSW, TopNW, TopNE, TopSE             math3d.Vec3
	BottomSW, BottomNW, BottomNE, BottomSE math3d.Vec3
}

// CuboidAround builds a box whose bottom face sits at anchor.Y, extending
// half along ±X and ±Z and height upward.
func CuboidAround(anchor math3d.Vec3, half, height float64) Cuboid {
	corner := func(dx, dy, dz float64) math3d.Vec3 {
		return anchor.Add(math3d.V3(dx, dy, dz))
	}
	return Cuboid{
		TopSW:    corner(-half, height, -half),
		TopNW:    corner(-half, height, half),
		TopNE:    corner(half, height, half),
		TopSE:    corner(half, height, -half),
		BottomSW: corner(-half, 0, -half),
		BottomNW: corner(-half, 0, half),
		BottomNE: corner(half, 0, half),
		BottomSE: corner(half, 0, -half),
	}
}

// Vertices returns the corners keyed by label.
func (c Cuboid) Vertices() map[string]math3d.Vec3 {
	return map[string]math3d.Vec3{
		TopSouthWest:    c.TopSW,
		TopNorthWest:    c.TopNW,
		TopSouthEast:    c.TopSE,
		TopNorthEast:    c.TopNE,
		BottomSouthWest: c.BottomSW,
		BottomNorthWest: c.BottomNW,
		BottomSouthEast: c.BottomSE,
		BottomNorthEast: c.BottomNE,
	}
}

// Edges returns the 12 wireframe edges: top ring, bottom ring, then verticals.
func (c Cuboid) Edges() []Edge {
	return []Edge{
		{c.TopSW, c.TopNW},
		{c.TopNW, c.TopNE},
		{c.TopNE, c.TopSE},
		{c.TopSE, c.TopSW},

		{c.BottomSW, c.BottomNW},
		{c.BottomNW, c.BottomNE},
		{c.BottomNE, c.BottomSE},
		{c.BottomSE, c.BottomSW},

		{c.TopSW, c.BottomSW},
		{c.TopNW, c.BottomNW},
		{c.TopNE, c.BottomNE},
		{c.TopSE, c.BottomSE},
	}
}

// Corners returns the corners in the order used for indexed export:
// bottom ring then top ring, both SW, NW, NE, SE.
func (c Cuboid) Corners() [8]math3d.Vec3 {
	return [8]math3d.Vec3{
		c.BottomSW, c.BottomNW, c.BottomNE, c.BottomSE,
		c.TopSW, c.TopNW, c.TopNE, c.TopSE,
	}
}

// CuboidEdgeIndices indexes Corners() with the same edge order as Edges().
var CuboidEdgeIndices = [24]uint16{
	4, 5, 5, 6, 6, 7, 7, 4,
	0, 1, 1, 2, 2, 3, 3, 0,
	4, 0, 5, 1, 6, 2, 7, 3,
}

// VerticesAround returns the eight labelled corners of the standard marker box.
func VerticesAround(anchor math3d.Vec3) map[string]math3d.Vec3 {
	return CuboidAround(anchor, MarkerHalfWidth, MarkerHeight).Vertices()
}

// WireframeAround returns the 12 edges of the standard marker box.
func WireframeAround(anchor math3d.Vec3) []Edge {
	return CuboidAround(anchor, MarkerHalfWidth, MarkerHeight).Edges()
}
