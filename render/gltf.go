package render

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/ansipixels/mumbleview/math3d"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// ErrNoMarkers is returned by ImportGLB when a file holds no positioned mesh.
var ErrNoMarkers = errors.New("no marker meshes in gltf document")

// MarkerDocument builds a glTF document with one line-mode mesh per anchor.
// Each mesh holds the eight box corners in world coordinates and the 24
// indices of CuboidEdgeIndices.
func MarkerDocument(anchors []Anchor) *gltf.Document {
	doc := gltf.NewDocument()
	doc.Asset.Generator = "mumbleview"
	indices := CuboidEdgeIndices[:]
	for i, a := range anchors {
		corners := CuboidAround(a.Position, MarkerHalfWidth, MarkerHeight).Corners()
		positions := make([][3]float32, len(corners))
		for j, c := range corners {
			positions[j] = c.Float32()
		}
		name := a.Name
		if name == "" {
			name = fmt.Sprintf("marker-%d", i)
		}
		doc.Meshes = append(doc.Meshes, &gltf.Mesh{
			Name: name,
			Primitives: []*gltf.Primitive{{
				Indices: gltf.Index(modeler.WriteIndices(doc, indices)),
				Attributes: gltf.PrimitiveAttributes{
					gltf.POSITION: modeler.WritePosition(doc, positions),
				},
				Mode: gltf.PrimitiveLines,
			}},
		})
		doc.Nodes = append(doc.Nodes, &gltf.Node{Name: name, Mesh: gltf.Index(len(doc.Meshes) - 1)})
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)
	}
	return doc
}

// ExportGLB writes the anchors' marker boxes to w as binary glTF.
func ExportGLB(w io.Writer, anchors []Anchor) error {
	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	if err := enc.Encode(MarkerDocument(anchors)); err != nil {
		return fmt.Errorf("encode glb: %w", err)
	}
	return nil
}

// ImportGLB reads marker boxes back from a glTF document: every mesh reached
// from the default scene becomes an anchor at the bottom centre of its world
// space bounds, named after the node (or mesh).
func ImportGLB(r io.Reader) ([]Anchor, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return nil, fmt.Errorf("decode gltf: %w", err)
	}
	var anchors []Anchor
	roots := rootNodes(doc)
	for _, n := range roots {
		if err := collectAnchors(doc, n, math3d.Identity(), &anchors); err != nil {
			return nil, err
		}
	}
	if len(anchors) == 0 {
		return nil, ErrNoMarkers
	}
	return anchors, nil
}

func rootNodes(doc *gltf.Document) []int {
	if len(doc.Scenes) > 0 {
		idx := 0
		if doc.Scene != nil {
			idx = *doc.Scene
		}
		return doc.Scenes[idx].Nodes
	}
	child := make(map[int]bool)
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			child[c] = true
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !child[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

// nodeTransform is the node's local transform for row vectors: scale, then
// rotate, then translate. An explicit matrix wins; glTF stores it
// column-major, which is already the row-vector layout of math3d.Mat4.
func nodeTransform(n *gltf.Node) math3d.Mat4 {
	if n.Matrix != gltf.DefaultMatrix && n.Matrix != [16]float64{} {
		return math3d.Mat4(n.Matrix)
	}
	local := math3d.Identity()
	if n.Scale != [3]float64{1, 1, 1} && n.Scale != [3]float64{} {
		local = local.Mul(math3d.Scale(math3d.V3(n.Scale[0], n.Scale[1], n.Scale[2])))
	}
	if n.Rotation != gltf.DefaultRotation && n.Rotation != [4]float64{} {
		local = local.Mul(math3d.QuatToMat4(n.Rotation[0], n.Rotation[1], n.Rotation[2], n.Rotation[3]))
	}
	if n.Translation != [3]float64{} {
		local = local.Mul(math3d.Translate(math3d.V3(n.Translation[0], n.Translation[1], n.Translation[2])))
	}
	return local
}

func collectAnchors(doc *gltf.Document, idx int, parent math3d.Mat4, out *[]Anchor) error {
	node := doc.Nodes[idx]
	world := nodeTransform(node).Mul(parent)
	if node.Mesh != nil {
		m := doc.Meshes[*node.Mesh]
		lo := math3d.V3(math.Inf(1), math.Inf(1), math.Inf(1))
		hi := math3d.V3(math.Inf(-1), math.Inf(-1), math.Inf(-1))
		found := false
		for _, prim := range m.Primitives {
			posIdx, ok := prim.Attributes[gltf.POSITION]
			if !ok {
				continue
			}
			positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
			if err != nil {
				return fmt.Errorf("mesh %q positions: %w", m.Name, err)
			}
			for _, p := range positions {
				v := world.Apply(math3d.V3(float64(p[0]), float64(p[1]), float64(p[2])))
				lo, hi = lo.Min(v), hi.Max(v)
				found = true
			}
		}
		if found {
			name := node.Name
			if name == "" {
				name = m.Name
			}
			*out = append(*out, Anchor{
				Name:     name,
				Position: math3d.V3((lo.X+hi.X)/2, lo.Y, (lo.Z+hi.Z)/2),
			})
		}
	}
	for _, c := range node.Children {
		if err := collectAnchors(doc, c, world, out); err != nil {
			return err
		}
	}
	return nil
}
