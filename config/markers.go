// Package config loads the markers file: named world positions that get a
// marker box in every frontend.
//
//	{"markers": [{"name": "Vista", "position": [-57.7, 24.0, 158.4]}]}
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fortio.org/log"
	"github.com/ansipixels/mumbleview/math3d"
	"github.com/ansipixels/mumbleview/render"
)

// Marker is one entry of the file.
type Marker struct {
	Name     string    `json:"name"`
	Position []float64 `json:"position"`
}

// File is the on-disk layout.
type File struct {
	Markers []Marker `json:"markers"`
}

// ParseMarkers decodes a markers document into render anchors. A position
// that is not exactly three numbers fails with math3d.ErrDimensionMismatch.
func ParseMarkers(r io.Reader) ([]render.Anchor, error) {
	var f File
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode markers: %w", err)
	}
	anchors := make([]render.Anchor, 0, len(f.Markers))
	for i, m := range f.Markers {
		pos, err := math3d.Vec3FromSlice(m.Position)
		if err != nil {
			return nil, fmt.Errorf("marker %d (%q): %w", i, m.Name, err)
		}
		anchors = append(anchors, render.Anchor{Name: m.Name, Position: pos})
	}
	return anchors, nil
}

// LoadMarkers reads the markers file at path. A .glb or .gltf file (as
// written by render.ExportGLB) is read as marker boxes instead of JSON.
func LoadMarkers(path string) ([]render.Anchor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open markers: %w", err)
	}
	defer f.Close()
	parse := ParseMarkers
	switch strings.ToLower(filepath.Ext(path)) {
	case ".glb", ".gltf":
		parse = render.ImportGLB
	}
	anchors, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Infof("Loaded %d markers from %s", len(anchors), path)
	return anchors, nil
}

// SaveMarkers writes anchors to path in the same format, indented.
func SaveMarkers(path string, anchors []render.Anchor) error {
	f := File{Markers: make([]Marker, 0, len(anchors))}
	for _, a := range anchors {
		p := a.Position.Array()
		f.Markers = append(f.Markers, Marker{Name: a.Name, Position: p[:]})
	}
	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encode markers: %w", err)
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("write markers: %w", err)
	}
	return nil
}
