package render

import (
	"fmt"
	"math"

	"github.com/charmbracelet/harmonica"
)

// Spring parameters for label motion: fast and critically damped, so labels
// settle without overshoot when telemetry ticks slower than the frame rate.
const (
	smoothFrequency = 12.0
	smoothDamping   = 1.0
)

type smoothedPoint struct {
	x, y   float64
	vx, vy float64
	seen   bool
}

// LabelSmoother eases label positions toward their projected targets across
// frames. Labels are matched by text (and occurrence for repeats); a label
// seen for the first time snaps into place.
type LabelSmoother struct {
	spring harmonica.Spring
	points map[string]*smoothedPoint
	// SnapDistance is the jump, in pixels, above which a label teleports
	// instead of sliding.
	SnapDistance float64
}

// NewLabelSmoother returns a smoother stepping at fps.
func NewLabelSmoother(fps int) *LabelSmoother {
	return &LabelSmoother{
		spring:       harmonica.NewSpring(harmonica.FPS(fps), smoothFrequency, smoothDamping),
		points:       make(map[string]*smoothedPoint),
		SnapDistance: 200,
	}
}

// Update advances every label one step and returns the smoothed copies.
// Labels missing from this frame are forgotten.
func (s *LabelSmoother) Update(labels []Label) []Label {
	for _, p := range s.points {
		p.seen = false
	}
	out := make([]Label, len(labels))
	counts := make(map[string]int, len(labels))
	for i, lb := range labels {
		key := fmt.Sprintf("%s#%d", lb.Text, counts[lb.Text])
		counts[lb.Text]++
		tx, ty := float64(lb.At.X), float64(lb.At.Y)
		p, ok := s.points[key]
		if !ok || math.Hypot(tx-p.x, ty-p.y) > s.SnapDistance {
			p = &smoothedPoint{x: tx, y: ty}
			s.points[key] = p
		} else {
			p.x, p.vx = s.spring.Update(p.x, p.vx, tx)
			p.y, p.vy = s.spring.Update(p.y, p.vy, ty)
		}
		p.seen = true
		out[i] = Label{At: Pixel{int(math.Round(p.x)), int(math.Round(p.y))}, Text: lb.Text}
	}
	for k, p := range s.points {
		if !p.seen {
			delete(s.points, k)
		}
	}
	return out
}

// Reset forgets all tracked labels.
func (s *LabelSmoother) Reset() {
	clear(s.points)
}
