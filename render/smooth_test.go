package render

import "testing"

func TestLabelSmootherSnapsNewLabels(t *testing.T) {
	s := NewLabelSmoother(60)
	out := s.Update([]Label{{At: Pixel{100, 50}, Text: "+NW"}})
	if out[0].At != (Pixel{100, 50}) {
		t.Errorf("first sighting = %v, want exact target", out[0].At)
	}
}

func TestLabelSmootherConverges(t *testing.T) {
	s := NewLabelSmoother(60)
	s.Update([]Label{{At: Pixel{100, 50}, Text: "+NW"}})
	target := []Label{{At: Pixel{140, 70}, Text: "+NW"}}

	first := s.Update(target)[0].At
	if first.X <= 100 || first.X >= 140 {
		t.Errorf("first step x = %d, want strictly between 100 and 140", first.X)
	}
	var last Pixel
	for range 120 {
		last = s.Update(target)[0].At
	}
	if last != (Pixel{140, 70}) {
		t.Errorf("after two seconds label at %v, want (140,70)", last)
	}
}

func TestLabelSmootherLargeJumpSnaps(t *testing.T) {
	s := NewLabelSmoother(60)
	s.Update([]Label{{At: Pixel{0, 0}, Text: "Home"}})
	out := s.Update([]Label{{At: Pixel{900, 0}, Text: "Home"}})
	if out[0].At != (Pixel{900, 0}) {
		t.Errorf("large jump = %v, want snap", out[0].At)
	}
}

func TestLabelSmootherTracksRepeatsAndForgets(t *testing.T) {
	s := NewLabelSmoother(60)
	s.Update([]Label{
		{At: Pixel{10, 10}, Text: "Camp"},
		{At: Pixel{300, 10}, Text: "Camp"},
	})
	if len(s.points) != 2 {
		t.Fatalf("tracking %d points, want 2", len(s.points))
	}
	out := s.Update([]Label{{At: Pixel{10, 10}, Text: "Camp"}})
	if out[0].At != (Pixel{10, 10}) {
		t.Errorf("stationary label moved to %v", out[0].At)
	}
	if len(s.points) != 1 {
		t.Errorf("tracking %d points after one vanished, want 1", len(s.points))
	}
	s.Reset()
	if len(s.points) != 0 {
		t.Error("Reset kept points")
	}
}
