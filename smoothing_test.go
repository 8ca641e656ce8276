package smartcrop

import (
	"math"
	"testing"
)

// almostEqual checks if two float32 values are approximately equal
func almostEqual(a, b, tolerance float32) bool {
	return float32(math.Abs(float64(a)-float64(b))) <= tolerance
}

// TestSmootherConvergence tests feeding a constant position converges the
// smoothed output to that position
func TestSmootherConvergence(t *testing.T) {

	const tolerance = 1e-3

	easings := []Easing{EaseLinear, EaseIn, EaseOut, EaseInOut, EaseSmoothstep}

	for _, easing := range easings {
		t.Run(easing.String(), func(t *testing.T) {

			s := NewSmoother(15, easing)
			target := Point{X: 550, Y: 350}

			var got Point

			for i := 0; i < 20; i++ {
				got = s.Push(target)
			}

			if !almostEqual(got.X, target.X, tolerance) ||
				!almostEqual(got.Y, target.Y, tolerance) {
				t.Errorf("did not converge, got (%f,%f) want (%f,%f)",
					got.X, got.Y, target.X, target.Y)
			}
		})
	}
}

// TestSmootherBounded tests the window never holds more than its capacity
// and evicts oldest first
func TestSmootherBounded(t *testing.T) {

	s := NewSmoother(5, EaseLinear)

	for i := 0; i < 12; i++ {
		s.Push(Point{X: float32(i), Y: 0})

		if s.Len() > s.Cap() {
			t.Fatalf("window grew to %d past capacity %d", s.Len(), s.Cap())
		}
	}

	// buffer now holds 7..11, a linear weighted mean over those is
	// (7*1 + 8*2 + 9*3 + 10*4 + 11*5) / 15
	want := float32(7*1+8*2+9*3+10*4+11*5) / 15

	if got := s.Value(); !almostEqual(got.X, want, 1e-4) {
		t.Errorf("got %f, want %f", got.X, want)
	}
}

// TestSmootherRecency tests newer samples outweigh older ones so the
// output trails towards the latest position
func TestSmootherRecency(t *testing.T) {

	s := NewSmoother(10, EaseInOut)

	for i := 0; i < 10; i++ {
		s.Push(Point{X: 0, Y: 0})
	}

	// one new sample pulls the mean towards it but not all the way
	got := s.Push(Point{X: 100, Y: 100})

	if got.X <= 0 || got.X >= 100 {
		t.Errorf("expected partial pull towards new sample, got %f", got.X)
	}

	// the pull must exceed a plain unweighted mean contribution of 10
	if got.X <= 10 {
		t.Errorf("recency weighting missing, got %f", got.X)
	}
}

// TestSmootherIndependence tests separate instances share no state
func TestSmootherIndependence(t *testing.T) {

	a := NewSmoother(5, EaseInOut)
	b := NewSmoother(5, EaseInOut)

	a.Push(Point{X: 100, Y: 100})

	if got := b.Value(); got.X != 0 || got.Y != 0 {
		t.Errorf("instance b affected by a: %+v", got)
	}
}

// TestSmootherReset tests reset empties the window
func TestSmootherReset(t *testing.T) {

	s := NewSmoother(5, EaseLinear)
	s.Push(Point{X: 50, Y: 50})
	s.Reset()

	if s.Len() != 0 {
		t.Errorf("expected empty window after reset, got %d", s.Len())
	}
}
