package smartcrop

import (
	"math"
	"testing"
)

// TestCropSize tests crops fit the source, match the target ratio and have
// even dimensions for all presets
func TestCropSize(t *testing.T) {

	frames := []struct {
		w, h int
	}{
		{1920, 1080},
		{1080, 1920},
		{1280, 720},
		{720, 576},
		{640, 480},
		{3840, 2160},
	}

	aspects := []AspectRatio{Ratio16x9, Ratio9x16, Ratio1x1, Ratio4x5, Ratio21x9}

	for _, frame := range frames {
		for _, aspect := range aspects {

			w, h := CropSize(aspect, frame.w, frame.h)

			if w > frame.w || h > frame.h {
				t.Errorf("aspect %s crop %dx%d exceeds frame %dx%d",
					aspect, w, h, frame.w, frame.h)
			}

			if w%2 != 0 || h%2 != 0 {
				t.Errorf("aspect %s crop %dx%d has odd dimension", aspect, w, h)
			}

			// epsilon accounts for even integer rounding of both dimensions
			got := float64(w) / float64(h)
			eps := 2.0/float64(h) + 2.0/float64(w)*aspect.Ratio()

			if math.Abs(got-aspect.Ratio()) > eps {
				t.Errorf("aspect %s got ratio %f want %f (crop %dx%d)",
					aspect, got, aspect.Ratio(), w, h)
			}
		}
	}
}

// TestCropAround tests crop positioning centers on the focus point and
// clamps at the frame edges
func TestCropAround(t *testing.T) {

	tests := []struct {
		name         string
		focus        Point
		wantX, wantY int
	}{
		{"centered", Point{X: 960, Y: 540}, 657, 0},
		{"left edge clamp", Point{X: 10, Y: 540}, 0, 0},
		{"right edge clamp", Point{X: 1910, Y: 540}, 1314, 0},
		{"subject left of center", Point{X: 550, Y: 350}, 247, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {

			r := CropAround(tc.focus, 606, 1080, 1920, 1080)

			if r.X != tc.wantX || r.Y != tc.wantY {
				t.Errorf("got (%d,%d), want (%d,%d)", r.X, r.Y, tc.wantX, tc.wantY)
			}

			if r.Width != 606 || r.Height != 1080 {
				t.Errorf("crop size changed to %dx%d", r.Width, r.Height)
			}
		})
	}
}

// TestClampFocus tests the safe zone ratio restricts the focus point to the
// central frame area
func TestClampFocus(t *testing.T) {

	// 80% safe zone on a 1000x500 frame leaves a 100px/50px margin
	p := clampFocus(Point{X: 10, Y: 490}, 0.8, 1000, 500)

	if p.X != 100 || p.Y != 450 {
		t.Errorf("got (%f,%f), want (100,450)", p.X, p.Y)
	}

	// full frame safe zone leaves the point untouched
	p = clampFocus(Point{X: 10, Y: 490}, 1.0, 1000, 500)

	if p.X != 10 || p.Y != 490 {
		t.Errorf("got (%f,%f), want (10,490)", p.X, p.Y)
	}
}
