package smartcrop

import (
	"errors"
	"math"
	"testing"

	"gocv.io/x/gocv"
)

// stubDetector returns scripted boxes per frame, ignoring the frame pixels
type stubDetector struct {
	boxes func(call int) []BoundingBox
	err   error
	calls int
}

func (s *stubDetector) Detect(img gocv.Mat) ([]BoundingBox, error) {

	call := s.calls
	s.calls++

	if s.err != nil {
		return nil, s.err
	}

	if s.boxes == nil {
		return nil, nil
	}

	return s.boxes(call), nil
}

func (s *stubDetector) Close() error {
	return nil
}

// TestNewTrackerValidation tests invalid configs are rejected eagerly at
// construction
func TestNewTrackerValidation(t *testing.T) {

	tests := []struct {
		name   string
		mangle func(*Config)
		w, h   int
	}{
		{"zero smoothing window", func(c *Config) { c.SmoothWindow = 0 }, 1920, 1080},
		{"negative face threshold", func(c *Config) { c.FaceThreshold = -1 }, 1920, 1080},
		{"object threshold above one", func(c *Config) { c.ObjectThreshold = 1.5 }, 1920, 1080},
		{"zero detect interval", func(c *Config) { c.DetectInterval = 0 }, 1920, 1080},
		{"zero safe zone", func(c *Config) { c.SafeZone = 0 }, 1920, 1080},
		{"zero frame", func(c *Config) {}, 0, 1080},
		{"frame too small for a crop", func(c *Config) {}, 1, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {

			cfg := DefaultConfig()
			tc.mangle(&cfg)

			if _, err := NewTracker(cfg, tc.w, tc.h); err == nil {
				t.Error("expected a config error")
			}
		})
	}

	if _, err := NewTracker(DefaultConfig(), 1920, 1080); err != nil {
		t.Errorf("default config rejected: %v", err)
	}
}

// TestProcessFrameUninitialized tests the documented precondition, a zero
// tracker must refuse to process frames
func TestProcessFrameUninitialized(t *testing.T) {

	img := gocv.NewMat()
	defer img.Close()

	var zero Tracker

	if _, err := zero.ProcessFrame(img, 0, FrameOptions{}); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("got %v, want ErrNotInitialized", err)
	}

	var nilTracker *Tracker

	if _, err := nilTracker.ProcessFrame(img, 0, FrameOptions{}); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("got %v, want ErrNotInitialized", err)
	}
}

// checkRegion asserts the bounds and aspect invariants for one region
func checkRegion(t *testing.T, r CropRegion, frameW, frameH int, aspect AspectRatio) {
	t.Helper()

	if r.X < 0 || r.Y < 0 || r.X+r.Width > frameW || r.Y+r.Height > frameH {
		t.Fatalf("region %+v outside %dx%d frame", r, frameW, frameH)
	}

	if r.Width%2 != 0 || r.Height%2 != 0 {
		t.Fatalf("region %+v has odd dimensions", r)
	}

	got := float64(r.Width) / float64(r.Height)
	eps := 2.0/float64(r.Height) + 2.0/float64(r.Width)*aspect.Ratio()

	if math.Abs(got-aspect.Ratio()) > eps {
		t.Fatalf("region %+v ratio %f deviates from %s", r, got, aspect)
	}
}

// TestTrackerStaticFace runs 100 frames with a single static face and
// expects the crop to converge onto the face center
func TestTrackerStaticFace(t *testing.T) {

	img := gocv.NewMat()
	defer img.Close()

	face := &stubDetector{
		boxes: func(int) []BoundingBox {
			return []BoundingBox{
				NewBoundingBox(500, 300, 100, 100, 0.9, LabelFace),
			}
		},
	}

	tr, err := NewTracker(DefaultConfig(), 1920, 1080, face)

	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 100; i++ {
		if _, err := tr.ProcessFrame(img, i, FrameOptions{}); err != nil {
			t.Fatal(err)
		}
	}

	regions := tr.Regions()

	if len(regions) != 100 {
		t.Fatalf("got %d regions, want 100", len(regions))
	}

	for _, r := range regions {
		checkRegion(t, r, 1920, 1080, Ratio9x16)
	}

	// face center (550,350) gives crop origin (247,0) for a 606x1080 crop,
	// positions after the smoothing window fills must sit within a few
	// pixels of it
	for _, r := range regions[20:] {

		if r.X < 245 || r.X > 249 {
			t.Errorf("frame %d x=%d not converged on 247", r.FrameNumber, r.X)
		}

		if r.Y != 0 {
			t.Errorf("frame %d y=%d, want 0", r.FrameNumber, r.Y)
		}

		if !almostEqual(r.Confidence, 0.9, 1e-4) {
			t.Errorf("frame %d confidence %f, want 0.9", r.FrameNumber, r.Confidence)
		}
	}

	if tr.DetectorErrors() != 0 {
		t.Errorf("unexpected detector errors: %d", tr.DetectorErrors())
	}
}

// TestTrackerNoDetections runs 50 frames with no detections at all and
// expects identical centered crops
func TestTrackerNoDetections(t *testing.T) {

	img := gocv.NewMat()
	defer img.Close()

	empty := &stubDetector{}

	tr, err := NewTracker(DefaultConfig(), 1920, 1080, empty)

	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 50; i++ {
		if _, err := tr.ProcessFrame(img, i, FrameOptions{}); err != nil {
			t.Fatal(err)
		}
	}

	regions := tr.Regions()

	if len(regions) != 50 {
		t.Fatalf("got %d regions, want 50", len(regions))
	}

	want := CropRegion{X: 657, Y: 0, Width: 606, Height: 1080}

	for _, r := range regions {

		checkRegion(t, r, 1920, 1080, Ratio9x16)

		if r.X != want.X || r.Y != want.Y ||
			r.Width != want.Width || r.Height != want.Height {
			t.Errorf("frame %d region %+v, want centered %+v", r.FrameNumber, r, want)
		}
	}

	if tr.State().LostCount != 50 {
		t.Errorf("lost count %d, want 50", tr.State().LostCount)
	}
}

// TestTrackerSubjectLeaves tracks a face for 25 frames then loses it and
// expects the crop to ease back to center instead of snapping
func TestTrackerSubjectLeaves(t *testing.T) {

	img := gocv.NewMat()
	defer img.Close()

	face := &stubDetector{
		boxes: func(call int) []BoundingBox {
			if call < 25 {
				return []BoundingBox{
					NewBoundingBox(500, 300, 100, 100, 0.9, LabelFace),
				}
			}
			return nil
		},
	}

	tr, err := NewTracker(DefaultConfig(), 1920, 1080, face)

	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 50; i++ {
		if _, err := tr.ProcessFrame(img, i, FrameOptions{}); err != nil {
			t.Fatal(err)
		}
	}

	regions := tr.Regions()

	if len(regions) != 50 {
		t.Fatalf("got %d regions, want 50", len(regions))
	}

	for _, r := range regions {
		checkRegion(t, r, 1920, 1080, Ratio9x16)
	}

	// losing the subject must not snap the crop, the first lost frame stays
	// close to the last tracked one while the window decays
	jump := regions[25].X - regions[24].X

	if jump < 0 || jump > 80 {
		t.Errorf("crop jumped %d px on subject loss", jump)
	}

	// the path eases monotonically towards the centered fallback
	for i := 26; i < 50; i++ {
		if regions[i].X < regions[i-1].X {
			t.Errorf("crop reversed direction at frame %d", i)
		}
	}

	// once the window has fully decayed only center positions remain
	final := regions[49]

	if final.X != 657 {
		t.Errorf("final x=%d, want centered 657", final.X)
	}

	if tr.State().LostCount != 25 {
		t.Errorf("lost count %d, want 25", tr.State().LostCount)
	}
}

// TestTrackerSkipDetection tests the per call skip flag reuses the last
// known geometry without invoking the adapters
func TestTrackerSkipDetection(t *testing.T) {

	img := gocv.NewMat()
	defer img.Close()

	face := &stubDetector{
		boxes: func(int) []BoundingBox {
			return []BoundingBox{
				NewBoundingBox(500, 300, 100, 100, 0.9, LabelFace),
			}
		},
	}

	tr, err := NewTracker(DefaultConfig(), 1920, 1080, face)

	if err != nil {
		t.Fatal(err)
	}

	// sample detection every 5th frame as DetectInterval suggests
	for i := 0; i < 30; i++ {
		opts := FrameOptions{SkipDetection: i%tr.Config().DetectInterval != 0}

		if _, err := tr.ProcessFrame(img, i, opts); err != nil {
			t.Fatal(err)
		}
	}

	if face.calls != 6 {
		t.Errorf("detector called %d times, want 6", face.calls)
	}

	regions := tr.Regions()

	if len(regions) != 30 {
		t.Fatalf("got %d regions, want 30", len(regions))
	}

	// skipped frames still converge through smoothing
	last := regions[len(regions)-1]

	if last.X < 245 || last.X > 249 {
		t.Errorf("x=%d not converged on 247", last.X)
	}
}

// TestTrackerDetectorFailure tests a failing adapter degrades to no
// detections and is counted, not fatal
func TestTrackerDetectorFailure(t *testing.T) {

	img := gocv.NewMat()
	defer img.Close()

	bad := &stubDetector{err: errors.New("model exploded")}
	face := &stubDetector{
		boxes: func(int) []BoundingBox {
			return []BoundingBox{
				NewBoundingBox(500, 300, 100, 100, 0.9, LabelFace),
			}
		},
	}

	tr, err := NewTracker(DefaultConfig(), 1920, 1080, bad, face)

	if err != nil {
		t.Fatal(err)
	}

	r, err := tr.ProcessFrame(img, 0, FrameOptions{})

	if err != nil {
		t.Fatalf("degraded detector must not fail the frame: %v", err)
	}

	if tr.DetectorErrors() != 1 {
		t.Errorf("detector errors %d, want 1", tr.DetectorErrors())
	}

	// the healthy adapter still drives the crop
	if !almostEqual(r.Confidence, 0.9, 1e-4) {
		t.Errorf("confidence %f, want 0.9 from the healthy adapter", r.Confidence)
	}
}

// TestTrackerConfidenceThresholds tests the config thresholds filter the
// merged adapter results per detection channel
func TestTrackerConfidenceThresholds(t *testing.T) {

	img := gocv.NewMat()
	defer img.Close()

	det := &stubDetector{
		boxes: func(int) []BoundingBox {
			return []BoundingBox{
				NewBoundingBox(500, 300, 100, 100, 0.4, LabelFace),
				NewBoundingBox(1000, 200, 300, 300, 0.45, "person"),
				NewBoundingBox(1400, 700, 200, 150, 0.2, LabelMotion),
			}
		},
	}

	tests := []struct {
		name       string
		mangle     func(*Config)
		wantSource FocusSource
	}{
		// defaults drop the 0.4 face and 0.45 person, the 0.2 motion box
		// clears the 0.1 motion threshold
		{"defaults keep motion only", func(c *Config) {}, FocusMotion},
		{"raised motion threshold drops everything",
			func(c *Config) { c.MotionThreshold = 0.3 }, FocusFrameCenter},
		{"lowered face threshold admits the face",
			func(c *Config) { c.FaceThreshold = 0.3 }, FocusFace},
		{"lowered object threshold admits the person",
			func(c *Config) { c.ObjectThreshold = 0.4; c.MotionThreshold = 0.3 },
			FocusObject},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {

			cfg := DefaultConfig()
			tc.mangle(&cfg)

			tr, err := NewTracker(cfg, 1920, 1080, det)

			if err != nil {
				t.Fatal(err)
			}

			if _, err := tr.ProcessFrame(img, 0, FrameOptions{}); err != nil {
				t.Fatal(err)
			}

			if got := tr.State().LastFocus.Source; got != tc.wantSource {
				t.Errorf("focus source %s, want %s", got, tc.wantSource)
			}
		})
	}
}

// TestTrackerReset tests reset clears per video state for reuse
func TestTrackerReset(t *testing.T) {

	img := gocv.NewMat()
	defer img.Close()

	tr, err := NewTracker(DefaultConfig(), 1920, 1080, &stubDetector{})

	if err != nil {
		t.Fatal(err)
	}

	if _, err := tr.ProcessFrame(img, 0, FrameOptions{}); err != nil {
		t.Fatal(err)
	}

	oldID := tr.SessionID()
	tr.Reset()

	if len(tr.Regions()) != 0 {
		t.Error("regions survived reset")
	}

	if tr.State().HasFocus {
		t.Error("tracking state survived reset")
	}

	if tr.SessionID() == oldID {
		t.Error("session id not rotated on reset")
	}
}
