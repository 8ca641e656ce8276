package detect

import (
	"fmt"
	"image"
	"math"

	clipper "github.com/ctessum/go.clipper"
	smartcrop "github.com/vidflow/go-smartcrop"
	"gocv.io/x/gocv"
)

// MotionDetectorParams configures the motion adapter
type MotionDetectorParams struct {
	// Threshold is the minimum motion score in [0,1] for a box to be
	// reported, default 0.1
	Threshold float32
	// HistorySize is the number of previous frames differenced against,
	// default 2
	HistorySize int
	// DiffThreshold is the pixel intensity cutoff applied to the frame
	// difference, default 25
	DiffThreshold float32
	// MinContourArea filters out tiny noise contours, default 500 pixels
	MinContourArea float64
}

// MotionDetector reports the bounding box of the largest contiguous motion
// region using frame differencing.  It is stateful across consecutive
// calls, the previous frames are kept in a fixed capacity ring buffer.  The
// first frames of a sequence report zero motion without error.
//
// Overlapping motion contours are merged into contiguous regions with a
// polygon union so a subject split across several contours still yields a
// single box.
//
// A MotionDetector is not safe for concurrent use and must be instantiated
// per video
type MotionDetector struct {
	params MotionDetectorParams
	// ring buffer of previous grayscale frames
	history []gocv.Mat
	head    int
	count   int
	// working Mats reused between calls
	gray   gocv.Mat
	diff   gocv.Mat
	thresh gocv.Mat
	kernel gocv.Mat
}

// NewMotionDetector creates a motion detector with the given parameters,
// zero values take the documented defaults
func NewMotionDetector(params MotionDetectorParams) *MotionDetector {

	if params.Threshold <= 0 {
		params.Threshold = smartcrop.DefaultMotionThreshold
	}

	if params.HistorySize <= 0 {
		params.HistorySize = 2
	}

	if params.DiffThreshold <= 0 {
		params.DiffThreshold = 25
	}

	if params.MinContourArea <= 0 {
		params.MinContourArea = 500
	}

	return &MotionDetector{
		params:  params,
		history: make([]gocv.Mat, params.HistorySize),
		gray:    gocv.NewMat(),
		diff:    gocv.NewMat(),
		thresh:  gocv.NewMat(),
		kernel:  gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3)),
	}
}

// Detect returns the bounding box of the largest contiguous motion region
// when the motion score exceeds the configured threshold.  Calls before the
// history buffer holds a previous frame return zero motion without error
func (m *MotionDetector) Detect(img gocv.Mat) ([]smartcrop.BoundingBox, error) {

	if img.Empty() {
		return nil, fmt.Errorf("empty input frame")
	}

	gocv.CvtColor(img, &m.gray, gocv.ColorBGRToGray)

	if m.count == 0 {
		// first frame of the sequence, nothing to difference against
		m.push(m.gray)
		return nil, nil
	}

	// difference against the oldest buffered frame
	oldest := m.oldest()
	gocv.AbsDiff(m.gray, oldest, &m.diff)
	gocv.Threshold(m.diff, &m.thresh, m.params.DiffThreshold, 255,
		gocv.ThresholdBinary)
	gocv.Dilate(m.thresh, &m.thresh, m.kernel)

	contours := gocv.FindContours(m.thresh, gocv.RetrievalExternal,
		gocv.ChainApproxSimple)
	defer contours.Close()

	box, area, found := m.largestRegion(contours)

	m.push(m.gray)

	if !found {
		return nil, nil
	}

	frameArea := float64(img.Cols() * img.Rows())
	score := float32(area / frameArea)

	if score > 1 {
		score = 1
	}

	if score < m.params.Threshold {
		return nil, nil
	}

	box.Confidence = score
	box.Label = smartcrop.LabelMotion

	return []smartcrop.BoundingBox{box}, nil
}

// largestRegion merges overlapping motion contours into contiguous regions
// via polygon union and returns the bounding box of the largest one along
// with the total motion area
func (m *MotionDetector) largestRegion(contours gocv.PointsVector) (smartcrop.BoundingBox, float64, bool) {

	paths := make(clipper.Paths, 0, contours.Size())

	for i := 0; i < contours.Size(); i++ {

		pv := contours.At(i)

		if gocv.ContourArea(pv) < m.params.MinContourArea {
			continue
		}

		var path clipper.Path

		for _, pt := range pv.ToPoints() {
			path = append(path, &clipper.IntPoint{
				X: clipper.CInt(pt.X),
				Y: clipper.CInt(pt.Y),
			})
		}

		paths = append(paths, path)
	}

	if len(paths) == 0 {
		return smartcrop.BoundingBox{}, 0, false
	}

	c := clipper.NewClipper(clipper.IoNone)
	c.AddPaths(paths, clipper.PtSubject, true)

	merged, ok := c.Execute1(clipper.CtUnion, clipper.PftNonZero,
		clipper.PftNonZero)

	if !ok || len(merged) == 0 {
		merged = paths
	}

	var totalArea float64
	largest := 0
	largestArea := 0.0

	for i, path := range merged {

		area := math.Abs(clipper.Area(path))
		totalArea += area

		if area > largestArea {
			largestArea = area
			largest = i
		}
	}

	return pathBounds(merged[largest]), totalArea, true
}

// pathBounds returns the axis-aligned bounding box of a polygon path
func pathBounds(path clipper.Path) smartcrop.BoundingBox {

	if len(path) == 0 {
		return smartcrop.BoundingBox{}
	}

	minX, maxX := path[0].X, path[0].X
	minY, maxY := path[0].Y, path[0].Y

	for _, pt := range path[1:] {

		if pt.X < minX {
			minX = pt.X
		}

		if pt.X > maxX {
			maxX = pt.X
		}

		if pt.Y < minY {
			minY = pt.Y
		}

		if pt.Y > maxY {
			maxY = pt.Y
		}
	}

	return smartcrop.BoundingBox{
		X:      float32(minX),
		Y:      float32(minY),
		Width:  float32(maxX - minX),
		Height: float32(maxY - minY),
	}
}

// push stores a copy of the grayscale frame in the history ring, evicting
// and releasing the oldest frame when full
func (m *MotionDetector) push(gray gocv.Mat) {

	if m.count == len(m.history) {
		// evict oldest
		old := m.history[m.head]
		old.Close()
	} else {
		m.count++
	}

	m.history[m.head] = gray.Clone()
	m.head = (m.head + 1) % len(m.history)
}

// oldest returns the oldest buffered frame
func (m *MotionDetector) oldest() gocv.Mat {

	idx := m.head - m.count

	if idx < 0 {
		idx += len(m.history)
	}

	return m.history[idx]
}

// Reset drops the frame history so the detector can start a new sequence
func (m *MotionDetector) Reset() {

	for i := 0; i < m.count; i++ {
		idx := (m.head - 1 - i + len(m.history)) % len(m.history)
		m.history[idx].Close()
	}

	m.head = 0
	m.count = 0
}

// Close releases all native resources
func (m *MotionDetector) Close() error {

	m.Reset()

	m.gray.Close()
	m.diff.Close()
	m.thresh.Close()

	return m.kernel.Close()
}
