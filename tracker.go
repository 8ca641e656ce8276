package smartcrop

import (
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gocv.io/x/gocv"
)

// ErrNotInitialized is returned when ProcessFrame is called on a tracker
// that was not built through NewTracker
var ErrNotInitialized = errors.New("tracker not initialized")

// minZoomFraction is the smallest crop size relative to the largest fitting
// crop when subject zoom framing is enabled
const minZoomFraction = 0.5

// Detector is the uniform interface implemented by all detection adapters.
// Detect returns zero or more bounding boxes found in the frame, an empty
// result is the normal "nothing detected" value and not an error
type Detector interface {
	Detect(img gocv.Mat) ([]BoundingBox, error)
	// Close releases any resources held by the detector
	Close() error
}

// TrackingState is the per video mutable state maintained across frames
type TrackingState struct {
	// LastDetectionFrame is the frame index of the last successful detection
	LastDetectionFrame int
	// LostCount is the number of consecutive frames without a detection
	LostCount int
	// LastFocus is the most recent raw focus point
	LastFocus Focus
	// LastSize is the most recent raw crop size
	LastSize Point
	// HasFocus indicates at least one frame has been processed
	HasFocus bool
}

// FrameOptions are per call options for ProcessFrame
type FrameOptions struct {
	// SkipDetection reuses the last known focus and crop size instead of
	// running the detection adapters.  The reused values are still passed
	// through the smoothing filters.  Callers use this to sample detection
	// every Nth frame to bound compute cost
	SkipDetection bool
}

// Tracker drives the subject tracking crop pipeline for a single video.
// It owns the per video mutable state exclusively, the detector instances
// it references may be shared across trackers only if their implementations
// allow it (see detect.Pool for gocv backed detectors).
//
// Per frame sequence: detection adapters, focus resolver, crop geometry,
// temporal smoothing for position and size, safe zone clamp.  The finalized
// CropRegion is returned and appended to the internal ordered sequence
type Tracker struct {
	cfg         Config
	frameWidth  int
	frameHeight int
	// largest crop of the target aspect that fits the source frame
	baseWidth  int
	baseHeight int
	detectors  []Detector
	sessionID  string
	posSmooth  *Smoother
	sizeSmooth *Smoother
	state      TrackingState
	regions    []CropRegion
	// detectorErrors counts per frame adapter failures that were degraded
	// to "no detections"
	detectorErrors int
	initialized    bool
}

// NewTracker creates a tracker for one video with the given source frame
// dimensions.  The configuration is validated eagerly, a tracker is only
// returned on success and is then fully initialized
func NewTracker(cfg Config, frameWidth, frameHeight int,
	detectors ...Detector) (*Tracker, error) {

	if err := cfg.Validate(frameWidth, frameHeight); err != nil {
		return nil, fmt.Errorf("invalid tracker config: %w", err)
	}

	w, h := CropSize(cfg.Aspect, frameWidth, frameHeight)

	return &Tracker{
		cfg:         cfg,
		frameWidth:  frameWidth,
		frameHeight: frameHeight,
		baseWidth:   w,
		baseHeight:  h,
		detectors:   detectors,
		sessionID:   uuid.New().String(),
		posSmooth:   NewSmoother(cfg.SmoothWindow, cfg.PositionEasing),
		sizeSmooth:  NewSmoother(cfg.SmoothWindow, cfg.SizeEasing),
		initialized: true,
	}, nil
}

// ProcessFrame runs the pipeline for a single decoded frame and returns the
// finalized crop region.  Frames must be supplied in display order
func (t *Tracker) ProcessFrame(img gocv.Mat, frameNumber int,
	opts FrameOptions) (CropRegion, error) {

	if t == nil || !t.initialized {
		return CropRegion{}, ErrNotInitialized
	}

	var focus Focus
	var size Point

	if opts.SkipDetection && t.state.HasFocus {
		// reuse the last known geometry, it still passes through smoothing
		// below so skipped frames keep easing towards the last detection
		focus = t.state.LastFocus
		size = t.state.LastSize
	} else {
		boxes := t.detect(img)

		focus = ResolveFocus(boxes, t.frameWidth, t.frameHeight)
		size = t.cropSizeFor(boxes, focus)

		if focus.Source == FocusFrameCenter {
			t.state.LostCount++
		} else {
			t.state.LostCount = 0
			t.state.LastDetectionFrame = frameNumber
		}
	}

	t.state.LastFocus = focus
	t.state.LastSize = size
	t.state.HasFocus = true

	smoothed := t.posSmooth.Push(clampFocus(focus.Point, t.cfg.SafeZone,
		t.frameWidth, t.frameHeight))
	smoothedSize := t.sizeSmooth.Push(size)

	// even dimensions are required by encoders
	cropW := int(smoothedSize.X) &^ 1
	cropH := int(smoothedSize.Y) &^ 1

	region := CropAround(smoothed, cropW, cropH, t.frameWidth, t.frameHeight)
	region = ClampRegion(region, t.frameWidth, t.frameHeight)
	region.FrameNumber = frameNumber
	region.Confidence = focus.Confidence

	t.regions = append(t.regions, region)

	return region, nil
}

// detect runs all adapters, merges their boxes and drops boxes below the
// configured confidence threshold for their detection channel.  A failing
// adapter is degraded to "no detections from this adapter for this frame"
// and counted rather than aborting the whole video over one bad frame
func (t *Tracker) detect(img gocv.Mat) []BoundingBox {

	var boxes []BoundingBox

	for _, d := range t.detectors {

		found, err := d.Detect(img)

		if err != nil {
			t.detectorErrors++
			log.Printf("detector error degraded to no detections: %v", err)
			continue
		}

		for _, box := range found {
			if box.Confidence >= t.minConfidence(box) {
				boxes = append(boxes, box)
			}
		}
	}

	return boxes
}

// minConfidence returns the config threshold for the box's detection channel
func (t *Tracker) minConfidence(b BoundingBox) float32 {
	switch {
	case b.IsFace():
		return t.cfg.FaceThreshold
	case b.IsMotion():
		return t.cfg.MotionThreshold
	default:
		return t.cfg.ObjectThreshold
	}
}

// cropSizeFor returns the raw crop size for this frame.  Without subject
// zoom the size is always the largest fitting crop, with it the crop shrinks
// towards the padded subject extent while preserving the target aspect
func (t *Tracker) cropSizeFor(boxes []BoundingBox, focus Focus) Point {

	base := Point{X: float32(t.baseWidth), Y: float32(t.baseHeight)}

	if !t.cfg.ZoomToSubject {
		return base
	}

	extent, ok := SubjectExtent(boxes, focus.Source)

	if !ok {
		return base
	}

	ratio := float32(t.cfg.Aspect.Ratio())

	w := extent.Width * t.cfg.SubjectPadding
	h := w / ratio

	if padded := extent.Height * t.cfg.SubjectPadding; h < padded {
		h = padded
		w = h * ratio
	}

	minW := base.X * minZoomFraction
	minH := base.Y * minZoomFraction

	if w < minW || h < minH {
		w = minW
		h = minH
	}

	if w > base.X || h > base.Y {
		return base
	}

	return Point{X: w, Y: h}
}

// Regions returns a copy of the ordered crop region sequence accumulated so
// far, one region per processed frame
func (t *Tracker) Regions() []CropRegion {
	out := make([]CropRegion, len(t.regions))
	copy(out, t.regions)
	return out
}

// State returns a copy of the per video tracking state
func (t *Tracker) State() TrackingState {
	return t.state
}

// SessionID returns the unique ID assigned to this tracking session
func (t *Tracker) SessionID() string {
	return t.sessionID
}

// DetectorErrors returns the number of per frame adapter failures that were
// degraded to empty detections
func (t *Tracker) DetectorErrors() int {
	return t.detectorErrors
}

// CropSize returns the largest crop dimensions for the configured aspect
// ratio within the source frame
func (t *Tracker) CropSize() (int, int) {
	return t.baseWidth, t.baseHeight
}

// FrameSize returns the source frame dimensions the tracker was built for
func (t *Tracker) FrameSize() (int, int) {
	return t.frameWidth, t.frameHeight
}

// Config returns the tracker configuration
func (t *Tracker) Config() Config {
	return t.cfg
}

// Reset discards all per video state so the tracker can process another
// video of the same dimensions.  Detector instances are left untouched as
// the tracker does not own them
func (t *Tracker) Reset() {
	t.state = TrackingState{}
	t.regions = nil
	t.detectorErrors = 0
	t.posSmooth.Reset()
	t.sizeSmooth.Reset()
	t.sessionID = uuid.New().String()
}
