package smartcrop

import (
	"fmt"
)

// Default configuration values
const (
	// DefaultSmoothWindow is the number of recent frames blended by the
	// temporal smoothing filter
	DefaultSmoothWindow = 15
	// DefaultFaceThreshold is the face detection confidence cutoff
	DefaultFaceThreshold = 0.5
	// DefaultObjectThreshold is the object detection confidence cutoff
	DefaultObjectThreshold = 0.5
	// DefaultNMSThreshold is the IoU cutoff for non-maximum suppression
	DefaultNMSThreshold = 0.4
	// DefaultMotionThreshold is the motion score sensitivity cutoff
	DefaultMotionThreshold = 0.1
	// DefaultDetectInterval suggests running detection every Nth frame
	DefaultDetectInterval = 5
	// DefaultSubjectPadding scales the subject extent when zoom framing
	DefaultSubjectPadding = 2.0
)

// Config holds the tracker configuration.  Construct it from DefaultConfig
// and override individual settings, a zero Config does not validate
type Config struct {
	// Aspect is the target output aspect ratio
	Aspect AspectRatio
	// SmoothWindow is the temporal smoothing window size in frames
	SmoothWindow int
	// PositionEasing is the weighting curve for position smoothing
	PositionEasing Easing
	// SizeEasing is the weighting curve for crop size smoothing.  Size uses
	// a separate smoother so a sudden reframe is not smoothed identically to
	// lateral panning
	SizeEasing Easing
	// FaceThreshold is the minimum confidence for face boxes, applied by the
	// tracker to every adapter result
	FaceThreshold float32
	// ObjectThreshold is the minimum confidence for object boxes, applied by
	// the tracker to every adapter result
	ObjectThreshold float32
	// MotionThreshold is the minimum motion score for motion boxes, applied
	// by the tracker to every adapter result
	MotionThreshold float32
	// DetectInterval is the suggested re-detection sampling interval for
	// callers that skip detection on intermediate frames
	DetectInterval int
	// SafeZone restricts the focus point to the central fraction of the
	// frame on both axes, 1.0 allows the whole frame
	SafeZone float32
	// ZoomToSubject shrinks the crop towards the subject extent instead of
	// always using the largest fitting crop
	ZoomToSubject bool
	// SubjectPadding scales the subject extent when ZoomToSubject is set
	SubjectPadding float32
}

// DefaultConfig returns a config using all documented defaults with a 9:16
// target aspect ratio
func DefaultConfig() Config {
	return Config{
		Aspect:          Ratio9x16,
		SmoothWindow:    DefaultSmoothWindow,
		PositionEasing:  EaseInOut,
		SizeEasing:      EaseInOut,
		FaceThreshold:   DefaultFaceThreshold,
		ObjectThreshold: DefaultObjectThreshold,
		MotionThreshold: DefaultMotionThreshold,
		DetectInterval:  DefaultDetectInterval,
		SafeZone:        1.0,
		SubjectPadding:  DefaultSubjectPadding,
	}
}

// Validate checks the configuration against the given source frame
// dimensions and returns a descriptive error for the first invalid setting.
// Validation happens eagerly at tracker construction so a bad config is not
// discovered mid stream on frame 500
func (c Config) Validate(frameWidth, frameHeight int) error {

	if frameWidth <= 0 || frameHeight <= 0 {
		return fmt.Errorf("invalid frame dimensions %dx%d", frameWidth, frameHeight)
	}

	if c.SmoothWindow <= 0 {
		return fmt.Errorf("smoothing window size must be at least 1, got %d",
			c.SmoothWindow)
	}

	if c.FaceThreshold < 0 || c.FaceThreshold > 1 {
		return fmt.Errorf("face threshold %f outside [0,1]", c.FaceThreshold)
	}

	if c.ObjectThreshold < 0 || c.ObjectThreshold > 1 {
		return fmt.Errorf("object threshold %f outside [0,1]", c.ObjectThreshold)
	}

	if c.MotionThreshold < 0 || c.MotionThreshold > 1 {
		return fmt.Errorf("motion threshold %f outside [0,1]", c.MotionThreshold)
	}

	if c.DetectInterval < 1 {
		return fmt.Errorf("detection interval must be at least 1, got %d",
			c.DetectInterval)
	}

	if c.SafeZone <= 0 || c.SafeZone > 1 {
		return fmt.Errorf("safe zone ratio %f outside (0,1]", c.SafeZone)
	}

	if c.ZoomToSubject && c.SubjectPadding < 1 {
		return fmt.Errorf("subject padding must be at least 1, got %f",
			c.SubjectPadding)
	}

	w, h := CropSize(c.Aspect, frameWidth, frameHeight)

	if w < 2 || h < 2 {
		return fmt.Errorf("crop %dx%d for aspect %s does not fit frame %dx%d",
			w, h, c.Aspect, frameWidth, frameHeight)
	}

	return nil
}
