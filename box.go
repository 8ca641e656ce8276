package smartcrop

import (
	"math"
)

// Labels reported by the built in detection adapters.  The object adapter
// reports the class name the model was trained with instead.
const (
	LabelFace   = "face"
	LabelMotion = "motion"
)

// Point represents an x,y coordinate in frame pixel space
type Point struct {
	X, Y float32
}

// BoundingBox is an axis-aligned rectangle in pixel coordinates of a single
// frame produced by a detection adapter
type BoundingBox struct {
	// X is the top left x coordinate of the box
	X float32
	// Y is the top left y coordinate of the box
	Y float32
	// Width of the box
	Width float32
	// Height of the box
	Height float32
	// Confidence is the detection score in the range [0,1]
	Confidence float32
	// Label is the class of the detection, eg: "face", "person" or "motion"
	Label string
}

// NewBoundingBox creates a new BoundingBox with given coordinates, confidence
// score and class label
func NewBoundingBox(x, y, width, height, confidence float32, label string) BoundingBox {
	return BoundingBox{
		X:          x,
		Y:          y,
		Width:      width,
		Height:     height,
		Confidence: confidence,
		Label:      label,
	}
}

// Center returns the center point of the bounding box
func (b BoundingBox) Center() Point {
	return Point{
		X: b.X + b.Width/2,
		Y: b.Y + b.Height/2,
	}
}

// Area returns the surface area of the bounding box in pixels
func (b BoundingBox) Area() float32 {
	return b.Width * b.Height
}

// IsFace reports whether the box was produced by a face adapter
func (b BoundingBox) IsFace() bool {
	return b.Label == LabelFace
}

// IsMotion reports whether the box was produced by a motion adapter
func (b BoundingBox) IsMotion() bool {
	return b.Label == LabelMotion
}

// CalcIoU calculates the Intersection over Union (IoU) with another box
func (b BoundingBox) CalcIoU(other BoundingBox) float32 {

	boxArea := (other.Width + 1) * (other.Height + 1)
	iw := float32(math.Min(float64(b.X+b.Width), float64(other.X+other.Width)) -
		math.Max(float64(b.X), float64(other.X)) + 1)
	iou := float32(0)

	if iw > 0 {
		ih := float32(math.Min(float64(b.Y+b.Height), float64(other.Y+other.Height)) -
			math.Max(float64(b.Y), float64(other.Y)) + 1)

		if ih > 0 {
			ua := (b.Width+1)*(b.Height+1) + boxArea - iw*ih
			iou = iw * ih / ua
		}
	}

	return iou
}

// Union returns the smallest box containing both b and other, keeping the
// higher of the two confidence scores
func (b BoundingBox) Union(other BoundingBox) BoundingBox {

	x1 := float32(math.Min(float64(b.X), float64(other.X)))
	y1 := float32(math.Min(float64(b.Y), float64(other.Y)))
	x2 := float32(math.Max(float64(b.X+b.Width), float64(other.X+other.Width)))
	y2 := float32(math.Max(float64(b.Y+b.Height), float64(other.Y+other.Height)))

	conf := b.Confidence

	if other.Confidence > conf {
		conf = other.Confidence
	}

	return BoundingBox{
		X:          x1,
		Y:          y1,
		Width:      x2 - x1,
		Height:     y2 - y1,
		Confidence: conf,
		Label:      b.Label,
	}
}
