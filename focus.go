package smartcrop

import (
	"gonum.org/v1/gonum/stat"
)

// FocusSource identifies which resolver rule produced the focus point
type FocusSource int

const (
	// FocusFace means one or more face boxes were used
	FocusFace FocusSource = iota
	// FocusObject means the largest object box was used
	FocusObject
	// FocusMotion means the motion box was used
	FocusMotion
	// FocusFrameCenter is the fallback when nothing was detected
	FocusFrameCenter
)

// String returns the rule name
func (f FocusSource) String() string {
	switch f {
	case FocusFace:
		return "face"
	case FocusObject:
		return "object"
	case FocusMotion:
		return "motion"
	default:
		return "frame-center"
	}
}

// Focus is the resolved point of interest for a single frame
type Focus struct {
	// Point the crop window gets centered on
	Point Point
	// Confidence carried through from the contributing detections
	Confidence float32
	// Source is the resolver rule that produced the point
	Source FocusSource
}

// ResolveFocus collapses all boxes detected in one frame into a single focus
// point using a priority cascade, first matching rule wins:
//
//  1. face boxes, using the centroid when there are multiple so the crop
//     stays centered between speakers instead of jumping
//  2. largest non face object box
//  3. motion box
//  4. geometric frame center so the pipeline never fails to produce a crop
func ResolveFocus(boxes []BoundingBox, frameWidth, frameHeight int) Focus {

	var faces, objects []BoundingBox
	var motion *BoundingBox

	for i, box := range boxes {
		switch {
		case box.IsFace():
			faces = append(faces, box)
		case box.IsMotion():
			if motion == nil || box.Confidence > motion.Confidence {
				motion = &boxes[i]
			}
		default:
			objects = append(objects, box)
		}
	}

	if len(faces) > 0 {
		return faceFocus(faces)
	}

	if len(objects) > 0 {

		largest := objects[0]

		for _, box := range objects[1:] {
			if box.Area() > largest.Area() {
				largest = box
			}
		}

		return Focus{
			Point:      largest.Center(),
			Confidence: largest.Confidence,
			Source:     FocusObject,
		}
	}

	if motion != nil {
		return Focus{
			Point:      motion.Center(),
			Confidence: motion.Confidence,
			Source:     FocusMotion,
		}
	}

	return Focus{
		Point: Point{
			X: float32(frameWidth) / 2,
			Y: float32(frameHeight) / 2,
		},
		Confidence: 0,
		Source:     FocusFrameCenter,
	}
}

// faceFocus returns the center of a single face or the centroid over all
// face box centers
func faceFocus(faces []BoundingBox) Focus {

	if len(faces) == 1 {
		return Focus{
			Point:      faces[0].Center(),
			Confidence: faces[0].Confidence,
			Source:     FocusFace,
		}
	}

	xs := make([]float64, len(faces))
	ys := make([]float64, len(faces))
	confs := make([]float64, len(faces))

	for i, face := range faces {
		c := face.Center()
		xs[i] = float64(c.X)
		ys[i] = float64(c.Y)
		confs[i] = float64(face.Confidence)
	}

	return Focus{
		Point: Point{
			X: float32(stat.Mean(xs, nil)),
			Y: float32(stat.Mean(ys, nil)),
		},
		Confidence: float32(stat.Mean(confs, nil)),
		Source:     FocusFace,
	}
}

// SubjectExtent returns the union box of the detections that drove the given
// focus source, used for subject zoom framing.  Returns false when the
// source has no contributing boxes
func SubjectExtent(boxes []BoundingBox, source FocusSource) (BoundingBox, bool) {

	var match func(BoundingBox) bool

	switch source {
	case FocusFace:
		match = BoundingBox.IsFace
	case FocusMotion:
		match = BoundingBox.IsMotion
	case FocusObject:
		match = func(b BoundingBox) bool {
			return !b.IsFace() && !b.IsMotion()
		}
	default:
		return BoundingBox{}, false
	}

	var extent BoundingBox
	found := false

	for _, box := range boxes {

		if !match(box) {
			continue
		}

		if !found {
			extent = box
			found = true
			continue
		}

		extent = extent.Union(box)
	}

	return extent, found
}
