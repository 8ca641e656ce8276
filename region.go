package smartcrop

// CropRegion is the chosen crop window for a single frame.  The ordered
// sequence of regions accumulated by the tracker is the pipeline output
// handed to the export package
type CropRegion struct {
	// X is the top left x coordinate of the crop window
	X int
	// Y is the top left y coordinate of the crop window
	Y int
	// Width of the crop window
	Width int
	// Height of the crop window
	Height int
	// FrameNumber is the source frame index the region was produced for
	FrameNumber int
	// Confidence carried through from the contributing detection
	Confidence float32
}

// Center returns the center point of the crop region
func (r CropRegion) Center() Point {
	return Point{
		X: float32(r.X) + float32(r.Width)/2,
		Y: float32(r.Y) + float32(r.Height)/2,
	}
}

// ClampRegion restricts the crop region to lie fully within the frame
// bounds.  The function is pure and idempotent, clamping an already clamped
// region returns the same region
func ClampRegion(r CropRegion, frameWidth, frameHeight int) CropRegion {

	// a crop can never exceed the frame itself
	if r.Width > frameWidth {
		r.Width = frameWidth
	}

	if r.Height > frameHeight {
		r.Height = frameHeight
	}

	if r.X < 0 {
		r.X = 0
	}

	if r.Y < 0 {
		r.Y = 0
	}

	if r.X+r.Width > frameWidth {
		r.X = frameWidth - r.Width
	}

	if r.Y+r.Height > frameHeight {
		r.Y = frameHeight - r.Height
	}

	return r
}
