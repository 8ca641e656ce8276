package smartcrop

// CropSize returns the largest rectangle of the target aspect ratio that
// fits inside the source frame, either full source width with reduced height
// or full source height with reduced width.  Both dimensions are rounded
// down to the nearest even integer as encoders require even dimensions
func CropSize(aspect AspectRatio, frameWidth, frameHeight int) (int, int) {

	target := aspect.Ratio()
	source := float64(frameWidth) / float64(frameHeight)

	var w, h int

	if source > target {
		// source is wider than the target, use full height
		h = frameHeight
		w = int(float64(frameHeight) * target)
	} else {
		// source is taller than the target, use full width
		w = frameWidth
		h = int(float64(frameWidth) / target)
	}

	// round down to even
	w &^= 1
	h &^= 1

	return w, h
}

// CropAround positions a crop rectangle of the given size centered on the
// focus point and clamps it so it does not extend past any frame edge
func CropAround(focus Point, cropWidth, cropHeight,
	frameWidth, frameHeight int) CropRegion {

	x := int(focus.X) - cropWidth/2
	y := int(focus.Y) - cropHeight/2

	return ClampRegion(CropRegion{
		X:      x,
		Y:      y,
		Width:  cropWidth,
		Height: cropHeight,
	}, frameWidth, frameHeight)
}

// clampFocus restricts the focus point to the central safe zone of the
// frame.  A ratio of 1.0 allows the whole frame, 0.8 keeps the point inside
// the central 80% on both axes
func clampFocus(p Point, ratio float32, frameWidth, frameHeight int) Point {

	if ratio >= 1.0 {
		return p
	}

	marginX := float32(frameWidth) * (1 - ratio) / 2
	marginY := float32(frameHeight) * (1 - ratio) / 2

	if p.X < marginX {
		p.X = marginX
	}

	if p.X > float32(frameWidth)-marginX {
		p.X = float32(frameWidth) - marginX
	}

	if p.Y < marginY {
		p.Y = marginY
	}

	if p.Y > float32(frameHeight)-marginY {
		p.Y = float32(frameHeight) - marginY
	}

	return p
}
