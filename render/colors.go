package render

import "image/color"

var (
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}

	// cropColor outlines the crop window
	cropColor = color.RGBA{R: 72, G: 249, B: 10, A: 255} // #48F90A

	// focusColor marks the resolved focus point
	focusColor = color.RGBA{R: 255, G: 56, B: 56, A: 255} // #FF3838

	// detectionColors paint the raw detection boxes
	detectionColors = []color.RGBA{
		{R: 0, G: 194, B: 255, A: 255},  // #00C2FF
		{R: 255, G: 178, B: 29, A: 255}, // #FFB21D
		{R: 132, G: 56, B: 255, A: 255}, // #8438FF
		{R: 0, G: 212, B: 187, A: 255},  // #00D4BB
		{R: 255, G: 55, B: 199, A: 255}, // #FF37C7
		{R: 146, G: 204, B: 23, A: 255}, // #92CC17
	}
)
