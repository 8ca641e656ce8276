// Package render draws tracking previews, the crop window, focus point and
// raw detection boxes get painted onto a frame for visual QA of a crop
// path before rendering
package render

import (
	"fmt"
	"image"

	smartcrop "github.com/vidflow/go-smartcrop"
	"gocv.io/x/gocv"
)

// focusMarkRadius is the circle radius marking the focus point
const focusMarkRadius = 6

// CropOverlay draws the finalized crop window and resolved focus point on
// the frame.  The crop rectangle is labelled with its dimensions and the
// confidence carried through from detection
func CropOverlay(img *gocv.Mat, region smartcrop.CropRegion,
	focus smartcrop.Focus, font Font, lineThickness int) {

	rect := image.Rect(region.X, region.Y,
		region.X+region.Width, region.Y+region.Height)
	gocv.Rectangle(img, rect, cropColor, lineThickness)

	center := image.Pt(int(focus.Point.X), int(focus.Point.Y))
	gocv.Circle(img, center, focusMarkRadius, focusColor, -1)

	text := fmt.Sprintf("%dx%d %s %.2f", region.Width, region.Height,
		focus.Source, region.Confidence)

	drawLabel(img, text, image.Pt(region.X, region.Y), font, lineThickness)
}

// DetectionBoxes renders the raw adapter detections feeding the focus
// resolver, one color per box
func DetectionBoxes(img *gocv.Mat, boxes []smartcrop.BoundingBox,
	font Font, lineThickness int) {

	for i, box := range boxes {

		useClr := detectionColors[i%len(detectionColors)]

		rect := image.Rect(int(box.X), int(box.Y),
			int(box.X+box.Width), int(box.Y+box.Height))
		gocv.Rectangle(img, rect, useClr, lineThickness)

		text := fmt.Sprintf("%s %.2f", box.Label, box.Confidence)
		drawLabel(img, text, rect.Min, font, lineThickness)
	}
}

// drawLabel writes a text label on a filled background box anchored above
// the given top left point
func drawLabel(img *gocv.Mat, text string, anchor image.Point, font Font,
	lineThickness int) {

	textSize := gocv.GetTextSize(text, font.Face, font.Scale, font.Thickness)

	centerX := anchor.X + (textSize.X / 2) + font.LeftPad - (lineThickness / 2)

	textPos := image.Pt(centerX-textSize.X/2, anchor.Y-font.BottomPad)

	// box the text gets written on
	bRect := image.Rect(centerX-textSize.X/2-font.LeftPad,
		anchor.Y-textSize.Y-font.TopPad-font.BottomPad,
		centerX+textSize.X/2+font.RightPad, anchor.Y)

	gocv.Rectangle(img, bRect, cropColor, -1)

	gocv.PutTextWithParams(img, text, textPos,
		font.Face, font.Scale, font.Color, font.Thickness,
		font.LineType, false)
}
