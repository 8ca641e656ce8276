package render

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"gocv.io/x/gocv"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// LoadTTF loads a TTF font file for overlay text that needs glyphs outside
// the builtin Hershey fonts
func LoadTTF(file string, size float64) (font.Face, error) {

	data, err := os.ReadFile(file)

	if err != nil {
		return nil, fmt.Errorf("error reading font file: %w", err)
	}

	fnt, err := opentype.Parse(data)

	if err != nil {
		return nil, fmt.Errorf("error parsing font: %w", err)
	}

	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})

	if err != nil {
		return nil, fmt.Errorf("error creating font face: %w", err)
	}

	return face, nil
}

// TTFLabel draws text at the given position using a loaded TTF font face.
// The text is rasterized to an RGBA overlay and blended onto the frame
func TTFLabel(img *gocv.Mat, text string, pt image.Point, face font.Face,
	clr color.RGBA) error {

	rgba := image.NewRGBA(image.Rect(0, 0, img.Cols(), img.Rows()))

	dr := &font.Drawer{
		Dst:  rgba,
		Src:  image.NewUniform(clr),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.Int26_6(pt.X * 64),
			Y: fixed.Int26_6(pt.Y * 64),
		},
	}
	dr.DrawString(text)

	// convert image.RGBA to gocv.Mat
	overlay, err := gocv.NewMatFromBytes(rgba.Bounds().Dy(),
		rgba.Bounds().Dx(), gocv.MatTypeCV8UC4, rgba.Pix)

	if overlay.Empty() || err != nil {
		return fmt.Errorf("error creating Mat from RGBA")
	}

	defer overlay.Close()

	gocv.CvtColor(overlay, &overlay, gocv.ColorRGBAToBGR)
	gocv.AddWeighted(*img, 1.0, overlay, 1.0, 0, img)

	return nil
}
