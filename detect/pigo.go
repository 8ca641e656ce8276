package detect

import (
	"fmt"
	"os"

	pigo "github.com/esimov/pigo/core"
	smartcrop "github.com/vidflow/go-smartcrop"
	"gocv.io/x/gocv"
)

// pigo cascade parameters
const (
	pigoMinSize     = 20
	pigoMaxSize     = 1000
	pigoShiftFactor = 0.1
	pigoScaleFactor = 1.1
	pigoClusterIoU  = 0.2
)

// pigoDetector is the pure Go fallback face strategy.  It trades accuracy
// for having no native model dependency at all
type pigoDetector struct {
	classifier *pigo.Pigo
	// reusable grayscale conversion Mat
	gray gocv.Mat
}

// newPigoDetector reads and unpacks the binary cascade file
func newPigoDetector(cascadeFile string) (*pigoDetector, error) {

	data, err := os.ReadFile(cascadeFile)

	if err != nil {
		return nil, fmt.Errorf("error reading cascade file: %w", err)
	}

	classifier, err := pigo.NewPigo().Unpack(data)

	if err != nil {
		return nil, fmt.Errorf("error unpacking cascade: %w", err)
	}

	return &pigoDetector{
		classifier: classifier,
		gray:       gocv.NewMat(),
	}, nil
}

// detect runs the cascade over a grayscale copy of the frame.  Pigo reports
// detections as center row/col plus scale which get converted to bounding
// boxes, quality scores are normalized into [0,1]
func (p *pigoDetector) detect(img gocv.Mat,
	threshold float32) ([]smartcrop.BoundingBox, error) {

	gocv.CvtColor(img, &p.gray, gocv.ColorBGRToGray)

	if !p.gray.IsContinuous() {
		cont := p.gray.Clone()
		p.gray.Close()
		p.gray = cont
	}

	pixels, err := p.gray.DataPtrUint8()

	if err != nil {
		return nil, fmt.Errorf("error getting data pointer to Mat: %w", err)
	}

	cParams := pigo.CascadeParams{
		MinSize:     pigoMinSize,
		MaxSize:     pigoMaxSize,
		ShiftFactor: pigoShiftFactor,
		ScaleFactor: pigoScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: pixels,
			Rows:   img.Rows(),
			Cols:   img.Cols(),
			Dim:    img.Cols(),
		},
	}

	dets := p.classifier.RunCascade(cParams, 0.0)
	dets = p.classifier.ClusterDetections(dets, pigoClusterIoU)

	var boxes []smartcrop.BoundingBox

	for _, det := range dets {

		// normalize cascade quality into a [0,1] confidence
		conf := det.Q / 100.0

		if conf > 1.0 {
			conf = 1.0
		}

		if conf < threshold {
			continue
		}

		size := float32(det.Scale)

		boxes = append(boxes, smartcrop.NewBoundingBox(
			float32(det.Col)-size/2,
			float32(det.Row)-size/2,
			size,
			size,
			conf,
			smartcrop.LabelFace,
		))
	}

	return boxes, nil
}

// close releases the working Mat
func (p *pigoDetector) close() error {
	return p.gray.Close()
}
