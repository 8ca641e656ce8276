package detect

import (
	"fmt"
	"image"
	"os"

	smartcrop "github.com/vidflow/go-smartcrop"
	"gocv.io/x/gocv"
)

// FaceBackend selects the face detection strategy
type FaceBackend int

const (
	// BackendYuNet is the gocv YuNet DNN face detector
	BackendYuNet FaceBackend = iota
	// BackendHaar is the legacy OpenCV Haar cascade classifier
	BackendHaar
	// BackendPigo is the pure Go pigo cascade, usable without model files
	BackendPigo
)

// String returns the backend name
func (b FaceBackend) String() string {
	switch b {
	case BackendHaar:
		return "haar"
	case BackendPigo:
		return "pigo"
	default:
		return "yunet"
	}
}

// haarConfidence is assigned to Haar cascade hits as the classifier reports
// no score of its own
const haarConfidence = 0.6

// FaceDetectorParams configures the face adapter
type FaceDetectorParams struct {
	// ModelFile is the YuNet ONNX model path
	ModelFile string
	// Fallback is the strategy used when the YuNet model fails to load
	Fallback FaceBackend
	// CascadeFile is the Haar cascade XML or pigo binary cascade path used
	// by the fallback strategy
	CascadeFile string
	// Threshold is the minimum detection confidence, boxes below it are
	// dropped.  Defaults to 0.5
	Threshold float32
}

// FaceDetector wraps a pretrained face detector behind the adapter
// contract.  The primary backend is YuNet, when its model is unavailable at
// initialization the configured fallback answers transparently through the
// same interface.
//
// A FaceDetector is not safe for concurrent use, borrow one per session
// from a Pool instead of sharing a single instance
type FaceDetector struct {
	backend   FaceBackend
	threshold float32
	yunet     gocv.FaceDetectorYN
	cascade   gocv.CascadeClassifier
	pigo      *pigoDetector
	// input size last configured on the YuNet detector
	inputW int
	inputH int
}

// NewFaceDetector loads the face detection model.  When the YuNet model
// file is missing or unreadable the fallback strategy named in the params
// is initialized instead, a load failure of both is returned as an error
func NewFaceDetector(params FaceDetectorParams) (*FaceDetector, error) {

	if params.Threshold <= 0 {
		params.Threshold = smartcrop.DefaultFaceThreshold
	}

	f := &FaceDetector{
		threshold: params.Threshold,
	}

	if _, err := os.Stat(params.ModelFile); err == nil {
		f.backend = BackendYuNet
		f.yunet = gocv.NewFaceDetectorYN(params.ModelFile, "", image.Pt(320, 320))
		f.inputW = 320
		f.inputH = 320
		return f, nil
	}

	// primary model unavailable, use the configured fallback
	switch params.Fallback {

	case BackendHaar:
		f.backend = BackendHaar
		f.cascade = gocv.NewCascadeClassifier()

		if !f.cascade.Load(params.CascadeFile) {
			f.cascade.Close()
			return nil, fmt.Errorf("error loading haar cascade %s",
				params.CascadeFile)
		}

	case BackendPigo:
		f.backend = BackendPigo

		p, err := newPigoDetector(params.CascadeFile)

		if err != nil {
			return nil, fmt.Errorf("error loading pigo cascade: %w", err)
		}

		f.pigo = p

	default:
		return nil, fmt.Errorf("face model %s unavailable and no fallback configured",
			params.ModelFile)
	}

	return f, nil
}

// Backend returns the strategy that answered initialization
func (f *FaceDetector) Backend() FaceBackend {
	return f.backend
}

// Detect returns the faces found in the frame with confidence at or above
// the configured threshold.  No faces is an empty result, not an error
func (f *FaceDetector) Detect(img gocv.Mat) ([]smartcrop.BoundingBox, error) {

	if img.Empty() {
		return nil, fmt.Errorf("empty input frame")
	}

	switch f.backend {
	case BackendHaar:
		return f.detectHaar(img), nil

	case BackendPigo:
		return f.pigo.detect(img, f.threshold)

	default:
		return f.detectYuNet(img)
	}
}

// detectYuNet runs the DNN detector.  YuNet reports one face per row of the
// output Mat with the box in the first four columns and the score in the
// last
func (f *FaceDetector) detectYuNet(img gocv.Mat) ([]smartcrop.BoundingBox, error) {

	if img.Cols() != f.inputW || img.Rows() != f.inputH {
		f.yunet.SetInputSize(image.Pt(img.Cols(), img.Rows()))
		f.inputW = img.Cols()
		f.inputH = img.Rows()
	}

	faces := gocv.NewMat()
	defer faces.Close()

	f.yunet.Detect(img, &faces)

	var boxes []smartcrop.BoundingBox

	for row := 0; row < faces.Rows(); row++ {

		score := faces.GetFloatAt(row, 14)

		if score < f.threshold {
			continue
		}

		boxes = append(boxes, smartcrop.NewBoundingBox(
			faces.GetFloatAt(row, 0),
			faces.GetFloatAt(row, 1),
			faces.GetFloatAt(row, 2),
			faces.GetFloatAt(row, 3),
			score,
			smartcrop.LabelFace,
		))
	}

	return boxes, nil
}

// detectHaar runs the legacy cascade classifier fallback
func (f *FaceDetector) detectHaar(img gocv.Mat) []smartcrop.BoundingBox {

	var boxes []smartcrop.BoundingBox

	for _, rect := range f.cascade.DetectMultiScale(img) {

		if haarConfidence < f.threshold {
			break
		}

		boxes = append(boxes, smartcrop.NewBoundingBox(
			float32(rect.Min.X),
			float32(rect.Min.Y),
			float32(rect.Dx()),
			float32(rect.Dy()),
			haarConfidence,
			smartcrop.LabelFace,
		))
	}

	return boxes
}

// Close releases the native detector resources
func (f *FaceDetector) Close() error {

	switch f.backend {
	case BackendHaar:
		return f.cascade.Close()

	case BackendPigo:
		return f.pigo.close()

	default:
		f.yunet.Close()
	}

	return nil
}
