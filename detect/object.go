package detect

import (
	"fmt"
	"image"
	"sync"

	smartcrop "github.com/vidflow/go-smartcrop"
	ort "github.com/yalue/onnxruntime_go"
	"gocv.io/x/gocv"
)

var (
	ortInitOnce sync.Once
	ortInitErr  error
)

// initONNXRuntime initializes the shared ONNX Runtime environment once per
// process.  The environment is read only after initialization and shared by
// all object detectors
func initONNXRuntime(libraryPath string) error {

	ortInitOnce.Do(func() {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}

		ortInitErr = ort.InitializeEnvironment()
	})

	return ortInitErr
}

// ObjectDetectorParams configures the object adapter
type ObjectDetectorParams struct {
	// ModelFile is the YOLOv8 style ONNX model path
	ModelFile string
	// LabelFile is a text file with one class label per line matching the
	// classes the model was trained on
	LabelFile string
	// LibraryPath optionally points at the onnxruntime shared library
	LibraryPath string
	// InputWidth and InputHeight are the model tensor input size, default
	// 640x640
	InputWidth  int
	InputHeight int
	// InputName and OutputName are the model graph tensor names, defaults
	// "images" and "output0" match ultralytics exports
	InputName  string
	OutputName string
	// BoxThreshold is the minimum detection confidence, default 0.5
	BoxThreshold float32
	// NMSThreshold is the IoU threshold for non-maximum suppression,
	// default 0.4
	NMSThreshold float32
	// AllowClasses restricts results to the named classes, empty allows all
	AllowClasses []string
	// HalfPrecision expects the model output tensor in float16
	HalfPrecision bool
}

// ObjectDetector wraps a general object detector behind the adapter
// contract.  The detector is optional in the pipeline, when no model is
// available the caller simply leaves this detection channel out.
//
// An ObjectDetector is not safe for concurrent use, borrow one per session
// from a Pool instead of sharing a single instance
type ObjectDetector struct {
	params  ObjectDetectorParams
	session *ort.AdvancedSession
	// input tensor in NCHW layout
	inputTensor *ort.Tensor[float32]
	inputData   []float32
	// output tensor, either float32 or raw float16 bytes
	outputTensor *ort.Tensor[float32]
	f16Tensor    *ort.CustomDataTensor
	f16Data      []byte
	labels       []string
	allow        map[string]bool
	// number of anchor positions in the model output
	anchors int
	// reusable resize Mat
	resized gocv.Mat
}

// NewObjectDetector loads the ONNX model and labels file.  A model load
// failure is reported here at initialization, never during per frame
// processing
func NewObjectDetector(params ObjectDetectorParams) (*ObjectDetector, error) {

	if params.InputWidth <= 0 {
		params.InputWidth = 640
	}

	if params.InputHeight <= 0 {
		params.InputHeight = 640
	}

	if params.InputName == "" {
		params.InputName = "images"
	}

	if params.OutputName == "" {
		params.OutputName = "output0"
	}

	if params.BoxThreshold <= 0 {
		params.BoxThreshold = smartcrop.DefaultObjectThreshold
	}

	if params.NMSThreshold <= 0 {
		params.NMSThreshold = smartcrop.DefaultNMSThreshold
	}

	if err := initONNXRuntime(params.LibraryPath); err != nil {
		return nil, fmt.Errorf("error initializing ONNX runtime: %w", err)
	}

	labels, err := LoadLabels(params.LabelFile)

	if err != nil {
		return nil, fmt.Errorf("error loading labels: %w", err)
	}

	d := &ObjectDetector{
		params:  params,
		labels:  labels,
		resized: gocv.NewMat(),
	}

	if len(params.AllowClasses) > 0 {
		d.allow = make(map[string]bool)

		for _, name := range params.AllowClasses {
			d.allow[name] = true
		}
	}

	// anchor positions across the three detection strides
	w, h := params.InputWidth, params.InputHeight
	d.anchors = (w/8)*(h/8) + (w/16)*(h/16) + (w/32)*(h/32)

	inputShape := ort.NewShape(1, 3, int64(params.InputHeight),
		int64(params.InputWidth))
	d.inputData = make([]float32, 3*params.InputHeight*params.InputWidth)

	d.inputTensor, err = ort.NewTensor(inputShape, d.inputData)

	if err != nil {
		return nil, fmt.Errorf("error creating input tensor: %w", err)
	}

	outputShape := ort.NewShape(1, int64(4+len(labels)), int64(d.anchors))

	var outValue ort.Value

	if params.HalfPrecision {
		d.f16Data = make([]byte, (4+len(labels))*d.anchors*2)
		d.f16Tensor, err = ort.NewCustomDataTensor(outputShape, d.f16Data,
			ort.TensorElementDataTypeFloat16)
		outValue = d.f16Tensor
	} else {
		d.outputTensor, err = ort.NewEmptyTensor[float32](outputShape)
		outValue = d.outputTensor
	}

	if err != nil {
		d.inputTensor.Destroy()
		return nil, fmt.Errorf("error creating output tensor: %w", err)
	}

	d.session, err = ort.NewAdvancedSession(
		params.ModelFile,
		[]string{params.InputName},
		[]string{params.OutputName},
		[]ort.Value{d.inputTensor},
		[]ort.Value{outValue},
		nil,
	)

	if err != nil {
		d.inputTensor.Destroy()
		outValue.Destroy()
		return nil, fmt.Errorf("error creating ONNX session: %w", err)
	}

	return d, nil
}

// Detect runs object detection on the frame, applies confidence
// thresholding and an NMS pass, then the class allow list
func (d *ObjectDetector) Detect(img gocv.Mat) ([]smartcrop.BoundingBox, error) {

	if img.Empty() {
		return nil, fmt.Errorf("empty input frame")
	}

	if err := d.preprocess(img); err != nil {
		return nil, err
	}

	if err := d.session.Run(); err != nil {
		return nil, fmt.Errorf("error running inference: %w", err)
	}

	var out []float32

	if d.params.HalfPrecision {
		out = f16BytesToFloat32(d.f16Data)
	} else {
		out = d.outputTensor.GetData()
	}

	scaleX := float32(img.Cols()) / float32(d.params.InputWidth)
	scaleY := float32(img.Rows()) / float32(d.params.InputHeight)

	return d.postprocess(out, scaleX, scaleY), nil
}

// preprocess resizes the frame to the tensor input size and fills the input
// tensor in normalized RGB planar (NCHW) layout
func (d *ObjectDetector) preprocess(img gocv.Mat) error {

	gocv.Resize(img, &d.resized,
		image.Pt(d.params.InputWidth, d.params.InputHeight), 0, 0,
		gocv.InterpolationLinear)

	if !d.resized.IsContinuous() {
		cont := d.resized.Clone()
		d.resized.Close()
		d.resized = cont
	}

	pixels, err := d.resized.DataPtrUint8()

	if err != nil {
		return fmt.Errorf("error getting data pointer to Mat: %w", err)
	}

	w := d.params.InputWidth
	h := d.params.InputHeight
	plane := w * h

	// gocv Mats are BGR interleaved, the model wants RGB planes
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 3

			d.inputData[y*w+x] = float32(pixels[i+2]) / 255.0
			d.inputData[plane+y*w+x] = float32(pixels[i+1]) / 255.0
			d.inputData[2*plane+y*w+x] = float32(pixels[i]) / 255.0
		}
	}

	return nil
}

// postprocess decodes the YOLOv8 output layout of [1, 4+classes, anchors],
// box center and size in the first four rows and per class scores after
func (d *ObjectDetector) postprocess(out []float32,
	scaleX, scaleY float32) []smartcrop.BoundingBox {

	var boxes []smartcrop.BoundingBox
	var scores []float32
	var classIDs []int

	for a := 0; a < d.anchors; a++ {

		bestScore := float32(0)
		bestClass := 0

		for k := 0; k < len(d.labels); k++ {
			if s := out[(4+k)*d.anchors+a]; s > bestScore {
				bestScore = s
				bestClass = k
			}
		}

		if bestScore < d.params.BoxThreshold {
			continue
		}

		cx := out[a]
		cy := out[d.anchors+a]
		bw := out[2*d.anchors+a]
		bh := out[3*d.anchors+a]

		boxes = append(boxes, smartcrop.NewBoundingBox(
			(cx-bw/2)*scaleX,
			(cy-bh/2)*scaleY,
			bw*scaleX,
			bh*scaleY,
			bestScore,
			d.labels[bestClass],
		))
		scores = append(scores, bestScore)
		classIDs = append(classIDs, bestClass)
	}

	keep := nms(boxes, scores, classIDs, d.params.NMSThreshold)

	var results []smartcrop.BoundingBox

	for _, idx := range keep {

		if d.allow != nil && !d.allow[boxes[idx].Label] {
			continue
		}

		results = append(results, boxes[idx])
	}

	return results
}

// Labels returns the class labels loaded for the model
func (d *ObjectDetector) Labels() []string {
	return d.labels
}

// Close releases the session, tensors and working Mats
func (d *ObjectDetector) Close() error {

	if d.session != nil {
		d.session.Destroy()
	}

	if d.inputTensor != nil {
		d.inputTensor.Destroy()
	}

	if d.outputTensor != nil {
		d.outputTensor.Destroy()
	}

	if d.f16Tensor != nil {
		d.f16Tensor.Destroy()
	}

	return d.resized.Close()
}
