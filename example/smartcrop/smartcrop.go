package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	smartcrop "github.com/vidflow/go-smartcrop"
	"github.com/vidflow/go-smartcrop/detect"
	"github.com/vidflow/go-smartcrop/export"
	"github.com/vidflow/go-smartcrop/render"
	"gocv.io/x/gocv"
)

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	videoFile := flag.String("i", "../data/interview.mp4", "Video file to track a crop path on")
	saveFile := flag.String("o", "../data/interview-preview.mp4", "The output preview video with crop window markers")
	aspectStr := flag.String("a", "9:16", "Target aspect ratio [16:9|9:16|1:1|4:5|21:9]")
	modelFile := flag.String("m", "../data/face_detection_yunet_2023mar.onnx", "YuNet face detection ONNX model file")
	cascadeFile := flag.String("c", "../data/facefinder", "Pigo cascade file used when the YuNet model is unavailable")
	zoom := flag.Bool("z", false, "Zoom the crop onto the subject instead of using the largest fitting crop")

	flag.Parse()

	aspect, err := smartcrop.ParseAspectRatio(*aspectStr)

	if err != nil {
		log.Fatal("Error parsing aspect ratio: ", err)
	}

	// open source video
	video, err := gocv.VideoCaptureFile(*videoFile)

	if err != nil {
		log.Fatal("Error opening video file: ", err)
	}

	defer video.Close()

	frameW := int(video.Get(gocv.VideoCaptureFrameWidth))
	frameH := int(video.Get(gocv.VideoCaptureFrameHeight))
	fps := video.Get(gocv.VideoCaptureFPS)

	log.Printf("Source video %dx%d @ %.2f fps\n", frameW, frameH, fps)

	// create detection adapters, the face detector falls back to the pure Go
	// pigo cascade when no YuNet model file is present
	face, err := detect.NewFaceDetector(detect.FaceDetectorParams{
		ModelFile:   *modelFile,
		Fallback:    detect.BackendPigo,
		CascadeFile: *cascadeFile,
	})

	if err != nil {
		log.Fatal("Error creating face detector: ", err)
	}

	defer face.Close()

	motion := detect.NewMotionDetector(detect.MotionDetectorParams{})
	defer motion.Close()

	cfg := smartcrop.DefaultConfig()
	cfg.Aspect = aspect
	cfg.ZoomToSubject = *zoom

	tracker, err := smartcrop.NewTracker(cfg, frameW, frameH, face, motion)

	if err != nil {
		log.Fatal("Error creating tracker: ", err)
	}

	writer, err := gocv.VideoWriterFile(*saveFile, "mp4v", fps,
		frameW, frameH, true)

	if err != nil {
		log.Fatal("Error creating preview writer: ", err)
	}

	defer writer.Close()

	img := gocv.NewMat()
	defer img.Close()

	start := time.Now()
	frameNum := 0

	for {
		if ok := video.Read(&img); !ok || img.Empty() {
			break
		}

		// sample detection every Nth frame to bound compute cost, skipped
		// frames reuse the last known geometry through smoothing
		opts := smartcrop.FrameOptions{
			SkipDetection: frameNum%cfg.DetectInterval != 0,
		}

		region, err := tracker.ProcessFrame(img, frameNum, opts)

		if err != nil {
			log.Fatal("Error processing frame: ", err)
		}

		// draw the crop window and focus point for visual QA
		render.CropOverlay(&img, region, tracker.State().LastFocus,
			render.DefaultFont(), 2)

		if err := writer.Write(img); err != nil {
			log.Fatal("Error writing preview frame: ", err)
		}

		frameNum++
	}

	log.Printf("Processed %d frames in %s, detector errors=%d\n",
		frameNum, time.Since(start).String(), tracker.DetectorErrors())

	// build the exportable crop path and print the ffmpeg filter expression
	path := export.NewCropPath(tracker.Regions(), fps, aspect, frameW, frameH)

	static := path.Static()

	log.Printf("Keyframes: %d\n", len(path.Keyframes()))
	log.Printf("Static crop: %d:%d:%d:%d\n",
		static.Width, static.Height, static.X, static.Y)

	fmt.Println(path.FilterExpr())

	log.Printf("Saved tracking preview to %s\n", *saveFile)
}
