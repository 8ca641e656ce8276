package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	smartcrop "github.com/vidflow/go-smartcrop"
	"github.com/vidflow/go-smartcrop/detect"
	"gocv.io/x/gocv"
)

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	imgDir := flag.String("d", "../data/stills/", "A directory of images to resolve crop focus on")
	modelFile := flag.String("m", "../data/face_detection_yunet_2023mar.onnx", "YuNet face detection ONNX model file")
	cascadeFile := flag.String("c", "../data/facefinder", "Pigo cascade file used when the YuNet model is unavailable")
	poolSize := flag.Int("s", 3, "Size of the face detector pool")

	flag.Parse()

	// check dir exists
	info, err := os.Stat(*imgDir)

	if err != nil {
		log.Fatalf("No such image directory %s, error: %v\n", *imgDir, err)
	}

	if !info.IsDir() {
		log.Fatal("Image path is not a directory")
	}

	// create a pool of face detectors, the gocv backed detectors are not
	// safe for concurrent use so each worker borrows its own
	pool, err := detect.NewPool(*poolSize, func() (smartcrop.Detector, error) {
		return detect.NewFaceDetector(detect.FaceDetectorParams{
			ModelFile:   *modelFile,
			Fallback:    detect.BackendPigo,
			CascadeFile: *cascadeFile,
		})
	})

	if err != nil {
		log.Fatalf("Error creating detector pool: %v\n", err)
	}

	// get list of all files in the directory
	files, err := os.ReadDir(*imgDir)

	if err != nil {
		log.Fatalf("Error reading image directory: %v\n", err)
	}

	start := time.Now()

	var wg sync.WaitGroup

	// process each image
	for _, file := range files {
		// skip directories
		if file.IsDir() {
			continue
		}

		// pool.Get() blocks if no detectors are available in the pool
		d := pool.Get()
		wg.Add(1)

		go func(d smartcrop.Detector, file os.DirEntry) {
			defer wg.Done()
			processFile(d, filepath.Join(*imgDir, file.Name()))
			pool.Return(d)
		}(d, file)
	}

	wg.Wait()

	log.Printf("Completed in %s\n", time.Since(start).String())

	pool.Close()
}

func processFile(d smartcrop.Detector, file string) {

	// load image
	img := gocv.IMRead(file, gocv.IMReadColor)

	if img.Empty() {
		log.Printf("Error reading image from: %s\n", file)
		return
	}

	defer img.Close()

	start := time.Now()

	boxes, err := d.Detect(img)

	if err != nil {
		log.Printf("Detection failed on %s: %v\n", file, err)
		return
	}

	focus := smartcrop.ResolveFocus(boxes, img.Cols(), img.Rows())

	exe := time.Since(start)

	log.Printf("%dms - File[%s] focus=%s (%.0f,%.0f) conf=%.2f faces=%d\n",
		exe.Milliseconds(), file, focus.Source,
		focus.Point.X, focus.Point.Y, focus.Confidence, len(boxes))
}
