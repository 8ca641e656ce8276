/*
Package detect provides the detection adapters feeding the smartcrop
pipeline.  Every adapter implements the same contract, Detect returns zero
or more bounding boxes for a single frame and an empty result means nothing
was detected rather than an error.

Face detection uses the gocv YuNet DNN detector with explicit fallback
strategies (OpenCV Haar cascade or the pure Go pigo cascade) selected at
initialization.  Object detection runs a YOLOv8 style model through ONNX
Runtime and is entirely optional.  Motion detection is stateful frame
differencing over the previous frames.

Adapters backed by gocv hold native handles that are not safe for
concurrent use, see Pool for sharing them across tracking sessions.
*/
package detect
