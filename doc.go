/*
go-smartcrop converts arbitrary aspect source video into a target aspect
ratio while keeping a moving subject (face, object or motion region)
centered in the crop window.

The core pipeline is consumed frame by frame.  An external decoder supplies
frames, the tracker runs the detection adapters, resolves a single focus
point per frame, computes a crop rectangle of the target aspect ratio,
smooths it against recent history and clamps it to the frame bounds.  The
accumulated crop region sequence is handed to the export package which
produces a keyframe table or FFmpeg crop filter expression driving the
downstream encoder.

The pipeline never performs pixel manipulation or file I/O itself, the
detection adapters in the detect subdirectory wrap the actual model
backends.

See example code and usage in the example directory.
*/
package smartcrop
