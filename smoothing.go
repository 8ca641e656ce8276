package smartcrop

import (
	"gonum.org/v1/gonum/floats"
)

// Smoother maintains a fixed capacity ring buffer of the most recent raw
// positions and produces an easing weighted mean over the buffer to prevent
// visible jitter.  Weights are computed by evaluating the easing curve at
// evenly spaced points across the buffer, oldest sample near t=0 and newest
// at t=1.
//
// The smoothed output is a pure function of the buffer contents.  A Smoother
// holds per video state and must not be shared across concurrent tracking
// sessions, position and crop size smoothing use separate instances
type Smoother struct {
	// fixed capacity ring buffer of raw samples
	buf []Point
	// head is the next write index
	head int
	// count of samples held, never exceeds len(buf)
	count int
	// easing curve used for weighting
	easing Easing
	// scratch buffers reused between calls
	weights []float64
	xs      []float64
	ys      []float64
}

// NewSmoother creates a smoother with the given window size and easing
// curve.  Window sizes below one are raised to one
func NewSmoother(size int, easing Easing) *Smoother {

	if size < 1 {
		size = 1
	}

	return &Smoother{
		buf:     make([]Point, size),
		easing:  easing,
		weights: make([]float64, 0, size),
		xs:      make([]float64, 0, size),
		ys:      make([]float64, 0, size),
	}
}

// Push appends a raw position to the window, evicting the oldest sample when
// full, and returns the new smoothed position
func (s *Smoother) Push(p Point) Point {

	s.buf[s.head] = p
	s.head = (s.head + 1) % len(s.buf)

	if s.count < len(s.buf) {
		s.count++
	}

	return s.Value()
}

// Value returns the smoothed position over the current buffer contents
// without adding a sample.  Calling Value on an empty smoother returns the
// zero point
func (s *Smoother) Value() Point {

	if s.count == 0 {
		return Point{}
	}

	s.weights = s.weights[:0]
	s.xs = s.xs[:0]
	s.ys = s.ys[:0]

	// walk the ring from oldest to newest sample
	start := s.head - s.count

	if start < 0 {
		start += len(s.buf)
	}

	for i := 0; i < s.count; i++ {
		p := s.buf[(start+i)%len(s.buf)]
		t := float64(i+1) / float64(s.count)

		s.weights = append(s.weights, s.easing.Evaluate(t))
		s.xs = append(s.xs, float64(p.X))
		s.ys = append(s.ys, float64(p.Y))
	}

	total := floats.Sum(s.weights)

	if total == 0 {
		// degenerate curve, fall back to the newest sample
		p := s.buf[(s.head-1+len(s.buf))%len(s.buf)]
		return p
	}

	return Point{
		X: float32(floats.Dot(s.weights, s.xs) / total),
		Y: float32(floats.Dot(s.weights, s.ys) / total),
	}
}

// Len returns the number of samples currently buffered
func (s *Smoother) Len() int {
	return s.count
}

// Cap returns the window size
func (s *Smoother) Cap() int {
	return len(s.buf)
}

// Reset clears all buffered samples
func (s *Smoother) Reset() {
	s.head = 0
	s.count = 0
}
