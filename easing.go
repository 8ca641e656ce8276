package smartcrop

// Easing identifies the weighting curve used by the temporal smoothing
// filter.  The curve is evaluated at evenly spaced points across the
// smoothing window so more recent samples carry more weight under the
// default ease-in-out curve
type Easing int

const (
	// EaseLinear weights samples proportional to their age
	EaseLinear Easing = iota
	// EaseIn is a cubic curve starting slow
	EaseIn
	// EaseOut is a cubic curve ending slow
	EaseOut
	// EaseInOut is a cubic curve slow at both ends
	EaseInOut
	// EaseSmoothstep is the classic 3t^2-2t^3 hermite curve
	EaseSmoothstep
)

// Evaluate returns the curve value for t in the range [0,1].  Input is
// clamped to that range
func (e Easing) Evaluate(t float64) float64 {

	if t < 0 {
		t = 0
	}

	if t > 1 {
		t = 1
	}

	switch e {
	case EaseIn:
		return t * t * t

	case EaseOut:
		u := 1 - t
		return 1 - u*u*u

	case EaseInOut:
		if t < 0.5 {
			return 4 * t * t * t
		}
		u := -2*t + 2
		return 1 - (u*u*u)/2

	case EaseSmoothstep:
		return t * t * (3 - 2*t)

	case EaseLinear:
		fallthrough
	default:
		return t
	}
}

// String returns the curve name
func (e Easing) String() string {
	switch e {
	case EaseIn:
		return "ease-in"
	case EaseOut:
		return "ease-out"
	case EaseInOut:
		return "ease-in-out"
	case EaseSmoothstep:
		return "smoothstep"
	case EaseLinear:
		fallthrough
	default:
		return "linear"
	}
}
