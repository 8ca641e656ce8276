package smartcrop

import (
	"fmt"
)

// AspectRatio is a target output aspect ratio preset
type AspectRatio int

const (
	// Ratio16x9 is standard landscape video
	Ratio16x9 AspectRatio = iota
	// Ratio9x16 is vertical video used for shorts/reels
	Ratio9x16
	// Ratio1x1 is square video
	Ratio1x1
	// Ratio4x5 is portrait video used in social feeds
	Ratio4x5
	// Ratio21x9 is cinematic widescreen
	Ratio21x9
)

// Ratio returns the width to height ratio as a float
func (a AspectRatio) Ratio() float64 {
	switch a {
	case Ratio9x16:
		return 9.0 / 16.0
	case Ratio1x1:
		return 1.0
	case Ratio4x5:
		return 4.0 / 5.0
	case Ratio21x9:
		return 21.0 / 9.0
	case Ratio16x9:
		fallthrough
	default:
		return 16.0 / 9.0
	}
}

// String returns the preset in "W:H" notation
func (a AspectRatio) String() string {
	switch a {
	case Ratio9x16:
		return "9:16"
	case Ratio1x1:
		return "1:1"
	case Ratio4x5:
		return "4:5"
	case Ratio21x9:
		return "21:9"
	case Ratio16x9:
		fallthrough
	default:
		return "16:9"
	}
}

// ParseAspectRatio converts a "W:H" string into an AspectRatio preset
func ParseAspectRatio(s string) (AspectRatio, error) {
	switch s {
	case "16:9":
		return Ratio16x9, nil
	case "9:16":
		return Ratio9x16, nil
	case "1:1":
		return Ratio1x1, nil
	case "4:5":
		return Ratio4x5, nil
	case "21:9":
		return Ratio21x9, nil
	}

	return Ratio16x9, fmt.Errorf("unknown aspect ratio %q", s)
}
