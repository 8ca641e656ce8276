/*
Package export converts a tracked crop region sequence into artifacts for
the downstream filter graph builder.  The primary form is a piecewise
linear keyframe table parameterized by frame time, an FFmpeg crop filter
expression and an averaged static crop are derived from it.
*/
package export

import (
	"fmt"
	"math"
	"sort"
	"strings"

	smartcrop "github.com/vidflow/go-smartcrop"
	"gonum.org/v1/gonum/stat"
)

// decimateTolerance is the pixel deviation below which intermediate
// keyframes on a straight path are dropped
const decimateTolerance = 0.5

// Keyframe pins the crop window position at a point in time
type Keyframe struct {
	// Time in seconds from the start of the video
	Time float64
	// X is the crop window top left x position
	X float64
	// Y is the crop window top left y position
	Y float64
}

// CropPath is the time varying crop window built from a tracked region
// sequence.  Positions between keyframes are linearly interpolated
type CropPath struct {
	// Width of the crop window
	Width int
	// Height of the crop window
	Height int
	keyframes []Keyframe
}

// NewCropPath builds a crop path from the ordered region sequence produced
// by a tracker.  Redundant keyframes on straight path segments are dropped.
//
// Zero regions degrade to a single keyframe holding a centered static crop
// of the target aspect within the frame, never an error
func NewCropPath(regions []smartcrop.CropRegion, frameRate float64,
	aspect smartcrop.AspectRatio, frameWidth, frameHeight int) *CropPath {

	if frameRate <= 0 {
		frameRate = 30
	}

	if len(regions) == 0 {
		w, h := smartcrop.CropSize(aspect, frameWidth, frameHeight)

		return &CropPath{
			Width:  w,
			Height: h,
			keyframes: []Keyframe{{
				Time: 0,
				X:    float64(frameWidth-w) / 2,
				Y:    float64(frameHeight-h) / 2,
			}},
		}
	}

	kfs := make([]Keyframe, len(regions))

	for i, r := range regions {
		kfs[i] = Keyframe{
			Time: float64(r.FrameNumber) / frameRate,
			X:    float64(r.X),
			Y:    float64(r.Y),
		}
	}

	sort.Slice(kfs, func(i, j int) bool {
		return kfs[i].Time < kfs[j].Time
	})

	return &CropPath{
		Width:     regions[len(regions)-1].Width,
		Height:    regions[len(regions)-1].Height,
		keyframes: decimate(kfs, decimateTolerance),
	}
}

// decimate drops keyframes whose position lies within tol pixels of the
// straight line between the last kept keyframe and the following one, so
// long static or linear pans collapse to their endpoints
func decimate(kfs []Keyframe, tol float64) []Keyframe {

	if len(kfs) <= 2 {
		return kfs
	}

	kept := []Keyframe{kfs[0]}

	for i := 1; i < len(kfs)-1; i++ {

		last := kept[len(kept)-1]
		next := kfs[i+1]

		// interpolate between neighbours at this keyframe's time
		span := next.Time - last.Time

		if span <= 0 {
			continue
		}

		f := (kfs[i].Time - last.Time) / span
		ix := last.X + (next.X-last.X)*f
		iy := last.Y + (next.Y-last.Y)*f

		if math.Abs(ix-kfs[i].X) > tol || math.Abs(iy-kfs[i].Y) > tol {
			kept = append(kept, kfs[i])
		}
	}

	return append(kept, kfs[len(kfs)-1])
}

// Keyframes returns a copy of the keyframe table
func (p *CropPath) Keyframes() []Keyframe {
	out := make([]Keyframe, len(p.keyframes))
	copy(out, p.keyframes)
	return out
}

// At returns the crop window position at time t in seconds, linearly
// interpolated between the surrounding keyframes.  Times outside the table
// clamp to the first or last keyframe
func (p *CropPath) At(t float64) (float64, float64) {

	kfs := p.keyframes

	if t <= kfs[0].Time {
		return kfs[0].X, kfs[0].Y
	}

	if t >= kfs[len(kfs)-1].Time {
		last := kfs[len(kfs)-1]
		return last.X, last.Y
	}

	// binary search for the first keyframe after t
	i := sort.Search(len(kfs), func(i int) bool {
		return kfs[i].Time > t
	})

	a := kfs[i-1]
	b := kfs[i]
	f := (t - a.Time) / (b.Time - a.Time)

	return a.X + (b.X-a.X)*f, a.Y + (b.Y-a.Y)*f
}

// Static collapses the path into a single averaged crop region for simple
// mode rendering
func (p *CropPath) Static() smartcrop.CropRegion {

	xs := make([]float64, len(p.keyframes))
	ys := make([]float64, len(p.keyframes))

	for i, kf := range p.keyframes {
		xs[i] = kf.X
		ys[i] = kf.Y
	}

	return smartcrop.CropRegion{
		X:      int(stat.Mean(xs, nil)),
		Y:      int(stat.Mean(ys, nil)),
		Width:  p.Width,
		Height: p.Height,
	}
}

// FilterExpr returns an FFmpeg crop filter string whose x and y positions
// follow the keyframe table, linearly interpolating between keyframes.
// Single keyframe paths produce a constant crop
func (p *CropPath) FilterExpr() string {

	if len(p.keyframes) == 1 {
		kf := p.keyframes[0]
		return fmt.Sprintf("crop=%d:%d:%d:%d",
			p.Width, p.Height, int(kf.X), int(kf.Y))
	}

	xExpr := p.axisExpr(func(kf Keyframe) float64 { return kf.X })
	yExpr := p.axisExpr(func(kf Keyframe) float64 { return kf.Y })

	return fmt.Sprintf("crop=%d:%d:x='%s':y='%s'", p.Width, p.Height,
		xExpr, yExpr)
}

// axisExpr builds the piecewise linear expression for one axis as a sum of
// between() terms, one per keyframe interval, plus hold terms before the
// first keyframe and after the last so the expression clamps like At does
func (p *CropPath) axisExpr(value func(Keyframe) float64) string {

	var parts []string

	if first := p.keyframes[0]; first.Time > 0 {
		parts = append(parts, fmt.Sprintf("lt(t,%.4f)*%.2f",
			first.Time, value(first)))
	}

	for i := 0; i < len(p.keyframes)-1; i++ {

		a := p.keyframes[i]
		b := p.keyframes[i+1]
		span := b.Time - a.Time

		if span <= 0 {
			continue
		}

		// value = a + (t - ta) * (b - a) / span over [ta, tb)
		parts = append(parts, fmt.Sprintf(
			"between(t,%.4f,%.4f)*(%.2f+(t-%.4f)*(%.2f-%.2f)/%.4f)",
			a.Time, b.Time-0.0001, value(a), a.Time, value(b), value(a),
			span))
	}

	last := p.keyframes[len(p.keyframes)-1]
	parts = append(parts, fmt.Sprintf("gte(t,%.4f)*%.2f",
		last.Time, value(last)))

	return strings.Join(parts, "+")
}
