package render

import (
	"context"
	"math"
	"strconv"

	"github.com/verleihernix/math-visualizer/pkg/domain"
	"github.com/verleihernix/math-visualizer/pkg/session"
	"github.com/verleihernix/math-visualizer/pkg/view"
)

// Scene colors.
var (
	Background = domain.Color{R: 0x11, G: 0x14, B: 0x1b}
	AxisColor  = domain.Color{R: 0xd0, G: 0xd4, B: 0xdc}
	GridColor  = domain.Color{R: 0x2a, G: 0x30, B: 0x3c}
)

// tickSpacingPx is the target distance between grid lines.
const tickSpacingPx = 80

// maxTicks bounds grid work for a single axis.
const maxTicks = 256

// Segment is a straight line in screen space.
type Segment struct {
	A, B view.Point
}

// Tick is a grid line position on one axis.
type Tick struct {
	Pos   float32 // screen coordinate along the axis
	Value float64 // world coordinate
	Label string
}

// Polyline is the drawable geometry of one plotted function.
type Polyline struct {
	ID    int
	Label string
	Color domain.Color
	Runs  [][]view.Point
}

// Scene is everything a backend needs to draw one frame.
type Scene struct {
	Width, Height float32

	// XAxis and YAxis are nil when the axis lies outside the viewport.
	XAxis, YAxis *Segment
	// LabelX and LabelY are where tick labels go: on the axis, or at the
	// nearest edge when the axis is off screen.
	LabelX, LabelY float32

	XTicks, YTicks []Tick
	Curves         []Polyline
}

// BuildScene maps the axes and grid through v and copies the sampled runs
// of every entry, clamping coordinates to a guard band around the viewport.
func BuildScene(v view.Transform, entries []session.Entry) Scene {
	s := Scene{Width: v.Width, Height: v.Height}

	origin := v.WorldToScreen(view.Point{})
	if origin.Y >= 0 && origin.Y <= v.Height {
		s.XAxis = &Segment{A: view.Point{X: 0, Y: origin.Y}, B: view.Point{X: v.Width, Y: origin.Y}}
	}
	if origin.X >= 0 && origin.X <= v.Width {
		s.YAxis = &Segment{A: view.Point{X: origin.X, Y: 0}, B: view.Point{X: origin.X, Y: v.Height}}
	}
	s.LabelX = clamp(origin.X, 0, v.Width)
	s.LabelY = clamp(origin.Y, 0, v.Height)

	lo, hi := v.VisibleBounds()
	spacing := NiceStep(tickSpacingPx / float64(v.Scale))
	for _, w := range ticks(float64(lo.X), float64(hi.X), spacing) {
		p := v.WorldToScreen(view.Point{X: float32(w)})
		s.XTicks = append(s.XTicks, Tick{Pos: p.X, Value: w, Label: formatTick(w)})
	}
	for _, w := range ticks(float64(lo.Y), float64(hi.Y), spacing) {
		p := v.WorldToScreen(view.Point{Y: float32(w)})
		s.YTicks = append(s.YTicks, Tick{Pos: p.Y, Value: w, Label: formatTick(w)})
	}

	guard := max(v.Width, v.Height)
	for _, e := range entries {
		pl := Polyline{ID: e.ID, Label: e.Source, Color: e.Color}
		for _, run := range e.Runs {
			out := make([]view.Point, len(run))
			for i, p := range run {
				out[i] = view.Point{
					X: clamp(p.X, -guard, v.Width+guard),
					Y: clamp(p.Y, -guard, v.Height+guard),
				}
			}
			pl.Runs = append(pl.Runs, out)
		}
		s.Curves = append(s.Curves, pl)
	}
	return s
}

// FromSession resamples sess if needed and builds its scene.
func FromSession(ctx context.Context, sess *session.Session) Scene {
	sess.Resample(ctx)
	var s Scene
	sess.Read(func(v view.Transform, entries []session.Entry) {
		s = BuildScene(v, entries)
	})
	return s
}

// NiceStep rounds raw up to 1, 2 or 5 times a power of ten.
func NiceStep(raw float64) float64 {
	if !(raw > 0) || math.IsInf(raw, 0) {
		return 1
	}
	exp := math.Pow(10, math.Floor(math.Log10(raw)))
	switch f := raw / exp; {
	case f <= 1:
		return exp
	case f <= 2:
		return 2 * exp
	case f <= 5:
		return 5 * exp
	}
	return 10 * exp
}

func ticks(lo, hi, step float64) []float64 {
	if !(hi > lo) || !(step > 0) {
		return nil
	}
	first := math.Ceil(lo/step) * step
	var out []float64
	for i := 0; i < maxTicks; i++ {
		w := first + float64(i)*step
		if w > hi {
			break
		}
		if math.Abs(w) < step*1e-9 {
			w = 0
		}
		out = append(out, w)
	}
	return out
}

func formatTick(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}

func clamp(v, lo, hi float32) float32 {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}
