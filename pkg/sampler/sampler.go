// Package sampler turns a function of one variable and a view into drawable
// screen-space geometry.
package sampler

import (
	"math"

	"github.com/verleihernix/math-visualizer/pkg/view"
)

// Function is anything that maps x to y. *expr.Evaluator satisfies it.
type Function interface {
	Evaluate(x float32) float32
}

// FuncOf adapts a plain function to the Function interface.
type FuncOf func(x float32) float32

// Evaluate calls f(x).
func (f FuncOf) Evaluate(x float32) float32 { return f(x) }

// Sample walks the visible x-range of v from left to right in increments of
// step and returns the screen positions of every finite sample, in order.
// It returns nil when step is not a positive finite number.
func Sample(fn Function, v view.Transform, step float32) []view.Point {
	var out []view.Point
	walk(fn, v, step, func(p view.Point, _ bool) {
		out = append(out, p)
	})
	return out
}

// SampleRuns is Sample split into runs: a new run starts after every
// non-finite value, so drawing each run as its own line strip leaves a gap
// where the function is undefined.
func SampleRuns(fn Function, v view.Transform, step float32) [][]view.Point {
	var (
		runs [][]view.Point
		cur  []view.Point
	)
	walk(fn, v, step, func(p view.Point, broken bool) {
		if broken && len(cur) > 0 {
			runs = append(runs, cur)
			cur = nil
		}
		cur = append(cur, p)
	})
	if len(cur) > 0 {
		runs = append(runs, cur)
	}
	return runs
}

// MaxCount caps Count for spans too wide to index.
const MaxCount = math.MaxInt32

// Count returns how many x positions Sample evaluates for v and step,
// saturating at MaxCount.
func Count(v view.Transform, step float32) int {
	if !(step > 0) || math.IsInf(float64(step), 0) {
		return 0
	}
	left, right := v.VisibleRange()
	span := float64(right) - float64(left)
	if !(span >= 0) || math.IsInf(span, 0) {
		return 0
	}
	n := math.Floor(span / float64(step))
	if n >= MaxCount {
		return MaxCount
	}
	return int(n) + 1
}

// walk evaluates fn at left + i*step. Positions are computed from the index
// rather than accumulated, so float32 rounding cannot stall or drift the walk.
// emit receives each finite point and whether at least one non-finite sample
// was skipped since the previous emitted point.
func walk(fn Function, v view.Transform, step float32, emit func(p view.Point, broken bool)) {
	n := Count(v, step)
	if n == 0 {
		return
	}

	left, _ := v.VisibleRange()
	broken := false
	for i := 0; i < n; i++ {
		x := float32(float64(left) + float64(i)*float64(step))
		y := fn.Evaluate(x)
		if math.IsNaN(float64(y)) || math.IsInf(float64(y), 0) {
			broken = true
			continue
		}
		emit(v.WorldToScreen(view.Point{X: x, Y: y}), broken)
		broken = false
	}
}
