package sampler_test

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verleihernix/math-visualizer/pkg/expr"
	"github.com/verleihernix/math-visualizer/pkg/sampler"
	"github.com/verleihernix/math-visualizer/pkg/view"
)

func TestSample_Line(t *testing.T) {
	v := view.New(100, 100, 10) // x in [-5, 5]
	got := sampler.Sample(sampler.FuncOf(func(x float32) float32 { return x }), v, 1)

	want := []view.Point{
		{X: 0, Y: 100}, {X: 10, Y: 90}, {X: 20, Y: 80}, {X: 30, Y: 70}, {X: 40, Y: 60},
		{X: 50, Y: 50},
		{X: 60, Y: 40}, {X: 70, Y: 30}, {X: 80, Y: 20}, {X: 90, Y: 10}, {X: 100, Y: 0},
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-4)); diff != "" {
		t.Errorf("Sample() mismatch (-want +got):\n%s", diff)
	}
}

func TestSample_DropsNonFinite(t *testing.T) {
	ev := expr.MustParse("1/x")
	v := view.Default() // x in [-12, 12]; step 0.5 lands exactly on 0
	step := float32(0.5)

	points := sampler.Sample(ev, v, step)

	require.NotEmpty(t, points)
	assert.Len(t, points, sampler.Count(v, step)-1, "only the sample at x=0 is dropped")
	for _, p := range points {
		assert.True(t, p.IsFinite(), "point %+v must be finite", p)
		assert.NotEqual(t, v.Width/2, p.X, "no sample drawn at world x=0")
	}

	runs := sampler.SampleRuns(ev, v, step)
	require.Len(t, runs, 2, "the pole splits the curve")
	assert.Len(t, runs[0], 24)
	assert.Len(t, runs[1], 24)
}

func TestSample_NeverFinite(t *testing.T) {
	ev := expr.MustParse("sqrt(0-1-x*x)")
	assert.Empty(t, sampler.Sample(ev, view.Default(), 0.1))
	assert.Empty(t, sampler.SampleRuns(ev, view.Default(), 0.1))
}

func TestSample_Deterministic(t *testing.T) {
	ev := expr.MustParse("sin(x)*x^2 - 3/x")
	v := view.Transform{Width: 813, Height: 421, Scale: 37.5, OffsetX: 1.25, OffsetY: -3}
	step := sampler.AdaptiveStep(v.Scale)

	first := sampler.Sample(ev, v, step)
	second := sampler.Sample(ev, v, step)

	require.NotEmpty(t, first)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("resampling changed the result (-first +second):\n%s", diff)
	}
}

func TestSample_OrderedLeftToRight(t *testing.T) {
	points := sampler.Sample(expr.MustParse("x^3"), view.Default(), 0.05)
	require.NotEmpty(t, points)
	for i := 1; i < len(points); i++ {
		assert.Greater(t, points[i].X, points[i-1].X)
	}
	assert.InDelta(t, 0, points[0].X, 1e-3, "walk starts at the left edge")
	assert.InDelta(t, 1200, points[len(points)-1].X, 3, "walk stops within one step of the right edge")
}

func TestSample_InvalidStep(t *testing.T) {
	fn := sampler.FuncOf(func(x float32) float32 { return x })
	for _, step := range []float32{0, -1, float32(math.NaN()), float32(math.Inf(1))} {
		assert.Nil(t, sampler.Sample(fn, view.Default(), step), "step %v", step)
		assert.Zero(t, sampler.Count(view.Default(), step), "step %v", step)
	}
}

func TestSample_LargeOffsetDoesNotStall(t *testing.T) {
	// At x around 1e5 the float32 spacing is larger than the minimum step;
	// the walk must still terminate with a bounded number of samples.
	v := view.Transform{Width: 100, Height: 100, Scale: 1e4, OffsetX: 1e5}
	step := sampler.AdaptiveStep(v.Scale)
	assert.Equal(t, sampler.DefaultMinStep, step)

	points := sampler.Sample(sampler.FuncOf(func(x float32) float32 { return 0 }), v, step)
	assert.Len(t, points, sampler.Count(v, step))
	assert.LessOrEqual(t, len(points), 64)
}

func TestSampleRuns_KeepsAllFinitePoints(t *testing.T) {
	ev := expr.MustParse("log(x)")
	v := view.Default()
	step := sampler.AdaptiveStep(v.Scale)

	flat := sampler.Sample(ev, v, step)
	var joined []view.Point
	for _, run := range sampler.SampleRuns(ev, v, step) {
		joined = append(joined, run...)
	}
	assert.Equal(t, flat, joined)
}

func TestCount(t *testing.T) {
	tests := []struct {
		name string
		v    view.Transform
		step float32
		want int
	}{
		{"unit steps", view.New(100, 100, 10), 1, 11},
		{"zero step", view.New(100, 100, 10), 0, 0},
		{"saturates", view.Transform{Width: 1e30, Height: 100, Scale: 0.01}, 0.0005, sampler.MaxCount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sampler.Count(tt.v, tt.step))
		})
	}
}
