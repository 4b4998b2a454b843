package view_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verleihernix/math-visualizer/pkg/view"
)

func TestWorldToScreen(t *testing.T) {
	v := view.Default()

	assert.Equal(t, view.Point{X: 600, Y: 400}, v.WorldToScreen(view.Point{}), "origin maps to the centre")
	assert.Equal(t, view.Point{X: 650, Y: 350}, v.WorldToScreen(view.Point{X: 1, Y: 1}), "world Y grows upwards")

	v.OffsetX, v.OffsetY = 2, -1
	assert.Equal(t, view.Point{X: 600, Y: 400}, v.WorldToScreen(view.Point{X: 2, Y: -1}), "offset moves the centre")
}

func TestScreenToWorld(t *testing.T) {
	v := view.Default()
	assert.Equal(t, view.Point{X: -12, Y: 8}, v.ScreenToWorld(view.Point{X: 0, Y: 0}))
	assert.Equal(t, view.Point{X: 12, Y: -8}, v.ScreenToWorld(view.Point{X: 1200, Y: 800}))
}

func TestRoundTrip(t *testing.T) {
	transforms := []view.Transform{
		view.Default(),
		{Width: 640, Height: 480, Scale: 0.37, OffsetX: 123.5, OffsetY: -42},
		{Width: 300, Height: 900, Scale: 2500, OffsetX: -0.25, OffsetY: 0.125},
		{Width: 1, Height: 1, Scale: 1, OffsetX: 0, OffsetY: 0},
	}
	screens := []view.Point{
		{X: 0, Y: 0}, {X: 17, Y: 333}, {X: 639.5, Y: 1}, {X: -50, Y: 1000}, {X: 300, Y: 450},
	}

	for _, v := range transforms {
		for _, p := range screens {
			got := v.WorldToScreen(v.ScreenToWorld(p))
			tol := 1e-3 * float64(max(1, abs(p.X), abs(p.Y)))
			assert.InDelta(t, p.X, got.X, tol, "x for %+v via %+v", p, v)
			assert.InDelta(t, p.Y, got.Y, tol, "y for %+v via %+v", p, v)
		}
	}
}

func TestVisibleRange(t *testing.T) {
	v := view.Default()
	left, right := v.VisibleRange()
	assert.Equal(t, float32(-12), left)
	assert.Equal(t, float32(12), right)

	lo, hi := v.VisibleBounds()
	assert.Equal(t, view.Point{X: -12, Y: -8}, lo)
	assert.Equal(t, view.Point{X: 12, Y: 8}, hi)
}

func TestZoom(t *testing.T) {
	v := view.Default()
	require.NoError(t, v.Zoom(2))
	assert.Equal(t, float32(100), v.Scale)

	require.NoError(t, v.Zoom(0.25))
	assert.Equal(t, float32(25), v.Scale)

	t.Run("Clamps", func(t *testing.T) {
		v := view.Default()
		require.NoError(t, v.Zoom(1e9))
		assert.Equal(t, view.MaxScale, v.Scale)
		require.NoError(t, v.Zoom(1e-12))
		assert.Equal(t, view.MinScale, v.Scale)
	})

	t.Run("Rejects Bad Factors", func(t *testing.T) {
		for _, f := range []float32{0, -2, float32(math.NaN()), float32(math.Inf(1))} {
			v := view.Default()
			err := v.Zoom(f)
			assert.ErrorIs(t, err, view.ErrInvalidFactor, "factor %v", f)
			assert.Equal(t, view.DefaultScale, v.Scale, "scale untouched for %v", f)
		}
	})
}

func TestZoomAt_KeepsAnchor(t *testing.T) {
	v := view.Default()
	anchor := view.Point{X: 900, Y: 100}
	before := v.ScreenToWorld(anchor)

	require.NoError(t, v.ZoomAt(1.1, anchor))

	after := v.ScreenToWorld(anchor)
	assert.InDelta(t, before.X, after.X, 1e-4)
	assert.InDelta(t, before.Y, after.Y, 1e-4)
}

func TestPan(t *testing.T) {
	v := view.Default()
	v.Pan(10, 5)
	assert.Equal(t, float32(10), v.OffsetX)
	assert.Equal(t, float32(5), v.OffsetY)

	// Dragging 50px right and 50px down shows content left of and above the old centre.
	v = view.Default()
	v.PanPixels(50, 50)
	assert.Equal(t, float32(-1), v.OffsetX)
	assert.Equal(t, float32(1), v.OffsetY)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, view.Default().Validate())

	bad := []view.Transform{
		{Width: 0, Height: 10, Scale: 1},
		{Width: 10, Height: -1, Scale: 1},
		{Width: 10, Height: 10, Scale: 0},
		{Width: 10, Height: 10, Scale: float32(math.Inf(1))},
		{Width: 10, Height: 10, Scale: 1e-7},
		{Width: 10, Height: 10, Scale: 2e6},
		{Width: 10, Height: 10, Scale: 1, OffsetX: float32(math.NaN())},
	}
	for _, v := range bad {
		assert.ErrorIs(t, v.Validate(), view.ErrInvalidTransform, "%+v", v)
	}
}

func TestClampScale(t *testing.T) {
	assert.Equal(t, view.MinScale, view.ClampScale(float32(math.NaN())))
	assert.Equal(t, view.MinScale, view.ClampScale(-1))
	assert.Equal(t, float32(42), view.ClampScale(42))
	assert.Equal(t, view.MaxScale, view.ClampScale(float32(math.Inf(1))))
}

func TestPoint_IsFinite(t *testing.T) {
	assert.True(t, view.Point{X: 1, Y: 2}.IsFinite())
	assert.False(t, view.Point{X: float32(math.Inf(-1)), Y: 2}.IsFinite())
	assert.False(t, view.Point{X: 1, Y: float32(math.NaN())}.IsFinite())
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
