package view

import (
	"errors"
	"fmt"
	"math"
)

const (
	// MinScale and MaxScale bound the zoom level in pixels per world unit.
	MinScale float32 = 0.01
	MaxScale float32 = 1e6

	// DefaultWidth, DefaultHeight and DefaultScale describe the startup view.
	DefaultWidth  float32 = 1200
	DefaultHeight float32 = 800
	DefaultScale  float32 = 50
)

var (
	// ErrInvalidFactor is returned when a zoom factor is not a positive finite number.
	ErrInvalidFactor = errors.New("zoom factor must be a positive finite number")
	// ErrInvalidTransform is returned by Validate for unusable transforms.
	ErrInvalidTransform = errors.New("invalid view transform")
)

// Point is a 2D coordinate in either world or screen space.
type Point struct {
	X, Y float32
}

// IsFinite reports whether both coordinates are finite.
func (p Point) IsFinite() bool {
	return isFinite(p.X) && isFinite(p.Y)
}

// Transform is the visible pixel extent plus the affine world/screen mapping.
type Transform struct {
	Width   float32 `json:"width" yaml:"width"`
	Height  float32 `json:"height" yaml:"height"`
	Scale   float32 `json:"scale" yaml:"scale"` // pixels per world unit
	OffsetX float32 `json:"offset_x" yaml:"offset_x"`
	OffsetY float32 `json:"offset_y" yaml:"offset_y"`
}

// New returns a transform of the given size centred on the world origin.
func New(width, height, scale float32) Transform {
	return Transform{Width: width, Height: height, Scale: scale}
}

// Default returns the startup view: 1200x800 pixels, 50 pixels per unit.
func Default() Transform {
	return New(DefaultWidth, DefaultHeight, DefaultScale)
}

// WorldToScreen maps a world point to pixel coordinates.
func (t Transform) WorldToScreen(w Point) Point {
	return Point{
		X: (w.X-t.OffsetX)*t.Scale + t.Width/2,
		Y: t.Height/2 - (w.Y-t.OffsetY)*t.Scale,
	}
}

// ScreenToWorld is the inverse of WorldToScreen.
func (t Transform) ScreenToWorld(s Point) Point {
	return Point{
		X: (s.X-t.Width/2)/t.Scale + t.OffsetX,
		Y: (t.Height/2-s.Y)/t.Scale + t.OffsetY,
	}
}

// VisibleRange returns the world x-coordinates of the left and right screen edges.
func (t Transform) VisibleRange() (left, right float32) {
	return t.ScreenToWorld(Point{X: 0}).X, t.ScreenToWorld(Point{X: t.Width}).X
}

// VisibleBounds returns the world-space corners of the screen:
// min is the bottom-left, max the top-right.
func (t Transform) VisibleBounds() (min, max Point) {
	min = t.ScreenToWorld(Point{X: 0, Y: t.Height})
	max = t.ScreenToWorld(Point{X: t.Width, Y: 0})
	return min, max
}

// Zoom multiplies the scale by factor, clamped to [MinScale, MaxScale].
func (t *Transform) Zoom(factor float32) error {
	if !(factor > 0) || !isFinite(factor) {
		return fmt.Errorf("%w: %v", ErrInvalidFactor, factor)
	}
	t.Scale = ClampScale(t.Scale * factor)
	return nil
}

// ZoomAt zooms by factor while keeping the world point under the screen
// position anchor fixed.
func (t *Transform) ZoomAt(factor float32, anchor Point) error {
	before := t.ScreenToWorld(anchor)
	if err := t.Zoom(factor); err != nil {
		return err
	}
	after := t.ScreenToWorld(anchor)
	t.OffsetX += before.X - after.X
	t.OffsetY += before.Y - after.Y
	return nil
}

// Pan moves the view by a world-space delta.
func (t *Transform) Pan(dx, dy float32) {
	t.OffsetX += dx
	t.OffsetY += dy
}

// PanPixels moves the view so that content follows a pointer dragged by
// (dx, dy) pixels.
func (t *Transform) PanPixels(dx, dy float32) {
	t.OffsetX -= dx / t.Scale
	t.OffsetY += dy / t.Scale
}

// Resize changes the pixel extent, keeping the world centre in place.
func (t *Transform) Resize(width, height float32) {
	t.Width = width
	t.Height = height
}

// Validate reports whether the transform can be used for mapping and
// sampling: positive finite size, finite offsets and a scale within
// [MinScale, MaxScale].
func (t Transform) Validate() error {
	switch {
	case !(t.Width > 0) || !isFinite(t.Width), !(t.Height > 0) || !isFinite(t.Height):
		return fmt.Errorf("%w: size %vx%v", ErrInvalidTransform, t.Width, t.Height)
	case !(t.Scale >= MinScale && t.Scale <= MaxScale):
		return fmt.Errorf("%w: scale %v outside [%v, %v]", ErrInvalidTransform, t.Scale, MinScale, MaxScale)
	case !isFinite(t.OffsetX) || !isFinite(t.OffsetY):
		return fmt.Errorf("%w: offset (%v, %v)", ErrInvalidTransform, t.OffsetX, t.OffsetY)
	}
	return nil
}

// ClampScale limits s to [MinScale, MaxScale]. NaN maps to MinScale.
func ClampScale(s float32) float32 {
	switch {
	case !(s >= MinScale):
		return MinScale
	case s > MaxScale:
		return MaxScale
	}
	return s
}

func isFinite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}
