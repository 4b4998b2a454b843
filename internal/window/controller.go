package window

import (
	"github.com/verleihernix/math-visualizer/pkg/session"
	"github.com/verleihernix/math-visualizer/pkg/view"
)

// DefaultZoomFactor is applied per wheel notch and per +/- key press.
const DefaultZoomFactor float32 = 1.1

// DefaultPanStep is how many pixels an arrow key moves the view per tick.
const DefaultPanStep float32 = 8

// Input is one frame of polled input state.
type Input struct {
	WheelY           float64
	CursorX, CursorY int
	// Dragging is true while the left mouse button is held.
	Dragging bool

	Left, Right, Up, Down bool

	// Edge-triggered keys.
	ZoomIn, ZoomOut, Reset bool
}

// Controller turns input frames into session view changes.
type Controller struct {
	sess       *session.Session
	zoomFactor float32
	panStep    float32

	dragging     bool
	lastX, lastY int
}

// NewController creates a controller. A zoomFactor <= 1 uses DefaultZoomFactor.
func NewController(sess *session.Session, zoomFactor float32) *Controller {
	if !(zoomFactor > 1) {
		zoomFactor = DefaultZoomFactor
	}
	return &Controller{sess: sess, zoomFactor: zoomFactor, panStep: DefaultPanStep}
}

// Apply updates the session view for one frame of input.
func (c *Controller) Apply(in Input) {
	if in.Reset {
		c.sess.Reset()
	}

	cursor := view.Point{X: float32(in.CursorX), Y: float32(in.CursorY)}
	switch {
	case in.WheelY > 0:
		_ = c.sess.ZoomAt(c.zoomFactor, cursor)
	case in.WheelY < 0:
		_ = c.sess.ZoomAt(1/c.zoomFactor, cursor)
	}

	if in.ZoomIn {
		_ = c.sess.Zoom(c.zoomFactor)
	}
	if in.ZoomOut {
		_ = c.sess.Zoom(1 / c.zoomFactor)
	}

	if in.Dragging {
		if c.dragging {
			c.sess.PanPixels(float32(in.CursorX-c.lastX), float32(in.CursorY-c.lastY))
		}
		c.lastX, c.lastY = in.CursorX, in.CursorY
	}
	c.dragging = in.Dragging

	// Arrow keys move the viewport, so the content moves the other way.
	var dx, dy float32
	if in.Left {
		dx += c.panStep
	}
	if in.Right {
		dx -= c.panStep
	}
	if in.Up {
		dy += c.panStep
	}
	if in.Down {
		dy -= c.panStep
	}
	c.sess.PanPixels(dx, dy)
}
