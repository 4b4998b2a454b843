package window

import (
	"errors"
	"log/slog"
)

// ErrUnavailable is returned by Run in builds without cgo.
var ErrUnavailable = errors.New("window mode requires cgo (build/run with CGO_ENABLED=1)")

// Options configures the window.
type Options struct {
	Title         string
	Width, Height int
	TPS           int
	ZoomFactor    float32
	Logger        *slog.Logger
}
