//go:build !cgo

package window

import (
	"context"

	"github.com/verleihernix/math-visualizer/pkg/session"
)

// Run reports that this build has no window support.
func Run(_ context.Context, _ *session.Session, _ Options) error {
	return ErrUnavailable
}
