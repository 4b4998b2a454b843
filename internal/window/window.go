//go:build cgo

package window

import (
	"context"
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/verleihernix/math-visualizer/internal/logging"
	"github.com/verleihernix/math-visualizer/internal/render"
	"github.com/verleihernix/math-visualizer/pkg/session"
	"github.com/verleihernix/math-visualizer/pkg/view"
)

// Run opens a resizable window showing sess. It blocks until the window is
// closed or ctx is done.
func Run(ctx context.Context, sess *session.Session, opts Options) error {
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.TPS <= 0 {
		opts.TPS = 60
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		v := sess.View()
		opts.Width, opts.Height = int(v.Width), int(v.Height)
	}

	g := &plotGame{
		ctx:  ctx,
		sess: sess,
		ctrl: NewController(sess, opts.ZoomFactor),
	}
	ebiten.SetWindowTitle(opts.Title)
	ebiten.SetWindowSize(opts.Width, opts.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(opts.TPS)

	opts.Logger.Info("Window opened", "width", opts.Width, "height", opts.Height)
	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		err = nil
	}
	opts.Logger.Info("Window closed")
	return err
}

type plotGame struct {
	ctx  context.Context
	sess *session.Session
	ctrl *Controller
}

func (g *plotGame) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}

	_, wheelY := ebiten.Wheel()
	x, y := ebiten.CursorPosition()
	g.ctrl.Apply(Input{
		WheelY:   wheelY,
		CursorX:  x,
		CursorY:  y,
		Dragging: ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		Left:     ebiten.IsKeyPressed(ebiten.KeyArrowLeft),
		Right:    ebiten.IsKeyPressed(ebiten.KeyArrowRight),
		Up:       ebiten.IsKeyPressed(ebiten.KeyArrowUp),
		Down:     ebiten.IsKeyPressed(ebiten.KeyArrowDown),
		ZoomIn:   inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadAdd),
		ZoomOut:  inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadSubtract),
		Reset:    inpututil.IsKeyJustPressed(ebiten.KeyR),
	})

	g.sess.Resample(g.ctx)
	return nil
}

func (g *plotGame) Draw(screen *ebiten.Image) {
	var (
		s render.Scene
		v view.Transform
	)
	g.sess.Read(func(cur view.Transform, entries []session.Entry) {
		v = cur
		s = render.BuildScene(cur, entries)
	})

	screen.Fill(render.Background)

	for _, t := range s.XTicks {
		vector.StrokeLine(screen, t.Pos, 0, t.Pos, s.Height, 1, render.GridColor, false)
	}
	for _, t := range s.YTicks {
		vector.StrokeLine(screen, 0, t.Pos, s.Width, t.Pos, 1, render.GridColor, false)
	}
	for _, ax := range []*render.Segment{s.XAxis, s.YAxis} {
		if ax != nil {
			vector.StrokeLine(screen, ax.A.X, ax.A.Y, ax.B.X, ax.B.Y, 1.5, render.AxisColor, true)
		}
	}

	for _, c := range s.Curves {
		for _, run := range c.Runs {
			for i := 1; i < len(run); i++ {
				vector.StrokeLine(screen, run[i-1].X, run[i-1].Y, run[i].X, run[i].Y, 2, c.Color, true)
			}
		}
	}

	for _, t := range s.XTicks {
		if t.Label != "" {
			ebitenutil.DebugPrintAt(screen, t.Label, int(t.Pos)+2, int(s.LabelY)+2)
		}
	}
	for _, t := range s.YTicks {
		if t.Label != "" {
			ebitenutil.DebugPrintAt(screen, t.Label, int(s.LabelX)+4, int(t.Pos)-16)
		}
	}

	for i, c := range s.Curves {
		y := 24 + i*16
		vector.DrawFilledRect(screen, 8, float32(y)+4, 10, 10, c.Color, false)
		ebitenutil.DebugPrintAt(screen, c.Label, 24, y)
	}

	left, right := v.VisibleRange()
	hud := fmt.Sprintf("scale %.3g  x [%.4g, %.4g]  %d functions  %.0f fps",
		v.Scale, left, right, len(s.Curves), ebiten.ActualFPS())
	ebitenutil.DebugPrintAt(screen, hud, 8, 4)
}

func (g *plotGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth > 0 && outsideHeight > 0 {
		g.sess.Resize(float32(outsideWidth), float32(outsideHeight))
	}
	return outsideWidth, outsideHeight
}
