package render

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"

	"github.com/gogpu/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/verleihernix/math-visualizer/pkg/domain"
)

// SetLogger routes the rasterizer's diagnostics to l.
func SetLogger(l *slog.Logger) {
	gg.SetLogger(l)
}

// PNG rasterizes s and writes it as a PNG image.
func PNG(w io.Writer, s Scene) error {
	img, err := Raster(s)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// Raster draws s into a new RGBA image, including tick labels and a legend.
func Raster(s Scene) (*image.RGBA, error) {
	width, height := int(s.Width), int(s.Height)
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid scene size %vx%v", s.Width, s.Height)
	}

	dc := gg.NewContext(width, height)
	defer dc.Close()

	dc.ClearWithColor(gg.FromColor(Background))
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)

	dc.SetColor(GridColor)
	dc.SetLineWidth(1)
	for _, t := range s.XTicks {
		dc.MoveTo(float64(t.Pos), 0)
		dc.LineTo(float64(t.Pos), float64(s.Height))
	}
	for _, t := range s.YTicks {
		dc.MoveTo(0, float64(t.Pos))
		dc.LineTo(float64(s.Width), float64(t.Pos))
	}
	if err := dc.Stroke(); err != nil {
		return nil, fmt.Errorf("failed to stroke grid: %w", err)
	}

	dc.SetColor(AxisColor)
	dc.SetLineWidth(1.5)
	for _, ax := range []*Segment{s.XAxis, s.YAxis} {
		if ax != nil {
			dc.DrawLine(float64(ax.A.X), float64(ax.A.Y), float64(ax.B.X), float64(ax.B.Y))
		}
	}
	if err := dc.Stroke(); err != nil {
		return nil, fmt.Errorf("failed to stroke axes: %w", err)
	}

	dc.SetLineWidth(2)
	for _, c := range s.Curves {
		dc.SetColor(c.Color)
		for _, run := range c.Runs {
			if len(run) < 2 {
				continue
			}
			dc.MoveTo(float64(run[0].X), float64(run[0].Y))
			for _, p := range run[1:] {
				dc.LineTo(float64(p.X), float64(p.Y))
			}
		}
		if err := dc.Stroke(); err != nil {
			return nil, fmt.Errorf("failed to stroke %q: %w", c.Label, err)
		}
	}

	src := dc.Image()
	dst := image.NewRGBA(src.Bounds())
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	drawLabels(dst, s)
	return dst, nil
}

func drawLabels(dst *image.RGBA, s Scene) {
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(AxisColor), Face: face}

	baseline := int(s.LabelY) + face.Ascent + 2
	if baseline > int(s.Height)-2 {
		baseline = int(s.LabelY) - 4
	}
	for _, t := range s.XTicks {
		if t.Label == "" {
			continue
		}
		d.Dot = fixed.P(int(t.Pos)+2, baseline)
		d.DrawString(t.Label)
	}

	for _, t := range s.YTicks {
		if t.Label == "" {
			continue
		}
		x := int(s.LabelX) + 4
		if adv := d.MeasureString(t.Label).Ceil(); x+adv > int(s.Width) {
			x = int(s.LabelX) - adv - 4
		}
		d.Dot = fixed.P(x, int(t.Pos)-2)
		d.DrawString(t.Label)
	}

	for i, c := range s.Curves {
		y := 8 + (i+1)*(face.Height+2)
		swatch := image.Rect(8, y-face.Ascent+2, 20, y)
		draw.Draw(dst, swatch, image.NewUniform(c.Color), image.Point{}, draw.Src)
		legend := &font.Drawer{Dst: dst, Src: image.NewUniform(domain.White), Face: face, Dot: fixed.P(26, y)}
		legend.DrawString(c.Label)
	}
}
