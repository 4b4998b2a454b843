package render

import (
	"fmt"
	"io"

	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/document"
	"seehuhn.de/go/pdf/graphics"
	pdfcolor "seehuhn.de/go/pdf/graphics/color"

	"github.com/verleihernix/math-visualizer/pkg/domain"
	"github.com/verleihernix/math-visualizer/pkg/view"
)

// PDF writes s as a single-page vector PDF, one point per pixel.
func PDF(w io.Writer, s Scene) error {
	if !(s.Width > 0) || !(s.Height > 0) {
		return fmt.Errorf("invalid scene size %vx%v", s.Width, s.Height)
	}
	h := float64(s.Height)
	box := &pdf.Rectangle{URx: float64(s.Width), URy: h}

	page, err := document.WriteSinglePage(w, box, pdf.V1_7, nil)
	if err != nil {
		return fmt.Errorf("failed to start pdf: %w", err)
	}

	// PDF's y axis points up.
	flip := func(y float32) float64 { return h - float64(y) }

	page.SetFillColor(deviceRGB(Background))
	page.Rectangle(0, 0, float64(s.Width), h)
	page.Fill()

	page.SetLineCap(graphics.LineCapRound)
	page.SetLineJoin(graphics.LineJoinRound)

	var grid [][]view.Point
	for _, t := range s.XTicks {
		grid = append(grid, []view.Point{{X: t.Pos, Y: 0}, {X: t.Pos, Y: s.Height}})
	}
	for _, t := range s.YTicks {
		grid = append(grid, []view.Point{{X: 0, Y: t.Pos}, {X: s.Width, Y: t.Pos}})
	}
	strokeRuns(page, GridColor, 0.5, grid, flip)

	var axes [][]view.Point
	for _, ax := range []*Segment{s.XAxis, s.YAxis} {
		if ax != nil {
			axes = append(axes, []view.Point{ax.A, ax.B})
		}
	}
	strokeRuns(page, AxisColor, 1, axes, flip)

	for _, c := range s.Curves {
		strokeRuns(page, c.Color, 1.5, c.Runs, flip)
	}

	if err := page.Close(); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}

// strokeRuns strokes every run with at least two points. Nothing is emitted
// when no run qualifies, since painting an empty path is an error.
func strokeRuns(page *document.Page, c domain.Color, width float64, runs [][]view.Point, flip func(float32) float64) {
	open := false
	for _, run := range runs {
		if len(run) < 2 {
			continue
		}
		if !open {
			page.PushGraphicsState()
			page.SetStrokeColor(deviceRGB(c))
			page.SetLineWidth(width)
			open = true
		}
		page.MoveTo(float64(run[0].X), flip(run[0].Y))
		for _, p := range run[1:] {
			page.LineTo(float64(p.X), flip(p.Y))
		}
	}
	if open {
		page.Stroke()
		page.PopGraphicsState()
	}
}

func deviceRGB(c domain.Color) pdfcolor.Color {
	r, g, b := c.Floats()
	return pdfcolor.DeviceRGB(r, g, b)
}
