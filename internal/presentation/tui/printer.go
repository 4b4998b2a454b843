package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// Printer writes console messages in the colors the REPL uses:
// cyan for information, green for success, yellow for warnings and red for errors.
type Printer struct {
	w   io.Writer
	out *termenv.Output
}

// NewPrinter detects the color profile of w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, out: termenv.NewOutput(w)}
}

// NewPlainPrinter never emits escape sequences.
func NewPlainPrinter(w io.Writer) *Printer {
	return &Printer{w: w, out: termenv.NewOutput(w, termenv.WithProfile(termenv.Ascii))}
}

func (p *Printer) colored(hex, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(p.w, p.out.String(msg).Foreground(p.out.Color(hex)))
}

// Info prints in cyan.
func (p *Printer) Info(format string, args ...any) { p.colored("#22d3ee", format, args...) }

// Success prints in green.
func (p *Printer) Success(format string, args ...any) { p.colored("#4ade80", format, args...) }

// Warn prints in yellow.
func (p *Printer) Warn(format string, args ...any) { p.colored("#facc15", format, args...) }

// Error prints in red.
func (p *Printer) Error(format string, args ...any) { p.colored("#f87171", format, args...) }

// Plain prints without styling.
func (p *Printer) Plain(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

// Swatch returns a colored block for the #rrggbb color hex followed by label.
func (p *Printer) Swatch(hex, label string) string {
	return p.out.String("■").Foreground(p.out.Color(hex)).String() + " " + label
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer { return p.w }
