package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/verleihernix/math-visualizer/internal/logging"
	"github.com/verleihernix/math-visualizer/internal/presentation/tui"
	"github.com/verleihernix/math-visualizer/internal/render"
	"github.com/verleihernix/math-visualizer/pkg/domain"
	"github.com/verleihernix/math-visualizer/pkg/expr"
	"github.com/verleihernix/math-visualizer/pkg/session"
)

// HelpText is the markdown shown by the help command.
const HelpText = `# Commands

| Command | Description |
|---|---|
| ` + "`plot <expr> [@color]`" + ` | Plot a function of x, e.g. ` + "`plot sin(x) @red`" + ` |
| ` + "`remove <id>`" + ` | Remove one plotted function |
| ` + "`clear`" + ` | Remove all plotted functions |
| ` + "`list`" + ` | List plotted functions |
| ` + "`color <id> <color>`" + ` | Change the color of a function |
| ` + "`zoom <factor>`" + ` | Zoom in (> 1) or out (< 1) |
| ` + "`pan <dx> <dy>`" + ` | Move the viewport in world units |
| ` + "`reset`" + ` | Restore the startup view |
| ` + "`view`" + ` | Show scale, offset and visible range |
| ` + "`eval <x> <expr>`" + ` | Print the value of an expression at x |
| ` + "`export <file.png or file.pdf>`" + ` | Save the current plot |
| ` + "`help`" + ` | Show this help message |
| ` + "`exit`" + ` | Close the application |

Functions: sin, cos, tan, log, exp, sqrt. Operators: + - * / ^ (right-associative).
Colors: red, green, blue, yellow, cyan, magenta, white, black or #rrggbb.
`

// Dispatcher executes console commands against a session.
type Dispatcher struct {
	sess   *session.Session
	out    *tui.Printer
	help   func(string) (string, error)
	export func(path string, s render.Scene) error
	logger *slog.Logger
}

// DispatcherOption configures the Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithLogger configures a logger for the Dispatcher.
func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithHelpRenderer sets the markdown renderer used by the help command.
func WithHelpRenderer(fn func(string) (string, error)) DispatcherOption {
	return func(d *Dispatcher) {
		d.help = fn
	}
}

// WithExporter replaces render.Export.
func WithExporter(fn func(path string, s render.Scene) error) DispatcherOption {
	return func(d *Dispatcher) {
		d.export = fn
	}
}

// NewDispatcher creates a dispatcher printing to out.
func NewDispatcher(sess *session.Session, out *tui.Printer, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		sess:   sess,
		out:    out,
		help:   func(md string) (string, error) { return md, nil },
		export: render.Export,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Execute runs one command line. quit reports whether the console should stop.
func (d *Dispatcher) Execute(ctx context.Context, line string) (quit bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}

	name, rest, _ := strings.Cut(line, " ")
	name = strings.ToLower(name)
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)

	d.logger.Debug("Command", "name", name, "args", rest)

	switch name {
	case "exit", "quit":
		return true, nil
	case "help":
		return false, d.printHelp()
	case "plot":
		return false, d.plot(ctx, rest)
	case "remove", "rm":
		return false, d.remove(ctx, args)
	case "clear":
		d.sess.Clear(ctx)
		d.out.Warn("Removed all functions")
		return false, nil
	case "list", "ls":
		d.list()
		return false, nil
	case "color":
		return false, d.recolor(args)
	case "zoom":
		return false, d.zoom(args)
	case "pan":
		return false, d.pan(args)
	case "reset":
		d.sess.Reset()
		d.out.Info("View reset")
		return false, nil
	case "view":
		d.printView()
		return false, nil
	case "eval":
		return false, d.eval(rest)
	case "export":
		return false, d.exportTo(ctx, rest)
	}
	return false, fmt.Errorf("%w: %q", domain.ErrUnknownCommand, name)
}

func usage(format string) error {
	return fmt.Errorf("%w: usage: %s", domain.ErrInvalidArgument, format)
}

func (d *Dispatcher) printHelp() error {
	out, err := d.help(HelpText)
	if err != nil {
		return fmt.Errorf("failed to render help: %w", err)
	}
	fmt.Fprint(d.out.Writer(), out)
	return nil
}

func (d *Dispatcher) plot(ctx context.Context, rest string) error {
	source := rest
	var color *domain.Color
	if i := strings.LastIndex(rest, "@"); i >= 0 {
		c, err := domain.ParseColor(rest[i+1:])
		if err != nil {
			return err
		}
		color = &c
		source = strings.TrimSpace(rest[:i])
	}
	if source == "" {
		return usage("plot <expr> [@color]")
	}

	var (
		e   session.Entry
		err error
	)
	if color != nil {
		e, err = d.sess.PlotColor(ctx, source, *color)
	} else {
		e, err = d.sess.Plot(ctx, source)
	}
	if err != nil {
		return err
	}
	d.out.Success("Function added [%d] y = %s", e.ID, e.Source)
	return nil
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: id %q is not a number", domain.ErrInvalidArgument, s)
	}
	return id, nil
}

func (d *Dispatcher) remove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("remove <id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := d.sess.Remove(ctx, id); err != nil {
		return err
	}
	d.out.Warn("Removed function [%d]", id)
	return nil
}

func (d *Dispatcher) list() {
	entries := d.sess.Entries()
	if len(entries) == 0 {
		d.out.Info("No functions plotted")
		return
	}
	for _, e := range entries {
		d.out.Plain("%s", d.out.Swatch(e.Color.Hex(), fmt.Sprintf("[%d] y = %s  (%s)", e.ID, e.Source, e.Color)))
	}
}

func (d *Dispatcher) recolor(args []string) error {
	if len(args) != 2 {
		return usage("color <id> <color>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	c, err := domain.ParseColor(args[1])
	if err != nil {
		return err
	}
	if err := d.sess.Recolor(id, c); err != nil {
		return err
	}
	d.out.Info("Changed color of [%d] to %s", id, c)
	return nil
}

func parseFloat(s string) (float32, error) {
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", domain.ErrInvalidArgument, s)
	}
	return float32(f), nil
}

func (d *Dispatcher) zoom(args []string) error {
	if len(args) != 1 {
		return usage("zoom <factor>")
	}
	f, err := parseFloat(args[0])
	if err != nil {
		return err
	}
	if err := d.sess.Zoom(f); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	d.out.Info("Changed zoom")
	return nil
}

func (d *Dispatcher) pan(args []string) error {
	if len(args) != 2 {
		return usage("pan <dx> <dy>")
	}
	dx, err := parseFloat(args[0])
	if err != nil {
		return err
	}
	dy, err := parseFloat(args[1])
	if err != nil {
		return err
	}
	d.sess.Pan(dx, dy)
	d.out.Info("Viewport moved")
	return nil
}

func (d *Dispatcher) printView() {
	v := d.sess.View()
	left, right := v.VisibleRange()
	d.out.Info("scale %g px/unit, offset (%g, %g), x in [%g, %g], step %g",
		v.Scale, v.OffsetX, v.OffsetY, left, right, d.sess.Step())
}

func (d *Dispatcher) eval(rest string) error {
	xs, source, _ := strings.Cut(rest, " ")
	source = strings.TrimSpace(source)
	if xs == "" || source == "" {
		return usage("eval <x> <expr>")
	}
	x, err := parseFloat(xs)
	if err != nil {
		return err
	}
	y, err := expr.Eval(source, x)
	if err != nil {
		return err
	}
	d.out.Info("f(%g) = %g", x, y)
	return nil
}

func (d *Dispatcher) exportTo(ctx context.Context, path string) error {
	if path == "" {
		return usage("export <file.png|file.pdf>")
	}
	if err := d.export(path, render.FromSession(ctx, d.sess)); err != nil {
		if errors.Is(err, render.ErrUnsupportedFormat) {
			return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
		}
		return err
	}
	d.out.Success("Exported %s", path)
	return nil
}
