package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/verleihernix/math-visualizer/internal/logging"
	"github.com/verleihernix/math-visualizer/internal/presentation/tui"
	"github.com/verleihernix/math-visualizer/pkg/domain"
)

// Prompt is printed before each line in interactive mode.
const Prompt = "> "

// IsInteractive reports whether f is a terminal.
func IsInteractive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Console reads commands line by line and hands them to a Dispatcher.
type Console struct {
	in          io.Reader
	out         *tui.Printer
	dispatcher  *Dispatcher
	interactive bool
	logger      *slog.Logger
}

// ConsoleOption configures the Console.
type ConsoleOption func(*Console)

// WithInteractive enables the prompt.
func WithInteractive(on bool) ConsoleOption {
	return func(c *Console) {
		c.interactive = on
	}
}

// WithConsoleLogger configures a logger for the Console.
func WithConsoleLogger(logger *slog.Logger) ConsoleOption {
	return func(c *Console) {
		c.logger = logger
	}
}

// NewConsole creates a console reading from in.
func NewConsole(in io.Reader, out *tui.Printer, d *Dispatcher, opts ...ConsoleOption) *Console {
	c := &Console{
		in:         in,
		out:        out,
		dispatcher: d,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run processes lines until EOF, an exit command, or ctx is done.
// Command errors are printed and never end the loop. The reader goroutine
// stops when Run returns, except while blocked inside a Read of the input.
func (c *Console) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		scanner.Buffer(make([]byte, 0, 1024), DefaultMaxInputSize*4)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		if c.interactive {
			fmt.Fprint(c.out.Writer(), Prompt)
		}

		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					if err != nil {
						return fmt.Errorf("failed to read input: %w", err)
					}
				default:
				}
				return nil
			}
			if c.handle(ctx, line) {
				return nil
			}
		}
	}
}

func (c *Console) handle(ctx context.Context, line string) (quit bool) {
	clean, err := SanitizeInput(line)
	if err != nil {
		c.out.Error("Error: %v", err)
		return false
	}

	quit, err = c.dispatcher.Execute(ctx, clean)
	if err != nil {
		c.logger.Debug("Command failed", "line", clean, "err", err)
		if errors.Is(err, domain.ErrUnknownCommand) {
			c.out.Error("Unknown command. Type 'help' for available commands")
		} else {
			c.out.Error("Error: %v", err)
		}
	}
	return quit
}
