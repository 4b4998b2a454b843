package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/verleihernix/math-visualizer/internal/buildinfo"
	"github.com/verleihernix/math-visualizer/internal/cli"
	"github.com/verleihernix/math-visualizer/internal/presentation/tui"
	"github.com/verleihernix/math-visualizer/internal/window"
	"github.com/verleihernix/math-visualizer/pkg/session"
)

var runCmd = &cobra.Command{
	Use:   "run [expr...]",
	Short: "Open the plot window and the command console",
	Long: `Opens a resizable window showing every plotted function and reads
commands from standard input. Expressions given as arguments are plotted
before the console starts.

Window controls: mouse wheel zooms around the cursor, left-drag pans,
arrow keys pan, +/- zoom and R resets the view.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger := loadSettings(cmd)
		headless, _ := cmd.Flags().GetBool("no-window")

		sess := session.New(
			session.WithLogger(logger),
			session.WithStepPolicy(cfg.Sampling),
			session.WithView(cfg.Transform()),
		)

		interactive := cli.IsInteractive(os.Stdin)
		printer := tui.NewPlainPrinter(os.Stdout)
		if interactive {
			printer = tui.NewPrinter(os.Stdout)
			tui.PrintBanner(os.Stdout, buildinfo.Short())
		}

		sc := cli.NewSignalContext(context.Background())
		defer sc.Cancel()

		for _, src := range args {
			if _, err := sess.Plot(sc, src); err != nil {
				printer.Error("Error: %q: %v", src, err)
			}
		}

		dispatcher := cli.NewDispatcher(sess, printer,
			cli.WithLogger(logger),
			cli.WithHelpRenderer(tui.NewRenderer(80)),
		)
		console := cli.NewConsole(os.Stdin, printer, dispatcher,
			cli.WithInteractive(interactive),
			cli.WithConsoleLogger(logger),
		)

		consoleDone := make(chan error, 1)
		go func() {
			consoleDone <- console.Run(sc)
			sc.Cancel()
		}()

		if !headless {
			err := window.Run(sc, sess, window.Options{
				Title:      fmt.Sprintf("%s %s", cfg.Window.Title, buildinfo.Short()),
				Width:      cfg.Window.Width,
				Height:     cfg.Window.Height,
				TPS:        cfg.Window.TPS,
				ZoomFactor: cfg.View.ZoomFactor,
				Logger:     logger,
			})
			switch {
			case errors.Is(err, window.ErrUnavailable):
				printer.Warn("No window support in this build, running console only")
			case err != nil:
				fmt.Printf("Error running window: %v\n", err)
				os.Exit(1)
			default:
				// The window was closed: end the console as well.
				sc.Cancel()
			}
		}

		if err := <-consoleDone; err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		if sig := sc.Signal(); sig != nil {
			logger.Info("Interrupted", "signal", sig)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("no-window", false, "Run the console without opening a window")

	rootCmd.Run = runCmd.Run
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
