package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verleihernix/math-visualizer/internal/render"
	"github.com/verleihernix/math-visualizer/pkg/domain"
	"github.com/verleihernix/math-visualizer/pkg/session"
)

var exportCmd = &cobra.Command{
	Use:   "export -o FILE expr[@color]...",
	Short: "Render expressions to a PNG or PDF file",
	Long: `Plots every expression and writes the result to FILE. The format
follows the extension (.png or .pdf). Append @color to pick a color, e.g.
"sin(x)@red" or "x^2@#ff8800".`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger := loadSettings(cmd)
		out, _ := cmd.Flags().GetString("output")

		v := cfg.Transform()
		if cmd.Flags().Changed("width") {
			w, _ := cmd.Flags().GetInt("width")
			v.Width = float32(w)
		}
		if cmd.Flags().Changed("height") {
			h, _ := cmd.Flags().GetInt("height")
			v.Height = float32(h)
		}
		if cmd.Flags().Changed("scale") {
			v.Scale, _ = cmd.Flags().GetFloat32("scale")
		}
		if cmd.Flags().Changed("offset-x") {
			v.OffsetX, _ = cmd.Flags().GetFloat32("offset-x")
		}
		if cmd.Flags().Changed("offset-y") {
			v.OffsetY, _ = cmd.Flags().GetFloat32("offset-y")
		}
		if err := v.Validate(); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		if _, err := render.FormatFromPath(out); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		ctx := context.Background()
		sess := session.New(
			session.WithLogger(logger),
			session.WithStepPolicy(cfg.Sampling),
			session.WithView(v),
		)
		for _, arg := range args {
			src, color := splitColor(arg)
			var err error
			if color == "" {
				_, err = sess.Plot(ctx, src)
			} else {
				c, cerr := domain.ParseColor(color)
				if cerr != nil {
					fmt.Printf("Error: %v\n", cerr)
					os.Exit(1)
				}
				_, err = sess.PlotColor(ctx, src, c)
			}
			if err != nil {
				fmt.Printf("Error: %q: %v\n", src, err)
				os.Exit(1)
			}
		}

		if err := render.Export(out, render.FromSession(ctx, sess)); err != nil {
			fmt.Printf("Error exporting plot: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Exported %d function(s) to %s\n", sess.Len(), out)
	},
}

// splitColor separates a trailing @color from an expression.
func splitColor(arg string) (src, color string) {
	i := strings.LastIndex(arg, "@")
	if i < 0 {
		return arg, ""
	}
	return strings.TrimSpace(arg[:i]), strings.TrimSpace(arg[i+1:])
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("output", "o", "plot.png", "Output file (.png or .pdf)")
	exportCmd.Flags().Int("width", 0, "Image width in pixels (default from config)")
	exportCmd.Flags().Int("height", 0, "Image height in pixels (default from config)")
	exportCmd.Flags().Float32("scale", 0, "Pixels per world unit (default from config)")
	exportCmd.Flags().Float32("offset-x", 0, "World x at the centre of the image")
	exportCmd.Flags().Float32("offset-y", 0, "World y at the centre of the image")
}
