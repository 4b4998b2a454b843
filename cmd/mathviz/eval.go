package main

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/verleihernix/math-visualizer/pkg/expr"
)

var evalCmd = &cobra.Command{
	Use:   "eval EXPR X...",
	Short: "Print the value of an expression at one or more points",
	Args:  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ev, err := expr.Parse(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		for _, arg := range args[1:] {
			x, err := strconv.ParseFloat(arg, 32)
			if err != nil {
				fmt.Printf("Error: invalid x %q\n", arg)
				os.Exit(1)
			}
			y := ev.Evaluate(float32(x))
			if math.IsNaN(float64(y)) || math.IsInf(float64(y), 0) {
				fmt.Printf("f(%g) = undefined\n", x)
				continue
			}
			fmt.Printf("f(%g) = %g\n", x, y)
		}
	},
}

func init() {
	rootCmd.AddCommand(evalCmd)
}
