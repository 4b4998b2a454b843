package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verleihernix/math-visualizer/internal/buildinfo"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of mathviz",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(buildinfo.Long())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
