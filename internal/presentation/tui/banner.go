package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{`                  _   _              _     `, "#38bdf8"},
	{`  _ __ ___   __ _| |_| |__   __   __(_)____`, "#22d3ee"},
	{` | '_ ' _ \ / _' | __| '_ \  \ \ / /| |_  /`, "#2dd4bf"},
	{` | | | | | | (_| | |_| | | |  \ V / | |/ / `, "#34d399"},
	{` |_| |_| |_|\__,_|\__|_| |_|   \_/  |_/___|`, "#a3e635"},
}

// PrintBanner writes the startup banner and version to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  plot y = f(x), drag to pan, scroll to zoom  ("+version+")").Faint())
	fmt.Fprintln(w)
}
