// Package render turns a view and a list of plotted functions into a Scene
// and encodes scenes as PNG (rasterized with gogpu/gg) or PDF (vector output
// with seehuhn.de/go/pdf).
package render
