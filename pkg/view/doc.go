/*
Package view maps between world space (the mathematical plane) and screen
space (pixels, Y growing downwards).

A Transform is a small value type. Mapping functions are pure; the mutation
helpers (Zoom, Pan, PanPixels, Resize) are meant to be called by whoever owns
the transform, typically under the owner's lock.
*/
package view
