/*
Package domain holds the plain values shared by the plotting session and its
collaborators: display colors, lifecycle events and hooks, and the sentinel
errors the outer layers match on.

It has no dependencies beyond the standard library and performs no I/O.
*/
package domain
