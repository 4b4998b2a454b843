// Package window shows a plotting session in a desktop window and maps mouse
// and keyboard input onto view changes.
//
// The window itself needs cgo; builds without it get a stub Run that returns
// ErrUnavailable. The input mapping in Controller has no such requirement.
package window
