// Package cli implements the interactive console: input sanitizing, command
// dispatch against a plotting session, and the line-reading loop.
package cli
