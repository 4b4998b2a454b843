package domain

import "errors"

// ErrEntryNotFound is returned when a plotted function ID does not exist.
var ErrEntryNotFound = errors.New("plotted function not found")

// ErrCacheMiss is returned by render caches when a key is absent or expired.
var ErrCacheMiss = errors.New("render cache miss")

// ErrUnknownCommand is returned for console input that matches no command.
var ErrUnknownCommand = errors.New("unknown command")

// ErrInvalidArgument is returned when a command argument cannot be used.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrUnknownColor is returned when a color name or hex code cannot be parsed.
var ErrUnknownColor = errors.New("unknown color")
