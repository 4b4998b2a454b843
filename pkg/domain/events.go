package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventPlot       EventType = "plot"
	EventRemove     EventType = "remove"
	EventResample   EventType = "resample"
	EventParseError EventType = "parse_error"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// PlotEvent reports a function being added to or removed from a session.
type PlotEvent struct {
	EventBase
	EntryID int    `json:"entry_id"`
	Source  string `json:"source"`
	Color   Color  `json:"color"`
}

// ResampleEvent reports one full resampling pass.
type ResampleEvent struct {
	EventBase
	Entries  int           `json:"entries"`
	Points   int           `json:"points"`
	Step     float32       `json:"step"`
	Duration time.Duration `json:"duration"`
}

// ParseErrorEvent reports an expression that failed to compile.
type ParseErrorEvent struct {
	EventBase
	Source string `json:"source"`
	Kind   string `json:"kind"`
	Err    error  `json:"-"`
}

// Hooks defines callbacks for session observability. Nil fields are skipped.
type Hooks struct {
	OnPlot       func(context.Context, *PlotEvent)
	OnRemove     func(context.Context, *PlotEvent)
	OnResample   func(context.Context, *ResampleEvent)
	OnParseError func(context.Context, *ParseErrorEvent)
}

// Merge returns hooks that call h first and then other.
func (h Hooks) Merge(other Hooks) Hooks {
	return Hooks{
		OnPlot:       chain(h.OnPlot, other.OnPlot),
		OnRemove:     chain(h.OnRemove, other.OnRemove),
		OnResample:   chain(h.OnResample, other.OnResample),
		OnParseError: chain(h.OnParseError, other.OnParseError),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
