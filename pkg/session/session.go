package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/verleihernix/math-visualizer/internal/logging"
	"github.com/verleihernix/math-visualizer/pkg/domain"
	"github.com/verleihernix/math-visualizer/pkg/expr"
	"github.com/verleihernix/math-visualizer/pkg/sampler"
	"github.com/verleihernix/math-visualizer/pkg/view"
)

// Entry is one plotted function and the geometry last sampled for it.
type Entry struct {
	ID        int
	Source    string
	Evaluator *expr.Evaluator
	Color     domain.Color
	// Runs are screen-space polylines, split wherever the function was not finite.
	Runs [][]view.Point
}

// Points returns the sampled points of all runs in order.
func (e Entry) Points() []view.Point {
	n := 0
	for _, r := range e.Runs {
		n += len(r)
	}
	out := make([]view.Point, 0, n)
	for _, r := range e.Runs {
		out = append(out, r...)
	}
	return out
}

// Session is the shared plot list and view.
type Session struct {
	mu      sync.Mutex
	entries []*Entry
	nextID  int
	palette int

	view  view.Transform
	home  view.Transform
	dirty bool

	policy sampler.StepPolicy
	logger *slog.Logger
	hooks  domain.Hooks
}

// Option configures the Session.
type Option func(*Session)

// WithLogger configures a logger for the Session.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithHooks registers lifecycle callbacks. Multiple calls are merged.
func WithHooks(h domain.Hooks) Option {
	return func(s *Session) {
		s.hooks = s.hooks.Merge(h)
	}
}

// WithStepPolicy overrides the sampling step clamp.
func WithStepPolicy(p sampler.StepPolicy) Option {
	return func(s *Session) {
		s.policy = p.OrDefault()
	}
}

// WithView sets the startup view, which Reset returns to. A positive scale
// is clamped to [view.MinScale, view.MaxScale]; otherwise invalid views are
// ignored.
func WithView(v view.Transform) Option {
	return func(s *Session) {
		if v.Scale > 0 {
			v.Scale = view.ClampScale(v.Scale)
		}
		if v.Validate() == nil {
			s.view = v
			s.home = v
		}
	}
}

// New creates an empty session with the default view.
func New(opts ...Option) *Session {
	s := &Session{
		nextID: 1,
		view:   view.Default(),
		home:   view.Default(),
		policy: sampler.DefaultStepPolicy,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Plot parses source and appends it with the next palette color.
func (s *Session) Plot(ctx context.Context, source string) (Entry, error) {
	return s.plot(ctx, source, nil)
}

// PlotColor parses source and appends it with the given color.
func (s *Session) PlotColor(ctx context.Context, source string, c domain.Color) (Entry, error) {
	return s.plot(ctx, source, &c)
}

func (s *Session) plot(ctx context.Context, source string, c *domain.Color) (Entry, error) {
	// Parse outside the lock: a failure must leave the list untouched.
	ev, err := expr.Parse(source)
	if err != nil {
		s.reportParseError(ctx, source, err)
		return Entry{}, err
	}

	s.mu.Lock()
	e := &Entry{
		ID:        s.nextID,
		Source:    ev.Source(),
		Evaluator: ev,
	}
	if c != nil {
		e.Color = *c
	} else {
		e.Color = domain.PaletteColor(s.palette)
		s.palette++
	}
	s.nextID++
	s.entries = append(s.entries, e)
	s.dirty = true
	out := *e
	s.mu.Unlock()

	s.logger.Debug("Function plotted", "id", out.ID, "expr", out.Source, "color", out.Color.String())
	if s.hooks.OnPlot != nil {
		s.hooks.OnPlot(ctx, &domain.PlotEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventPlot},
			EntryID:   out.ID,
			Source:    out.Source,
			Color:     out.Color,
		})
	}
	return out, nil
}

func (s *Session) reportParseError(ctx context.Context, source string, err error) {
	kind := "unknown"
	var pe *expr.ParseError
	if errors.As(err, &pe) {
		kind = pe.KindName()
	}
	s.logger.Debug("Expression rejected", "expr", source, "kind", kind, "err", err)
	if s.hooks.OnParseError != nil {
		s.hooks.OnParseError(ctx, &domain.ParseErrorEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventParseError},
			Source:    source,
			Kind:      kind,
			Err:       err,
		})
	}
}

// Remove drops the entry with the given ID.
func (s *Session) Remove(ctx context.Context, id int) error {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", domain.ErrEntryNotFound, id)
	}
	removed := *s.entries[idx]
	s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
	s.mu.Unlock()

	s.emitRemove(ctx, removed)
	return nil
}

// Clear removes every entry and returns how many were removed.
func (s *Session) Clear(ctx context.Context) int {
	s.mu.Lock()
	removed := make([]Entry, len(s.entries))
	for i, e := range s.entries {
		removed[i] = *e
	}
	s.entries = nil
	s.mu.Unlock()

	for _, e := range removed {
		s.emitRemove(ctx, e)
	}
	return len(removed)
}

func (s *Session) emitRemove(ctx context.Context, e Entry) {
	s.logger.Debug("Function removed", "id", e.ID, "expr", e.Source)
	if s.hooks.OnRemove != nil {
		s.hooks.OnRemove(ctx, &domain.PlotEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventRemove},
			EntryID:   e.ID,
			Source:    e.Source,
			Color:     e.Color,
		})
	}
}

// Recolor changes the display color of an entry. Geometry is unaffected.
func (s *Session) Recolor(id int, c domain.Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %d", domain.ErrEntryNotFound, id)
	}
	s.entries[idx].Color = c
	return nil
}

// Get returns a copy of the entry with the given ID.
func (s *Session) Get(id int) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return Entry{}, fmt.Errorf("%w: %d", domain.ErrEntryNotFound, id)
	}
	return *s.entries[idx], nil
}

// Entries returns copies of all entries in insertion order.
func (s *Session) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Len returns the number of plotted functions.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Session) snapshot() []Entry {
	out := make([]Entry, len(s.entries))
	for i, e := range s.entries {
		out[i] = *e
	}
	return out
}

func (s *Session) indexOf(id int) int {
	for i, e := range s.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Read runs fn with the current view and entries while holding the lock.
// fn must not call back into the session.
func (s *Session) Read(fn func(v view.Transform, entries []Entry)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.view, s.snapshot())
}

// View returns the current view transform.
func (s *Session) View() view.Transform {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// SetView replaces the current view. It fails for views that do not pass
// view.Transform.Validate, including scales outside [view.MinScale, view.MaxScale].
func (s *Session) SetView(v view.Transform) error {
	if err := v.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = v
	s.dirty = true
	return nil
}

// Zoom multiplies the scale by factor around the view origin.
func (s *Session) Zoom(factor float32) error {
	return s.mutateView(func(v *view.Transform) error { return v.Zoom(factor) })
}

// ZoomAt multiplies the scale by factor keeping the screen point anchor fixed.
func (s *Session) ZoomAt(factor float32, anchor view.Point) error {
	return s.mutateView(func(v *view.Transform) error { return v.ZoomAt(factor, anchor) })
}

// Pan moves the view by world-space deltas.
func (s *Session) Pan(dx, dy float32) {
	_ = s.mutateView(func(v *view.Transform) error { v.Pan(dx, dy); return nil })
}

// PanPixels moves the view by a screen-space drag delta.
func (s *Session) PanPixels(dx, dy float32) {
	if dx == 0 && dy == 0 {
		return
	}
	_ = s.mutateView(func(v *view.Transform) error { v.PanPixels(dx, dy); return nil })
}

// Resize updates the viewport size. Unchanged sizes do not dirty the session.
func (s *Session) Resize(width, height float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view.Width == width && s.view.Height == height {
		return
	}
	s.view.Resize(width, height)
	s.dirty = true
}

// Reset restores the startup scale and offsets, keeping the current size.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Scale = s.home.Scale
	s.view.OffsetX = s.home.OffsetX
	s.view.OffsetY = s.home.OffsetY
	s.dirty = true
}

func (s *Session) mutateView(fn func(v *view.Transform) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(&s.view); err != nil {
		return err
	}
	s.dirty = true
	return nil
}

// Dirty reports whether the cached geometry is stale.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Invalidate forces the next Resample to run.
func (s *Session) Invalidate() {
	s.mu.Lock()
	s.dirty = true
	s.mu.Unlock()
}

// Step returns the sampling step for the current scale.
func (s *Session) Step() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.policy.Step(s.view.Scale)
}

// Resample re-samples every entry if the session is dirty.
// It reports whether any work was done.
func (s *Session) Resample(ctx context.Context) bool {
	start := time.Now()

	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return false
	}
	step := s.policy.Step(s.view.Scale)
	points := 0
	for _, e := range s.entries {
		e.Runs = sampler.SampleRuns(e.Evaluator, s.view, step)
		for _, r := range e.Runs {
			points += len(r)
		}
	}
	n := len(s.entries)
	s.dirty = false
	s.mu.Unlock()

	elapsed := time.Since(start)
	s.logger.Debug("Resampled", "entries", n, "points", points, "step", step, "took", elapsed)
	if s.hooks.OnResample != nil {
		s.hooks.OnResample(ctx, &domain.ResampleEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventResample},
			Entries:   n,
			Points:    points,
			Step:      step,
			Duration:  elapsed,
		})
	}
	return true
}
