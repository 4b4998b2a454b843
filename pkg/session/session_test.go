package session_test

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verleihernix/math-visualizer/pkg/domain"
	"github.com/verleihernix/math-visualizer/pkg/expr"
	"github.com/verleihernix/math-visualizer/pkg/sampler"
	"github.com/verleihernix/math-visualizer/pkg/session"
	"github.com/verleihernix/math-visualizer/pkg/view"
)

func TestSession_PlotAssignsIDsAndPalette(t *testing.T) {
	ctx := context.Background()
	s := session.New()

	a, err := s.Plot(ctx, "x")
	require.NoError(t, err)
	b, err := s.Plot(ctx, "x^2")
	require.NoError(t, err)
	c, err := s.PlotColor(ctx, "sin(x)", domain.Red)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, []int{a.ID, b.ID, c.ID})
	assert.Equal(t, domain.PaletteColor(0), a.Color)
	assert.Equal(t, domain.PaletteColor(1), b.Color)
	assert.Equal(t, domain.Red, c.Color)
	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Dirty())
}

func TestSession_ParseErrorLeavesListUntouched(t *testing.T) {
	ctx := context.Background()
	var events []*domain.ParseErrorEvent
	s := session.New(session.WithHooks(domain.Hooks{
		OnParseError: func(_ context.Context, e *domain.ParseErrorEvent) { events = append(events, e) },
	}))

	_, err := s.Plot(ctx, "x")
	require.NoError(t, err)

	_, err = s.Plot(ctx, "foo(1)")
	require.ErrorIs(t, err, expr.ErrUnknownFunction)
	_, err = s.Plot(ctx, "sin(1")
	require.ErrorIs(t, err, expr.ErrMissingCloseParen)

	assert.Equal(t, 1, s.Len())
	require.Len(t, events, 2)
	assert.Equal(t, "unknown_function", events[0].Kind)
	assert.Equal(t, "missing_close_paren", events[1].Kind)
}

func TestSession_RemoveAndClear(t *testing.T) {
	ctx := context.Background()
	var removed []int
	s := session.New(session.WithHooks(domain.Hooks{
		OnRemove: func(_ context.Context, e *domain.PlotEvent) { removed = append(removed, e.EntryID) },
	}))

	for _, src := range []string{"x", "2*x", "3*x"} {
		_, err := s.Plot(ctx, src)
		require.NoError(t, err)
	}

	require.NoError(t, s.Remove(ctx, 2))
	assert.ErrorIs(t, s.Remove(ctx, 2), domain.ErrEntryNotFound)

	entries := s.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "x", entries[0].Source)
	assert.Equal(t, "3*x", entries[1].Source)

	assert.Equal(t, 2, s.Clear(ctx))
	assert.Zero(t, s.Len())
	assert.Equal(t, []int{2, 1, 3}, removed)

	// IDs are never reused.
	e, err := s.Plot(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, 4, e.ID)
}

func TestSession_Recolor(t *testing.T) {
	ctx := context.Background()
	s := session.New()
	e, err := s.Plot(ctx, "x")
	require.NoError(t, err)

	require.NoError(t, s.Recolor(e.ID, domain.Cyan))
	got, err := s.Get(e.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Cyan, got.Color)

	assert.ErrorIs(t, s.Recolor(99, domain.Cyan), domain.ErrEntryNotFound)
	_, err = s.Get(99)
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
}

func TestSession_ResampleOnlyWhenDirty(t *testing.T) {
	ctx := context.Background()
	var passes int
	s := session.New(session.WithHooks(domain.Hooks{
		OnResample: func(context.Context, *domain.ResampleEvent) { passes++ },
	}))
	_, err := s.Plot(ctx, "x")
	require.NoError(t, err)

	assert.True(t, s.Resample(ctx))
	assert.False(t, s.Resample(ctx))
	assert.False(t, s.Dirty())

	s.Pan(1, 0)
	assert.True(t, s.Dirty())
	assert.True(t, s.Resample(ctx))

	s.Resize(1200, 800)
	assert.False(t, s.Dirty(), "same size must not dirty the session")

	s.PanPixels(0, 0)
	assert.False(t, s.Dirty())

	s.Invalidate()
	assert.True(t, s.Resample(ctx))
	assert.Equal(t, 3, passes)
}

func TestSession_ResampleMatchesSampler(t *testing.T) {
	ctx := context.Background()
	s := session.New()
	e, err := s.Plot(ctx, "1/x")
	require.NoError(t, err)
	s.Resample(ctx)

	got, err := s.Get(e.ID)
	require.NoError(t, err)

	v := s.View()
	want := sampler.SampleRuns(e.Evaluator, v, sampler.AdaptiveStep(v.Scale))
	assert.Equal(t, want, got.Runs)
	assert.NotEmpty(t, got.Points())
	for _, p := range got.Points() {
		assert.False(t, math.IsNaN(float64(p.Y)) || math.IsInf(float64(p.Y), 0))
	}
}

func TestSession_ViewMutations(t *testing.T) {
	s := session.New(session.WithView(view.New(800, 600, 20)))

	require.NoError(t, s.Zoom(2))
	assert.Equal(t, float32(40), s.View().Scale)
	assert.ErrorIs(t, s.Zoom(0), view.ErrInvalidFactor)

	s.Pan(3, -1)
	v := s.View()
	assert.Equal(t, float32(3), v.OffsetX)
	assert.Equal(t, float32(-1), v.OffsetY)

	require.NoError(t, s.ZoomAt(2, view.Point{X: 400, Y: 300}))

	s.Resize(1024, 768)
	s.Reset()
	v = s.View()
	assert.Equal(t, float32(20), v.Scale)
	assert.Zero(t, v.OffsetX)
	assert.Zero(t, v.OffsetY)
	assert.Equal(t, float32(1024), v.Width, "reset keeps the current size")

	assert.ErrorIs(t, s.SetView(view.Transform{}), view.ErrInvalidTransform)
	require.NoError(t, s.SetView(view.New(100, 100, 5)))
	assert.Equal(t, float32(5), s.View().Scale)
}

func TestSession_ScaleStaysInRange(t *testing.T) {
	s := session.New(session.WithView(view.New(1200, 800, 1e-7)))
	assert.Equal(t, view.MinScale, s.View().Scale)
	assert.LessOrEqual(t, sampler.Count(s.View(), s.Step()), 240001)

	s.Reset()
	assert.Equal(t, view.MinScale, s.View().Scale)

	assert.ErrorIs(t, s.SetView(view.New(1200, 800, 1e-7)), view.ErrInvalidTransform)
	assert.ErrorIs(t, s.SetView(view.New(1200, 800, 1e7)), view.ErrInvalidTransform)
	assert.Equal(t, view.MinScale, s.View().Scale)
}

func TestSession_StepFollowsPolicy(t *testing.T) {
	s := session.New(
		session.WithView(view.New(100, 100, 1)),
		session.WithStepPolicy(sampler.StepPolicy{Min: 0.01, Max: 0.25}),
	)
	assert.Equal(t, float32(0.25), s.Step())

	require.NoError(t, s.Zoom(1000))
	assert.Equal(t, float32(0.01), s.Step())
}

func TestSession_ReadSeesConsistentState(t *testing.T) {
	ctx := context.Background()
	s := session.New()
	_, err := s.Plot(ctx, "x^2")
	require.NoError(t, err)
	s.Resample(ctx)

	s.Read(func(v view.Transform, entries []session.Entry) {
		assert.Equal(t, view.Default(), v)
		require.Len(t, entries, 1)
		assert.NotEmpty(t, entries[0].Runs)
	})
}

func TestSession_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := session.New()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			_, _ = s.Plot(ctx, "sin(x)")
		}()
		go func() {
			defer wg.Done()
			s.Pan(0.5, 0)
			_ = s.Zoom(1.1)
		}()
		go func() {
			defer wg.Done()
			s.Resample(ctx)
			s.Read(func(view.Transform, []session.Entry) {})
		}()
	}
	wg.Wait()

	assert.Equal(t, 8, s.Len())
	s.Invalidate()
	assert.True(t, s.Resample(ctx))
	for _, e := range s.Entries() {
		assert.NotEmpty(t, e.Points())
	}
}
