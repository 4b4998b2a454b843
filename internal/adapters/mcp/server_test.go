package mcp

import (
	"context"
	"encoding/base64"
	"strconv"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verleihernix/math-visualizer/pkg/domain"
	"github.com/verleihernix/math-visualizer/pkg/expr"
	"github.com/verleihernix/math-visualizer/pkg/observability"
)

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func TestEvaluate(t *testing.T) {
	s := NewServer()
	ctx := context.Background()

	tests := []struct {
		name   string
		args   map[string]any
		y      float64
		finite bool
	}{
		{"square", map[string]any{"expr": "x^2", "x": 3.0}, 9, true},
		{"string x", map[string]any{"expr": "x + 1", "x": "2"}, 3, true},
		{"pole", map[string]any{"expr": "1/x", "x": 0.0}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.handleEvaluate(ctx, callRequest("evaluate", tt.args), tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.finite, res.Finite)
			if tt.finite {
				require.NotNil(t, res.Y)
				assert.InDelta(t, tt.y, *res.Y, 1e-6)
			} else {
				assert.Nil(t, res.Y)
			}
		})
	}
}

func TestEvaluate_Errors(t *testing.T) {
	metrics := observability.NewMetrics()
	s := NewServer(WithMetrics(metrics))
	ctx := context.Background()

	tests := []struct {
		name string
		args map[string]any
		want error
	}{
		{"unknown function", map[string]any{"expr": "foo(x)", "x": 1.0}, expr.ErrUnknownFunction},
		{"missing paren", map[string]any{"expr": "(x", "x": 1.0}, expr.ErrMissingCloseParen},
		{"missing x", map[string]any{"expr": "x"}, domain.ErrInvalidArgument},
		{"unknown argument", map[string]any{"expr": "x", "x": 1.0, "y": 2.0}, domain.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.handleEvaluate(ctx, callRequest("evaluate", tt.args), tt.args)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSample(t *testing.T) {
	s := NewServer()
	ctx := context.Background()
	args := map[string]any{"expr": "x", "width": 100, "height": 100, "scale": 10, "step": 1}

	res, err := s.handleSample(ctx, callRequest("sample", args), args)
	require.NoError(t, err)
	assert.Equal(t, float32(1), res.Step)
	require.Len(t, res.Runs, 1)
	require.Len(t, res.Runs[0], 11)
	assert.InDelta(t, -5, res.Runs[0][0][0], 1e-4)
	assert.InDelta(t, -5, res.Runs[0][0][1], 1e-4)
	assert.InDelta(t, 5, res.Runs[0][10][0], 1e-4)
	assert.InDelta(t, 5, res.Runs[0][10][1], 1e-4)
}

func TestSample_SplitsAtPoles(t *testing.T) {
	s := NewServer()
	args := map[string]any{"expr": "1/x", "width": 100, "height": 100, "scale": 10, "step": 1}

	res, err := s.handleSample(context.Background(), callRequest("sample", args), args)
	require.NoError(t, err)
	assert.Len(t, res.Runs, 2)
}

func TestSample_Limits(t *testing.T) {
	s := NewServer()

	tests := []struct {
		name string
		args map[string]any
	}{
		{"too many points", map[string]any{"expr": "x", "scale": 0.01}},
		{"step too small", map[string]any{"expr": "x", "step": 0.00001}},
		{"negative width", map[string]any{"expr": "x", "width": -1}},
		{"huge width", map[string]any{"expr": "x", "width": 1e30}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.handleSample(context.Background(), callRequest("sample", tt.args), tt.args)
			assert.Error(t, err)
		})
	}
}

func TestPlot(t *testing.T) {
	metrics := observability.NewMetrics()
	s := NewServer(WithMetrics(metrics))
	args := map[string]any{
		"exprs":  []any{"sin(x)", "x^2"},
		"colors": []any{"#ff8800"},
		"width":  320,
		"height": 240,
	}

	res, err := s.handlePlot(context.Background(), callRequest("plot", args))
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Len(t, res.Content, 2)

	text, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok)
	assert.Contains(t, text.Text, "Plotted 2 function(s)")

	img, ok := mcp.AsImageContent(res.Content[1])
	require.True(t, ok)
	assert.Equal(t, "image/png", img.MIMEType)
	data, err := base64.StdEncoding.DecodeString(img.Data)
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG", string(data[:4]))
}

func TestPlot_Errors(t *testing.T) {
	s := NewServer()

	tests := []struct {
		name string
		args map[string]any
	}{
		{"no expressions", map[string]any{}},
		{"parse error", map[string]any{"exprs": []any{"x", "sin x"}}},
		{"bad color", map[string]any{"exprs": []any{"x"}, "colors": []any{"plaid"}}},
		{"too large", map[string]any{"exprs": []any{"x"}, "width": 10000}},
		{"too many expressions", map[string]any{"exprs": manyExprs(MaxExpressions + 1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.handlePlot(context.Background(), callRequest("plot", tt.args))
			require.NoError(t, err)
			assert.True(t, res.IsError)
		})
	}
}

func manyExprs(n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = "x + " + strconv.Itoa(i)
	}
	return out
}
