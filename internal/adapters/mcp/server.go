// Package mcp exposes expression evaluation, sampling and plotting as
// Model Context Protocol tools.
package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"

	"github.com/verleihernix/math-visualizer/internal/buildinfo"
	"github.com/verleihernix/math-visualizer/internal/logging"
	"github.com/verleihernix/math-visualizer/internal/render"
	"github.com/verleihernix/math-visualizer/pkg/domain"
	"github.com/verleihernix/math-visualizer/pkg/expr"
	"github.com/verleihernix/math-visualizer/pkg/observability"
	"github.com/verleihernix/math-visualizer/pkg/sampler"
	"github.com/verleihernix/math-visualizer/pkg/session"
	"github.com/verleihernix/math-visualizer/pkg/view"
)

// ServerName is advertised to MCP clients.
const ServerName = "mathviz"

// MaxPoints bounds the samples returned by the sample tool.
const MaxPoints = 20_000

// MaxExpressions bounds how many functions one plot call may draw.
const MaxExpressions = 16

// MaxDimension bounds the width and height of plots.
const MaxDimension = 2048

// EvaluateResult is the structured output of the evaluate tool.
type EvaluateResult struct {
	Expr   string   `json:"expr" jsonschema_description:"Normalized expression"`
	X      float64  `json:"x"`
	Y      *float64 `json:"y" jsonschema_description:"Value at x, null when not finite"`
	Finite bool     `json:"finite"`
}

// SampleResult is the structured output of the sample tool.
type SampleResult struct {
	Step float32        `json:"step" jsonschema_description:"World units between samples"`
	Runs [][][2]float64 `json:"runs" jsonschema_description:"Continuous runs of world-space [x, y] points"`
}

// Server wraps an MCP server with the plotting tools registered.
type Server struct {
	mcpServer *server.MCPServer
	logger    *slog.Logger
	metrics   *observability.Metrics
	policy    sampler.StepPolicy
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics records plots and parse errors.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithStepPolicy bounds the adaptive sampling step.
func WithStepPolicy(p sampler.StepPolicy) Option {
	return func(s *Server) { s.policy = p.OrDefault() }
}

// NewServer creates a Server with its tools and resources registered.
func NewServer(opts ...Option) *Server {
	s := &Server{
		logger: logging.NewNop(),
		policy: sampler.DefaultStepPolicy,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mcpServer = server.NewMCPServer(ServerName, buildinfo.Short(),
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over SSE on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://localhost" + addr
	if !strings.HasPrefix(addr, ":") {
		baseURL = "http://" + addr
	}
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func viewOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithNumber("width", mcp.Description("Pixel width (default 1200)")),
		mcp.WithNumber("height", mcp.Description("Pixel height (default 800)")),
		mcp.WithNumber("scale", mcp.Description("Pixels per world unit (default 50)")),
		mcp.WithNumber("offset_x", mcp.Description("World x at the centre of the view")),
		mcp.WithNumber("offset_y", mcp.Description("World y at the centre of the view")),
	}
}

func (s *Server) registerTools() {
	builtins := strings.Join(expr.Builtins(), ", ")

	evaluateTool := mcp.NewTool("evaluate",
		mcp.WithDescription("Evaluate an expression in x at a single point. Functions: "+builtins+"."),
		mcp.WithString("expr", mcp.Required(), mcp.Description("Expression, e.g. sin(x) * x^2")),
		mcp.WithNumber("x", mcp.Required(), mcp.Description("Value of x")),
		mcp.WithOutputSchema[EvaluateResult](),
	)
	s.mcpServer.AddTool(evaluateTool, mcp.NewStructuredToolHandler(s.handleEvaluate))

	sampleOpts := append([]mcp.ToolOption{
		mcp.WithDescription("Sample an expression across the visible range of a view. Non-finite values split the curve into runs."),
		mcp.WithString("expr", mcp.Required(), mcp.Description("Expression in x")),
		mcp.WithNumber("step", mcp.Description("World units between samples (default adapts to scale)")),
		mcp.WithOutputSchema[SampleResult](),
	}, viewOptions()...)
	s.mcpServer.AddTool(mcp.NewTool("sample", sampleOpts...), mcp.NewStructuredToolHandler(s.handleSample))

	plotOpts := append([]mcp.ToolOption{
		mcp.WithDescription("Render one or more expressions to a PNG image."),
		mcp.WithArray("exprs", mcp.Required(), mcp.Description("Expressions to plot"), mcp.Items(map[string]any{"type": "string"})),
		mcp.WithArray("colors", mcp.Description("Colors by name or #rrggbb, one per expression"), mcp.Items(map[string]any{"type": "string"})),
	}, viewOptions()...)
	s.mcpServer.AddTool(mcp.NewTool("plot", plotOpts...), s.handlePlot)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("mathviz://functions", "Built-in functions",
		mcp.WithResourceDescription("Functions available in expressions"),
		mcp.WithMIMEType("text/plain"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "mathviz://functions",
				MIMEType: "text/plain",
				Text:     strings.Join(expr.Builtins(), "\n"),
			},
		}, nil
	})
}

type evaluateArgs struct {
	Expr string   `mapstructure:"expr"`
	X    *float64 `mapstructure:"x"`
}

type viewArgs struct {
	Width   *float32 `mapstructure:"width"`
	Height  *float32 `mapstructure:"height"`
	Scale   *float32 `mapstructure:"scale"`
	OffsetX *float32 `mapstructure:"offset_x"`
	OffsetY *float32 `mapstructure:"offset_y"`
}

type sampleArgs struct {
	View viewArgs `mapstructure:",squash"`
	Expr string   `mapstructure:"expr"`
	Step *float32 `mapstructure:"step"`
}

type plotArgs struct {
	View   viewArgs `mapstructure:",squash"`
	Exprs  []string `mapstructure:"exprs"`
	Colors []string `mapstructure:"colors"`
}

func decodeArgs(in map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(in); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	return nil
}

func (a viewArgs) transform(maxDim float32) (view.Transform, error) {
	v := view.Default()
	if a.Width != nil {
		v.Width = *a.Width
	}
	if a.Height != nil {
		v.Height = *a.Height
	}
	if a.Scale != nil {
		v.Scale = *a.Scale
	}
	if a.OffsetX != nil {
		v.OffsetX = *a.OffsetX
	}
	if a.OffsetY != nil {
		v.OffsetY = *a.OffsetY
	}
	if err := v.Validate(); err != nil {
		return v, err
	}
	if v.Width > maxDim || v.Height > maxDim {
		return v, fmt.Errorf("%w: size %vx%v exceeds %v", domain.ErrInvalidArgument, v.Width, v.Height, maxDim)
	}
	if v.Scale != view.ClampScale(v.Scale) {
		return v, fmt.Errorf("%w: scale must be within [%v, %v]", domain.ErrInvalidArgument, view.MinScale, view.MaxScale)
	}
	return v, nil
}

func (s *Server) parse(src string) (*expr.Evaluator, error) {
	ev, err := expr.Parse(src)
	if err != nil {
		var pe *expr.ParseError
		if s.metrics != nil && errors.As(err, &pe) {
			s.metrics.ObserveParseError(pe.KindName())
		}
		return nil, err
	}
	return ev, nil
}

func (s *Server) handleEvaluate(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (EvaluateResult, error) {
	var in evaluateArgs
	if err := decodeArgs(args, &in); err != nil {
		return EvaluateResult{}, err
	}
	if in.X == nil {
		return EvaluateResult{}, fmt.Errorf("%w: x is required", domain.ErrInvalidArgument)
	}
	ev, err := s.parse(in.Expr)
	if err != nil {
		return EvaluateResult{}, err
	}

	x := float32(*in.X)
	y := float64(ev.Evaluate(x))
	res := EvaluateResult{Expr: ev.String(), X: float64(x)}
	if !math.IsNaN(y) && !math.IsInf(y, 0) {
		res.Y = &y
		res.Finite = true
	}
	return res, nil
}

func (s *Server) handleSample(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (SampleResult, error) {
	var in sampleArgs
	if err := decodeArgs(args, &in); err != nil {
		return SampleResult{}, err
	}
	v, err := in.View.transform(math.MaxFloat32)
	if err != nil {
		return SampleResult{}, err
	}
	step := s.policy.Step(v.Scale)
	if in.Step != nil {
		if !(*in.Step >= sampler.DefaultMinStep) {
			return SampleResult{}, fmt.Errorf("%w: step must be at least %v", domain.ErrInvalidArgument, sampler.DefaultMinStep)
		}
		step = *in.Step
	}
	if n := sampler.Count(v, step); n > MaxPoints {
		return SampleResult{}, fmt.Errorf("%w: %d samples exceed the limit of %d", domain.ErrInvalidArgument, n, MaxPoints)
	}

	ev, err := s.parse(in.Expr)
	if err != nil {
		return SampleResult{}, err
	}

	res := SampleResult{Step: step, Runs: [][][2]float64{}}
	for _, run := range sampler.SampleRuns(ev, v, step) {
		out := make([][2]float64, len(run))
		for i, p := range run {
			w := v.ScreenToWorld(p)
			out[i] = [2]float64{float64(w.X), float64(w.Y)}
		}
		res.Runs = append(res.Runs, out)
	}
	return res, nil
}

func (s *Server) handlePlot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in plotArgs
	if err := decodeArgs(request.GetArguments(), &in); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(in.Exprs) == 0 {
		return mcp.NewToolResultError("at least one expression is required"), nil
	}
	if len(in.Exprs) > MaxExpressions {
		return mcp.NewToolResultError(fmt.Sprintf("at most %d expressions per plot", MaxExpressions)), nil
	}
	v, err := in.View.transform(MaxDimension)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sessOpts := []session.Option{
		session.WithView(v),
		session.WithStepPolicy(s.policy),
		session.WithLogger(s.logger),
	}
	if s.metrics != nil {
		sessOpts = append(sessOpts, session.WithHooks(s.metrics.Hooks()))
	}
	sess := session.New(sessOpts...)

	for i, src := range in.Exprs {
		var err error
		if i < len(in.Colors) && in.Colors[i] != "" {
			c, cerr := domain.ParseColor(in.Colors[i])
			if cerr != nil {
				return mcp.NewToolResultError(cerr.Error()), nil
			}
			_, err = sess.PlotColor(ctx, src, c)
		} else {
			_, err = sess.Plot(ctx, src)
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("%q: %v", src, err)), nil
		}
	}

	var buf bytes.Buffer
	if err := render.PNG(&buf, render.FromSession(ctx, sess)); err != nil {
		s.logger.Error("render failed", "err", err)
		return mcp.NewToolResultError(fmt.Sprintf("render failed: %v", err)), nil
	}

	left, right := v.VisibleRange()
	summary := fmt.Sprintf("Plotted %d function(s) over x in [%g, %g]", len(in.Exprs), left, right)
	return mcp.NewToolResultImage(summary, base64.StdEncoding.EncodeToString(buf.Bytes()), "image/png"), nil
}
