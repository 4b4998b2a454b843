package http

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/verleihernix/math-visualizer/internal/logging"
	"github.com/verleihernix/math-visualizer/internal/render"
	"github.com/verleihernix/math-visualizer/pkg/domain"
	"github.com/verleihernix/math-visualizer/pkg/expr"
	"github.com/verleihernix/math-visualizer/pkg/observability"
	"github.com/verleihernix/math-visualizer/pkg/ports"
	"github.com/verleihernix/math-visualizer/pkg/sampler"
	"github.com/verleihernix/math-visualizer/pkg/session"
	"github.com/verleihernix/math-visualizer/pkg/view"
)

// CacheHeader reports whether a plot came from the render cache.
const CacheHeader = "X-Cache"

// MaxSamples bounds the points returned by a single sample request.
const MaxSamples = 200_000

// DefaultCacheTTL is used when no TTL option is given.
const DefaultCacheTTL = 10 * time.Minute

// Server serves evaluation, sampling and rendering over HTTP.
type Server struct {
	logger  *slog.Logger
	cache   ports.RenderCache
	metrics *observability.Metrics
	policy  sampler.StepPolicy
	ttl     time.Duration
	specDoc []byte
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCache enables caching of rendered plots.
func WithCache(c ports.RenderCache) Option {
	return func(s *Server) { s.cache = c }
}

// WithMetrics records plots, parse errors and cache lookups, and mounts /metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithStepPolicy bounds the adaptive sampling step.
func WithStepPolicy(p sampler.StepPolicy) Option {
	return func(s *Server) { s.policy = p.OrDefault() }
}

// WithCacheTTL sets how long rendered plots stay cached.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Server) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// NewHandler validates the embedded OpenAPI document and builds the router.
func NewHandler(ctx context.Context, opts ...Option) (http.Handler, error) {
	s := &Server{
		logger: logging.NewNop(),
		policy: sampler.DefaultStepPolicy,
		ttl:    DefaultCacheTTL,
	}
	for _, opt := range opts {
		opt(s)
	}

	doc, err := LoadSpec(ctx)
	if err != nil {
		return nil, err
	}
	if s.specDoc, err = json.Marshal(doc); err != nil {
		return nil, fmt.Errorf("failed to encode openapi spec: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(rawSpec)
	})
	r.Get("/openapi.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(s.specDoc)
	})
	r.Get("/swagger", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/evaluate", s.Evaluate)
		r.Get("/sample", s.Sample)
		r.Get("/plot.png", s.plotHandler(render.FormatPNG))
		r.Get("/plot.pdf", s.plotHandler(render.FormatPDF))
	})

	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	return enableCORS(r), nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>mathviz API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// EvaluateResponse is the body of GET /v1/evaluate.
type EvaluateResponse struct {
	Expr   string   `json:"expr"`
	X      float64  `json:"x"`
	Y      *float64 `json:"y"`
	Finite bool     `json:"finite"`
}

// SampleResponse is the body of GET /v1/sample.
type SampleResponse struct {
	Step   float32      `json:"step"`
	Runs   int          `json:"runs"`
	Points [][2]float32 `json:"points"`
}

// ErrorResponse is the body of every 4xx/5xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Pos   *int   `json:"pos,omitempty"`
}

// Evaluate handles GET /v1/evaluate.
func (s *Server) Evaluate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	src, err := bindExpr(q)
	if err != nil {
		s.badRequest(w, err)
		return
	}
	var x float32
	if err := bindRequired(q, "x", &x); err != nil {
		s.badRequest(w, err)
		return
	}

	ev, err := s.parse(src)
	if err != nil {
		s.badRequest(w, err)
		return
	}

	y := float64(ev.Evaluate(x))
	resp := EvaluateResponse{Expr: ev.String(), X: float64(x)}
	if !math.IsNaN(y) && !math.IsInf(y, 0) {
		resp.Y = &y
		resp.Finite = true
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// Sample handles GET /v1/sample.
func (s *Server) Sample(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	src, err := bindExpr(q)
	if err != nil {
		s.badRequest(w, err)
		return
	}
	v, err := bindView(q)
	if err != nil {
		s.badRequest(w, err)
		return
	}
	step := s.policy.Step(v.Scale)
	var custom *float32
	if err := bindOptional(q, "step", &custom); err != nil {
		s.badRequest(w, err)
		return
	}
	if custom != nil {
		if !(*custom >= sampler.DefaultMinStep) {
			s.badRequest(w, fmt.Errorf("step must be at least %v", sampler.DefaultMinStep))
			return
		}
		step = *custom
	}
	if n := sampler.Count(v, step); n > MaxSamples {
		s.badRequest(w, fmt.Errorf("%d samples exceed the limit of %d, increase step", n, MaxSamples))
		return
	}

	ev, err := s.parse(src)
	if err != nil {
		s.badRequest(w, err)
		return
	}

	runs := sampler.SampleRuns(ev, v, step)
	resp := SampleResponse{Step: step, Runs: len(runs), Points: [][2]float32{}}
	for _, run := range runs {
		for _, p := range run {
			resp.Points = append(resp.Points, [2]float32{p.X, p.Y})
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) plotHandler(f render.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		exprs, colors, err := bindPlot(q)
		if err != nil {
			s.badRequest(w, err)
			return
		}
		v, err := bindView(q)
		if err != nil {
			s.badRequest(w, err)
			return
		}

		key := PlotKey(f, v, exprs, colors)
		if data, ok := s.cached(r.Context(), key); ok {
			s.writeBlob(w, f, data, observability.CacheHit)
			return
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

		for i, src := range exprs {
			if i < len(colors) && strings.TrimSpace(colors[i]) != "" {
				c, err := domain.ParseColor(colors[i])
				if err != nil {
					s.badRequest(w, err)
					return
				}
				_, err = sess.PlotColor(r.Context(), src, c)
			} else {
				_, err = sess.Plot(r.Context(), src)
			}
			if err != nil {
				s.badRequest(w, err)
				return
			}
		}

		var buf bytes.Buffer
		if err := render.Encode(&buf, f, render.FromSession(r.Context(), sess)); err != nil {
			s.logger.Error("render failed", "format", f, "err", err)
			s.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: fmt.Sprintf("render error: %v", err)})
			return
		}

		if s.cache != nil {
			if err := s.cache.Set(r.Context(), key, buf.Bytes(), s.ttl); err != nil {
				s.logger.Warn("render cache store failed", "key", key, "err", err)
			}
		}
		s.writeBlob(w, f, buf.Bytes(), observability.CacheMiss)
	}
}

func (s *Server) cached(ctx context.Context, key string) ([]byte, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		s.observeCache(observability.CacheHit)
		return data, true
	case !errors.Is(err, domain.ErrCacheMiss):
		s.logger.Warn("render cache lookup failed", "key", key, "err", err)
	}
	s.observeCache(observability.CacheMiss)
	return nil, false
}

func (s *Server) observeCache(result string) {
	if s.metrics != nil {
		s.metrics.ObserveCache(result)
	}
}

// parse compiles src, counting failures when metrics are enabled.
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

// PlotKey derives the render cache key for a plot request.
func PlotKey(f render.Format, v view.Transform, exprs, colors []string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%v|%v|%v|%v|%v", f, v.Width, v.Height, v.Scale, v.OffsetX, v.OffsetY)
	for i, e := range exprs {
		c := ""
		if i < len(colors) {
			c = strings.ToLower(strings.TrimSpace(colors[i]))
		}
		fmt.Fprintf(h, "|%s@%s", strings.TrimSpace(e), c)
	}
	return string(f) + ":" + hex.EncodeToString(h.Sum(nil))
}

func (s *Server) writeBlob(w http.ResponseWriter, f render.Format, data []byte, cache string) {
	w.Header().Set("Content-Type", f.ContentType())
	if s.cache != nil {
		w.Header().Set(CacheHeader, cache)
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Warn("failed to write response", "err", err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("failed to encode response", "err", err)
	}
}

func (s *Server) badRequest(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: err.Error()}
	var pe *expr.ParseError
	if errors.As(err, &pe) {
		pos := pe.Pos
		resp.Kind = pe.KindName()
		resp.Pos = &pos
	}
	s.writeJSON(w, http.StatusBadRequest, resp)
}
