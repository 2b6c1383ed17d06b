package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cascade/pkg/cache"
	"github.com/matzehuels/cascade/pkg/errors"
	"github.com/matzehuels/cascade/pkg/model"
	"github.com/matzehuels/cascade/pkg/observability"
	"github.com/matzehuels/cascade/pkg/pipeline"
)

const (
	defaultAddr = ":8080"

	// maxModelBytes bounds request bodies.
	maxModelBytes = 10 << 20

	shutdownTimeout = 5 * time.Second
)

// serveFlags holds the serve command's flags.
type serveFlags struct {
	addr    string
	redis   string
	prefix  string
	noCache bool
}

// serveCommand creates the serve command that exposes the pipeline over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the render pipeline over HTTP",
		Long: `Serve the render pipeline over HTTP.

Endpoints:
  POST /render?format=svg   render the model in the request body
  POST /layout              compute the layout of the model in the request body
  GET  /healthz             health check (pings Redis when configured)
  GET  /metrics             Prometheus metrics

Render options are read from the query string: width, height, margin,
colors, axes, ticks, grow, scale and policy. The body is JSON unless the
Content-Type names YAML or TOML.

Artifacts are cached in the local file cache, or in Redis with --redis.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			applyServeConfig(cmd, cfg.Serve, &flags)
			return c.runServe(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.addr, "addr", defaultAddr, "listen address")
	cmd.Flags().StringVar(&flags.redis, "redis", "", "Redis URL for a shared cache (redis://host:6379/0)")
	cmd.Flags().StringVar(&flags.prefix, "prefix", "", "cache key prefix")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")

	return cmd
}

func applyServeConfig(cmd *cobra.Command, cfg ServeConfig, flags *serveFlags) {
	if !cmd.Flags().Changed("addr") && cfg.Addr != "" {
		flags.addr = cfg.Addr
	}
	if !cmd.Flags().Changed("redis") && cfg.Redis != "" {
		flags.redis = cfg.Redis
	}
	if !cmd.Flags().Changed("prefix") && cfg.Prefix != "" {
		flags.prefix = cfg.Prefix
	}
}

// runServe wires the cache, metrics, and router, then serves until ctx ends.
func (c *CLI) runServe(ctx context.Context, flags serveFlags) error {
	var (
		backend cache.Cache
		err     error
	)
	switch {
	case flags.noCache:
		backend = cache.NewNullCache()
	case flags.redis != "":
		backend, err = cache.NewRedisCache(ctx, cache.RedisConfig{URL: flags.redis})
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		c.Logger.Info("using redis cache")
	default:
		if backend, err = newCache(false); err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
	}

	var keyer cache.Keyer
	if flags.prefix != "" {
		keyer = cache.NewScopedKeyer(nil, flags.prefix)
	}
	runner := pipeline.NewRunner(backend, keyer, c.Logger)
	defer runner.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewPrometheus(reg)
	observability.SetPipelineHooks(metrics)
	observability.SetCacheHooks(metrics)
	observability.SetHTTPHooks(metrics)
	defer observability.Reset()

	srv := newServer(runner, reg, c.Logger)
	return srv.ListenAndServe(ctx, flags.addr)
}

// =============================================================================
// Server
// =============================================================================

// server exposes a pipeline Runner over HTTP.
type server struct {
	runner *pipeline.Runner
	logger *log.Logger
	router chi.Router
}

func newServer(runner *pipeline.Runner, gatherer prometheus.Gatherer, logger *log.Logger) *server {
	s := &server{runner: runner, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Post("/render", s.handleRender)
	r.Post("/layout", s.handleLayout)

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(l) }()
	s.logger.Info("listening", "addr", l.Addr().String())

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down")
		cctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(cctx)
	case err := <-errCh:
		return err
	}
}

// instrument reports every request to the HTTP hooks and attaches a
// request-scoped logger to the context.
func (s *server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		route := r.URL.Path
		hooks.OnRequest(r.Context(), r.Method, route)

		logger := s.logger.With("request_id", middleware.GetReqID(r.Context()))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(withLogger(r.Context(), logger)))

		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, route, status, d)
		logger.Debug("request", "method", r.Method, "route", route, "status", status, "duration", d)
	})
}

// =============================================================================
// Handlers
// =============================================================================

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.runner.Cache.(interface{ Ping(context.Context) error }); ok {
		if err := p.Ping(r.Context()); err != nil {
			loggerFromContext(r.Context()).Warn("health check failed", "err", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_serving"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, err := queryOptions(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	opts.Formats = []string{format}

	m, err := s.readModel(w, r, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	artifacts, hit, err := s.runner.RenderWithCacheInfo(r.Context(), m, nil, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", pipeline.ContentTypes[format])
	w.Header().Set("X-Cache", cacheStatus(hit))
	_, _ = w.Write(artifacts[format])
}

func (s *server) handleLayout(w http.ResponseWriter, r *http.Request) {
	opts, err := queryOptions(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	m, err := s.readModel(w, r, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	layout, hit, err := s.runner.ComputeLayoutWithCacheInfo(r.Context(), m, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("X-Cache", cacheStatus(hit))
	writeJSON(w, http.StatusOK, layout)
}

// readModel decodes the request body in the encoding named by Content-Type.
func (s *server) readModel(w http.ResponseWriter, r *http.Request, opts pipeline.Options) (*model.Model, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxModelBytes))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body")
	}
	return pipeline.LoadModel(data, bodyFormat(r.Header.Get("Content-Type")), opts)
}

// fail writes a coded error as JSON and reports it to the HTTP hooks.
func (s *server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	route := r.URL.Path
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
		route = rctx.RoutePattern()
	}
	observability.HTTP().OnError(r.Context(), r.Method, route, err)
	if status >= http.StatusInternalServerError {
		loggerFromContext(r.Context()).Error("request failed", "err", err)
	}

	body := map[string]string{"error": errors.UserMessage(err)}
	if code := errors.GetCode(err); code != "" {
		body["code"] = string(code)
	}
	writeJSON(w, status, body)
}

// =============================================================================
// Request Helpers
// =============================================================================

// queryOptions builds pipeline options from the query string.
func queryOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	var opts pipeline.Options

	floats := map[string]*float64{"width": &opts.Width, "height": &opts.Height, "scale": &opts.Scale}
	for name, dst := range floats {
		if v := q.Get(name); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "query %s", name)
			}
			*dst = f
		}
	}
	bools := map[string]*bool{"axes": &opts.Axes, "grow": &opts.Grow}
	for name, dst := range bools {
		if v := q.Get(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "query %s", name)
			}
			*dst = b
		}
	}
	if v := q.Get("ticks"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "query ticks")
		}
		opts.Ticks = n
	}
	if v := q.Get("margin"); v != "" {
		m, err := parseMargin(v)
		if err != nil {
			return opts, err
		}
		opts.Margin = &m
	}
	if v := q.Get("colors"); v != "" {
		opts.Colors = strings.Split(v, ",")
	}
	opts.Policy = q.Get("policy")
	return opts, nil
}

// bodyFormat maps a Content-Type to a model encoding. JSON is the default.
func bodyFormat(contentType string) model.Format {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "yaml"):
		return model.FormatYAML
	case strings.Contains(ct, "toml"):
		return model.FormatTOML
	case strings.Contains(ct, "jsonc"):
		return model.FormatJSONC
	default:
		return model.FormatJSON
	}
}

func cacheStatus(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
