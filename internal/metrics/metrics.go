package metrics

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"

	"statusboard/internal/config"
	"statusboard/internal/logger"
)

const (
	requestsMetric = "http_requests_total"
	requestsHelp   = "Total HTTP requests received, all routes."

	textContentType = "text/plain; version=0.0.4; charset=utf-8"
)

// RequestCounter counts inbound requests for the life of the process.
// It is safe for concurrent use.
type RequestCounter struct {
	n atomic.Uint64
}

func (c *RequestCounter) Inc() { c.n.Add(1) }

func (c *RequestCounter) Value() uint64 { return c.n.Load() }

// Registry owns the process's Prometheus collectors.
type Registry struct {
	reg      *prometheus.Registry
	requests *RequestCounter
	duration *prometheus.HistogramVec
	handler  http.Handler
}

func NewRegistry(requests *RequestCounter, build config.Build) *Registry {
	r := &Registry{
		reg:      prometheus.NewRegistry(),
		requests: requests,
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Time spent serving HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "code"}),
	}

	buildInfo := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "app_build_info",
		Help: "Build metadata of the running dashboard.",
		ConstLabels: prometheus.Labels{
			"version":     build.Version,
			"environment": build.Environment,
		},
	})
	buildInfo.Set(1)

	// http_requests_total is written by serveMetrics itself: a registered
	// collector would be rendered as a float, 1.234567e+06 past a million.
	r.reg.MustRegister(
		r.duration,
		buildInfo,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	r.handler = promhttp.InstrumentMetricHandler(r.reg, http.HandlerFunc(r.serveMetrics))
	return r
}

// Gatherer exposes the underlying registry, mainly for tests.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

// Handler serves the text exposition format.
func (r *Registry) Handler() http.Handler { return r.handler }

func (r *Registry) serveMetrics(w http.ResponseWriter, req *http.Request) {
	// read first so the value includes this scrape
	count := r.requests.Value()

	mfs, err := r.reg.Gather()
	if err != nil {
		if len(mfs) == 0 {
			logger.Errorf("gather metrics: %v", err)
			http.Error(w, "metrics unavailable", http.StatusInternalServerError)
			return
		}
		logger.Warnf("gather metrics (partial): %v", err)
	}

	var buf bytes.Buffer
	writeRequestsTotal(&buf, count)
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(&buf, mf); err != nil {
			logger.Errorf("encode metric %s: %v", mf.GetName(), err)
			http.Error(w, "metrics unavailable", http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", textContentType)
	_, _ = buf.WriteTo(w)
}

// writeRequestsTotal renders the counter as an integer sample.
func writeRequestsTotal(w io.Writer, n uint64) {
	fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s counter\n%s %d\n",
		requestsMetric, requestsHelp, requestsMetric, requestsMetric, n)
}

// Middleware counts the request before anything downstream runs, then
// records how long it took.
func (r *Registry) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.requests.Inc()

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)

		r.duration.
			WithLabelValues(routeLabel(req), strconv.Itoa(statusOf(ww))).
			Observe(time.Since(start).Seconds())
	})
}

// routeLabel keeps label cardinality bounded to registered patterns.
func routeLabel(req *http.Request) string {
	if rc := chi.RouteContext(req.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

func statusOf(ww middleware.WrapResponseWriter) int {
	if s := ww.Status(); s != 0 {
		return s
	}
	return http.StatusOK
}
