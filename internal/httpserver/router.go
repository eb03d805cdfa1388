package httpserver

import (
	"context"
	"errors"
	"net/http"

	"statusboard/internal/config"
	"statusboard/internal/metrics"
	"statusboard/internal/sysinfo"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// SnapshotSource builds a fresh snapshot per call.
type SnapshotSource interface {
	Collect(ctx context.Context) (sysinfo.Snapshot, error)
}

type RouterDeps struct {
	Config    config.Config
	Snapshots SnapshotSource
	Metrics   *metrics.Registry
}

type Server struct {
	cfg  config.Config
	sys  SnapshotSource
	prom *metrics.Registry
}

func NewRouter(deps RouterDeps) (http.Handler, error) {
	if deps.Snapshots == nil {
		return nil, errors.New("httpserver: snapshot source is required")
	}
	if deps.Metrics == nil {
		return nil, errors.New("httpserver: metrics registry is required")
	}

	s := &Server{
		cfg:  deps.Config,
		sys:  deps.Snapshots,
		prom: deps.Metrics,
	}

	r := chi.NewRouter()

	// Counting comes first so every inbound request is seen, including
	// ones rejected further down the chain.
	r.Use(s.prom.Middleware)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)
	if s.cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.cfg.RequestTimeout))
	}

	if len(s.cfg.AllowedSubnets) > 0 {
		allow, err := newCIDRAllowlist(s.cfg.AllowedSubnets)
		if err != nil {
			return nil, err
		}
		r.Use(allow.middleware)
	}

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	r.Get("/about", s.handleAbout)
	r.Get("/api/system", s.handleSystem)
	r.Method(http.MethodGet, "/metrics", s.prom.Handler())

	return r, nil
}
