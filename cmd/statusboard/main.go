package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"statusboard/internal/config"
	"statusboard/internal/httpserver"
	"statusboard/internal/logger"
	"statusboard/internal/metrics"
	"statusboard/internal/sysinfo"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	logger.SetLevel(cfg.LogLevel)

	probeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	host, err := sysinfo.NewGopsutilHost(probeCtx)
	cancel()
	if err != nil {
		logger.Fatalf("host telemetry unavailable: %v", err)
	}

	requests := &metrics.RequestCounter{}
	r, err := httpserver.NewRouter(httpserver.RouterDeps{
		Config:    cfg,
		Snapshots: sysinfo.NewCollector(host, cfg.Build),
		Metrics:   metrics.NewRegistry(requests, cfg.Build),
	})
	if err != nil {
		logger.Fatalf("router init: %v", err)
	}

	// port in use is fatal unless REUSE_PORT opts into sharing it
	ln, err := httpserver.Listen(cfg.ListenAddr, cfg.ReusePort)
	if err != nil {
		logger.Fatalf("%v", err)
	}

	srv := &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 2 * time.Second,
	}

	logger.Infof("statusboard %s (%s) listening on %s, mode=%s, reuseport=%t, pid=%d",
		cfg.Build.Version, cfg.Build.Environment, cfg.ListenAddr, cfg.Mode, cfg.ReusePort, os.Getpid())

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
		return
	case sig := <-stop:
		logger.Infof("received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("forced shutdown after %s: %v", cfg.ShutdownTimeout, err)
		return
	}
	logger.Infof("shut down cleanly after %d requests", requests.Value())
}
