package sysinfo

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// HostInfoProvider is the slice of the OS the collector reads from.
type HostInfoProvider interface {
	Hostname(ctx context.Context) (string, error)
	Platform() string
	CPUCores() int
	// Memory returns total and available bytes.
	Memory(ctx context.Context) (total, free uint64, err error)
	// Uptime returns system uptime in seconds.
	Uptime(ctx context.Context) (uint64, error)
	PID() int
}

// GopsutilHost reads live values through gopsutil. Platform and core count
// do not change while the process runs, so they are resolved once.
type GopsutilHost struct {
	platform string
	cores    int
	pid      int
}

// NewGopsutilHost probes the OS once. An error here means the telemetry
// layer is unusable and the server should not start.
func NewGopsutilHost(ctx context.Context) (*GopsutilHost, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("host info: %w", err)
	}
	cores, err := cpu.CountsWithContext(ctx, true)
	if err != nil || cores <= 0 {
		cores = runtime.NumCPU()
	}

	platform := info.OS
	if platform == "" {
		platform = runtime.GOOS
	}

	h := &GopsutilHost{
		platform: platform,
		cores:    cores,
		pid:      os.Getpid(),
	}

	// fail fast rather than on the first request
	if _, _, err := h.Memory(ctx); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *GopsutilHost) Hostname(ctx context.Context) (string, error) {
	return os.Hostname()
}

func (h *GopsutilHost) Platform() string { return h.platform }

func (h *GopsutilHost) CPUCores() int { return h.cores }

func (h *GopsutilHost) PID() int { return h.pid }

func (h *GopsutilHost) Memory(ctx context.Context) (uint64, uint64, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("virtual memory: %w", err)
	}
	free := vm.Available
	if free > vm.Total {
		free = vm.Total
	}
	return vm.Total, free, nil
}

func (h *GopsutilHost) Uptime(ctx context.Context) (uint64, error) {
	return host.UptimeWithContext(ctx)
}

// StaticHost returns fixed values. Err, when set, is returned by every
// fallible call.
type StaticHost struct {
	Name       string
	OS         string
	Cores      int
	TotalBytes uint64
	FreeBytes  uint64
	UptimeSecs uint64
	Pid        int
	Err        error
}

func (s StaticHost) Hostname(context.Context) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	return s.Name, nil
}

func (s StaticHost) Platform() string { return s.OS }

func (s StaticHost) CPUCores() int { return s.Cores }

func (s StaticHost) PID() int { return s.Pid }

func (s StaticHost) Memory(context.Context) (uint64, uint64, error) {
	if s.Err != nil {
		return 0, 0, s.Err
	}
	return s.TotalBytes, s.FreeBytes, nil
}

func (s StaticHost) Uptime(context.Context) (uint64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	return s.UptimeSecs, nil
}
