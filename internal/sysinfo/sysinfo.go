package sysinfo

import (
	"context"
	"fmt"
	"time"

	"statusboard/internal/config"
)

const bytesPerMB = 1024 * 1024

// Snapshot is a point-in-time view of the host, the process and the build.
// A new one is built for every request.
type Snapshot struct {
	Version     string    `json:"version"`
	Environment string    `json:"environment"`
	BuildTime   string    `json:"buildTime"`
	CapturedAt  time.Time `json:"capturedAt"`

	Hostname string `json:"hostname"`
	Platform string `json:"platform"`
	CPUCores int    `json:"cpuCores"`

	TotalMemoryMB float64 `json:"totalMemoryMB"`
	FreeMemoryMB  float64 `json:"freeMemoryMB"`
	UsedMemoryMB  float64 `json:"usedMemoryMB"`

	UptimeSeconds uint64 `json:"uptimeSeconds"`
	ProcessID     int    `json:"processId"`
}

// UptimeHuman renders UptimeSeconds with FormatUptime.
func (s Snapshot) UptimeHuman() string {
	return FormatUptime(s.UptimeSeconds)
}

// MemoryUsedPercent is 0 when total memory is unknown.
func (s Snapshot) MemoryUsedPercent() float64 {
	if s.TotalMemoryMB <= 0 {
		return 0
	}
	return s.UsedMemoryMB / s.TotalMemoryMB * 100
}

type Collector struct {
	host  HostInfoProvider
	build config.Build
	now   func() time.Time
}

func NewCollector(host HostInfoProvider, build config.Build) *Collector {
	return &Collector{
		host:  host,
		build: build,
		now:   time.Now,
	}
}

func (c *Collector) Collect(ctx context.Context) (Snapshot, error) {
	total, free, err := c.host.Memory(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("memory: %w", err)
	}
	uptime, err := c.host.Uptime(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("uptime: %w", err)
	}
	hostname, err := c.host.Hostname(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("hostname: %w", err)
	}

	totalMB := float64(total) / bytesPerMB
	freeMB := float64(free) / bytesPerMB

	return Snapshot{
		Version:     c.build.Version,
		Environment: c.build.Environment,
		BuildTime:   buildTimeString(c.build),
		CapturedAt:  c.now().UTC(),

		Hostname: hostname,
		Platform: c.host.Platform(),
		CPUCores: c.host.CPUCores(),

		TotalMemoryMB: totalMB,
		FreeMemoryMB:  freeMB,
		UsedMemoryMB:  totalMB - freeMB,

		UptimeSeconds: uptime,
		ProcessID:     c.host.PID(),
	}, nil
}

func buildTimeString(b config.Build) string {
	if b.BuildTimeRaw != "" {
		return b.BuildTimeRaw
	}
	return b.BuildTime.UTC().Format(time.RFC3339)
}

// FormatUptime renders seconds as "{hours}h {minutes}m". Leftover seconds
// are dropped.
func FormatUptime(seconds uint64) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
