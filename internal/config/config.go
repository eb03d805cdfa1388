package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	ModeDashboard = "dashboard"
	ModeMinimal   = "minimal"

	DefaultVersion     = "1.0.0"
	DefaultEnvironment = "Production"
	DefaultGreeting    = "DevOps Capstone Project - Surendar 🚀"
)

// processStart is the fallback build time, set at package init (process
// start). It must not move into Load: every snapshot of this process
// reports the same value.
var processStart = time.Now()

type Build struct {
	Version     string
	Environment string
	BuildTime   time.Time
	// BuildTimeRaw holds BUILD_TIME when it is set but not RFC3339.
	BuildTimeRaw string
}

type Config struct {
	ListenAddr      string
	Mode            string
	Greeting        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	AllowedSubnets  []string
	LogLevel        string
	// ReusePort binds with SO_REUSEPORT so a replacement process can take
	// over the port during a rolling restart. Off by default: a second
	// process on the same port must fail to start.
	ReusePort       bool
	Build           Build
}

// LoadFromEnv reads the process environment, layered over CONFIG_FILE when set.
func LoadFromEnv() (Config, error) {
	var p Provider = EnvProvider{}

	if path := str(p, "CONFIG_FILE", ""); path != "" {
		file, err := LoadFile(path)
		if err != nil {
			return Config{}, err
		}
		p = Layered{p, file}
	}
	return Load(p)
}

func Load(p Provider) (Config, error) {
	cfg := Config{
		ListenAddr:      str(p, "LISTEN_ADDR", "0.0.0.0:3000"),
		Mode:            strings.ToLower(str(p, "DASHBOARD_MODE", ModeDashboard)),
		Greeting:        str(p, "APP_GREETING", DefaultGreeting),
		RequestTimeout:  duration(p, "REQUEST_TIMEOUT", 3*time.Second),
		ShutdownTimeout: duration(p, "SHUTDOWN_TIMEOUT", 10*time.Second),
		AllowedSubnets:  splitCSV(str(p, "ALLOWED_SUBNETS", "")),
		LogLevel:        str(p, "LOG_LEVEL", "INFO"),
		ReusePort:       boolean(p, "REUSE_PORT", false),
		Build:           loadBuild(p),
	}

	switch cfg.Mode {
	case ModeDashboard, ModeMinimal:
	default:
		return Config{}, fmt.Errorf("DASHBOARD_MODE %q: want %q or %q", cfg.Mode, ModeDashboard, ModeMinimal)
	}
	return cfg, nil
}

func loadBuild(p Provider) Build {
	b := Build{
		Version:     str(p, "APP_VERSION", DefaultVersion),
		Environment: str(p, "NODE_ENV", str(p, "APP_ENV", DefaultEnvironment)),
		BuildTime:   processStart,
	}

	raw := str(p, "BUILD_TIME", "")
	if raw == "" {
		return b
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		b.BuildTime = t
		return b
	}
	b.BuildTimeRaw = raw
	return b
}

func str(p Provider, key, def string) string {
	v, ok := p.Lookup(key)
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		return def
	}
	return v
}

func duration(p Provider, key string, def time.Duration) time.Duration {
	v := str(p, key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func boolean(p Provider, key string, def bool) bool {
	v := str(p, key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
