package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"statusboard/internal/config"
	"statusboard/internal/metrics"
	"statusboard/internal/sysinfo"
)

const mb = 1024 * 1024

type testEnv struct {
	handler http.Handler
	counter *metrics.RequestCounter
}

func newTestEnv(t *testing.T, mutate func(*config.Config), host sysinfo.HostInfoProvider) testEnv {
	t.Helper()

	cfg, err := config.Load(config.MapProvider{"APP_VERSION": "2.3.0", "NODE_ENV": "Staging"})
	if err != nil {
		t.Fatal(err)
	}
	if mutate != nil {
		mutate(&cfg)
	}
	if host == nil {
		host = sysinfo.StaticHost{
			Name:       "node-a",
			OS:         "linux",
			Cores:      2,
			TotalBytes: 4096 * mb,
			FreeBytes:  1024 * mb,
			UptimeSecs: 3661,
			Pid:        77,
		}
	}

	counter := &metrics.RequestCounter{}
	h, err := NewRouter(RouterDeps{
		Config:    cfg,
		Snapshots: sysinfo.NewCollector(host, cfg.Build),
		Metrics:   metrics.NewRegistry(counter, cfg.Build),
	})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	return testEnv{handler: h, counter: counter}
}

func (e testEnv) do(method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	for i := 0; i < 3; i++ {
		rec := env.do(http.MethodGet, "/health")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Fatalf("content type = %q", ct)
		}
		if rec.Body.String() != `{"status":"UP"}` {
			t.Fatalf("body = %q", rec.Body.String())
		}
	}
}

func TestHealthIgnoresBrokenHost(t *testing.T) {
	env := newTestEnv(t, nil, sysinfo.StaticHost{Err: errors.New("no procfs")})
	rec := env.do(http.MethodGet, "/health")
	if rec.Code != http.StatusOK || rec.Body.String() != `{"status":"UP"}` {
		t.Fatalf("health = %d %q", rec.Code, rec.Body.String())
	}
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	rec := env.do(http.MethodGet, "/")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type = %q", ct)
	}
	body := rec.Body.String()
	for _, w := range []string{"2.3.0", "Staging", "node-a", "4096.00 MB", "1024.00 MB", "3072.00 MB", "1h 1m", "77"} {
		if !strings.Contains(body, w) {
			t.Fatalf("dashboard missing %q", w)
		}
	}
}

func TestDashboardText(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	rec := env.do(http.MethodGet, "/?format=text")

	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("content type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "[Resource usage]") {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestMinimalMode(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.Mode = config.ModeMinimal }, nil)
	rec := env.do(http.MethodGet, "/")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != config.DefaultGreeting {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestAbout(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	rec := env.do(http.MethodGet, "/about")

	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("content type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "statusboard 2.3.0 (Staging)") {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestSystemJSON(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	rec := env.do(http.MethodGet, "/api/system")

	var snap sysinfo.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Version != "2.3.0" || snap.Hostname != "node-a" || snap.UsedMemoryMB != 3072 {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestCollectorFailureIs500(t *testing.T) {
	env := newTestEnv(t, nil, sysinfo.StaticHost{Err: errors.New("no procfs")})

	for _, path := range []string{"/", "/api/system"} {
		rec := env.do(http.MethodGet, path)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("%s status = %d; want 500", path, rec.Code)
		}
		body := strings.TrimSpace(rec.Body.String())
		if body != snapshotUnavailable || strings.Contains(body, "procfs") {
			t.Fatalf("%s body = %q; want fixed message without host detail", path, body)
		}
	}
}

func TestMetricsIncludesOwnRequest(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	env.do(http.MethodGet, "/")
	env.do(http.MethodGet, "/health")
	env.do(http.MethodGet, "/about")

	rec := env.do(http.MethodGet, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain; version=0.0.4") {
		t.Fatalf("content type = %q", ct)
	}

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "\nhttp_requests_total 4\n") {
		t.Fatalf("expected http_requests_total 4 in:\n%s", body)
	}
	if env.counter.Value() != 4 {
		t.Fatalf("counter = %d; want 4", env.counter.Value())
	}
}

func TestEveryRequestCounted(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	if env.counter.Value() != 0 {
		t.Fatalf("counter starts at %d", env.counter.Value())
	}

	reqs := []struct {
		method string
		path   string
		code   int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/nope", http.StatusNotFound},
		{http.MethodPost, "/health", http.StatusMethodNotAllowed},
		{http.MethodGet, "/Health", http.StatusNotFound},
		{http.MethodGet, "/metrics", http.StatusOK},
	}

	var last uint64
	for i, rq := range reqs {
		rec := env.do(rq.method, rq.path)
		if rec.Code != rq.code {
			t.Fatalf("%s %s = %d; want %d", rq.method, rq.path, rec.Code, rq.code)
		}
		v := env.counter.Value()
		if v != uint64(i+1) || v < last {
			t.Fatalf("after %d requests counter = %d", i+1, v)
		}
		last = v
	}
}

func TestConcurrentRequests(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	srv := httptest.NewServer(env.handler)
	defer srv.Close()

	paths := []string{"/", "/health", "/about", "/metrics", "/api/system"}
	client := &http.Client{Timeout: 10 * time.Second}

	var wg sync.WaitGroup
	errs := make(chan error, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := client.Get(srv.URL + paths[i%len(paths)])
			if err != nil {
				errs <- err
				return
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				errs <- fmt.Errorf("%s: status %d", paths[i%len(paths)], resp.StatusCode)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatal(err)
	}
	if env.counter.Value() != 100 {
		t.Fatalf("counter = %d; want 100", env.counter.Value())
	}
}

func TestAllowlist(t *testing.T) {
	deny := newTestEnv(t, func(c *config.Config) { c.AllowedSubnets = []string{"10.0.0.0/8"} }, nil)
	if rec := deny.do(http.MethodGet, "/health"); rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d; want 403", rec.Code)
	}
	if deny.counter.Value() != 1 {
		t.Fatalf("rejected request not counted")
	}

	// httptest requests come from 192.0.2.1
	allow := newTestEnv(t, func(c *config.Config) { c.AllowedSubnets = []string{"192.0.2.0/24"} }, nil)
	if rec := allow.do(http.MethodGet, "/health"); rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
}

func TestRouterRejectsBadSubnet(t *testing.T) {
	cfg, _ := config.Load(config.MapProvider{})
	cfg.AllowedSubnets = []string{"not-a-cidr"}
	_, err := NewRouter(RouterDeps{
		Config:    cfg,
		Snapshots: sysinfo.NewCollector(sysinfo.StaticHost{}, cfg.Build),
		Metrics:   metrics.NewRegistry(&metrics.RequestCounter{}, cfg.Build),
	})
	if err == nil {
		t.Fatalf("expected error for bad subnet")
	}
}

func TestRemoteIP(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"192.0.2.1:1234", "192.0.2.1"},
		{"10.1.2.3", "10.1.2.3"},
		{"[2001:db8::1]:443", "2001:db8::1"},
		{"2001:db8::1", "2001:db8::1"},
	}

	for _, tc := range cases {
		got := remoteIP(tc.in)
		if got == nil || got.String() != tc.want {
			t.Fatalf("remoteIP(%q) = %v; want %s", tc.in, got, tc.want)
		}
	}
	if remoteIP("garbage") != nil {
		t.Fatalf("expected nil for garbage")
	}
}
