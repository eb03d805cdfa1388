package httpserver

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"statusboard/internal/logger"
)

type cidrAllowlist struct {
	nets []*net.IPNet
}

func newCIDRAllowlist(cidrs []string) (*cidrAllowlist, error) {
	a := &cidrAllowlist{}
	for _, c := range cidrs {
		_, n, err := net.ParseCIDR(strings.TrimSpace(c))
		if err != nil {
			return nil, fmt.Errorf("allowed subnet %q: %w", c, err)
		}
		a.nets = append(a.nets, n)
	}
	return a, nil
}

func (a *cidrAllowlist) allows(ip net.IP) bool {
	for _, n := range a.nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

func (a *cidrAllowlist) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := remoteIP(r.RemoteAddr)
		if ip == nil || !a.allows(ip) {
			logger.Debugf("allowlist: rejected %s %s from %q", r.Method, r.URL.Path, r.RemoteAddr)
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// remoteIP accepts "host:port" as well as the bare address RealIP may leave.
func remoteIP(addr string) net.IP {
	addr = strings.TrimSpace(addr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	return net.ParseIP(strings.Trim(addr, "[]"))
}
