package httpserver

import (
	"fmt"
	"net"

	"github.com/libp2p/go-reuseport"
)

// Listen binds addr. A port that is already taken is an error unless
// reusePort is set, in which case SO_REUSEPORT lets this process share it
// with its successor during a rolling restart.
func Listen(addr string, reusePort bool) (net.Listener, error) {
	if reusePort {
		if !reuseport.Available() {
			return nil, fmt.Errorf("listen on %s: SO_REUSEPORT not supported on this platform", addr)
		}
		ln, err := reuseport.Listen("tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("listen on %s (reuseport): %w", addr, err)
		}
		return ln, nil
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	return ln, nil
}
