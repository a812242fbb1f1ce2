package router

import (
	"net"
	"net/http"
	"strings"
)

const fallbackClientIP = "127.0.0.1"

// ClientIPFromRequest returns the first X-Forwarded-For entry, then X-Real-IP,
// then the socket peer. Deployments sit behind an edge proxy that rewrites
// these headers; the peer address only matters for direct local traffic.
func ClientIPFromRequest(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}

	return fallbackClientIP
}
