package clientip

import (
	"net"
	"net/http"
	"strings"
)

// GetIP extracts the client IP address from an HTTP request, honoring
// common proxy headers before falling back to the socket address.
// X-Forwarded-For may carry a chain; the left-most entry is the original
// client.
func GetIP(r *http.Request) string {
	if r == nil {
		return ""
	}

	// CDN headers carry a single verified address and win over the
	// forwarding chain.
	for _, h := range []string{"CF-Connecting-IP", "DO-Connecting-IP"} {
		if v := r.Header.Get(h); v != "" {
			if ip := parseIP(strings.TrimSpace(v)); ip != "" {
				return ip
			}
		}
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first, _, found := strings.Cut(xff, ","); found || first != "" {
			if ip := parseIP(strings.TrimSpace(first)); ip != "" {
				return ip
			}
		}
	}

	if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
		if ip := parseIP(strings.TrimSpace(xrip)); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr without a port, e.g. in tests.
		if ip := parseIP(r.RemoteAddr); ip != "" {
			return ip
		}
		return r.RemoteAddr
	}
	return host
}

// parseIP returns the canonical string form of a valid IP, or "".
func parseIP(s string) string {
	ip := net.ParseIP(s)
	if ip == nil {
		return ""
	}
	return ip.String()
}
