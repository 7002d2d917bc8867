// internal/requestinfo/clientaddr.go
//
// Client address resolution.
//
// The API runs behind a proxy or edge network, so the socket peer is
// rarely the browser.  ClientAddr trusts forwarding headers in this order:
//
//  1. first entry of X-Forwarded-For,
//  2. X-Real-IP,
//  3. host part of r.RemoteAddr,
//  4. the literal "unknown".
//
// Every unidentifiable client therefore shares the "unknown" bucket in the
// rate limiter.
package requestinfo

import (
	"net"
	"net/http"
	"strings"
)

// Unknown is returned when no address can be resolved.
const Unknown = "unknown"

// ClientAddr returns the best-effort client address for r.
func ClientAddr(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if xrip := strings.TrimSpace(r.Header.Get("X-Real-IP")); xrip != "" {
		return xrip
	}
	if r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
			return host
		}
		return r.RemoteAddr
	}
	return Unknown
}
