// Package ipchecker extracts the client address of an HTTP request,
// honouring the headers set by a reverse proxy.
package ipchecker

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the client address, checking in order the "X-Real-IP"
// header, the first entry of "X-Forwarded-For" and finally RemoteAddr.
// It returns nil when none of them holds a valid address.
func ClientIP(request *http.Request) net.IP {
	if ip := net.ParseIP(strings.TrimSpace(request.Header.Get("X-Real-IP"))); ip != nil {
		return ip
	}

	if xff := request.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(request.RemoteAddr)
	if err != nil {
		return net.ParseIP(request.RemoteAddr)
	}
	return net.ParseIP(host)
}
