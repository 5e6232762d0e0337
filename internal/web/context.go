package web

import (
	"context"
	"net"
	"net/http"

	"github.com/JonMunkholm/regioncompare/internal/core"
)

// withSession adds the session id to ctx so request logs can be tied to one
// browser.
func withSession(ctx context.Context, id string) context.Context {
	return core.ContextWithSessionID(ctx, id)
}

// clientIP returns the request's client address without the port.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
