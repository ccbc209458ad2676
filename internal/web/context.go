package web

import (
	"context"
	"net"
	"net/http"

	"github.com/JonMunkholm/tabledef/internal/core"
)

// WithRequestMetadata adds IP and User-Agent to context for update logging.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	return core.WithClient(ctx, core.Client{IP: clientIP(r), UserAgent: r.UserAgent()})
}

// clientIP returns the request's remote address without its port.
// TrustedRealIP has already replaced it for proxied requests.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
