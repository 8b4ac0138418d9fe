// Package httpserver builds the process HTTP server with hardened defaults.
package httpserver

import (
	"net/http"
	"time"
)

const (
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 120 * time.Second
)

// New returns an http.Server for the given address and handler. Per-request
// deadlines come from the router's timeout middleware; only connection-level
// timeouts are set here.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}
}
