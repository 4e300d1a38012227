// Package admin implements the optional read-only HTTP surface
// (health check + Prometheus metrics) described in SPEC_FULL.md
// section 4.10. It is grounded on the Echo server setup in
// _examples/presbrey-pkg/irc/server/webportal.go (e := echo.New();
// e.HideBanner; e.Start/e.Shutdown) and the private-registry
// promhttp.HandlerFor pattern in
// _examples/presbrey-pkg/echoprom/echoprom.go. This package never
// touches Registry state directly; it only reads the Alive flag and
// serves whatever the metrics.Prometheus registry currently holds.
package admin

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/klaxonwire/goircd/internal/metrics"
)

// Server is the optional admin HTTP surface. A nil *Server disables it
// entirely; callers are expected to check for nil before calling Start.
type Server struct {
	echo  *echo.Echo
	alive atomic.Bool
}

// New builds an admin Server that exposes GET /healthz and GET /metrics
// for the given Prometheus recorder.
func New(rec *metrics.Prometheus) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{echo: e}
	s.alive.Store(true)

	e.GET("/healthz", s.handleHealthz)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(rec.Registry, promhttp.HandlerOpts{})))

	return s
}

// Handler returns the underlying HTTP handler, for use in tests that
// exercise routes without binding a real listener.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) handleHealthz(c echo.Context) error {
	if !s.alive.Load() {
		return c.String(http.StatusServiceUnavailable, "shutting down")
	}
	return c.String(http.StatusOK, "ok")
}

// Start serves the admin surface on addr until the process exits or
// Shutdown is called. It returns http.ErrServerClosed on a clean
// shutdown, matching net/http.Server's convention.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// MarkUnhealthy flips /healthz to report a non-OK status, used while
// the server is tearing down.
func (s *Server) MarkUnhealthy() {
	s.alive.Store(false)
}

// Shutdown gracefully stops the admin HTTP surface.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
