// Package metrics defines the narrow Recorder interface the core
// dispatch loop updates after each cycle, and a Prometheus-backed
// implementation for it, grounded on the promauto.With(registry)
// pattern in _examples/presbrey-pkg/echoprom/echoprom.go. The core
// package depends only on Recorder; nothing under internal/session,
// internal/registry, or internal/dispatch imports Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder receives periodic snapshots of server-wide gauges. SetUsers
// and SetChannels are called by the core after each dispatch cycle.
type Recorder interface {
	SetUsers(n int)
	SetChannels(n int)
}

// NoOp implements Recorder by discarding every observation. It is the
// default when no admin HTTP surface is configured.
type NoOp struct{}

// SetUsers implements Recorder.
func (NoOp) SetUsers(int) {}

// SetChannels implements Recorder.
func (NoOp) SetChannels(int) {}

// Prometheus implements Recorder against a private registry, the way
// echoprom keeps its own Registry rather than registering against the
// global default one.
type Prometheus struct {
	Registry *prometheus.Registry

	users    prometheus.Gauge
	channels prometheus.Gauge
}

// NewPrometheus creates a Prometheus recorder with its own registry and
// the two gauges the admin /metrics endpoint exposes.
func NewPrometheus() *Prometheus {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Prometheus{
		Registry: reg,
		users: factory.NewGauge(prometheus.GaugeOpts{
			Name: "goircd_connected_users",
			Help: "Number of currently connected sessions, registered or not.",
		}),
		channels: factory.NewGauge(prometheus.GaugeOpts{
			Name: "goircd_active_channels",
			Help: "Number of channels that currently have at least one member.",
		}),
	}
}

// SetUsers implements Recorder.
func (p *Prometheus) SetUsers(n int) { p.users.Set(float64(n)) }

// SetChannels implements Recorder.
func (p *Prometheus) SetChannels(n int) { p.channels.Set(float64(n)) }
