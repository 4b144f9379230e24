// Package metrics provides lightweight, lock-free counters and gauges
// for tracking listen-port discovery.
//
// All methods are safe for concurrent use.  A nil *Collector is a
// valid no-op receiver, so callers never need to nil-check.
package metrics

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector tracks runtime metrics for a discovery host.
// A nil Collector is safe to use; all methods become no-ops.
type Collector struct {
	discoveriesTotal     atomic.Int64
	componentQueries     atomic.Int64
	portsReported        atomic.Int64
	portsActive          atomic.Int64
	componentsRegistered atomic.Int64
	nonConformingTotal   atomic.Int64
	errorsTotal          atomic.Int64

	mu            sync.RWMutex
	startTime     time.Time
	lastDiscovery time.Time
	lastDuration  time.Duration
	lastError     time.Time
	lastErrorMsg  string
}

// New creates a metrics collector with the start time set to now.
func New() *Collector {
	return &Collector{startTime: time.Now()}
}

// ── Registration ─────────────────────────────────────────────────────

// ComponentRegistered increments the registered component gauge.
func (c *Collector) ComponentRegistered() {
	if c == nil {
		return
	}
	c.componentsRegistered.Add(1)
}

// ComponentsRegistered returns the number of registered components.
func (c *Collector) ComponentsRegistered() int64 {
	if c == nil {
		return 0
	}
	return c.componentsRegistered.Load()
}

// ── Discovery ────────────────────────────────────────────────────────

// ComponentQueried records one ListenPorts call that reported n ports.
func (c *Collector) ComponentQueried(n int) {
	if c == nil {
		return
	}
	c.componentQueries.Add(1)
	c.portsReported.Add(int64(n))
}

// DiscoveryCompleted records a full discovery pass that found active
// ports and took d.
func (c *Collector) DiscoveryCompleted(active int, d time.Duration) {
	if c == nil {
		return
	}
	c.discoveriesTotal.Add(1)
	c.portsActive.Store(int64(active))
	c.mu.Lock()
	c.lastDiscovery = time.Now()
	c.lastDuration = d
	c.mu.Unlock()
}

// Discoveries returns the number of completed discovery passes.
func (c *Collector) Discoveries() int64 {
	if c == nil {
		return 0
	}
	return c.discoveriesTotal.Load()
}

// ComponentQueries returns the number of ListenPorts calls.
func (c *Collector) ComponentQueries() int64 {
	if c == nil {
		return 0
	}
	return c.componentQueries.Load()
}

// PortsReported returns the lifetime number of ports reported.
func (c *Collector) PortsReported() int64 {
	if c == nil {
		return 0
	}
	return c.portsReported.Load()
}

// ActivePorts returns the port count of the last discovery pass.
func (c *Collector) ActivePorts() int64 {
	if c == nil {
		return 0
	}
	return c.portsActive.Load()
}

// ── Conformance ──────────────────────────────────────────────────────

// NonConforming records a port that failed the conformance check.
func (c *Collector) NonConforming() {
	if c == nil {
		return
	}
	c.nonConformingTotal.Add(1)
}

// NonConformingCount returns the number of conformance failures.
func (c *Collector) NonConformingCount() int64 {
	if c == nil {
		return 0
	}
	return c.nonConformingTotal.Load()
}

// ── Error metrics ────────────────────────────────────────────────────

// RecordError increments the error counter and stores the message.
func (c *Collector) RecordError(msg string) {
	if c == nil {
		return
	}
	c.errorsTotal.Add(1)
	c.mu.Lock()
	c.lastError = time.Now()
	c.lastErrorMsg = msg
	c.mu.Unlock()
}

// ErrorCount returns the total number of errors recorded.
func (c *Collector) ErrorCount() int64 {
	if c == nil {
		return 0
	}
	return c.errorsTotal.Load()
}

// ── Snapshot ─────────────────────────────────────────────────────────

// Snapshot is a point-in-time view of all metrics.
type Snapshot struct {
	Uptime               string `json:"uptime"`
	ComponentsRegistered int64  `json:"components_registered"`
	Discoveries          int64  `json:"discoveries"`
	ComponentQueries     int64  `json:"component_queries"`
	PortsReported        int64  `json:"ports_reported"`
	ActivePorts          int64  `json:"active_ports"`
	NonConforming        int64  `json:"non_conforming"`
	ErrorsTotal          int64  `json:"errors_total"`
	LastDiscovery        string `json:"last_discovery,omitempty"`
	LastDuration         string `json:"last_duration,omitempty"`
	LastError            string `json:"last_error,omitempty"`
	LastErrorMessage     string `json:"last_error_message,omitempty"`
}

// Snapshot returns a copy of all current metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Uptime:               time.Since(c.startTime).Truncate(time.Second).String(),
		ComponentsRegistered: c.componentsRegistered.Load(),
		Discoveries:          c.discoveriesTotal.Load(),
		ComponentQueries:     c.componentQueries.Load(),
		PortsReported:        c.portsReported.Load(),
		ActivePorts:          c.portsActive.Load(),
		NonConforming:        c.nonConformingTotal.Load(),
		ErrorsTotal:          c.errorsTotal.Load(),
	}
	if !c.lastDiscovery.IsZero() {
		s.LastDiscovery = c.lastDiscovery.Format(time.RFC3339)
		s.LastDuration = c.lastDuration.String()
	}
	if !c.lastError.IsZero() {
		s.LastError = c.lastError.Format(time.RFC3339)
		s.LastErrorMessage = c.lastErrorMsg
	}
	return s
}

// JSON returns the snapshot as an indented JSON string.
func (c *Collector) JSON() string {
	s := c.Snapshot()
	data, _ := json.MarshalIndent(s, "", "  ")
	return string(data)
}

// ── Prometheus ───────────────────────────────────────────────────────

// Register exposes the collector's counters on reg.  The Prometheus
// metrics read the same atomics, so there is a single source of truth.
func (c *Collector) Register(reg prometheus.Registerer) error {
	load := func(v *atomic.Int64) func() float64 {
		return func() float64 { return float64(v.Load()) }
	}
	collectors := []prometheus.Collector{
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "lports", Name: "discoveries_total",
			Help: "Completed discovery passes.",
		}, load(&c.discoveriesTotal)),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "lports", Name: "component_queries_total",
			Help: "ListenPorts calls made against components.",
		}, load(&c.componentQueries)),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "lports", Name: "ports_reported_total",
			Help: "Listen ports reported by components.",
		}, load(&c.portsReported)),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "lports", Name: "active_ports",
			Help: "Listen ports found by the last discovery pass.",
		}, load(&c.portsActive)),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "lports", Name: "components_registered",
			Help: "Component instances registered with the host.",
		}, load(&c.componentsRegistered)),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "lports", Name: "non_conforming_total",
			Help: "Ports whose protocols are not declared by a port definition.",
		}, load(&c.nonConformingTotal)),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "lports", Name: "errors_total",
			Help: "Errors raised while querying components.",
		}, load(&c.errorsTotal)),
	}
	for _, col := range collectors {
		if err := reg.Register(col); err != nil {
			return err
		}
	}
	return nil
}
