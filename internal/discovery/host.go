// Package discovery queries registered listen components and keeps
// track of what they report.
//
// A Host fans ListenPorts calls out over a bounded set of goroutines.
// Components are pure, so queries run concurrently without locking;
// each instance reads its own immutable configuration context.
package discovery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"lports/config"
	"lports/internal/core"
	ncerr "lports/internal/errors"
	"lports/internal/metrics"
	"lports/internal/retry"
	"lports/listen"
	"lports/util"
)

// Registration is an instance known to the host.
type Registration struct {
	ID uuid.UUID
	core.Instance

	breaker *retry.CircuitBreaker
}

// Quarantined reports whether the instance is currently skipped after
// repeated panics.
func (r Registration) Quarantined() bool {
	return r.breaker != nil && r.breaker.CurrentState() == retry.StateOpen
}

// Host owns the registered component instances.
type Host struct {
	logger      *util.Logger
	metrics     *metrics.Collector
	check       bool
	concurrency int
	quarantine  retry.CircuitBreakerConfig
	now         func() time.Time

	mu    sync.RWMutex
	regs  []Registration
	names map[string]uuid.UUID
}

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the logger.  The default logger is quiet.
func WithLogger(l *util.Logger) Option { return func(h *Host) { h.logger = l } }

// WithMetrics records query metrics on c.
func WithMetrics(c *metrics.Collector) Option { return func(h *Host) { h.metrics = c } }

// WithConformanceCheck validates every reported port against the
// definitions of its component type.
func WithConformanceCheck(on bool) Option { return func(h *Host) { h.check = on } }

// WithConcurrency bounds the number of components queried at once.
func WithConcurrency(n int) Option {
	return func(h *Host) {
		if n > 0 {
			h.concurrency = n
		}
	}
}

// WithQuarantine skips a component for timeout once it has panicked
// failures times in a row.
func WithQuarantine(failures int, timeout time.Duration) Option {
	return func(h *Host) {
		h.quarantine.MaxFailures = failures
		h.quarantine.ResetTimeout = timeout
	}
}

// New returns an empty Host.
func New(opts ...Option) *Host {
	h := &Host{
		logger:      util.NewLogger(0),
		concurrency: config.DefaultMaxConcurrentQueries,
		quarantine: retry.CircuitBreakerConfig{
			MaxFailures:  config.DefaultQuarantineFailures,
			ResetTimeout: config.DefaultQuarantineTimeout,
			HalfOpenMax:  1,
		},
		now:   time.Now,
		names: map[string]uuid.UUID{},
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Register adds inst and returns its generated ID.  Names must be unique.
func (h *Host) Register(inst core.Instance) (uuid.UUID, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, dup := h.names[inst.Name]; dup {
		return uuid.Nil, fmt.Errorf("register %q: %w", inst.Name, ncerr.ErrDuplicateComponent)
	}
	cbCfg := h.quarantine
	cbCfg.Now = h.now
	name := inst.Name
	cbCfg.OnStateChange = func(from, to retry.State) {
		h.logger.Warn("%s: quarantine %s -> %s", name, from, to)
	}
	reg := Registration{ID: uuid.New(), Instance: inst, breaker: retry.NewCircuitBreaker(&cbCfg)}
	h.regs = append(h.regs, reg)
	h.names[inst.Name] = reg.ID

	h.metrics.ComponentRegistered()
	h.logger.Verbose("registered %s (%s) id=%s definitions=%d",
		inst.Name, inst.Type, reg.ID, len(inst.Definitions()))
	return reg.ID, nil
}

// Registrations returns the registered instances in registration order.
func (h *Host) Registrations() []Registration {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Registration, len(h.regs))
	copy(out, h.regs)
	return out
}

// Discover queries every registered instance and returns the combined
// result in registration order.  A component that panics contributes an
// empty entry carrying the error; only cancellation of ctx fails the
// whole pass.
func (h *Host) Discover(ctx context.Context) (Snapshot, error) {
	regs := h.Registrations()
	start := h.now()

	entries := make([]Entry, len(regs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.concurrency)
	for i, reg := range regs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entries[i] = h.query(reg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{Taken: start, Entries: entries}
	elapsed := h.now().Sub(start)
	h.metrics.DiscoveryCompleted(snap.PortCount(), elapsed)
	h.logger.Verbose("discovered %d ports across %d components in %s",
		snap.PortCount(), len(entries), elapsed)
	return snap, nil
}

func (h *Host) query(reg Registration) Entry {
	e := Entry{
		ID:    reg.ID.String(),
		Name:  reg.Name,
		Type:  reg.Type,
		Ports: []listen.Port{},
	}

	var ports []listen.Port
	err := reg.breaker.Execute(func() error {
		var err error
		ports, err = listenPorts(reg.Instance)
		return err
	})
	if err != nil {
		cerr := ncerr.WrapComponent(reg.Name, reg.Type, err)
		e.Error = cerr.Error()
		if ncerr.Is(err, retry.ErrCircuitOpen) {
			h.logger.Verbose("skipping %v", cerr)
		} else {
			h.metrics.RecordError(e.Error)
			h.logger.Error("%v", cerr)
		}
		return e
	}

	if ports != nil {
		e.Ports = ports
	}
	h.metrics.ComponentQueried(len(e.Ports))
	h.logger.Debug("%s: %d ports", reg.Name, len(e.Ports))

	if h.check {
		e.Violations = h.conform(reg, e.Ports)
	}
	return e
}

// listenPorts turns a panicking component into an error.
func listenPorts(inst core.Instance) (ports []listen.Port, err error) {
	defer func() {
		if v := recover(); v != nil {
			ports = nil
			err = fmt.Errorf("%w: %v", ncerr.ErrComponentPanic, v)
		}
	}()
	return inst.ListenPorts(), nil
}

func (h *Host) conform(reg Registration, ports []listen.Port) []string {
	var defs []listen.PortDefinition
	for _, d := range reg.Definitions() {
		defs = append(defs, d)
	}
	var violations []string
	for _, p := range ports {
		if err := listen.CheckConformance(p, defs...); err != nil {
			violations = append(violations, err.Error())
			h.metrics.NonConforming()
			h.logger.Warn("%s: %v", reg.Name, err)
		}
	}
	return violations
}

// ── Definitions ──────────────────────────────────────────────────────

// DefinitionEntry is one port definition declared by a component type.
type DefinitionEntry struct {
	Type                 string                   `json:"type"`
	Property             string                   `json:"property"`
	Transport            listen.TransportProtocol `json:"transport"`
	ApplicationProtocols []string                 `json:"applicationProtocols"`
}

// Definitions lists the port definitions of every registered component
// type, once per type, in first-registration order.
func (h *Host) Definitions() []DefinitionEntry {
	seen := map[string]bool{}
	out := []DefinitionEntry{}
	for _, reg := range h.Registrations() {
		if seen[reg.Type] {
			continue
		}
		seen[reg.Type] = true
		out = append(out, TypeDefinitions(reg.Type, reg.Descriptors)...)
	}
	return out
}

// TypeDefinitions flattens the listen port descriptors of one type.
func TypeDefinitions(typ string, descs []listen.PropertyDescriptor) []DefinitionEntry {
	out := []DefinitionEntry{}
	for _, d := range descs {
		if d.ListenPort == nil {
			continue
		}
		out = append(out, DefinitionEntry{
			Type:                 typ,
			Property:             d.Name,
			Transport:            d.ListenPort.TransportProtocol(),
			ApplicationProtocols: d.ListenPort.ApplicationProtocols(),
		})
	}
	return out
}
