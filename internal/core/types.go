// Package core holds the concrete listen component types and the
// builder that turns a manifest entry into a queryable Instance.
//
// Architecture layers (bottom → top):
//
//	listen  →  core  →  discovery  →  api / cmd (CLI)
//
// Every type here is a pure description: ListenPorts reads property
// values and returns ports, it never opens a socket.
package core

import (
	"slices"
	"sort"

	"lports/listen"
)

// Type is a component type known to the builder.  Each type publishes
// its property descriptors so the host can enumerate port definitions
// before any instance is queried.
type Type interface {
	listen.Component
	listen.Describer
}

var types = map[string]Type{
	"listener":       Listener{},
	"reverse-tunnel": ReverseTunnel{},
	"http":           HTTP{},
	"syslog":         Syslog{},
	"discovery-api":  DiscoveryAPI{},
}

// Lookup returns the component type registered under name.
func Lookup(name string) (Type, bool) {
	t, ok := types[name]
	return t, ok
}

// TypeNames returns the registered type names in sorted order.
func TypeNames() []string {
	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Descriptor returns the descriptor named name from descs.
func Descriptor(descs []listen.PropertyDescriptor, name string) (listen.PropertyDescriptor, bool) {
	i := slices.IndexFunc(descs, func(d listen.PropertyDescriptor) bool { return d.Name == name })
	if i < 0 {
		return listen.PropertyDescriptor{}, false
	}
	return descs[i], true
}

// ── shared helpers ───────────────────────────────────────────────────

// portNumber reads a port property.  Missing, unparseable and
// non-positive values mean no port is offered.
func portNumber(ctx listen.ConfigurationContext, desc listen.PropertyDescriptor) (int, bool) {
	v := ctx.Property(desc)
	if !v.IsSet() {
		return 0, false
	}
	n, err := v.Int()
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// flag reads a boolean property, falling back to def when the value
// cannot be parsed.
func flag(ctx listen.ConfigurationContext, desc listen.PropertyDescriptor, def bool) bool {
	v := ctx.Property(desc)
	if !v.IsSet() {
		return def
	}
	b, err := v.Bool()
	if err != nil {
		return def
	}
	return b
}

// appendPort builds a port for def and appends it to ports.  A port
// that fails validation is dropped.
func appendPort(ports []listen.Port, name string, number int, def *listen.Definition, protocols []string) []listen.Port {
	p, err := listen.NewPortBuilder().
		Name(name).
		Number(number).
		Transport(def.TransportProtocol()).
		ApplicationProtocols(protocols).
		Build()
	if err != nil {
		return ports
	}
	return append(ports, p)
}

func definition(transport listen.TransportProtocol, protocols ...string) *listen.Definition {
	d := listen.MustDefinition(transport, protocols...)
	return &d
}
