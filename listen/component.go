package listen

import "slices"

// Component is implemented by extensions that create listen ports.
//
// ListenPorts describes the ports the given configuration results in.  It
// must not touch network state and must be safe to call repeatedly and
// concurrently, including before the component has started.  It returns
// an empty, non-nil slice when nothing is offered, and keeps the order
// stable for identical configuration so hosts can diff the results.
type Component interface {
	ListenPorts(ctx ConfigurationContext) []Port
}

// ComponentFunc adapts a function to the Component interface.
type ComponentFunc func(ctx ConfigurationContext) []Port

func (f ComponentFunc) ListenPorts(ctx ConfigurationContext) []Port { return f(ctx) }

// CheckConformance reports whether port is covered by one of defs: some
// definition must share its transport and declare every active
// application protocol.  It returns nil or a *NonConformingError.
func CheckConformance(port ListenPort, defs ...PortDefinition) error {
	transport := port.TransportProtocol()
	active := port.ApplicationProtocols()

	var best []string
	matched := false
	for _, def := range defs {
		if def == nil || def.TransportProtocol() != transport {
			continue
		}
		declared := def.ApplicationProtocols()
		var undeclared []string
		for _, p := range active {
			if !slices.Contains(declared, p) {
				undeclared = append(undeclared, p)
			}
		}
		if len(undeclared) == 0 {
			return nil
		}
		if !matched || len(undeclared) < len(best) {
			best = undeclared
		}
		matched = true
	}
	return &NonConformingError{
		Port:       port.PortName(),
		Transport:  transport,
		Undeclared: best,
	}
}

// EqualPorts reports whether a and b hold structurally equal ports in the
// same order.
func EqualPorts(a, b []Port) bool {
	return slices.EqualFunc(a, b, Port.Equal)
}
