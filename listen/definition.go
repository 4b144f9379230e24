package listen

import (
	"fmt"
	"slices"
	"strings"
)

// PortDefinition describes a kind of listen port a component type could
// expose.  It is declared once, at registration time, independent of any
// running instance.
type PortDefinition interface {
	// TransportProtocol is the single transport used by ports of this
	// definition.
	TransportProtocol() TransportProtocol

	// ApplicationProtocols lists every application protocol a port of
	// this kind could support, or nothing when no application protocol
	// is known or applicable (a raw byte stream, for example).
	//
	// Guidance for the identifiers:
	//   - use IANA service, ALPN, or URI-scheme names where they exist;
	//   - leave out TLS variants such as "wss" or "h2c";
	//   - for protocols layered on HTTP, also list the underlying HTTP
	//     tokens, e.g. ["http/1.1", "h2", "grpc"].
	ApplicationProtocols() []string
}

// Definition is the immutable PortDefinition implementation.
type Definition struct {
	transport TransportProtocol
	protocols []string
}

var _ PortDefinition = Definition{}

// NewDefinition validates and builds a Definition.  protocols must be
// non-nil; pass an empty slice (or use [NewTransportDefinition]) when
// there are no application protocols.  The slice is copied.
func NewDefinition(transport TransportProtocol, protocols []string) (Definition, error) {
	if !transport.Valid() {
		return Definition{}, fmt.Errorf("port definition: %w (got %s)", ErrMissingTransportProtocol, transport)
	}
	if protocols == nil {
		return Definition{}, fmt.Errorf("port definition: %w", ErrNilApplicationProtocols)
	}
	return Definition{transport: transport, protocols: slices.Clone(protocols)}, nil
}

// NewTransportDefinition builds a Definition without application protocols.
func NewTransportDefinition(transport TransportProtocol) (Definition, error) {
	return NewDefinition(transport, []string{})
}

// MustDefinition is like NewDefinition but panics on error.  It is meant
// for package-level property descriptors.
func MustDefinition(transport TransportProtocol, protocols ...string) Definition {
	if protocols == nil {
		protocols = []string{}
	}
	d, err := NewDefinition(transport, protocols)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Definition) TransportProtocol() TransportProtocol { return d.transport }

// ApplicationProtocols returns a copy of the declared protocols; it is
// never nil.
func (d Definition) ApplicationProtocols() []string {
	if d.protocols == nil {
		return []string{}
	}
	return slices.Clone(d.protocols)
}

// Supports reports whether protocol is declared by d.
func (d Definition) Supports(protocol string) bool {
	return slices.Contains(d.protocols, protocol)
}

// Equal reports structural equality.  Protocol order matters.
func (d Definition) Equal(other Definition) bool {
	return d.transport == other.transport && slices.Equal(d.protocols, other.protocols)
}

// Hash is consistent with Equal.
func (d Definition) Hash() uint64 {
	h := newHasher()
	h.string(string(d.transport))
	h.strings(d.protocols)
	return h.sum()
}

func (d Definition) String() string {
	return fmt.Sprintf("Definition[transport=%s, applicationProtocols=[%s]]",
		d.transport, strings.Join(d.protocols, ", "))
}
