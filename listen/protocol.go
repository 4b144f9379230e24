// Package listen describes the network listen ports that components
// create from their configuration.
//
// A component type declares the kinds of ports it could expose by
// attaching a [Definition] to its property descriptors.  At runtime a
// [Component] reports the ports it is actually configured for as
// immutable [Port] snapshots.  Nothing in this package opens a socket:
// it is metadata for whatever proxy, gateway, or ingress layer sits in
// front of the components.
package listen

import (
	"fmt"
	"strings"
)

// TransportProtocol is the layer-4 protocol used at the OS socket level.
// The zero value is unset and is rejected wherever a transport is
// required.
type TransportProtocol string

const (
	TCP TransportProtocol = "TCP"
	UDP TransportProtocol = "UDP"
)

// Well-known application protocol identifiers.  Prefer IANA service,
// ALPN, or URI-scheme names when adding new ones.
const (
	ProtocolHTTP11 = "http/1.1"
	ProtocolH2     = "h2"
	ProtocolGRPC   = "grpc"
	ProtocolSyslog = "syslog"
	ProtocolSSH    = "ssh"
)

// TransportProtocols returns every supported transport in a stable order.
func TransportProtocols() []TransportProtocol {
	return []TransportProtocol{TCP, UDP}
}

// Valid reports whether p is one of the known transports.
func (p TransportProtocol) Valid() bool {
	return p == TCP || p == UDP
}

func (p TransportProtocol) String() string {
	if p == "" {
		return "<unset>"
	}
	return string(p)
}

// Network returns the name the net package uses for p ("tcp" or "udp").
func (p TransportProtocol) Network() string {
	return strings.ToLower(string(p))
}

// MarshalText writes the canonical upper-case name.
func (p TransportProtocol) MarshalText() ([]byte, error) {
	return []byte(p), nil
}

// UnmarshalText accepts any case through [ParseTransportProtocol].  An
// empty value decodes to unset, which Build rejects.
func (p *TransportProtocol) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*p = ""
		return nil
	}
	parsed, err := ParseTransportProtocol(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParseTransportProtocol accepts "tcp" or "udp" in any case.
func ParseTransportProtocol(s string) (TransportProtocol, error) {
	p := TransportProtocol(strings.ToUpper(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w %q, expected \"tcp\" or \"udp\"", ErrInvalidTransportProtocol, s)
	}
	return p, nil
}
