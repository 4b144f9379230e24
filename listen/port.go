package listen

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ListenPort is a port a component is configured to listen on right now.
type ListenPort interface {
	// PortName is a descriptive label that tells the ports of a
	// multi-port component apart.
	PortName() string

	// PortNumber is the OS port that is, or is about to be, bound.  No
	// range is enforced; a component may use 0 or negative values as its
	// own sentinels.
	PortNumber() int

	// TransportProtocol is the layer-4 protocol of the socket.
	TransportProtocol() TransportProtocol

	// ApplicationProtocols lists the protocols currently configured,
	// which may be fewer than the definition allows.  A port that could
	// speak http/1.1 or h2 but is configured for h2 only reports [h2].
	// Empty means not applicable or undetermined.
	ApplicationProtocols() []string
}

// Port is the immutable ListenPort implementation.  Build one with
// [NewPortBuilder].
type Port struct {
	name      string
	number    int
	transport TransportProtocol
	protocols []string
}

var _ ListenPort = Port{}

func (p Port) PortName() string                     { return p.name }
func (p Port) PortNumber() int                      { return p.number }
func (p Port) TransportProtocol() TransportProtocol { return p.transport }

// ApplicationProtocols returns a copy of the active protocols; it is
// never nil.
func (p Port) ApplicationProtocols() []string {
	if p.protocols == nil {
		return []string{}
	}
	return slices.Clone(p.protocols)
}

// Key identifies a port within one component: the same name on the same
// transport is the same logical port even when its number changes.
func (p Port) Key() string {
	return p.name + "/" + p.transport.Network()
}

// Equal reports structural equality over all four fields.
func (p Port) Equal(other Port) bool {
	return p.name == other.name &&
		p.number == other.number &&
		p.transport == other.transport &&
		slices.Equal(p.protocols, other.protocols)
}

// Hash is consistent with Equal.
func (p Port) Hash() uint64 {
	h := newHasher()
	h.string(p.name)
	h.int(p.number)
	h.string(string(p.transport))
	h.strings(p.protocols)
	return h.sum()
}

func (p Port) String() string {
	return fmt.Sprintf("Port[name=%s, number=%d, transport=%s, applicationProtocols=[%s]]",
		p.name, p.number, p.transport, strings.Join(p.protocols, ", "))
}

// portJSON is the wire shape shared by MarshalJSON and UnmarshalJSON.
type portJSON struct {
	Name                 string            `json:"name"`
	Number               int               `json:"number"`
	Transport            TransportProtocol `json:"transport"`
	ApplicationProtocols []string          `json:"applicationProtocols"`
}

func (p Port) MarshalJSON() ([]byte, error) {
	return json.Marshal(portJSON{
		Name:                 p.name,
		Number:               p.number,
		Transport:            p.transport,
		ApplicationProtocols: p.ApplicationProtocols(),
	})
}

// UnmarshalJSON runs the same validation as Build.
func (p *Port) UnmarshalJSON(data []byte) error {
	var raw portJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	built, err := NewPortBuilder().
		Name(raw.Name).
		Number(raw.Number).
		Transport(raw.Transport).
		ApplicationProtocols(raw.ApplicationProtocols).
		Build()
	if err != nil {
		return err
	}
	*p = built
	return nil
}

// ── Builder ──────────────────────────────────────────────────────────

// PortBuilder stages the fields of a Port.  Required fields are checked
// by Build; a builder can be reused and every Build returns an
// independent value.
type PortBuilder struct {
	name      string
	number    int
	transport TransportProtocol
	protocols []string
}

// NewPortBuilder returns a builder with no application protocols.
func NewPortBuilder() *PortBuilder {
	return &PortBuilder{protocols: []string{}}
}

// Name sets the required port name.
func (b *PortBuilder) Name(name string) *PortBuilder {
	b.name = name
	return b
}

// Number sets the OS port number.
func (b *PortBuilder) Number(number int) *PortBuilder {
	b.number = number
	return b
}

// Transport sets the required transport protocol.
func (b *PortBuilder) Transport(transport TransportProtocol) *PortBuilder {
	b.transport = transport
	return b
}

// ApplicationProtocols sets the active protocols.  nil resets them to
// empty.  The slice is copied.
func (b *PortBuilder) ApplicationProtocols(protocols []string) *PortBuilder {
	if protocols == nil {
		b.protocols = []string{}
		return b
	}
	b.protocols = slices.Clone(protocols)
	return b
}

// Build validates the staged fields and returns the Port.
func (b *PortBuilder) Build() (Port, error) {
	var errs []error
	if b.name == "" {
		errs = append(errs, ErrMissingPortName)
	}
	if !b.transport.Valid() {
		errs = append(errs, ErrMissingTransportProtocol)
	}
	if len(errs) > 0 {
		return Port{}, fmt.Errorf("listen port: %w", errors.Join(errs...))
	}
	return Port{
		name:      b.name,
		number:    b.number,
		transport: b.transport,
		protocols: slices.Clone(b.protocols),
	}, nil
}
