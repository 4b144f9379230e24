package listen

import (
	"errors"
	"fmt"
	"strings"
)

// Construction errors.  Every failure is reported before a value exists,
// so callers never see a partially valid Port or Definition.
var (
	ErrMissingTransportProtocol = errors.New("transport protocol is required")
	ErrInvalidTransportProtocol = errors.New("invalid transport protocol")
	ErrMissingPortName          = errors.New("port name is required")
	ErrNilApplicationProtocols  = errors.New("application protocols are required, use an empty list when there are none")
	ErrNonConforming            = errors.New("listen port does not conform to any port definition")
)

// NonConformingError explains why a port failed [CheckConformance].
type NonConformingError struct {
	Port      string
	Transport TransportProtocol
	// Undeclared lists the active protocols no matching definition
	// declares.  Empty when no definition uses the port's transport.
	Undeclared []string
}

func (e *NonConformingError) Error() string {
	if len(e.Undeclared) == 0 {
		return fmt.Sprintf("port %q: no definition for transport %s", e.Port, e.Transport)
	}
	return fmt.Sprintf("port %q: undeclared application protocols [%s]",
		e.Port, strings.Join(e.Undeclared, ", "))
}

func (e *NonConformingError) Unwrap() error { return ErrNonConforming }
