// Package config defines the runtime configuration for lports, the
// component manifest, and the property snapshot handed to components.
// It also provides helpers for parsing tunnel specifications and port
// ranges used by component properties.
package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	ncerr "lports/internal/errors"
)

// Output formats.
const (
	OutputAuto  = "auto"
	OutputTable = "table"
	OutputJSON  = "json"
)

// ServeFromManifest is the --serve value that takes the address from
// the manifest's discovery-api component.
const ServeFromManifest = "manifest"

// Config holds every tuneable for a single lports run.
type Config struct {
	// ── Inputs ───────────────────────────────────────────────────────
	ManifestPath string
	EnvFile      string

	// ── Behaviour ────────────────────────────────────────────────────
	Check       bool          // cross-check ports against definitions
	Definitions bool          // print definitions instead of ports
	DryRun      bool          // validate and exit
	ServeAddr   string        // run the discovery API on this address
	Watch       time.Duration // re-discover on this interval, 0 = once

	// ── Output ───────────────────────────────────────────────────────
	Output  string
	Verbose int
}

// ── Port helpers ─────────────────────────────────────────────────────

// PortRange is an inclusive start–end pair.
type PortRange struct {
	Start int
	End   int
}

// Expand returns every port in the range.
func (pr PortRange) Expand() []int {
	out := make([]int, 0, pr.End-pr.Start+1)
	for p := pr.Start; p <= pr.End; p++ {
		out = append(out, p)
	}
	return out
}

// Single reports whether the range holds exactly one port.
func (pr PortRange) Single() bool { return pr.Start == pr.End }

// ParsePortSpec accepts "80" or "80-90".
func ParsePortSpec(spec string) (PortRange, error) {
	spec = strings.TrimSpace(spec)
	if strings.Contains(spec, "-") {
		parts := strings.SplitN(spec, "-", 2)
		start, err := strconv.Atoi(parts[0])
		if err != nil {
			return PortRange{}, fmt.Errorf("invalid port range start %q", parts[0])
		}
		end, err := strconv.Atoi(parts[1])
		if err != nil {
			return PortRange{}, fmt.Errorf("invalid port range end %q", parts[1])
		}
		if start < 1 || end > 65535 || start > end {
			return PortRange{}, fmt.Errorf("invalid port range %d-%d", start, end)
		}
		return PortRange{Start: start, End: end}, nil
	}

	port, err := strconv.Atoi(spec)
	if err != nil {
		return PortRange{}, fmt.Errorf("invalid port %q", spec)
	}
	if port < 1 || port > 65535 {
		return PortRange{}, fmt.Errorf("port %d out of range 1-65535", port)
	}
	return PortRange{Start: port, End: port}, nil
}

// ── Tunnel-spec parser ───────────────────────────────────────────────

// tunnelRe matches [user@]host[:port].
var tunnelRe = regexp.MustCompile(`^(?:([^@]+)@)?([^:]+)(?::(\d+))?$`)

// ParseTunnelSpec extracts user, host, and port from a string such as
// "admin@bastion.example.com:2222".  Port defaults to 22.
func ParseTunnelSpec(spec string) (user, host string, port int, err error) {
	m := tunnelRe.FindStringSubmatch(spec)
	if m == nil {
		return "", "", 0, fmt.Errorf("invalid tunnel spec %q – expected [user@]host[:port]", spec)
	}
	user = m[1]
	host = m[2]
	port = DefaultSSHPort
	if m[3] != "" {
		port, err = strconv.Atoi(m[3])
		if err != nil || port < 1 || port > 65535 {
			return "", "", 0, fmt.Errorf("invalid tunnel port %q", m[3])
		}
	}
	if host == "" {
		return "", "", 0, fmt.Errorf("tunnel host is required")
	}
	return user, host, port, nil
}

// ── Validation ───────────────────────────────────────────────────────

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	switch c.Output {
	case "", OutputAuto, OutputTable, OutputJSON:
	default:
		return &ncerr.ConfigError{
			Field:   "output",
			Value:   c.Output,
			Message: "unsupported output format",
			Hint:    "use table, json, or auto",
		}
	}

	if c.ManifestPath == "" {
		return &ncerr.ConfigError{
			Field:   "manifest",
			Message: "a component manifest is required",
			Hint:    "pass -f lports.yaml or set LPORTS_MANIFEST",
		}
	}

	if c.Watch < 0 {
		return &ncerr.ConfigError{Field: "watch", Value: c.Watch, Message: "must not be negative"}
	}

	if c.ServeAddr != "" && c.Watch > 0 {
		return &ncerr.ConfigError{
			Field:   "serve",
			Value:   c.ServeAddr,
			Message: "--serve and --watch are mutually exclusive",
			Hint:    "the discovery API already re-discovers on every request",
		}
	}

	if c.Definitions && c.Check {
		return &ncerr.ConfigError{
			Field:   "definitions",
			Value:   c.Definitions,
			Message: "--definitions and --check are mutually exclusive",
			Hint:    "definitions are declared by types, only discovered ports can be checked",
		}
	}

	return nil
}
