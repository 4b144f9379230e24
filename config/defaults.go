package config

import "time"

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags, the manifest, and environment variable loading.

const (
	// DefaultManifestPath is read when neither -f nor LPORTS_MANIFEST
	// is given.
	DefaultManifestPath = "lports.yaml"

	// DefaultEnvFile is loaded if it exists.
	DefaultEnvFile = ".env"

	// DefaultOutput picks a table on a terminal and JSON otherwise.
	DefaultOutput = OutputAuto

	// DefaultLocalAddress is the bind address reported for components
	// that do not configure one.
	DefaultLocalAddress = "127.0.0.1"

	// DefaultSSHPort is the gateway port assumed by reverse tunnels.
	DefaultSSHPort = 22

	// DefaultDiscoveryAPIPort is the port of the discovery API.
	DefaultDiscoveryAPIPort = 8090

	// DefaultMaxConcurrentQueries limits how many components are
	// queried at once.
	DefaultMaxConcurrentQueries = 16

	// DefaultWatchInterval is used by --watch when no interval is given.
	DefaultWatchInterval = 5 * time.Second

	// DefaultReadHeaderTimeout bounds slow clients of the discovery API.
	DefaultReadHeaderTimeout = 5 * time.Second

	// DefaultQuarantineFailures is the number of consecutive panics
	// after which a component is skipped.
	DefaultQuarantineFailures = 3

	// DefaultQuarantineTimeout is how long a quarantined component is
	// skipped before it is queried again.
	DefaultQuarantineTimeout = 30 * time.Second

	// DefaultBindAttempts is how often the discovery API tries to bind
	// an address that is still in use.
	DefaultBindAttempts = 5

	// DefaultGracePeriod is how long the discovery API waits for
	// in-flight requests on shutdown.
	DefaultGracePeriod = 5 * time.Second
)
