package config

// loader.go - configuration loading from .env files and environment
// variables.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. Environment variables, then .env file entries  (this file)
//   3. Defaults   (defaults.go)

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix starts every supported environment variable.
const EnvPrefix = "LPORTS_"

// propPrefix starts per-property overrides:
// LPORTS_PROP_<COMPONENT>_<PROPERTY>.
const propPrefix = EnvPrefix + "PROP_"

// LoadEnvFile loads path into the process environment without
// overriding variables that are already set.  A missing file is not an
// error, since the .env file is optional.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// ── Environment variable mapping ─────────────────────────────────────
//
// Boolean values accept "1", "true", "yes" (case-insensitive).

// LoadFromEnv overlays environment variables onto cfg.  Only non-empty
// env vars override the existing value.  This should be called BEFORE
// CLI flag parsing so that flags take precedence.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv(EnvPrefix + "MANIFEST"); v != "" {
		cfg.ManifestPath = v
	}
	if v := os.Getenv(EnvPrefix + "OUTPUT"); v != "" {
		cfg.Output = v
	}
	if envBool(EnvPrefix + "CHECK") {
		cfg.Check = true
	}
	if v := os.Getenv(EnvPrefix + "SERVE"); v != "" {
		cfg.ServeAddr = v
	}
	if v := envInt(EnvPrefix + "WATCH"); v > 0 {
		cfg.Watch = secondsDuration(v)
	}
	if v := envInt(EnvPrefix + "VERBOSE"); v > 0 {
		cfg.Verbose = v
	}
}

// ApplyPropertyOverrides copies LPORTS_PROP_<COMPONENT>_<PROPERTY>
// variables into matching manifest properties.  Component and property
// names match case-insensitively with '-' and '.' written as '_'.  It
// returns the number of properties overridden.
func ApplyPropertyOverrides(m *Manifest, environ []string) int {
	n := 0
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, propPrefix) || value == "" {
			continue
		}
		rest := key[len(propPrefix):]

		// "edge" and "edge-http" both prefix EDGE_HTTP_PORT; the longest
		// component name wins.
		var target *Component
		var prop string
		for i := range m.Components {
			c := &m.Components[i]
			prefix := envName(c.Name) + "_"
			if strings.HasPrefix(rest, prefix) && len(rest) > len(prefix) &&
				(target == nil || len(c.Name) > len(target.Name)) {
				target, prop = c, rest[len(prefix):]
			}
		}
		if target == nil {
			continue
		}

		name, known := target.propertyByEnvName(prop)
		if !known {
			name = strings.ToLower(strings.ReplaceAll(prop, "_", "-"))
		}
		if target.Properties == nil {
			target.Properties = map[string]string{}
		}
		target.Properties[name] = value
		n++
	}
	return n
}

func (c *Component) propertyByEnvName(env string) (string, bool) {
	for name := range c.Properties {
		if envName(name) == env {
			return name, true
		}
	}
	return "", false
}

// envName upper-cases s and maps '-' and '.' to '_'.
func envName(s string) string {
	return strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(s))
}

// ── helpers ──────────────────────────────────────────────────────────

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes"
}

func secondsDuration(sec int) time.Duration {
	return time.Duration(sec) * time.Second
}
