package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	ncerr "lports/internal/errors"
)

// Manifest lists the component instances whose listen ports are
// discovered.
type Manifest struct {
	Components []Component `yaml:"components" json:"components"`
}

// Component is one instance in the manifest.  Properties are kept as raw
// strings; each component type interprets its own.
type Component struct {
	Name       string            `yaml:"name" json:"name"`
	Type       string            `yaml:"type" json:"type"`
	Properties map[string]string `yaml:"properties,omitempty" json:"properties,omitempty"`
}

// Context returns the component's properties as an immutable snapshot.
func (c Component) Context() *Context {
	return NewContext(c.Properties)
}

// componentNameRe keeps names usable in env var overrides and URLs.
var componentNameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// LoadManifest reads and validates a YAML manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest decodes and validates a YAML manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks names and types.  Property values are left to the
// component types.
func (m *Manifest) Validate() error {
	if len(m.Components) == 0 {
		return &ncerr.ConfigError{
			Field:   "manifest",
			Message: "no components declared",
			Hint:    "add at least one entry under components:",
			Err:     ncerr.ErrNoComponents,
		}
	}

	seen := make(map[string]bool, len(m.Components))
	envNames := make(map[string]string, len(m.Components))
	for i, c := range m.Components {
		if !componentNameRe.MatchString(c.Name) {
			return &ncerr.ConfigError{
				Field:   fmt.Sprintf("components[%d].name", i),
				Value:   c.Name,
				Message: "invalid component name",
				Hint:    "use letters, digits, '.', '_' or '-'",
			}
		}
		if seen[c.Name] {
			return &ncerr.ConfigError{
				Field:   fmt.Sprintf("components[%d].name", i),
				Value:   c.Name,
				Message: "declared more than once",
				Err:     ncerr.ErrDuplicateComponent,
			}
		}
		seen[c.Name] = true
		if other, clash := envNames[envName(c.Name)]; clash {
			return &ncerr.ConfigError{
				Field:   fmt.Sprintf("components[%d].name", i),
				Value:   c.Name,
				Message: fmt.Sprintf("collides with %q in %s%s_* overrides", other, propPrefix, envName(c.Name)),
				Hint:    "names must differ in more than case, '.', '-' and '_'",
				Err:     ncerr.ErrDuplicateComponent,
			}
		}
		envNames[envName(c.Name)] = c.Name
		if c.Type == "" {
			return &ncerr.ConfigError{
				Field:   fmt.Sprintf("components[%d].type", i),
				Message: "component type is required",
			}
		}
	}
	return nil
}
