package core

import (
	"fmt"
	"strings"

	"lports/config"
	ncerr "lports/internal/errors"
	"lports/listen"
)

// Instance is one configured component, ready to be queried.
type Instance struct {
	Name        string
	Type        string
	Component   listen.Component
	Context     *config.Context
	Descriptors []listen.PropertyDescriptor
}

// ListenPorts queries the component with the instance's own context.
func (i Instance) ListenPorts() []listen.Port {
	return i.Component.ListenPorts(i.Context)
}

// Definitions returns the port definitions declared by the instance's
// type, in declaration order.
func (i Instance) Definitions() []listen.Definition {
	return listen.PortDefinitions(i.Descriptors)
}

// Build constructs the Instance for a manifest entry.  This is the
// single dispatch point keyed by the component type.
func Build(c config.Component) (Instance, error) {
	t, ok := Lookup(c.Type)
	if !ok {
		return Instance{}, &ncerr.ConfigError{
			Field:   c.Name + ".type",
			Value:   c.Type,
			Message: "unknown component type",
			Hint:    "use one of " + strings.Join(TypeNames(), ", "),
			Err:     ncerr.ErrUnknownComponentType,
		}
	}

	descs := t.PropertyDescriptors()
	for name := range c.Properties {
		if _, ok := Descriptor(descs, name); !ok {
			return Instance{}, &ncerr.ConfigError{
				Field:   c.Name + "." + name,
				Message: fmt.Sprintf("%s components have no property %q", c.Type, name),
				Hint:    "use one of " + strings.Join(propertyNames(descs), ", "),
			}
		}
	}

	ctx := c.Context()
	for _, d := range descs {
		if d.Required && !ctx.Property(d).IsSet() {
			return Instance{}, &ncerr.ConfigError{
				Field:   c.Name + "." + d.Name,
				Message: "required property is not set",
				Hint:    d.Description,
			}
		}
	}

	return Instance{
		Name:        c.Name,
		Type:        c.Type,
		Component:   t,
		Context:     ctx,
		Descriptors: descs,
	}, nil
}

// BuildAll builds every component of m in manifest order.
func BuildAll(m *config.Manifest) ([]Instance, error) {
	out := make([]Instance, 0, len(m.Components))
	for _, c := range m.Components {
		inst, err := Build(c)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, nil
}

func propertyNames(descs []listen.PropertyDescriptor) []string {
	names := make([]string, len(descs))
	for i, d := range descs {
		names[i] = d.Name
	}
	return names
}
