package config

import (
	"maps"

	"lports/listen"
)

// Context is a point-in-time copy of a component's property values.  It
// never changes after construction, so one ListenPorts call always sees
// a single configuration state and concurrent readers need no locking.
type Context struct {
	values map[string]string
}

var _ listen.ConfigurationContext = (*Context)(nil)

// NewContext copies props into a new Context.
func NewContext(props map[string]string) *Context {
	values := maps.Clone(props)
	if values == nil {
		values = map[string]string{}
	}
	return &Context{values: values}
}

// Property returns the configured value, falling back to the
// descriptor's default.  Empty configured values count as unset.
func (c *Context) Property(desc listen.PropertyDescriptor) listen.PropertyValue {
	if v, ok := c.values[desc.Name]; ok && v != "" {
		return listen.NewPropertyValue(v)
	}
	if desc.DefaultValue != "" {
		return listen.NewPropertyValue(desc.DefaultValue)
	}
	return listen.UnsetPropertyValue()
}

// Values returns a copy of the configured values.
func (c *Context) Values() map[string]string {
	return maps.Clone(c.values)
}
