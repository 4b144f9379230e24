package listen

import (
	"fmt"
	"strconv"
	"strings"
)

// PropertyDescriptor declares one configurable property of a component
// type.  A descriptor with a ListenPort definition configures a listen
// port of that kind.
type PropertyDescriptor struct {
	Name         string
	Description  string
	DefaultValue string
	Required     bool
	ListenPort   *Definition
}

// Describer is implemented by component types that publish their
// property descriptors at registration time.
type Describer interface {
	PropertyDescriptors() []PropertyDescriptor
}

// PortDefinitions collects the listen port definitions attached to descs,
// in declaration order.
func PortDefinitions(descs []PropertyDescriptor) []Definition {
	out := []Definition{}
	for _, d := range descs {
		if d.ListenPort != nil {
			out = append(out, *d.ListenPort)
		}
	}
	return out
}

// ConfigurationContext is the read-only view of a component's resolved
// property values.  Implementations must return the same answers for the
// duration of one ListenPorts call.
type ConfigurationContext interface {
	Property(desc PropertyDescriptor) PropertyValue
}

// PropertyValue is a raw property value with typed accessors.
type PropertyValue struct {
	raw string
	set bool
}

// NewPropertyValue wraps a configured value.
func NewPropertyValue(raw string) PropertyValue {
	return PropertyValue{raw: raw, set: true}
}

// UnsetPropertyValue is the value of a property with neither a configured
// value nor a default.
func UnsetPropertyValue() PropertyValue { return PropertyValue{} }

// IsSet reports whether a value (configured or default) is present.
func (v PropertyValue) IsSet() bool { return v.set }

func (v PropertyValue) String() string { return v.raw }

// Int parses the value as a decimal integer.
func (v PropertyValue) Int() (int, error) {
	if !v.set {
		return 0, fmt.Errorf("property not set")
	}
	return strconv.Atoi(strings.TrimSpace(v.raw))
}

// Bool accepts "1", "true", "yes" and "0", "false", "no" in any case.
func (v PropertyValue) Bool() (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v.raw)) {
	case "1", "true", "yes":
		return true, nil
	case "0", "false", "no":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", v.raw)
}

// List splits a comma-separated value, trimming spaces and dropping
// empty items.
func (v PropertyValue) List() []string {
	out := []string{}
	for _, item := range strings.Split(v.raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
