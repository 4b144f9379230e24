package core

import (
	"strconv"

	"lports/config"
	ncerr "lports/internal/errors"
	"lports/listen"
	"lports/util"
)

// DiscoveryAPI is the HTTP endpoint that publishes discovery results.
// Describing it as a component lets the host report its own port, and
// `lports --serve` binds the address the component describes.
type DiscoveryAPI struct{}

var (
	apiPort = listen.PropertyDescriptor{
		Name:         "port",
		Description:  "TCP port the discovery API listens on",
		DefaultValue: strconv.Itoa(config.DefaultDiscoveryAPIPort),
		ListenPort:   definition(listen.TCP, listen.ProtocolHTTP11),
	}
	apiBindAddress = listen.PropertyDescriptor{
		Name:         "bind-address",
		Description:  "Address the discovery API binds to",
		DefaultValue: config.DefaultLocalAddress,
	}
)

// PropertyDescriptors implements listen.Describer.
func (DiscoveryAPI) PropertyDescriptors() []listen.PropertyDescriptor {
	return []listen.PropertyDescriptor{apiPort, apiBindAddress}
}

// ListenPorts implements listen.Component.
func (DiscoveryAPI) ListenPorts(ctx listen.ConfigurationContext) []listen.Port {
	ports := []listen.Port{}
	if n, ok := portNumber(ctx, apiPort); ok {
		ports = appendPort(ports, "Discovery API", n, apiPort.ListenPort, []string{listen.ProtocolHTTP11})
	}
	return ports
}

// Addr returns the host:port the discovery API binds.  ok is false
// when the port property is missing or invalid.
func (DiscoveryAPI) Addr(ctx listen.ConfigurationContext) (addr string, ok bool) {
	n, ok := portNumber(ctx, apiPort)
	if !ok {
		return "", false
	}
	return util.FormatAddr(ctx.Property(apiBindAddress).String(), n), true
}

// APIAddr returns the bind address of the first discovery-api instance.
func APIAddr(insts []Instance) (string, error) {
	for _, inst := range insts {
		api, isAPI := inst.Component.(DiscoveryAPI)
		if !isAPI {
			continue
		}
		addr, ok := api.Addr(inst.Context)
		if !ok {
			return "", &ncerr.ConfigError{
				Field:   inst.Name + "." + apiPort.Name,
				Value:   inst.Context.Property(apiPort).String(),
				Message: "invalid discovery API port",
			}
		}
		return addr, nil
	}
	return "", &ncerr.ConfigError{
		Field:   "serve",
		Value:   config.ServeFromManifest,
		Message: "the manifest has no discovery-api component",
		Hint:    "add a component with type: discovery-api, or pass --serve ADDR",
	}
}
