package core

import (
	"lports/config"
	"lports/listen"
)

// ReverseTunnel exposes a local service on a remote SSH gateway, the
// equivalent of ssh -R.  The reported port is the one opened on the
// gateway; the local side is a connection target, not a listener.
// Without remote-port the gateway reuses local-port, as ssh -R does for
// a single port argument.
type ReverseTunnel struct{}

var (
	tunnelGateway = listen.PropertyDescriptor{
		Name:        "gateway",
		Description: "SSH gateway as [user@]host[:port]",
		Required:    true,
	}
	tunnelRemotePort = listen.PropertyDescriptor{
		Name:        "remote-port",
		Description: "Port the gateway listens on",
		ListenPort:  definition(listen.TCP),
	}
	tunnelRemoteBind = listen.PropertyDescriptor{
		Name:        "remote-bind-address",
		Description: "Address the gateway binds the remote port to, shown in the port name",
	}
	tunnelLocalPort = listen.PropertyDescriptor{
		Name:        "local-port",
		Description: "Local port that tunnelled connections are forwarded to, and the remote port when none is given",
	}
)

// PropertyDescriptors implements listen.Describer.
func (ReverseTunnel) PropertyDescriptors() []listen.PropertyDescriptor {
	return []listen.PropertyDescriptor{tunnelGateway, tunnelRemotePort, tunnelRemoteBind, tunnelLocalPort}
}

// ListenPorts implements listen.Component.
func (ReverseTunnel) ListenPorts(ctx listen.ConfigurationContext) []listen.Port {
	ports := []listen.Port{}

	gw := ctx.Property(tunnelGateway)
	if !gw.IsSet() {
		return ports
	}
	_, host, _, err := config.ParseTunnelSpec(gw.String())
	if err != nil {
		return ports
	}
	n, ok := portNumber(ctx, tunnelRemotePort)
	if !ok && !ctx.Property(tunnelRemotePort).IsSet() {
		n, ok = portNumber(ctx, tunnelLocalPort)
	}
	if !ok {
		return ports
	}
	name := "Reverse Tunnel " + host
	if bind := ctx.Property(tunnelRemoteBind); bind.IsSet() {
		name += " (" + bind.String() + ")"
	}
	return appendPort(ports, name, n, tunnelRemotePort.ListenPort, nil)
}
