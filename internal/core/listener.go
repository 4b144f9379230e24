package core

import (
	"fmt"

	"lports/config"
	"lports/listen"
)

// Listener is a raw socket listener.  Each of tcp-port and udp-port
// accepts a single port or a range ("8000-8010"); a range yields one
// numbered port per value.
type Listener struct{}

var (
	listenerTCPPort = listen.PropertyDescriptor{
		Name:        "tcp-port",
		Description: "TCP port or port range to accept connections on",
		ListenPort:  definition(listen.TCP),
	}
	listenerUDPPort = listen.PropertyDescriptor{
		Name:        "udp-port",
		Description: "UDP port or port range to receive datagrams on",
		ListenPort:  definition(listen.UDP),
	}
	listenerKeepOpen = listen.PropertyDescriptor{
		Name:         "keep-open",
		Description:  "Keep accepting after the first connection; does not change the reported ports",
		DefaultValue: "false",
	}
)

// PropertyDescriptors implements listen.Describer.
func (Listener) PropertyDescriptors() []listen.PropertyDescriptor {
	return []listen.PropertyDescriptor{listenerTCPPort, listenerUDPPort, listenerKeepOpen}
}

// ListenPorts implements listen.Component.
func (Listener) ListenPorts(ctx listen.ConfigurationContext) []listen.Port {
	ports := []listen.Port{}
	ports = appendRange(ports, ctx, listenerTCPPort, "TCP Listener")
	ports = appendRange(ports, ctx, listenerUDPPort, "UDP Listener")
	return ports
}

func appendRange(ports []listen.Port, ctx listen.ConfigurationContext, desc listen.PropertyDescriptor, name string) []listen.Port {
	v := ctx.Property(desc)
	if !v.IsSet() {
		return ports
	}
	pr, err := config.ParsePortSpec(v.String())
	if err != nil {
		return ports
	}
	if pr.Single() {
		return appendPort(ports, name, pr.Start, desc.ListenPort, nil)
	}
	for _, n := range pr.Expand() {
		ports = appendPort(ports, fmt.Sprintf("%s %d", name, n), n, desc.ListenPort, nil)
	}
	return ports
}
