package core

import "lports/listen"

// Syslog receives syslog messages over TCP, UDP, or both.
type Syslog struct{}

var (
	syslogTCPPort = listen.PropertyDescriptor{
		Name:        "tcp-port",
		Description: "TCP port for syslog over TCP",
		ListenPort:  definition(listen.TCP, listen.ProtocolSyslog),
	}
	syslogUDPPort = listen.PropertyDescriptor{
		Name:        "udp-port",
		Description: "UDP port for syslog over UDP",
		ListenPort:  definition(listen.UDP, listen.ProtocolSyslog),
	}
)

// PropertyDescriptors implements listen.Describer.
func (Syslog) PropertyDescriptors() []listen.PropertyDescriptor {
	return []listen.PropertyDescriptor{syslogTCPPort, syslogUDPPort}
}

// ListenPorts implements listen.Component.
func (Syslog) ListenPorts(ctx listen.ConfigurationContext) []listen.Port {
	ports := []listen.Port{}
	if n, ok := portNumber(ctx, syslogTCPPort); ok {
		ports = appendPort(ports, "Syslog TCP", n, syslogTCPPort.ListenPort, []string{listen.ProtocolSyslog})
	}
	if n, ok := portNumber(ctx, syslogUDPPort); ok {
		ports = appendPort(ports, "Syslog UDP", n, syslogUDPPort.ListenPort, []string{listen.ProtocolSyslog})
	}
	return ports
}
