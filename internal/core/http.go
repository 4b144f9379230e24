package core

import "lports/listen"

// HTTP is an HTTP server.  Its single port speaks whichever of h2,
// http/1.1 and grpc are enabled.
type HTTP struct{}

var (
	httpPort = listen.PropertyDescriptor{
		Name:        "port",
		Description: "TCP port the HTTP server listens on",
		ListenPort:  definition(listen.TCP, listen.ProtocolH2, listen.ProtocolHTTP11, listen.ProtocolGRPC),
	}
	httpHTTP2 = listen.PropertyDescriptor{
		Name:         "http2",
		Description:  "Serve HTTP/2",
		DefaultValue: "true",
	}
	httpHTTP1 = listen.PropertyDescriptor{
		Name:         "http1",
		Description:  "Serve HTTP/1.1",
		DefaultValue: "true",
	}
	httpGRPC = listen.PropertyDescriptor{
		Name:         "grpc",
		Description:  "Serve gRPC over HTTP/2",
		DefaultValue: "false",
	}
)

// PropertyDescriptors implements listen.Describer.
func (HTTP) PropertyDescriptors() []listen.PropertyDescriptor {
	return []listen.PropertyDescriptor{httpPort, httpHTTP2, httpHTTP1, httpGRPC}
}

// ListenPorts implements listen.Component.
func (HTTP) ListenPorts(ctx listen.ConfigurationContext) []listen.Port {
	ports := []listen.Port{}
	n, ok := portNumber(ctx, httpPort)
	if !ok {
		return ports
	}

	// Active protocols follow the definition's order.
	enabled := map[string]bool{
		listen.ProtocolH2:     flag(ctx, httpHTTP2, true),
		listen.ProtocolHTTP11: flag(ctx, httpHTTP1, true),
		listen.ProtocolGRPC:   flag(ctx, httpGRPC, false),
	}
	protocols := []string{}
	for _, p := range httpPort.ListenPort.ApplicationProtocols() {
		if enabled[p] {
			protocols = append(protocols, p)
		}
	}
	return appendPort(ports, "HTTP Listener", n, httpPort.ListenPort, protocols)
}
