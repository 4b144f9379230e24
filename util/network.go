package util

import (
	"net"
	"strconv"
)

// FormatAddr returns "host:port", bracketing IPv6 hosts.  An empty
// host yields ":port", which binds every interface.
func FormatAddr(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
