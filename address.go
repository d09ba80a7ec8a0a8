package relay

import "net"

// PlainDNSPort is the default port used for both the listener and the
// upstream forwarder when none is given explicitly.
const PlainDNSPort = "53"

// AddressWithDefault appends defaultPort to addr if addr has no port of its
// own. It accepts both "host" and "host:port" forms, matching the
// "-f <host[:port]>" surface from spec.md §6.
func AddressWithDefault(addr, defaultPort string) string {
	if _, _, err := net.SplitHostPort(addr); err == nil {
		return addr
	}
	return net.JoinHostPort(addr, defaultPort)
}
