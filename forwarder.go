package relay

import (
	"encoding/binary"
	"errors"
	"net"
	"time"

	"golang.org/x/sync/singleflight"
)

// forwarderTimeout is the readiness wait for a single upstream datagram
// (spec.md §4.4).
const forwarderTimeout = 3 * time.Second

// maxDatagram is generous enough for a non-EDNS upstream reply with several
// records; it's not a protocol limit, just the receive buffer size.
const maxDatagram = 4096

// ErrUpstreamTimeout is returned when the upstream resolver doesn't reply
// within forwarderTimeout. Callers map this to RCODE 2 ("server failure")
// per spec.md §4.4/§7.
var ErrUpstreamTimeout = errors.New("relay: upstream forwarder timed out")

// Forwarder sends client queries to a single configured upstream resolver
// and relays back whatever it replies with, byte-exact.
type Forwarder struct {
	addr  *net.UDPAddr
	group singleflight.Group
}

// NewForwarder resolves the upstream address once (spec.md §6: "hostnames
// are resolved once at startup") and returns a Forwarder bound to it.
// upstream may be "host" or "host:port"; port 53 is assumed when absent.
func NewForwarder(upstream string) (*Forwarder, error) {
	addr, err := net.ResolveUDPAddr("udp", AddressWithDefault(upstream, PlainDNSPort))
	if err != nil {
		return nil, err
	}
	return &Forwarder{addr: addr}, nil
}

// Forward opens a fresh UDP socket, sends req unchanged, and waits up to
// forwarderTimeout for a single reply datagram. Byte-exact forwarding
// preserves whatever compression, EDNS, or unknown record types the
// upstream used, even where this package's own codec can't fully parse
// them (spec.md §4.4).
func (f *Forwarder) Forward(req []byte) ([]byte, error) {
	conn, err := net.DialUDP("udp", nil, f.addr)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(forwarderTimeout)); err != nil {
		return nil, err
	}
	if _, err := conn.Write(req); err != nil {
		return nil, err
	}

	buf := make([]byte, maxDatagram)
	n, err := conn.Read(buf)
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return nil, ErrUpstreamTimeout
		}
		return nil, err
	}
	return buf[:n], nil
}

// ForwardCoalesced is Forward with single-flight de-duplication: concurrent
// misses for the same question Key share one upstream round trip instead of
// each opening their own socket (spec.md §9's "an implementer may add
// per-key coalescing as an improvement").
//
// Because each caller's original datagram carries its own transaction ID,
// the shared reply can't simply be relayed to every waiter — a follower
// would receive a response stamped with the leader's ID. Callers must
// rewrite the ID of the returned bytes to their own request's ID before
// relaying to their client or storing in the cache; see RewriteID.
func (f *Forwarder) ForwardCoalesced(key Key, req []byte) ([]byte, error) {
	v, err, _ := f.group.Do(key.singleflightKey(), func() (interface{}, error) {
		return f.Forward(req)
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// RewriteID returns a copy of msg with its 16-bit transaction ID field
// replaced by id. Used to restamp a coalesced upstream reply with each
// waiting client's own request ID.
func RewriteID(msg []byte, id uint16) []byte {
	out := make([]byte, len(msg))
	copy(out, msg)
	if len(out) >= 2 {
		binary.BigEndian.PutUint16(out[0:2], id)
	}
	return out
}
