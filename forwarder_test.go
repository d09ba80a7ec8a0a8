package relay

import (
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeUpstream is a minimal UDP echo-style stand-in for a real resolver: it
// replies to every received datagram with a canned response, optionally
// after a delay, and counts how many datagrams it actually received.
type fakeUpstream struct {
	conn  *net.UDPConn
	hits  int32
	reply func(req []byte) []byte
}

func startFakeUpstream(t *testing.T, reply func(req []byte) []byte) *fakeUpstream {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)

	u := &fakeUpstream{conn: conn, reply: reply}
	go func() {
		buf := make([]byte, maxDatagram)
		for {
			n, addr, err := conn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			atomic.AddInt32(&u.hits, 1)
			if u.reply == nil {
				continue
			}
			resp := u.reply(append([]byte{}, buf[:n]...))
			if resp != nil {
				_, _ = conn.WriteToUDP(resp, addr)
			}
		}
	}()
	return u
}

func (u *fakeUpstream) addr() string { return u.conn.LocalAddr().String() }
func (u *fakeUpstream) close()       { u.conn.Close() }
func (u *fakeUpstream) hitCount() int32 { return atomic.LoadInt32(&u.hits) }

func TestForwarderRoundTrip(t *testing.T) {
	up := startFakeUpstream(t, func(req []byte) []byte {
		return append([]byte{}, req...) // echo
	})
	defer up.close()

	f, err := NewForwarder(up.addr())
	require.NoError(t, err)

	req := []byte("a DNS request")
	resp, err := f.Forward(req)
	require.NoError(t, err)
	require.Equal(t, req, resp)
	require.EqualValues(t, 1, up.hitCount())
}

func TestForwarderTimeout(t *testing.T) {
	up := startFakeUpstream(t, nil) // never replies
	defer up.close()

	f, err := NewForwarder(up.addr())
	require.NoError(t, err)

	start := time.Now()
	_, err = f.Forward([]byte("req"))
	require.ErrorIs(t, err, ErrUpstreamTimeout)
	require.GreaterOrEqual(t, time.Since(start), forwarderTimeout)
}

func TestForwarderCoalescedSharesOneUpstreamCall(t *testing.T) {
	up := startFakeUpstream(t, func(req []byte) []byte {
		time.Sleep(20 * time.Millisecond)
		return []byte("shared reply")
	})
	defer up.close()

	f, err := NewForwarder(up.addr())
	require.NoError(t, err)

	key := testKey("example")
	const n = 8
	results := make(chan []byte, n)
	for i := 0; i < n; i++ {
		go func() {
			resp, err := f.ForwardCoalesced(key, []byte("req"))
			require.NoError(t, err)
			results <- resp
		}()
	}
	for i := 0; i < n; i++ {
		resp := <-results
		require.Equal(t, []byte("shared reply"), resp)
	}
	require.EqualValues(t, 1, up.hitCount())
}

func TestRewriteID(t *testing.T) {
	msg := []byte{0x00, 0x00, 0xAA, 0xBB}
	out := RewriteID(msg, 0x1234)
	require.Equal(t, []byte{0x12, 0x34, 0xAA, 0xBB}, out)
	// original must be untouched
	require.Equal(t, []byte{0x00, 0x00, 0xAA, 0xBB}, msg)
}
