package relay

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func buildRecordFragment(ttl uint32, rdata []byte) []byte {
	fixed := make([]byte, fixedRecordHeaderLen)
	binary.BigEndian.PutUint16(fixed[0:2], 1) // A
	binary.BigEndian.PutUint16(fixed[2:4], 1) // IN
	binary.BigEndian.PutUint32(fixed[4:8], ttl)
	binary.BigEndian.PutUint16(fixed[8:10], uint16(len(rdata)))
	frag := append([]byte{}, pointer...)
	frag = append(frag, fixed...)
	frag = append(frag, rdata...)
	return frag
}

func TestDecodeRecordFragmentRoundTrip(t *testing.T) {
	rdata := []byte{127, 0, 0, 1}
	frag := buildRecordFragment(3600, rdata)

	now := time.Now()
	rec, consumed := decodeRecordFragment(frag, SectionAnswer, now)
	require.Equal(t, len(frag), consumed)
	require.False(t, rec.BadData)
	require.Equal(t, uint16(1), rec.Type)
	require.Equal(t, uint16(1), rec.Class)
	require.Equal(t, float64(3600), rec.TTL)
	require.Equal(t, rdata, rec.RData)
	require.Equal(t, frag, rec.Encode())
}

func TestDecodeRecordFragmentBadData(t *testing.T) {
	frag := []byte{0xC0, 0x0C, 0x00, 0x01} // too short for fixed header
	rec, consumed := decodeRecordFragment(frag, SectionAnswer, time.Now())
	require.True(t, rec.BadData)
	require.Equal(t, len(frag), consumed)
	require.Equal(t, frag, rec.Encode())
}

func TestRecordAgeTo(t *testing.T) {
	rec := Record{TTL: 10, LastUpdate: time.Now().Add(-4 * time.Second)}
	rec.AgeTo(time.Now())
	require.InDelta(t, 6, rec.TTL, 0.5)
}

func TestRecordIsObsolete(t *testing.T) {
	now := time.Now()
	fresh := Record{TTL: 30, LastUpdate: now}
	stale := Record{TTL: 1, LastUpdate: now}
	bad := Record{BadData: true}

	require.False(t, fresh.IsObsolete(now))
	require.True(t, stale.IsObsolete(now))
	require.False(t, bad.IsObsolete(now))
}

func TestTTLFloorClampsNegative(t *testing.T) {
	require.Equal(t, uint32(0), ttlFloor(-1.5))
	require.Equal(t, uint32(4), ttlFloor(4.9))
}
