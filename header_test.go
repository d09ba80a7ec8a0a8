package relay

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{
		ID:      0x1234,
		QR:      1,
		Opcode:  0,
		AA:      0,
		TC:      0,
		RD:      1,
		RA:      1,
		Z:       0,
		RCODE:   0,
		QDCOUNT: 1,
		ANCOUNT: 2,
		NSCOUNT: 0,
		ARCOUNT: 0,
	}

	decoded, err := DecodeHeader(h.Encode())
	require.NoError(t, err)
	require.Equal(t, h, decoded)
}

func TestDecodeHeaderMalformed(t *testing.T) {
	_, err := DecodeHeader([]byte{0x00, 0x01})
	require.ErrorIs(t, err, ErrMalformedMessage)
}

func TestHeaderEncodeMasksOversizeFields(t *testing.T) {
	// spec.md §9 REDESIGN FLAG #2: oversize flag inputs must not bleed into
	// adjacent fields.
	h := Header{QR: 0xff, Opcode: 0xff, RCODE: 0xff}
	encoded := h.Encode()
	decoded, err := DecodeHeader(encoded)
	require.NoError(t, err)
	require.Equal(t, uint8(1), decoded.QR)
	require.Equal(t, uint8(0xf), decoded.Opcode)
	require.Equal(t, uint8(0xf), decoded.RCODE)
}
