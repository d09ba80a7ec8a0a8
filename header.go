package relay

import (
	"encoding/binary"
	"errors"
)

// headerLength is the fixed size of a DNS message header (RFC 1035 §4.1.1).
const headerLength = 12

// ErrMalformedMessage is returned when a datagram is too short to contain a
// valid DNS header.
var ErrMalformedMessage = errors.New("relay: malformed DNS message")

// Header is the fixed 12-byte DNS message header.
//
//	                                1  1  1  1  1  1
//	  0  1  2  3  4  5  6  7  8  9  0  1  2  3  4  5
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	|                      ID                       |
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	|QR|   Opcode  |AA|TC|RD|RA| Z (3) |   RCODE   |
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	|                    QDCOUNT                    |
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	|                    ANCOUNT                    |
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	|                    NSCOUNT                    |
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	|                    ARCOUNT                    |
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
type Header struct {
	ID      uint16
	QR      uint8
	Opcode  uint8
	AA      uint8
	TC      uint8
	RD      uint8
	RA      uint8
	Z       uint8
	RCODE   uint8
	QDCOUNT uint16
	ANCOUNT uint16
	NSCOUNT uint16
	ARCOUNT uint16
}

// DecodeHeader parses the fixed 12-byte header from the front of msg. It
// fails with ErrMalformedMessage if msg is shorter than headerLength.
func DecodeHeader(msg []byte) (Header, error) {
	if len(msg) < headerLength {
		return Header{}, ErrMalformedMessage
	}
	flags := binary.BigEndian.Uint16(msg[2:4])
	return Header{
		ID:      binary.BigEndian.Uint16(msg[0:2]),
		QR:      uint8((flags >> 15) & 0x1),
		Opcode:  uint8((flags >> 11) & 0xf),
		AA:      uint8((flags >> 10) & 0x1),
		TC:      uint8((flags >> 9) & 0x1),
		RD:      uint8((flags >> 8) & 0x1),
		RA:      uint8((flags >> 7) & 0x1),
		Z:       uint8((flags >> 4) & 0x7),
		RCODE:   uint8(flags & 0xf),
		QDCOUNT: binary.BigEndian.Uint16(msg[4:6]),
		ANCOUNT: binary.BigEndian.Uint16(msg[6:8]),
		NSCOUNT: binary.BigEndian.Uint16(msg[8:10]),
		ARCOUNT: binary.BigEndian.Uint16(msg[10:12]),
	}, nil
}

// Encode serializes the header back to its 12-byte wire form. Each flag
// field is masked to its bit width before being packed into the flags word,
// so an oversize caller-supplied value can't bleed into an adjacent field
// (spec.md §9 REDESIGN FLAG #2).
func (h Header) Encode() []byte {
	flags := (uint16(h.QR&0x1) << 15) |
		(uint16(h.Opcode&0xf) << 11) |
		(uint16(h.AA&0x1) << 10) |
		(uint16(h.TC&0x1) << 9) |
		(uint16(h.RD&0x1) << 8) |
		(uint16(h.RA&0x1) << 7) |
		(uint16(h.Z&0x7) << 4) |
		uint16(h.RCODE&0xf)

	buf := make([]byte, headerLength)
	binary.BigEndian.PutUint16(buf[0:2], h.ID)
	binary.BigEndian.PutUint16(buf[2:4], flags)
	binary.BigEndian.PutUint16(buf[4:6], h.QDCOUNT)
	binary.BigEndian.PutUint16(buf[6:8], h.ANCOUNT)
	binary.BigEndian.PutUint16(buf[8:10], h.NSCOUNT)
	binary.BigEndian.PutUint16(buf[10:12], h.ARCOUNT)
	return buf
}
