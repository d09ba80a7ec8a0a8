package relay

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
)

// ErrTruncatedQuestion is returned when a question's name has no zero
// terminator within the supplied bytes.
var ErrTruncatedQuestion = errors.New("relay: truncated question")

// Question is the DNS question section: a wire-encoded name followed by
// QTYPE and QCLASS. Name decompression is not supported here — a
// well-formed client query never uses a compression pointer in its own
// question (spec.md §4.1).
type Question struct {
	// Name is the raw wire bytes of the question name: a sequence of
	// length-prefixed labels terminated by a zero byte.
	Name  []byte
	Type  uint16
	Class uint16
}

// DecodeQuestion reads a Question from the start of msg (immediately after
// the 12-byte header) and returns the number of bytes it consumed.
func DecodeQuestion(msg []byte) (Question, int, error) {
	end := bytes.IndexByte(msg, 0)
	if end == -1 || end+5 > len(msg) {
		return Question{}, 0, ErrTruncatedQuestion
	}
	name := msg[:end+1]
	qtype := binary.BigEndian.Uint16(msg[end+1 : end+3])
	qclass := binary.BigEndian.Uint16(msg[end+3 : end+5])
	return Question{Name: name, Type: qtype, Class: qclass}, end + 5, nil
}

// Encode serializes the question back to wire form.
func (q Question) Encode() []byte {
	buf := make([]byte, 0, len(q.Name)+4)
	buf = append(buf, q.Name...)
	typeClass := make([]byte, 4)
	binary.BigEndian.PutUint16(typeClass[0:2], q.Type)
	binary.BigEndian.PutUint16(typeClass[2:4], q.Class)
	return append(buf, typeClass...)
}

// DecodeName converts the wire-encoded name into dotted form, consuming
// <len><label> groups until the zero terminator, e.g.
// "\x07example\x03com\x00" -> "example.com.".
func (q Question) DecodeName() string {
	var b strings.Builder
	i := 0
	for i < len(q.Name) && q.Name[i] != 0 {
		n := int(q.Name[i])
		i++
		if i+n > len(q.Name) {
			break
		}
		b.Write(q.Name[i : i+n])
		b.WriteByte('.')
		i += n
	}
	return b.String()
}

// Equal reports whether q and other identify the same question: same wire
// name bytes, type, and class. spec.md §9 REDESIGN FLAG #3 notes the
// original source compared a field to itself here; this compares both
// operands.
func (q Question) Equal(other Question) bool {
	return bytes.Equal(q.Name, other.Name) && q.Type == other.Type && q.Class == other.Class
}
