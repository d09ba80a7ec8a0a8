package relay

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func encodeName(labels ...string) []byte {
	var out []byte
	for _, l := range labels {
		out = append(out, byte(len(l)))
		out = append(out, l...)
	}
	return append(out, 0)
}

func TestQuestionRoundTrip(t *testing.T) {
	name := encodeName("example", "com")
	q := Question{Name: name, Type: 1, Class: 1}

	msg := append(q.Encode(), 0xAA, 0xBB) // trailing bytes shouldn't matter
	decoded, n, err := DecodeQuestion(msg)
	require.NoError(t, err)
	require.Equal(t, len(q.Encode()), n)
	require.Equal(t, q.Name, decoded.Name)
	require.Equal(t, q.Type, decoded.Type)
	require.Equal(t, q.Class, decoded.Class)
}

func TestQuestionDecodeName(t *testing.T) {
	q := Question{Name: encodeName("example", "com")}
	require.Equal(t, "example.com.", q.DecodeName())
}

func TestDecodeQuestionTruncated(t *testing.T) {
	_, _, err := DecodeQuestion([]byte{7, 'e', 'x'})
	require.ErrorIs(t, err, ErrTruncatedQuestion)
}

func TestQuestionEqual(t *testing.T) {
	a := Question{Name: encodeName("example", "com"), Type: 1, Class: 1}
	b := Question{Name: encodeName("example", "com"), Type: 1, Class: 1}
	c := Question{Name: encodeName("example", "net"), Type: 1, Class: 1}
	d := Question{Name: encodeName("example", "com"), Type: 28, Class: 1}

	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
	require.False(t, a.Equal(d))
}
