package relay

import "encoding/binary"

// Key identifies a cached record set: the exact wire bytes of the question
// name plus its type and class (spec.md §3). Two questions that differ only
// in label casing hash to different keys — no case folding is performed,
// matching many real resolvers (spec.md §9).
type Key struct {
	name  string
	Type  uint16
	Class uint16
}

// KeyFor derives the cache Key for q. The name is copied into a string so
// Key remains a comparable, hashable map key independent of any later
// mutation of the byte slice it was built from.
func KeyFor(q Question) Key {
	return Key{name: string(q.Name), Type: q.Type, Class: q.Class}
}

// singleflightKey returns a string uniquely identifying k, for use as a
// golang.org/x/sync/singleflight dedupe key. Name bytes always end in the
// root label's 0x00 terminator, so appending the fixed-width type and class
// fields can't introduce a collision between two distinct keys.
func (k Key) singleflightKey() string {
	var tail [4]byte
	binary.BigEndian.PutUint16(tail[0:2], k.Type)
	binary.BigEndian.PutUint16(tail[2:4], k.Class)
	return k.name + string(tail[:])
}
