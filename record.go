package relay

import (
	"encoding/binary"
	"math"
	"time"
)

// Section identifies which part of a DNS message a Record was delivered in.
type Section int

const (
	SectionAnswer Section = iota
	SectionAuthority
	SectionAdditional
)

// obsoleteThreshold is the residual-TTL floor below which a record is
// considered too close to expiry to serve from cache (spec.md §3, §4.2).
const obsoleteThreshold = 2 * time.Second

// fixedRecordHeaderLen is the size of the TYPE, CLASS, TTL, and RDLENGTH
// fields that follow a record's owner name on the wire.
const fixedRecordHeaderLen = 10

// Record is a single resource record as stored in the cache: either a
// successfully parsed record with a live TTL, or an opaque "bad data" span
// that is retained only to be re-emitted verbatim (spec.md §3).
type Record struct {
	// Name is the owner name as it appeared on the wire, normally the
	// two-byte compression pointer 0xC0 0x0C referring back to the
	// question.
	Name []byte
	Type uint16
	// Class is the record class (IN = 1).
	Class uint16
	// TTL is the residual TTL in seconds at LastUpdate. It is aged down
	// on every cache read rather than recomputed from a fixed origin
	// time, so repeated reads can't accumulate rounding drift.
	TTL        float64
	RDLength   uint16
	RData      []byte
	Section    Section
	LastUpdate time.Time

	// BadData is true when the fixed 10-byte record header failed to
	// decode. Such records carry no meaningful Type/Class/TTL/RData —
	// only BinaryBadData, the original bytes, which is re-emitted as-is.
	BadData       bool
	BinaryBadData []byte
}

// decodeRecordFragment parses one candidate record out of fragment, which
// begins with a 2-byte owner-name pointer (see splitRecordFragments in
// packet.go for how fragments are carved out of the record stream). It
// returns the record and the number of leading bytes of fragment it
// consumed; any remainder belongs to the next record.
//
// If the fixed header fails to decode (fragment too short), the whole
// fragment is kept as an opaque bad-data record (spec.md §4.1).
func decodeRecordFragment(fragment []byte, section Section, now time.Time) (Record, int) {
	const nameLen = 2
	if len(fragment) < nameLen+fixedRecordHeaderLen {
		return Record{Section: section, BadData: true, BinaryBadData: fragment}, len(fragment)
	}
	name := fragment[:nameLen]
	fixed := fragment[nameLen : nameLen+fixedRecordHeaderLen]
	rtype := binary.BigEndian.Uint16(fixed[0:2])
	rclass := binary.BigEndian.Uint16(fixed[2:4])
	rttl := binary.BigEndian.Uint32(fixed[4:8])
	rdlength := binary.BigEndian.Uint16(fixed[8:10])

	total := nameLen + fixedRecordHeaderLen + int(rdlength)
	if total > len(fragment) {
		// Not enough bytes for the advertised rdlength: treat as bad data,
		// consuming the whole fragment (mirrors the source's struct.error path).
		return Record{Section: section, BadData: true, BinaryBadData: fragment}, len(fragment)
	}
	rdata := fragment[nameLen+fixedRecordHeaderLen : total]

	rec := Record{
		Name:       name,
		Type:       rtype,
		Class:      rclass,
		TTL:        float64(rttl),
		RDLength:   rdlength,
		RData:      rdata,
		Section:    section,
		LastUpdate: now,
	}
	return rec, total
}

// AgeTo updates r's residual TTL to account for elapsed time since
// LastUpdate, then advances LastUpdate to now. Bad-data records are never
// aged: they have no meaningful TTL (spec.md §4.2).
func (r *Record) AgeTo(now time.Time) {
	if r.BadData {
		return
	}
	r.TTL -= now.Sub(r.LastUpdate).Seconds()
	r.LastUpdate = now
}

// IsObsolete reports whether r's residual TTL, computed as of now without
// mutating r, is strictly below the 2-second freshness floor. Bad-data
// records are never obsolete: they carry no TTL and are only displaced by a
// wholesale cache refresh (spec.md §4.2).
func (r Record) IsObsolete(now time.Time) bool {
	if r.BadData {
		return false
	}
	residual := r.TTL - now.Sub(r.LastUpdate).Seconds()
	return residual < float64(obsoleteThreshold/time.Second)
}

// Encode serializes r back to wire form. A bad-data record re-emits its
// preserved original bytes unchanged; a good record re-emits
// name || TYPE || CLASS || floor(TTL) || RDLENGTH || RDATA, with RDLENGTH
// written as stored rather than recomputed from len(RData) (spec.md §4.1).
func (r Record) Encode() []byte {
	if r.BadData {
		return r.BinaryBadData
	}
	buf := make([]byte, 0, len(r.Name)+fixedRecordHeaderLen+len(r.RData))
	buf = append(buf, r.Name...)

	fixed := make([]byte, fixedRecordHeaderLen)
	binary.BigEndian.PutUint16(fixed[0:2], r.Type)
	binary.BigEndian.PutUint16(fixed[2:4], r.Class)
	binary.BigEndian.PutUint32(fixed[4:8], ttlFloor(r.TTL))
	binary.BigEndian.PutUint16(fixed[8:10], r.RDLength)
	buf = append(buf, fixed...)

	return append(buf, r.RData...)
}

func ttlFloor(ttl float64) uint32 {
	if ttl < 0 {
		return 0
	}
	return uint32(math.Floor(ttl))
}
