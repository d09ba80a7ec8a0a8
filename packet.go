package relay

import (
	"bytes"
	"time"
)

// pointer is the two-byte compression pointer every record's owner name
// takes in a single-question response: 0xC0 0x0C, referring back to the
// name at offset 12 (the start of the question).
var pointer = []byte{0xC0, 0x0C}

// Packet is a fully decoded DNS message: header, question, and the three
// resource record sections in upstream delivery order (spec.md §3).
type Packet struct {
	Header      Header
	Question    Question
	Answers     []Record
	Authorities []Record
	Additionals []Record
}

// DecodePacket parses a complete DNS message (header + question + records).
// Record decoding exploits the fact that, for a single-question message,
// every record's owner name is the pointer back to the question (spec.md
// §4.1): the byte stream after the question is split on every occurrence of
// that pointer, and each fragment is parsed as a candidate record.
func DecodePacket(msg []byte) (Packet, error) {
	header, err := DecodeHeader(msg)
	if err != nil {
		return Packet{}, err
	}
	question, qlen, err := DecodeQuestion(msg[headerLength:])
	if err != nil {
		return Packet{}, err
	}

	now := time.Now()
	rest := msg[headerLength+qlen:]
	fragments := splitRecordFragments(rest)

	answers := pickRecords(int(header.ANCOUNT), SectionAnswer, &fragments, now)
	authorities := pickRecords(int(header.NSCOUNT), SectionAuthority, &fragments, now)
	additionals := pickRecords(int(header.ARCOUNT), SectionAdditional, &fragments, now)

	return Packet{
		Header:      header,
		Question:    question,
		Answers:     answers,
		Authorities: authorities,
		Additionals: additionals,
	}, nil
}

// splitRecordFragments splits rest at every occurrence of the question-name
// pointer, re-attaching the pointer as the prefix of each piece after the
// first (the bytes before the first occurrence, normally empty, are
// dropped). If rest contains no pointer at all it's returned as a single
// fragment so a record stream made entirely of bad data still gets carried
// through somewhere.
//
// Only the final fragment is checked for a trailing remainder: if its first
// record doesn't consume the whole fragment, the remainder is split off as
// one more fragment. This mirrors a known limitation (spec.md §9 REDESIGN
// FLAG #1): rdata that happens to contain the pointer byte pair elsewhere in
// the stream isn't fully repaired by this single fixup pass, and that
// behavior is preserved rather than fixed.
func splitRecordFragments(rest []byte) [][]byte {
	parts := bytes.Split(rest, pointer)
	if len(parts) <= 1 {
		return [][]byte{rest}
	}

	fragments := make([][]byte, 0, len(parts)-1)
	for _, p := range parts[1:] {
		frag := make([]byte, 0, len(pointer)+len(p))
		frag = append(frag, pointer...)
		frag = append(frag, p...)
		fragments = append(fragments, frag)
	}

	last := fragments[len(fragments)-1]
	_, consumed := decodeRecordFragment(last, SectionAnswer, time.Time{})
	if consumed < len(last) {
		fragments[len(fragments)-1] = last[:consumed]
		fragments = append(fragments, last[consumed:])
	}
	return fragments
}

// pickRecords pops up to count fragments off the front of queue and decodes
// each as a Record tagged with section. If the queue runs dry first (a
// truncated or malformed upstream reply), the remaining records are simply
// absent rather than treated as a fatal error.
func pickRecords(count int, section Section, queue *[][]byte, now time.Time) []Record {
	if count == 0 {
		return nil
	}
	records := make([]Record, 0, count)
	for i := 0; i < count && len(*queue) > 0; i++ {
		frag := (*queue)[0]
		*queue = (*queue)[1:]
		rec, _ := decodeRecordFragment(frag, section, now)
		records = append(records, rec)
	}
	return records
}

// Encode serializes the full packet: header, question, then every record in
// section order (answers, authorities, additionals).
func (p Packet) Encode() []byte {
	buf := make([]byte, 0, headerLength+len(p.Question.Name)+4)
	buf = append(buf, p.Header.Encode()...)
	buf = append(buf, p.Question.Encode()...)
	for _, sections := range [][]Record{p.Answers, p.Authorities, p.Additionals} {
		for _, r := range sections {
			buf = append(buf, r.Encode()...)
		}
	}
	return buf
}

// Records returns every record across all three sections, in section order
// (answers, authorities, additionals) — the order the cache stores a
// question's record set in (spec.md §3).
func (p Packet) Records() []Record {
	all := make([]Record, 0, len(p.Answers)+len(p.Authorities)+len(p.Additionals))
	all = append(all, p.Answers...)
	all = append(all, p.Authorities...)
	all = append(all, p.Additionals...)
	return all
}
