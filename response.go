package relay

// BuildResponse assembles a reply to req (already decoded as reqHeader and
// reqQuestion) from the given cached records and section counts. The header
// mirrors the request's ID and question, sets QR=1 ("this is a response")
// and RA=1 ("recursion available"), and carries the given section counts,
// which exclude bad-data records even though those records are still
// appended to the body (spec.md §4.6).
func BuildResponse(reqHeader Header, reqQuestion Question, records []Record, ancount, nscount, arcount int) []byte {
	respHeader := Header{
		ID:      reqHeader.ID,
		QR:      1,
		Opcode:  reqHeader.Opcode,
		AA:      0,
		TC:      0,
		RD:      reqHeader.RD,
		RA:      1,
		Z:       0,
		RCODE:   0,
		QDCOUNT: 1,
		ANCOUNT: uint16(ancount),
		NSCOUNT: uint16(nscount),
		ARCOUNT: uint16(arcount),
	}

	buf := make([]byte, 0, headerLength+len(reqQuestion.Name)+4)
	buf = append(buf, respHeader.Encode()...)
	buf = append(buf, reqQuestion.Encode()...)
	for _, r := range records {
		buf = append(buf, r.Encode()...)
	}
	return buf
}

// BuildErrorResponse builds the fallback reply sent when the upstream
// resolver can't be reached: RCODE 2 ("server failure"), question echoed
// back, and every section count zeroed regardless of what may be cached,
// since nothing is actually being returned (spec.md §4.6, §7).
func BuildErrorResponse(reqHeader Header, reqQuestion Question) []byte {
	respHeader := Header{
		ID:      reqHeader.ID,
		QR:      1,
		Opcode:  reqHeader.Opcode,
		AA:      0,
		TC:      0,
		RD:      reqHeader.RD,
		RA:      1,
		Z:       0,
		RCODE:   2,
		QDCOUNT: 1,
		ANCOUNT: 0,
		NSCOUNT: 0,
		ARCOUNT: 0,
	}

	buf := make([]byte, 0, headerLength+len(reqQuestion.Name)+4)
	buf = append(buf, respHeader.Encode()...)
	buf = append(buf, reqQuestion.Encode()...)
	return buf
}
