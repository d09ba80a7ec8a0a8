package relay

import "strconv"

// qtypeNames covers the record types a LAN-side forwarder actually sees in
// practice; anything else falls back to its numeric form (matches the
// source's TYPES lookup table in dns_packet.py).
var qtypeNames = map[uint16]string{
	1:   "A",
	2:   "NS",
	5:   "CNAME",
	6:   "SOA",
	12:  "PTR",
	15:  "MX",
	16:  "TXT",
	28:  "AAAA",
	33:  "SRV",
	255: "ANY",
}

// typeName renders a QTYPE/TYPE value for logging, e.g. typeName(1) == "A".
func typeName(t uint16) string {
	if name, ok := qtypeNames[t]; ok {
		return name
	}
	return strconv.Itoa(int(t))
}
