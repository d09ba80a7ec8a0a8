package relay

import (
	"expvar"
	"fmt"
)

// getVarInt returns a process-wide *expvar.Int for the given path, creating
// it on first use. Reusing the same path (e.g. across tests that construct
// multiple caches with the same id) returns the existing counter instead of
// panicking on a duplicate expvar registration.
func getVarInt(base, id, name string) *expvar.Int {
	fullname := fmt.Sprintf("dnsrelay.%s.%s.%s", base, id, name)
	if v := expvar.Get(fullname); v != nil {
		return v.(*expvar.Int)
	}
	return expvar.NewInt(fullname)
}
