package relay

import (
	"expvar"
	"sync"
	"time"
)

// cacheMetrics are the expvar counters published for a Cache instance,
// following the package's getVarInt-based metrics convention (vars.go).
type cacheMetrics struct {
	entries *expvar.Int
}

// Cache is a keyed store of resource-record sets with TTL aging. It owns
// its record sets exclusively: Get returns a snapshot whose records have
// already been aged down to "now", and callers must not mutate it further
// (spec.md §3, "Ownership").
//
// A single mutex guards both the insert and read paths. spec.md §9 notes
// that two independent locks (one per path) are also valid, but a single
// exclusive lock is "equivalent and simpler" since Get itself mutates TTLs
// and must be treated as a writer.
type Cache struct {
	id      string
	mu      sync.Mutex
	data    map[Key][]Record
	metrics cacheMetrics
}

// NewCache returns an empty Cache. id is only used to namespace its expvar
// metrics so multiple caches (e.g. one per test) don't collide.
func NewCache(id string) *Cache {
	return &Cache{
		id:   id,
		data: make(map[Key][]Record),
		metrics: cacheMetrics{
			entries: getVarInt("cache", id, "entries"),
		},
	}
}

// Put replaces the record list stored for key atomically. Per spec.md §3,
// this is a wholesale replacement, not a per-record merge: the previous
// list for key, if any, is discarded in full. Storing an empty list is
// equivalent to deleting the key (Contains then reports false).
func (c *Cache) Put(key Key, records []Record) {
	c.mu.Lock()
	if len(records) == 0 {
		delete(c.data, key)
	} else {
		c.data[key] = records
	}
	c.metrics.entries.Set(int64(len(c.data)))
	c.mu.Unlock()
}

// Contains reports whether a non-empty record list is currently stored for
// key.
func (c *Cache) Contains(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	records, ok := c.data[key]
	return ok && len(records) > 0
}

// Get ages every non-bad record for key down to "now" (mutating its TTL and
// LastUpdate in place) and returns the resulting snapshot along with the
// per-section count of non-bad records. Bad-data records are excluded from
// the counts but remain in the returned slice, so they're still re-emitted
// by the response builder (spec.md §4.3). ok is false if key isn't present.
func (c *Cache) Get(key Key) (records []Record, ancount, nscount, arcount int, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored, found := c.data[key]
	if !found {
		return nil, 0, 0, 0, false
	}

	now := time.Now()
	for i := range stored {
		stored[i].AgeTo(now)
		if stored[i].BadData {
			continue
		}
		switch stored[i].Section {
		case SectionAnswer:
			ancount++
		case SectionAuthority:
			nscount++
		case SectionAdditional:
			arcount++
		}
	}

	out := make([]Record, len(stored))
	copy(out, stored)
	return out, ancount, nscount, arcount, true
}

// GetObsoleteRecords returns the subset of key's stored records whose
// residual TTL, as of now, is below the freshness floor. It does not age
// or otherwise mutate the records it inspects (spec.md §4.3).
func (c *Cache) GetObsoleteRecords(key Key) []Record {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored, ok := c.data[key]
	if !ok {
		return nil
	}

	now := time.Now()
	var obsolete []Record
	for _, r := range stored {
		if r.IsObsolete(now) {
			obsolete = append(obsolete, r)
		}
	}
	return obsolete
}
