package relay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testKey(name string) Key {
	return KeyFor(Question{Name: encodeName(name, "com"), Type: 1, Class: 1})
}

func TestCacheContainsUnknownKey(t *testing.T) {
	c := NewCache("t1")
	require.False(t, c.Contains(testKey("example")))
}

func TestCachePutAndContains(t *testing.T) {
	c := NewCache("t2")
	key := testKey("example")
	rec := Record{Section: SectionAnswer, TTL: 3600, LastUpdate: time.Now()}

	c.Put(key, []Record{rec})
	require.True(t, c.Contains(key))

	c.Put(key, nil)
	require.False(t, c.Contains(key))
}

func TestCachePutReplacesWholesale(t *testing.T) {
	c := NewCache("t3")
	key := testKey("example")

	c.Put(key, []Record{{Section: SectionAnswer, TTL: 100, LastUpdate: time.Now()}})
	c.Put(key, []Record{
		{Section: SectionAnswer, TTL: 200, LastUpdate: time.Now()},
		{Section: SectionAnswer, TTL: 300, LastUpdate: time.Now()},
	})

	records, ancount, _, _, ok := c.Get(key)
	require.True(t, ok)
	require.Equal(t, 2, ancount)
	require.Len(t, records, 2)
}

func TestCacheGetAgesRecords(t *testing.T) {
	c := NewCache("t4")
	key := testKey("example")
	c.Put(key, []Record{{Section: SectionAnswer, TTL: 10, LastUpdate: time.Now().Add(-4 * time.Second)}})

	records, ancount, _, _, ok := c.Get(key)
	require.True(t, ok)
	require.Equal(t, 1, ancount)
	require.InDelta(t, 6, records[0].TTL, 0.5)
}

func TestCacheGetCountsExcludeBadData(t *testing.T) {
	c := NewCache("t5")
	key := testKey("example")
	c.Put(key, []Record{
		{Section: SectionAnswer, TTL: 3600, LastUpdate: time.Now()},
		{Section: SectionAnswer, BadData: true, BinaryBadData: []byte{0xC0, 0x0C, 0x00}},
	})

	records, ancount, _, _, ok := c.Get(key)
	require.True(t, ok)
	require.Equal(t, 1, ancount)
	require.Len(t, records, 2)
}

func TestCacheGetObsoleteRecords(t *testing.T) {
	c := NewCache("t6")
	key := testKey("example")
	now := time.Now()
	c.Put(key, []Record{
		{Section: SectionAnswer, TTL: 3600, LastUpdate: now},
		{Section: SectionAnswer, TTL: 1, LastUpdate: now},
	})

	obsolete := c.GetObsoleteRecords(key)
	require.Len(t, obsolete, 1)
}

func TestCacheDistinctKeysNeverCollide(t *testing.T) {
	c := NewCache("t7")
	aKey := KeyFor(Question{Name: encodeName("example", "com"), Type: 1, Class: 1})
	aaaaKey := KeyFor(Question{Name: encodeName("example", "com"), Type: 28, Class: 1})

	c.Put(aKey, []Record{{Section: SectionAnswer, TTL: 60, LastUpdate: time.Now()}})
	require.True(t, c.Contains(aKey))
	require.False(t, c.Contains(aaaaKey))
}
