package multimap

import (
	"github.com/latticedb/flexset/atompool"
	"github.com/latticedb/flexset/flex"
	"github.com/latticedb/flexset/internal/debug"
	"github.com/latticedb/flexset/value"
)

// defaultFlexSizeLimit mirrors orderedset's default promotion threshold.
const defaultFlexSizeLimit = 8192

// MultiMap is the public façade for C6: a sorted container of N-element
// groups keyed by element 0, dispatching through whichever of
// {Small, Medium, Full} currently holds its data and auto-promoting as
// it grows (spec.md §4.6).
type MultiMap struct {
	t         tier
	n         int
	sizeLimit int
	mapIsSet  bool
}

// New returns an empty MultiMap with elements_per_entry n and the given
// map_is_set mode: mapIsSet=false gives unique-key upsert semantics
// (classic multimap), mapIsSet=true gives full-width comparison with
// duplicate keys permitted (the reading the ordered set specialises to
// at n=2).
func New(n int, mapIsSet bool) *MultiMap {
	return NewWithLimit(n, mapIsSet, defaultFlexSizeLimit)
}

func NewWithLimit(n int, mapIsSet bool, limit int) *MultiMap {
	if n < 1 {
		panic("multimap: elements_per_entry must be >= 1")
	}
	return &MultiMap{t: newSmallTier(n), n: n, sizeLimit: limit, mapIsSet: mapIsSet}
}

func (m *MultiMap) Count() int { return m.t.count() }
func (m *MultiMap) Bytes() int { return m.t.bytes() }

// Insert upserts group under the instance's configured map_is_set mode.
func (m *MultiMap) Insert(group []value.Value) bool {
	if len(group) != m.n {
		panic("multimap: Insert: len(group) must equal elements_per_entry")
	}
	replaced := m.t.insertGroup(group, m.mapIsSet)
	if !replaced {
		m.promoteIfNeeded()
	}
	return replaced
}

// InsertFullWidth implements spec.md §4.6's insert_full_width: compares
// every element regardless of the instance's configured mode, so
// duplicate keys are permitted and entries sort lexicographically across
// the whole group. Intended for mapIsSet=true instances — calling it on
// a mapIsSet=false (unique-key) instance bypasses that instance's own
// uniqueness guarantee for the inserted group and is the caller's
// responsibility, mirroring flex's own "mode travels per call" contract.
func (m *MultiMap) InsertFullWidth(group []value.Value) bool {
	if len(group) != m.n {
		panic("multimap: InsertFullWidth: len(group) must equal elements_per_entry")
	}
	replaced := m.t.insertGroup(group, true)
	if !replaced {
		m.promoteIfNeeded()
	}
	return replaced
}

// InsertWithSurrogateKey implements spec.md §4.6's
// insert_with_surrogate_key: the sort key is an atom-pool reference to
// keyBytes rather than keyBytes itself, while rest is stored alongside
// unchanged — a foreign-key-style indirection. The resulting group is
// [ExternalRef(id), rest...], so n must equal len(rest)+1.
func (m *MultiMap) InsertWithSurrogateKey(pool atompool.Pool, keyBytes []byte, rest []value.Value) bool {
	if len(rest)+1 != m.n {
		panic("multimap: InsertWithSurrogateKey: len(rest)+1 must equal elements_per_entry")
	}
	id := pool.Intern(keyBytes)
	group := make([]value.Value, 0, m.n)
	group = append(group, value.ExternalRef(id))
	group = append(group, rest...)
	return m.Insert(group)
}

// RemoveByKey deletes the group keyed by key (the unique-key reading),
// returning the removed group and whether it existed.
func (m *MultiMap) RemoveByKey(key value.Value) ([]value.Value, bool) {
	return m.t.removeByKey(key)
}

// RemoveExact deletes the group exactly matching every element of group
// (the duplicate-keys-permitted reading's companion to InsertFullWidth).
func (m *MultiMap) RemoveExact(group []value.Value) bool {
	if len(group) != m.n {
		panic("multimap: RemoveExact: len(group) must equal elements_per_entry")
	}
	return m.t.removeExact(group)
}

func (m *MultiMap) ExistsKey(key value.Value) bool {
	return m.t.existsKey(key)
}

func (m *MultiMap) GetByKey(key value.Value) ([]value.Value, bool) {
	return m.t.getByKey(key)
}

// Entries returns every stored group, in no particular guaranteed order
// across tiers other than "sorted within each sub-structure" (callers
// needing a single globally sorted view should sort the result, the same
// convention orderedset.sortedEntries follows).
func (m *MultiMap) Entries() [][]value.Value {
	return m.t.entries()
}

// Copy returns a deep, independent duplicate.
func (m *MultiMap) Copy() *MultiMap {
	return &MultiMap{t: m.t.duplicate(), n: m.n, sizeLimit: m.sizeLimit, mapIsSet: m.mapIsSet}
}

// Reset empties the multimap in place.
func (m *MultiMap) Reset() {
	m.t = newSmallTier(m.n)
}

func (m *MultiMap) promoteIfNeeded() {
	switch cur := m.t.(type) {
	case *smallTier:
		if cur.bytes() > m.sizeLimit && cur.count() >= 2 {
			debug.Log("multimap", "promoting small->medium, bytes=%d count=%d", cur.bytes(), cur.count())
			lower := cur.arr
			upper := lower.SplitMiddle(m.n)
			m.t = newMediumTier(m.n, lower, upper)
		}
	case *mediumTier:
		if cur.bytes() > 3*m.sizeLimit && cur.arrs[0].Count() > 0 && cur.arrs[1].Count() > 0 {
			debug.Log("multimap", "promoting medium->full, bytes=%d", cur.bytes())
			m.t = promoteMediumToFull(cur, m.sizeLimit, m.mapIsSet)
		}
	}
}

func promoteMediumToFull(med *mediumTier, maxMapSize int, fullWidth bool) *fullTier {
	full := newFullTier(med.n, maxMapSize, fullWidth, 1)
	full.subMaps = []*flex.Array{med.arrs[0], med.arrs[1]}
	if med.arrs[1].Count() > 0 {
		full.ranges = []value.Value{full.subMaps[1].Get(full.subMaps[1].Head())}
	}
	for _, sm := range full.subMaps {
		for _, g := range decodeGroups(sm, med.n) {
			full.index.Add(indexKey(med.n, g, fullWidth), g)
		}
	}
	return full
}
