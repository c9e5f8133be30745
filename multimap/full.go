package multimap

import (
	"sort"

	"github.com/latticedb/flexset/flex"
	"github.com/latticedb/flexset/hashindex"
	"github.com/latticedb/flexset/value"
)

// fullTier mirrors orderedset's Full tier: an O(1) hash index plus a
// dynamic array of sorted packed-array sub-maps, generalised to
// arbitrary-arity groups. The index is keyed consistently with the
// instance's configured comparison mode: by key bytes alone when
// map_is_set is false (unique-key multimap semantics give an O(1)
// getByKey/removeByKey), or by the full tuple's bytes when true
// (duplicates-of-key-permitted, sorted-set-like semantics give O(1)
// removeExact instead).
type fullTier struct {
	index      *hashindex.Table[string, []value.Value]
	subMaps    []*flex.Array
	ranges     []value.Value
	n          int
	maxMapSize int
	fullWidth  bool
}

func indexKey(n int, group []value.Value, fullWidth bool) string {
	if !fullWidth {
		return string(group[0].AppendBinary(nil))
	}
	var buf []byte
	for i := 0; i < n; i++ {
		buf = group[i].AppendBinary(buf)
	}
	return string(buf)
}

func newFullTier(n, maxMapSize int, fullWidth bool, seed uint64) *fullTier {
	return &fullTier{
		index:      hashindex.New[string, []value.Value](hashindex.StringHash(seed)),
		subMaps:    []*flex.Array{flex.New()},
		n:          n,
		maxMapSize: maxMapSize,
		fullWidth:  fullWidth,
	}
}

func (t *fullTier) count() int {
	n := 0
	for _, sm := range t.subMaps {
		n += sm.Count() / t.n
	}
	return n
}

func (t *fullTier) bytes() int {
	n := 0
	for _, sm := range t.subMaps {
		n += sm.Bytes()
	}
	return n
}

func (t *fullTier) submapIndexForKey(key value.Value) int {
	idx := sort.Search(len(t.ranges), func(i int) bool {
		return value.Compare(key, t.ranges[i]) < 0
	})
	if idx >= len(t.subMaps) {
		idx = len(t.subMaps) - 1
	}
	return idx
}

func (t *fullTier) existsKey(key value.Value) bool {
	return t.index.Exists(indexKey(t.n, []value.Value{key}, false))
}

func (t *fullTier) getByKey(key value.Value) ([]value.Value, bool) {
	return t.index.Find(indexKey(t.n, []value.Value{key}, false))
}

func (t *fullTier) insertGroup(group []value.Value, fullWidth bool) bool {
	key := indexKey(t.n, group, t.fullWidth)
	existed := false
	if old, ok := t.index.Find(key); ok {
		t.deleteFromSubmaps(old, fullWidth)
		existed = true
	}
	t.index.Add(key, group)
	idx := t.submapIndexForKey(group[0])
	t.subMaps[idx].InsertSortedGroup(t.n, group, fullWidth)
	t.maybeSplit(idx)
	return existed
}

func (t *fullTier) removeByKey(key value.Value) ([]value.Value, bool) {
	group, ok := t.index.Find(indexKey(t.n, []value.Value{key}, false))
	if !ok {
		return nil, false
	}
	t.index.Delete(indexKey(t.n, []value.Value{key}, false))
	t.deleteFromSubmaps(group, false)
	return group, true
}

func (t *fullTier) removeExact(group []value.Value) bool {
	key := indexKey(t.n, group, true)
	stored, ok := t.index.Find(key)
	if !ok {
		return false
	}
	t.index.Delete(key)
	t.deleteFromSubmaps(stored, true)
	return true
}

// deleteFromSubmaps binary-searches to the containing sub-map by range
// bound (key of the head group), then locates and deletes the exact
// group under the requested comparison mode.
func (t *fullTier) deleteFromSubmaps(group []value.Value, fullWidth bool) {
	idx := t.submapIndexForKey(group[0])
	sm := t.subMaps[idx]
	rawIdx, found := sm.FindSortedGroup(t.n, group, fullWidth)
	if !found {
		return
	}
	sm.Delete(t.n, rawIdx, t.n)
	t.afterDelete(idx)
}

// maybeSplit splits a sub-map that has grown past maxMapSize into two,
// provided it holds at least two entry groups (a singleton sub-map is
// never split, mirroring orderedset's §4.4.2/§9 rule).
func (t *fullTier) maybeSplit(idx int) {
	sm := t.subMaps[idx]
	if sm.Bytes() <= t.maxMapSize || sm.Count() < 2*t.n {
		return
	}
	upper := sm.SplitMiddle(t.n)
	if upper.Count() == 0 {
		return
	}
	headKey := upper.Get(upper.Head())

	t.subMaps = append(t.subMaps, nil)
	copy(t.subMaps[idx+2:], t.subMaps[idx+1:])
	t.subMaps[idx+1] = upper

	t.ranges = append(t.ranges, value.Value{})
	copy(t.ranges[idx+1:], t.ranges[idx:])
	t.ranges[idx] = headKey.Clone()
}

func (t *fullTier) afterDelete(idx int) {
	sm := t.subMaps[idx]
	if sm.Count() == 0 && len(t.subMaps) > 1 {
		t.removeSubmap(idx)
		return
	}
	if idx+1 < len(t.subMaps) {
		right := t.subMaps[idx+1]
		if sm.Bytes()+right.Bytes() <= t.maxMapSize {
			sm.AppendArray(t.n, right)
			t.removeSubmap(idx + 1)
		}
	}
}

func (t *fullTier) removeSubmap(i int) {
	t.subMaps = append(t.subMaps[:i], t.subMaps[i+1:]...)
	dropIdx := i - 1
	if dropIdx < 0 {
		dropIdx = 0
	}
	if dropIdx < len(t.ranges) {
		t.ranges = append(t.ranges[:dropIdx], t.ranges[dropIdx+1:]...)
	}
}

func (t *fullTier) entries() [][]value.Value {
	out := make([][]value.Value, 0, t.count())
	for _, sm := range t.subMaps {
		out = append(out, decodeGroups(sm, t.n)...)
	}
	return out
}

func (t *fullTier) duplicate() tier {
	dup := &fullTier{
		index:      hashindex.New[string, []value.Value](hashindex.StringHash(1)),
		subMaps:    make([]*flex.Array, len(t.subMaps)),
		ranges:     make([]value.Value, len(t.ranges)),
		n:          t.n,
		maxMapSize: t.maxMapSize,
		fullWidth:  t.fullWidth,
	}
	for i, sm := range t.subMaps {
		dup.subMaps[i] = sm.Duplicate()
	}
	for i, r := range t.ranges {
		dup.ranges[i] = r.Clone()
	}
	it := hashindex.NewIterator(t.index)
	for {
		k, v, ok := it.Next()
		if !ok {
			break
		}
		dup.index.Add(k, cloneGroup(v))
	}
	return dup
}
