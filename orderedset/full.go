package orderedset

import (
	"sort"

	"github.com/latticedb/flexset/flex"
	"github.com/latticedb/flexset/hashindex"
	"github.com/latticedb/flexset/value"
)

// fullTier (spec.md §3.7) is the hash-indexed, multi-sub-map tier: an
// O(1) member->score hash index plus a dynamic array of packed-array
// sub-maps, each sorted, the whole concatenation globally sorted, with a
// range-bound value per sub-map (index >= 1) equal to that sub-map's
// head score.
type fullTier struct {
	memberIndex *hashindex.Table[string, value.Value]
	subMaps     []*flex.Array
	ranges      []value.Value // len == len(subMaps)-1
	maxMapSize  int
}

func memberKey(member value.Value) string {
	return string(member.AppendBinary(nil))
}

func newFullTier(maxMapSize int, seed uint64) *fullTier {
	return &fullTier{
		memberIndex: hashindex.New[string, value.Value](hashindex.StringHash(seed)),
		subMaps:     []*flex.Array{flex.New()},
		maxMapSize:  maxMapSize,
	}
}

func (t *fullTier) count() int {
	return t.memberIndex.Count()
}

func (t *fullTier) bytes() int {
	n := 0
	for _, sm := range t.subMaps {
		n += sm.Bytes()
	}
	return n
}

// submapIndexForScore binary-searches ranges for the sub-map whose
// bounds cover score, resolving ties to the later sub-map and clamping
// an out-of-range search to the last sub-map (spec.md §4.4.4).
func (t *fullTier) submapIndexForScore(score value.Value) int {
	idx := sort.Search(len(t.ranges), func(i int) bool {
		return value.Compare(score, t.ranges[i]) < 0
	})
	if idx >= len(t.subMaps) {
		idx = len(t.subMaps) - 1
	}
	return idx
}

func (t *fullTier) exists(member value.Value) bool {
	return t.memberIndex.Exists(memberKey(member))
}

func (t *fullTier) getScore(member value.Value) (value.Value, bool) {
	return t.memberIndex.Find(memberKey(member))
}

// add upserts (score, member): locate and remove any prior entry by its
// recorded score, then sorted-insert the new (score, member) group into
// the sub-map its score belongs to, splitting that sub-map if it grew
// past the size limit (spec.md §4.4.1/§4.4.2).
func (t *fullTier) add(score, member value.Value) bool {
	key := memberKey(member)
	existed := false
	if oldScore, ok := t.memberIndex.Find(key); ok {
		t.deleteFromSubmaps(oldScore, member)
		existed = true
	}
	t.memberIndex.Add(key, score)
	idx := t.submapIndexForScore(score)
	t.subMaps[idx].InsertSortedGroup(2, []value.Value{score, member}, true)
	t.maybeSplit(idx)
	return existed
}

func (t *fullTier) remove(member value.Value) (value.Value, bool) {
	key := memberKey(member)
	score, ok := t.memberIndex.Find(key)
	if !ok {
		return value.Value{}, false
	}
	t.memberIndex.Delete(key)
	t.deleteFromSubmaps(score, member)
	return score, true
}

// deleteFromSubmaps binary-searches to the containing sub-map by range
// bound, then linear-scans members sharing that score to find the exact
// group to delete (spec.md §4.4.1), followed by the merge/removal
// bookkeeping of §4.4.3.
func (t *fullTier) deleteFromSubmaps(score, member value.Value) {
	idx := t.submapIndexForScore(score)
	sm := t.subMaps[idx]
	pos := sm.Head()
	for pos < sm.End() {
		s := sm.Get(pos)
		next := sm.Next(pos)
		m := sm.Get(next)
		if value.Compare(s, score) == 0 && value.Equal(m, member) {
			rawIdx := t.rawIndexOf(sm, pos)
			sm.Delete(2, rawIdx, 2)
			t.afterDelete(idx)
			return
		}
		pos = sm.Next(next)
	}
}

func (t *fullTier) rawIndexOf(arr *flex.Array, pos int) int {
	i := 0
	for p := arr.Head(); p < pos; p = arr.Next(arr.Next(p)) {
		i += 2
	}
	return i
}

// maybeSplit implements spec.md §4.4.2: split a sub-map that has grown
// past maxMapSize into two, provided it holds at least two entry groups
// (a singleton sub-map is never split — spec.md §9's "Scoremap split on
// singletons").
func (t *fullTier) maybeSplit(idx int) {
	sm := t.subMaps[idx]
	if sm.Bytes() <= t.maxMapSize || sm.Count() < 4 {
		return
	}
	upper := sm.SplitMiddle(2)
	if upper.Count() == 0 {
		return
	}
	headScore := upper.Get(upper.Head())

	t.subMaps = append(t.subMaps, nil)
	copy(t.subMaps[idx+2:], t.subMaps[idx+1:])
	t.subMaps[idx+1] = upper

	t.ranges = append(t.ranges, value.Value{})
	copy(t.ranges[idx+1:], t.ranges[idx:])
	t.ranges[idx] = headScore.Clone()
}

// afterDelete implements spec.md §4.4.3: remove an emptied sub-map
// (unless it is the only one), otherwise opportunistically merge it with
// its right neighbour if the combined size still fits.
func (t *fullTier) afterDelete(idx int) {
	sm := t.subMaps[idx]
	if sm.Count() == 0 && len(t.subMaps) > 1 {
		t.removeSubmap(idx)
		return
	}
	if idx+1 < len(t.subMaps) {
		right := t.subMaps[idx+1]
		if sm.Bytes()+right.Bytes() <= t.maxMapSize {
			sm.AppendArray(2, right)
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

func (t *fullTier) entries() []entry {
	out := make([]entry, 0, t.count())
	for _, sm := range t.subMaps {
		out = append(out, decodeArrayEntries(sm)...)
	}
	return out
}

func (t *fullTier) duplicate() tier {
	dup := &fullTier{
		memberIndex: hashindex.New[string, value.Value](hashindex.StringHash(1)),
		subMaps:     make([]*flex.Array, len(t.subMaps)),
		ranges:      make([]value.Value, len(t.ranges)),
		maxMapSize:  t.maxMapSize,
	}
	for i, sm := range t.subMaps {
		dup.subMaps[i] = sm.Duplicate()
	}
	for i, r := range t.ranges {
		dup.ranges[i] = r.Clone()
	}
	it := hashindex.NewIterator(t.memberIndex)
	for {
		k, v, ok := it.Next()
		if !ok {
			break
		}
		dup.memberIndex.Add(k, v.Clone())
	}
	return dup
}
