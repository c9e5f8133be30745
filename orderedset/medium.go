package orderedset

import (
	"github.com/latticedb/flexset/flex"
	"github.com/latticedb/flexset/value"
)

// mediumTier (spec.md §3.6) holds exactly two packed arrays, arrs[0]
// (the lower half) and arrs[1] (the upper half): every score in arrs[0]
// is <= the head score of arrs[1].
type mediumTier struct {
	arrs [2]*flex.Array
}

func newMediumTier(lower, upper *flex.Array) *mediumTier {
	t := &mediumTier{arrs: [2]*flex.Array{lower, upper}}
	t.rebalance()
	return t
}

func (t *mediumTier) count() int {
	return t.arrs[0].Count()/2 + t.arrs[1].Count()/2
}

func (t *mediumTier) bytes() int {
	return t.arrs[0].Bytes() + t.arrs[1].Bytes()
}

// rebalance restores "arrs[0] is the non-empty half" when arrs[0] is
// empty and arrs[1] is not (spec.md §3.6's swap invariant).
func (t *mediumTier) rebalance() {
	if t.arrs[0].Count() == 0 && t.arrs[1].Count() > 0 {
		t.arrs[0], t.arrs[1] = t.arrs[1], t.arrs[0]
	}
}

func findInArray(arr *flex.Array, member value.Value) (idx int, score value.Value, found bool) {
	pos := arr.Head()
	i := 0
	for pos < arr.End() {
		s := arr.Get(pos)
		m := arr.Get(arr.Next(pos))
		if value.Equal(m, member) {
			return i, s, true
		}
		pos = arr.Next(arr.Next(pos))
		i += 2
	}
	return 0, value.Value{}, false
}

func (t *mediumTier) findMember(member value.Value) (arrIdx, entryIdx int, score value.Value, found bool) {
	if idx, s, ok := findInArray(t.arrs[0], member); ok {
		return 0, idx, s, true
	}
	if idx, s, ok := findInArray(t.arrs[1], member); ok {
		return 1, idx, s, true
	}
	return 0, 0, value.Value{}, false
}

// targetArray picks which array a (score, member) candidate belongs in,
// comparing against arrs[1]'s head group (spec.md §4.4.1).
func (t *mediumTier) targetArray(score, member value.Value) int {
	if t.arrs[1].Count() == 0 {
		return 0
	}
	headScore := t.arrs[1].Get(t.arrs[1].Head())
	headMember := t.arrs[1].Get(t.arrs[1].Next(t.arrs[1].Head()))
	if c := value.Compare(score, headScore); c != 0 {
		if c < 0 {
			return 0
		}
		return 1
	}
	if value.Compare(member, headMember) < 0 {
		return 0
	}
	return 1
}

func (t *mediumTier) add(score, member value.Value) bool {
	replaced := false
	if arrIdx, idx, _, found := t.findMember(member); found {
		t.arrs[arrIdx].Delete(2, idx, 2)
		replaced = true
	}
	target := t.targetArray(score, member)
	t.arrs[target].InsertSortedGroup(2, []value.Value{score, member}, true)
	t.rebalance()
	return replaced
}

func (t *mediumTier) remove(member value.Value) (value.Value, bool) {
	arrIdx, idx, score, found := t.findMember(member)
	if !found {
		return value.Value{}, false
	}
	t.arrs[arrIdx].Delete(2, idx, 2)
	t.rebalance()
	return score, true
}

func (t *mediumTier) exists(member value.Value) bool {
	_, _, _, found := t.findMember(member)
	return found
}

func (t *mediumTier) getScore(member value.Value) (value.Value, bool) {
	_, _, score, found := t.findMember(member)
	return score, found
}

func decodeArrayEntries(arr *flex.Array) []entry {
	out := make([]entry, 0, arr.Count()/2)
	pos := arr.Head()
	for pos < arr.End() {
		score := arr.Get(pos)
		next := arr.Next(pos)
		member := arr.Get(next)
		out = append(out, entry{score: score, member: member})
		pos = arr.Next(next)
	}
	return out
}

func (t *mediumTier) entries() []entry {
	out := decodeArrayEntries(t.arrs[0])
	out = append(out, decodeArrayEntries(t.arrs[1])...)
	return out
}

func (t *mediumTier) duplicate() tier {
	return &mediumTier{arrs: [2]*flex.Array{t.arrs[0].Duplicate(), t.arrs[1].Duplicate()}}
}
