package multimap

import (
	"github.com/latticedb/flexset/flex"
	"github.com/latticedb/flexset/value"
)

// mediumTier holds exactly two packed arrays of N-element groups;
// arrs[0] (lower) sorts entirely before arrs[1] (upper), generalising
// orderedset's mediumTier to arbitrary arity.
type mediumTier struct {
	arrs [2]*flex.Array
	n    int
}

func newMediumTier(n int, lower, upper *flex.Array) *mediumTier {
	t := &mediumTier{arrs: [2]*flex.Array{lower, upper}, n: n}
	t.rebalance()
	return t
}

func (t *mediumTier) count() int {
	return t.arrs[0].Count()/t.n + t.arrs[1].Count()/t.n
}

func (t *mediumTier) bytes() int {
	return t.arrs[0].Bytes() + t.arrs[1].Bytes()
}

func (t *mediumTier) rebalance() {
	if t.arrs[0].Count() == 0 && t.arrs[1].Count() > 0 {
		t.arrs[0], t.arrs[1] = t.arrs[1], t.arrs[0]
	}
}

// targetArray picks which array a candidate group belongs in, comparing
// against arrs[1]'s head group under the same comparison mode the insert
// itself uses.
func (t *mediumTier) targetArray(group []value.Value, fullWidth bool) int {
	if t.arrs[1].Count() == 0 {
		return 0
	}
	head := t.arrs[1].GetGroup(t.arrs[1].Head(), t.n)
	if compareGroups(t.n, group, head, fullWidth) < 0 {
		return 0
	}
	return 1
}

func (t *mediumTier) insertGroup(group []value.Value, fullWidth bool) bool {
	arrIdx, idx, _, found := t.findByKeyOrExact(group, fullWidth)
	replaced := false
	if found {
		t.arrs[arrIdx].Delete(t.n, idx, t.n)
		replaced = true
	}
	target := t.targetArray(group, fullWidth)
	t.arrs[target].InsertSortedGroup(t.n, group, fullWidth)
	t.rebalance()
	return replaced
}

// findByKeyOrExact locates the group matching group under fullWidth's
// comparison mode, across both arrays.
func (t *mediumTier) findByKeyOrExact(group []value.Value, fullWidth bool) (arrIdx, idx int, found []value.Value, ok bool) {
	if idx, hit := t.arrs[0].FindSortedGroup(t.n, group, fullWidth); hit {
		return 0, idx, t.arrs[0].GetGroup(t.arrs[0].Index(idx), t.n), true
	}
	if idx, hit := t.arrs[1].FindSortedGroup(t.n, group, fullWidth); hit {
		return 1, idx, t.arrs[1].GetGroup(t.arrs[1].Index(idx), t.n), true
	}
	return 0, 0, nil, false
}

func (t *mediumTier) removeByKey(key value.Value) ([]value.Value, bool) {
	target := []value.Value{key}
	arrIdx, idx, group, found := t.findByKeyOrExact(target, false)
	if !found {
		return nil, false
	}
	t.arrs[arrIdx].Delete(t.n, idx, t.n)
	t.rebalance()
	return group, true
}

func (t *mediumTier) removeExact(group []value.Value) bool {
	arrIdx, idx, _, found := t.findByKeyOrExact(group, true)
	if !found {
		return false
	}
	t.arrs[arrIdx].Delete(t.n, idx, t.n)
	t.rebalance()
	return true
}

func (t *mediumTier) existsKey(key value.Value) bool {
	_, _, _, found := t.findByKeyOrExact([]value.Value{key}, false)
	return found
}

func (t *mediumTier) getByKey(key value.Value) ([]value.Value, bool) {
	_, _, group, found := t.findByKeyOrExact([]value.Value{key}, false)
	return group, found
}

func decodeGroups(arr *flex.Array, n int) [][]value.Value {
	out := make([][]value.Value, 0, arr.Count()/n)
	pos := arr.Head()
	for pos < arr.End() {
		out = append(out, arr.GetGroup(pos, n))
		pos = stepGroup(arr, pos, n)
	}
	return out
}

func (t *mediumTier) entries() [][]value.Value {
	out := decodeGroups(t.arrs[0], t.n)
	out = append(out, decodeGroups(t.arrs[1], t.n)...)
	return out
}

func (t *mediumTier) duplicate() tier {
	return &mediumTier{arrs: [2]*flex.Array{t.arrs[0].Duplicate(), t.arrs[1].Duplicate()}, n: t.n}
}
