// Package multimap implements the generic N-ary sorted container spec.md
// calls C6: the same three-tier (Small/Medium/Full) auto-promoting shape
// as the ordered set (orderedset, C4+C5), generalised over an
// elements-per-entry arity instead of the fixed (score, member) pair.
//
// Every entry is a []value.Value of length N; element 0 is always the
// key. A map_is_set flag, fixed per instance, selects the structure's
// default insert/lookup semantics: false gives "unique keys, upserts
// replace" (the classic multimap reading), true gives "duplicate keys
// permitted, full-width comparison for deduplication" (the reading the
// ordered set itself specialises down to at N=2).
package multimap

import (
	"github.com/latticedb/flexset/flex"
	"github.com/latticedb/flexset/value"
)

// stepGroup advances pos past one n-wide group; flex.Array.advance is
// unexported, so callers outside the flex package step n Next() calls.
func stepGroup(arr *flex.Array, pos, n int) int {
	for i := 0; i < n; i++ {
		pos = arr.Next(pos)
	}
	return pos
}

// tier is the common surface every Small/Medium/Full implementation
// provides. fullWidth travels with each call exactly the way flex's own
// InsertSortedGroup requires it (mutate.go's comment calls forgetting
// this "the root of the single hardest behavioural bug this design
// protects against") rather than being cached on the tier, so a single
// instance can mix its configured default with an explicit
// insert_full_width override on a per-call basis.
type tier interface {
	count() int
	bytes() int
	// insertGroup upserts group under the requested comparison mode,
	// returning whether an existing group was replaced.
	insertGroup(group []value.Value, fullWidth bool) bool
	// removeByKey deletes the (first, in key-only mode the only) group
	// whose key element matches key.
	removeByKey(key value.Value) ([]value.Value, bool)
	// removeExact deletes the group exactly matching every element of
	// group.
	removeExact(group []value.Value) bool
	existsKey(key value.Value) bool
	getByKey(key value.Value) ([]value.Value, bool)
	entries() [][]value.Value
	duplicate() tier
}

func cloneGroup(g []value.Value) []value.Value {
	out := make([]value.Value, len(g))
	for i, v := range g {
		out[i] = v.Clone()
	}
	return out
}

func compareGroups(n int, a, b []value.Value, fullWidth bool) int {
	if !fullWidth {
		return value.Compare(a[0], b[0])
	}
	for i := 0; i < n; i++ {
		if c := value.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}
