package hashindex_test

import (
	"fmt"
	"testing"

	"github.com/latticedb/flexset/hashindex"
	"github.com/latticedb/flexset/internal/testutil"
)

func TestAddFindDelete(t *testing.T) {
	tbl := hashindex.New[string, float64](hashindex.StringHash(1))
	tbl.Add("alice", 1.0)
	tbl.Add("bob", 2.0)

	v, ok := tbl.Find("alice")
	testutil.Assert(t, ok, "alice must be found")
	testutil.Equals(t, 1.0, v)

	testutil.Assert(t, tbl.Exists("bob"), "bob must exist")
	testutil.Assert(t, !tbl.Exists("carol"), "carol must not exist")

	testutil.Assert(t, tbl.Delete("alice"), "delete existing key returns true")
	testutil.Assert(t, !tbl.Delete("alice"), "delete missing key returns false")
	testutil.Assert(t, !tbl.Exists("alice"), "alice gone after delete")
	testutil.Equals(t, 1, tbl.Count())
}

func TestUpsertOverwrites(t *testing.T) {
	tbl := hashindex.New[string, int](hashindex.StringHash(0))
	tbl.Add("k", 1)
	tbl.Add("k", 2)
	testutil.Equals(t, 1, tbl.Count())
	v, _ := tbl.Find("k")
	testutil.Equals(t, 2, v)
}

func TestGrowthAndRehashPreservesEntries(t *testing.T) {
	tbl := hashindex.New[string, int](hashindex.StringHash(42))
	const n = 2000
	for i := 0; i < n; i++ {
		tbl.Add(fmt.Sprintf("member-%d", i), i)
	}
	testutil.Equals(t, n, tbl.Count())
	for i := 0; i < n; i++ {
		v, ok := tbl.Find(fmt.Sprintf("member-%d", i))
		testutil.Assert(t, ok, "member-%d must survive growth", i)
		testutil.Equals(t, i, v)
	}
}

func TestDeleteDuringRehash(t *testing.T) {
	tbl := hashindex.New[string, int](hashindex.StringHash(7))
	const n = 500
	for i := 0; i < n; i++ {
		tbl.Add(fmt.Sprintf("m%d", i), i)
	}
	// A rehash may still be in progress here; delete every even key,
	// wherever it currently sits (old or new table).
	for i := 0; i < n; i += 2 {
		testutil.Assert(t, tbl.Delete(fmt.Sprintf("m%d", i)), "delete m%d", i)
	}
	for i := 0; i < n; i++ {
		_, ok := tbl.Find(fmt.Sprintf("m%d", i))
		if i%2 == 0 {
			testutil.Assert(t, !ok, "m%d should be deleted", i)
		} else {
			testutil.Assert(t, ok, "m%d should survive", i)
		}
	}
}

func TestSafeIteratorYieldsEveryEntry(t *testing.T) {
	tbl := hashindex.New[string, int](hashindex.StringHash(1))
	for i := 0; i < 100; i++ {
		tbl.Add(fmt.Sprintf("x%d", i), i)
	}

	it := hashindex.NewSafeIterator(tbl)
	seen := map[string]int{}
	for {
		k, v, ok := it.Next()
		if !ok {
			break
		}
		seen[k] = v
	}
	it.Close()
	testutil.Equals(t, 100, len(seen))
}

func TestEmpty(t *testing.T) {
	tbl := hashindex.New[string, int](hashindex.StringHash(0))
	testutil.Assert(t, tbl.Empty(), "fresh table is empty")
	tbl.Add("a", 1)
	testutil.Assert(t, !tbl.Empty(), "non-empty after add")
}

func TestRandomKeyOnEmpty(t *testing.T) {
	tbl := hashindex.New[string, int](hashindex.StringHash(0))
	_, _, ok := tbl.RandomKey(func(n int) int { return 0 })
	testutil.Assert(t, !ok, "random key on empty table fails")
}

func TestRandomKeyReturnsLiveMember(t *testing.T) {
	tbl := hashindex.New[string, int](hashindex.StringHash(3))
	for i := 0; i < 10; i++ {
		tbl.Add(fmt.Sprintf("r%d", i), i)
	}
	k, v, ok := tbl.RandomKey(func(n int) int { return n - 1 })
	testutil.Assert(t, ok, "random key must succeed on non-empty table")
	got, found := tbl.Find(k)
	testutil.Assert(t, found, "returned key must still exist")
	testutil.Equals(t, got, v)
}

func TestResizeForcesGrowth(t *testing.T) {
	tbl := hashindex.New[string, int](hashindex.StringHash(0))
	tbl.Add("a", 1)
	tbl.Add("b", 2)
	tbl.Resize(1024)
	testutil.Equals(t, 2, tbl.Count())
	v, ok := tbl.Find("a")
	testutil.Assert(t, ok, "a survives resize")
	testutil.Equals(t, 1, v)
}
