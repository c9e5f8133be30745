package atompool_test

import (
	"fmt"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/latticedb/flexset/atompool"
	"github.com/latticedb/flexset/internal/testutil"
)

func backends() map[string]atompool.Pool {
	return map[string]atompool.Pool{
		"hash": atompool.NewHash(1),
		"tree": atompool.NewTree(1),
	}
}

func TestInternAssignsRefcountOne(t *testing.T) {
	for name, pool := range backends() {
		t.Run(name, func(t *testing.T) {
			id := pool.Intern([]byte("hello"))
			testutil.Assert(t, id != 0, "intern must return nonzero id")
			testutil.Equals(t, uint64(1), pool.Refcount(id))
		})
	}
}

func TestInternSameStringReusesIDAndIncrementsRefcount(t *testing.T) {
	for name, pool := range backends() {
		t.Run(name, func(t *testing.T) {
			id1 := pool.Intern([]byte("x"))
			id2 := pool.Intern([]byte("x"))
			testutil.Equals(t, id1, id2)
			testutil.Equals(t, uint64(2), pool.Refcount(id1))
			testutil.Equals(t, 1, pool.Count())
		})
	}
}

func TestGetIDDoesNotChangeRefcount(t *testing.T) {
	for name, pool := range backends() {
		t.Run(name, func(t *testing.T) {
			id := pool.Intern([]byte("y"))
			got := pool.GetID([]byte("y"))
			testutil.Equals(t, id, got)
			testutil.Equals(t, uint64(1), pool.Refcount(id))
			testutil.Equals(t, uint64(0), pool.GetID([]byte("absent")))
		})
	}
}

func TestReleaseFreesAtZero(t *testing.T) {
	for name, pool := range backends() {
		t.Run(name, func(t *testing.T) {
			id := pool.Intern([]byte("z"))
			pool.Retain(id)
			testutil.Equals(t, uint64(2), pool.Refcount(id))

			testutil.Assert(t, !pool.Release(id), "refcount 2->1 does not free")
			testutil.Equals(t, uint64(1), pool.Refcount(id))

			testutil.Assert(t, pool.Release(id), "refcount 1->0 frees")
			testutil.Assert(t, !pool.Exists([]byte("z")), "z must be gone")
			testutil.Equals(t, uint64(0), pool.Refcount(id))
		})
	}
}

func TestReleaseAbsentIDReturnsFalse(t *testing.T) {
	for name, pool := range backends() {
		t.Run(name, func(t *testing.T) {
			testutil.Assert(t, !pool.Release(12345), "releasing an absent id is not an error")
		})
	}
}

func TestLookupRoundTrips(t *testing.T) {
	for name, pool := range backends() {
		t.Run(name, func(t *testing.T) {
			id := pool.Intern([]byte("payload"))
			data, ok := pool.Lookup(id)
			testutil.Assert(t, ok, "lookup must succeed")
			testutil.Equals(t, "payload", string(data))
		})
	}
}

func TestBytesAccounting(t *testing.T) {
	for name, pool := range backends() {
		t.Run(name, func(t *testing.T) {
			pool.Intern([]byte("abc"))
			pool.Intern([]byte("de"))
			testutil.Equals(t, 5, pool.Bytes())
		})
	}
}

func TestHashResetClearsPool(t *testing.T) {
	pool := atompool.NewHash(1)
	pool.Intern([]byte("a"))
	pool.Reset()
	testutil.Equals(t, 0, pool.Count())
	testutil.Assert(t, !pool.Exists([]byte("a")), "reset clears hash backend")
}

func TestTreeResetIsNoOp(t *testing.T) {
	pool := atompool.NewTree(1)
	pool.Intern([]byte("a"))
	pool.Reset()
	testutil.Equals(t, 1, pool.Count())
	testutil.Assert(t, pool.Exists([]byte("a")), "tree backend's Reset is documented as a no-op")
}

func TestTreeIDsReusedAfterFree(t *testing.T) {
	pool := atompool.NewTree(1)
	id1 := pool.Intern([]byte("a"))
	pool.Release(id1)
	id2 := pool.Intern([]byte("b"))
	testutil.Equals(t, id1, id2)
}

func TestManyDistinctKeysOrderedLookup(t *testing.T) {
	for name, pool := range backends() {
		t.Run(name, func(t *testing.T) {
			const n = 300
			ids := make([]uint64, n)
			for i := 0; i < n; i++ {
				ids[i] = pool.Intern([]byte(fmt.Sprintf("member-%04d", i)))
			}
			testutil.Equals(t, n, pool.Count())
			for i := 0; i < n; i++ {
				got := pool.GetID([]byte(fmt.Sprintf("member-%04d", i)))
				testutil.Equals(t, ids[i], got)
			}
		})
	}
}

func TestSynchronizedConcurrentInternCoalesces(t *testing.T) {
	sp := atompool.NewSynchronized(atompool.NewHash(1))

	var g errgroup.Group
	ids := make([]uint64, 50)
	for i := 0; i < 50; i++ {
		i := i
		g.Go(func() error {
			ids[i] = sp.Intern([]byte("shared"))
			return nil
		})
	}
	testutil.OK(t, g.Wait())

	for i := 1; i < len(ids); i++ {
		testutil.Equals(t, ids[0], ids[i])
	}
	testutil.Equals(t, 1, sp.Count())
}
