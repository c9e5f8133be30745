package atompool

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Synchronized wraps a Pool with a mutex, the Go-idiomatic stand-in for
// spec.md §5's fast_mutex collaborator (not itself implemented — see
// SPEC_FULL.md §5). Concurrent Intern calls for the same string are
// coalesced through a singleflight.Group so that N goroutines racing to
// intern a brand-new member perform the underlying allocation once; every
// coalesced caller still gains one reference, as with Pool.Intern.
type Synchronized struct {
	mu    sync.Mutex
	pool  Pool
	group singleflight.Group
}

// NewSynchronized wraps pool for concurrent use.
func NewSynchronized(pool Pool) *Synchronized {
	return &Synchronized{pool: pool}
}

func (s *Synchronized) Intern(str []byte) uint64 {
	key := string(str)
	ran := false
	v, _, _ := s.group.Do(key, func() (interface{}, error) {
		ran = true
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.pool.Intern(str), nil
	})
	id := v.(uint64)
	if !ran {
		// A coalesced caller shares the leader's Intern; take its own reference.
		s.Retain(id)
	}
	return id
}

func (s *Synchronized) GetID(str []byte) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pool.GetID(str)
}

func (s *Synchronized) Exists(str []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pool.Exists(str)
}

func (s *Synchronized) Lookup(id uint64) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pool.Lookup(id)
}

func (s *Synchronized) Retain(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pool.Retain(id)
}

func (s *Synchronized) Release(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pool.Release(id)
}

func (s *Synchronized) Refcount(id uint64) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pool.Refcount(id)
}

func (s *Synchronized) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pool.Count()
}

func (s *Synchronized) Bytes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pool.Bytes()
}

func (s *Synchronized) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pool.Reset()
}

func (s *Synchronized) Free() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pool.Free()
}
