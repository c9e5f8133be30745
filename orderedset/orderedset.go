package orderedset

import (
	"math/rand"
	"sort"

	"github.com/dustin/go-humanize"

	"github.com/latticedb/flexset/atompool"
	"github.com/latticedb/flexset/flex"
	"github.com/latticedb/flexset/hashindex"
	"github.com/latticedb/flexset/internal/debug"
	"github.com/latticedb/flexset/value"
)

// defaultFlexSizeLimit is the default flex_size_limit (spec.md §4.4.6):
// generous enough that most sets stay in the Small tier in steady state.
const defaultFlexSizeLimit = 8192

// Set is the public ordered-set façade (spec.md §6.2): the tier
// dispatcher (C5) wrapping whichever of {Small, Medium, Full} (C4) the
// set currently occupies, auto-promoting after every insertion.
type Set struct {
	t         tier
	sizeLimit int

	pool      atompool.Pool
	poolOwned bool

	rng *rand.Rand
}

// New returns an empty Set in the Small tier using the default
// flex_size_limit.
func New() *Set {
	return NewWithLimit(defaultFlexSizeLimit)
}

// NewWithLimit returns an empty Set promoting at the given flex_size_limit.
func NewWithLimit(limit int) *Set {
	return &Set{t: newSmallTier(), sizeLimit: limit, rng: rand.New(rand.NewSource(1))}
}

// NewWithCompression mirrors spec.md §6.2's new_with_compression. The
// compression-depth/size-limit-index pair spec.md §9 describes is pure
// pointer-tagging configuration with no Go analogue (ordinary Go values
// carry no spare tag bits to exploit) — it does not change any
// observable behaviour, so this is a documented alias for NewWithLimit.
func NewWithCompression(limit int) *Set {
	return NewWithLimit(limit)
}

// NewWithPool returns an empty Set that interns members through pool.
// Exposed as the Go equivalent of attaching an externally owned atom
// pool (spec.md §3.10's "or re-intern into a fresh pool if the copy owns
// its pool" distinguishes owned vs. borrowed; owned is NewWithOwnedPool).
func NewWithPool(limit int, pool atompool.Pool) *Set {
	s := NewWithLimit(limit)
	s.pool = pool
	return s
}

// NewWithOwnedPool is like NewWithPool but Free also frees the pool.
func NewWithOwnedPool(limit int, pool atompool.Pool) *Set {
	s := NewWithPool(limit, pool)
	s.poolOwned = true
	return s
}

// Copy returns a deep, independent duplicate. Pool-backed sets retain
// their pool reference and increment every member's refcount rather than
// deep-copying interned bytes (spec.md §3.10).
func (s *Set) Copy() *Set {
	cp := &Set{t: s.t.duplicate(), sizeLimit: s.sizeLimit, pool: s.pool, poolOwned: s.poolOwned, rng: rand.New(rand.NewSource(1))}
	if s.pool != nil {
		for _, e := range s.t.entries() {
			if id, ok := e.member.ExternalRef(); ok {
				s.pool.Retain(id)
			}
		}
	}
	return cp
}

// Free releases the set's resources. If the set owns its pool, the pool
// is freed too; otherwise every member's reference in the shared pool is
// released first (spec.md §3.10's "freeing all owned arrays, the hash
// index (if any), and the pool (if owned)").
func (s *Set) Free() {
	if s.pool != nil {
		if s.poolOwned {
			s.pool.Free()
		} else {
			s.releaseAllMembers()
		}
	}
	s.t = newSmallTier()
}

// Reset empties the set in place, releasing any shared-pool references
// first.
func (s *Set) Reset() {
	if s.pool != nil && !s.poolOwned {
		s.releaseAllMembers()
	}
	s.t = newSmallTier()
}

func (s *Set) releaseAllMembers() {
	for _, e := range s.t.entries() {
		s.releaseMember(e.member)
	}
}

func (s *Set) Count() int { return s.t.count() }
func (s *Set) Bytes() int { return s.t.bytes() }

// Stats renders a human-readable summary (count and memory footprint)
// for operators, using go-humanize for the byte count.
func (s *Set) Stats() string {
	return humanize.Comma(int64(s.Count())) + " members, " + humanize.Bytes(uint64(s.Bytes()))
}

// internMember translates a caller-supplied member into its stored form:
// unchanged if no pool is attached, otherwise interned and replaced with
// an ExternalRef handle (spec.md §3.7's pool-backed Full tier, applied
// uniformly here rather than Full-only — see DESIGN.md's Open Question
// resolution).
func (s *Set) internMember(member value.Value) value.Value {
	if s.pool == nil {
		return member
	}
	b, ok := member.Bytes()
	if !ok {
		return member
	}
	id := s.pool.Intern(b)
	return value.ExternalRef(id)
}

func (s *Set) releaseMember(member value.Value) {
	if s.pool == nil {
		return
	}
	if id, ok := member.ExternalRef(); ok {
		s.pool.Release(id)
	}
}

// resolveMember converts a stored member (possibly a pool handle) back
// to its real bytes for the caller.
func (s *Set) resolveMember(member value.Value) value.Value {
	if s.pool == nil || member.Kind() != value.KindExternalRef {
		return member
	}
	id, ok := member.ExternalRef()
	if !ok {
		return member
	}
	if data, found := s.pool.Lookup(id); found {
		return value.Bytes(data)
	}
	return member
}

// Add upserts (score, member); returns whether an existing entry was
// replaced (spec.md §4.4.1). When a pool is attached, the prior
// membership's reference is released and a fresh one acquired — a
// no-op refcount-wise when member's bytes are unchanged, a genuine +1
// the first time member is added (spec.md §3.10).
func (s *Set) Add(score, member value.Value) bool {
	lookupKey := s.internMemberReadOnly(member)
	_, existed := s.t.getScore(lookupKey)
	if existed {
		s.releaseMember(lookupKey)
	}
	stored := s.internMember(member)
	replaced := s.t.add(score, stored)
	if !replaced {
		s.promoteIfNeeded()
	}
	return replaced
}

// AddNX inserts only if member is absent, returning whether it inserted.
func (s *Set) AddNX(score, member value.Value) bool {
	lookupKey := s.internMemberReadOnly(member)
	if s.t.exists(lookupKey) {
		return false
	}
	stored := s.internMember(member)
	s.t.add(score, stored)
	s.promoteIfNeeded()
	return true
}

// AddXX updates only if member is present, returning whether it updated.
func (s *Set) AddXX(score, member value.Value) bool {
	lookupKey := s.internMemberReadOnly(member)
	if !s.t.exists(lookupKey) {
		return false
	}
	s.releaseMember(lookupKey)
	stored := s.internMember(member)
	s.t.add(score, stored)
	return true
}

// AddGetPrevious upserts member and also returns its previous score, if any.
func (s *Set) AddGetPrevious(score, member value.Value) (prev value.Value, existed bool) {
	lookupKey := s.internMemberReadOnly(member)
	prev, existed = s.t.getScore(lookupKey)
	if existed {
		s.releaseMember(lookupKey)
	}
	stored := s.internMember(member)
	s.t.add(score, stored)
	if !existed {
		s.promoteIfNeeded()
	}
	return
}

// IncrBy adds delta (in double precision) to member's existing score, or
// initialises it to delta if absent (spec.md §4.4.7). ok is false if
// member exists with a non-numeric score (TypeMismatch, spec.md §7).
func (s *Set) IncrBy(delta float64, member value.Value) (newScore float64, ok bool) {
	lookupKey := s.internMemberReadOnly(member)
	existed := false
	if existing, found := s.t.getScore(lookupKey); found {
		cur, numeric := existing.Float64()
		if !numeric {
			return 0, false
		}
		newScore = cur + delta
		existed = true
		s.releaseMember(lookupKey)
	} else {
		newScore = delta
	}
	stored := s.internMember(member)
	s.t.add(value.Float64(newScore), stored)
	if !existed {
		s.promoteIfNeeded()
	}
	return newScore, true
}

// Remove deletes member, returning whether it was present.
func (s *Set) Remove(member value.Value) bool {
	_, existed := s.RemoveGetScore(member)
	return existed
}

// RemoveGetScore deletes member, returning its score and whether it was present.
func (s *Set) RemoveGetScore(member value.Value) (value.Value, bool) {
	stored := s.internMemberReadOnly(member)
	score, existed := s.t.remove(stored)
	if existed {
		s.releaseMember(stored)
	}
	return score, existed
}

func (s *Set) Exists(member value.Value) bool {
	stored := s.internMemberReadOnly(member)
	return s.t.exists(stored)
}

// internMemberReadOnly resolves member to its stored form for lookups,
// without mutating pool refcounts (GetID only, not Intern).
func (s *Set) internMemberReadOnly(member value.Value) value.Value {
	if s.pool == nil {
		return member
	}
	b, ok := member.Bytes()
	if !ok {
		return member
	}
	id := s.pool.GetID(b)
	if id == 0 {
		return member // guaranteed not to be found downstream
	}
	return value.ExternalRef(id)
}

func (s *Set) GetScore(member value.Value) (value.Value, bool) {
	stored := s.internMemberReadOnly(member)
	return s.t.getScore(stored)
}

func (s *Set) sortedEntries() []entry {
	e := s.t.entries()
	sort.Slice(e, func(i, j int) bool { return compareEntries(e[i], e[j]) < 0 })
	return e
}

// GetRank returns member's 0-based ascending rank by (score, member).
func (s *Set) GetRank(member value.Value) (int, bool) {
	stored := s.internMemberReadOnly(member)
	entries := s.sortedEntries()
	for i, e := range entries {
		if value.Equal(e.member, stored) {
			return i, true
		}
	}
	return 0, false
}

// GetReverseRank returns member's 0-based descending rank.
func (s *Set) GetReverseRank(member value.Value) (int, bool) {
	rank, ok := s.GetRank(member)
	if !ok {
		return 0, false
	}
	return s.Count() - 1 - rank, true
}

// GetByRank returns the (member, score) at rank, which may be negative
// (spec.md §6.2: -1 is the last entry).
func (s *Set) GetByRank(rank int) (member, score value.Value, ok bool) {
	entries := s.sortedEntries()
	idx, valid := normaliseRank(rank, len(entries))
	if !valid {
		return value.Value{}, value.Value{}, false
	}
	e := entries[idx]
	return s.resolveMember(e.member), e.score, true
}

// CountByScore returns the number of members whose score falls within r.
func (s *Set) CountByScore(r ScoreRange) int {
	n := 0
	for _, e := range s.t.entries() {
		if r.Matches(e.score) {
			n++
		}
	}
	return n
}

// First returns the lowest-ranked (member, score).
func (s *Set) First() (member, score value.Value, ok bool) {
	return s.GetByRank(0)
}

// Last returns the highest-ranked (member, score).
func (s *Set) Last() (member, score value.Value, ok bool) {
	return s.GetByRank(-1)
}

// RandomMembers returns up to count arbitrary distinct (member, score)
// pairs (spec.md §9: the RNG is an instance-local seed, not a global).
func (s *Set) RandomMembers(count int) (members, scores []value.Value) {
	entries := s.sortedEntries()
	if count > len(entries) {
		count = len(entries)
	}
	perm := s.rng.Perm(len(entries))[:count]
	members = make([]value.Value, count)
	scores = make([]value.Value, count)
	for i, p := range perm {
		members[i] = s.resolveMember(entries[p].member)
		scores[i] = entries[p].score
	}
	return members, scores
}

// RemoveRangeByScore removes every member whose score falls within r,
// returning the number removed.
func (s *Set) RemoveRangeByScore(r ScoreRange) int {
	var toRemove []value.Value
	for _, e := range s.t.entries() {
		if r.Matches(e.score) {
			toRemove = append(toRemove, e.member)
		}
	}
	for _, m := range toRemove {
		s.t.remove(m)
		s.releaseMember(m)
	}
	return len(toRemove)
}

// RemoveRangeByRank removes members at ranks [start, stop] inclusive
// (after normalising negative indices), returning the count removed.
func (s *Set) RemoveRangeByRank(start, stop int) int {
	entries := s.sortedEntries()
	n := len(entries)
	startIdx, ok1 := normaliseRank(start, n)
	stopIdx, ok2 := normaliseRank(stop, n)
	if !ok1 || !ok2 || startIdx > stopIdx {
		return 0
	}
	for i := startIdx; i <= stopIdx; i++ {
		s.t.remove(entries[i].member)
		s.releaseMember(entries[i].member)
	}
	return stopIdx - startIdx + 1
}

// PopMin removes and returns the n lowest-ranked entries, ascending.
func (s *Set) PopMin(n int) (members, scores []value.Value) {
	entries := s.sortedEntries()
	if n > len(entries) {
		n = len(entries)
	}
	for i := 0; i < n; i++ {
		e := entries[i]
		resolved := s.resolveMember(e.member)
		s.t.remove(e.member)
		s.releaseMember(e.member)
		members = append(members, resolved)
		scores = append(scores, e.score)
	}
	return members, scores
}

// PopMax removes and returns the n highest-ranked entries, in descending order.
func (s *Set) PopMax(n int) (members, scores []value.Value) {
	entries := s.sortedEntries()
	if n > len(entries) {
		n = len(entries)
	}
	for i := 0; i < n; i++ {
		e := entries[len(entries)-1-i]
		resolved := s.resolveMember(e.member)
		s.t.remove(e.member)
		s.releaseMember(e.member)
		members = append(members, resolved)
		scores = append(scores, e.score)
	}
	return members, scores
}

func (s *Set) promoteIfNeeded() {
	switch cur := s.t.(type) {
	case *smallTier:
		if cur.bytes() > s.sizeLimit && cur.count() >= 2 {
			debug.Log("orderedset", "promoting small->medium, bytes=%d count=%d", cur.bytes(), cur.count())
			lower := cur.arr
			upper := lower.SplitMiddle(2)
			s.t = newMediumTier(lower, upper)
		}
	case *mediumTier:
		if cur.bytes() > 3*s.sizeLimit && cur.arrs[0].Count() > 0 && cur.arrs[1].Count() > 0 {
			debug.Log("orderedset", "promoting medium->full, bytes=%d", cur.bytes())
			s.t = promoteMediumToFull(cur, s.sizeLimit)
		}
	}
}

// promoteMediumToFull moves the two arrays into the Full tier as its
// initial two sub-maps (no re-splitting) and builds the hash index by
// iterating every entry (spec.md §4.4.6).
func promoteMediumToFull(m *mediumTier, maxMapSize int) *fullTier {
	full := &fullTier{
		memberIndex: hashindex.New[string, value.Value](hashindex.StringHash(1)),
		subMaps:     []*flex.Array{m.arrs[0], m.arrs[1]},
		maxMapSize:  maxMapSize,
	}
	if m.arrs[1].Count() > 0 {
		full.ranges = []value.Value{full.subMaps[1].Get(full.subMaps[1].Head())}
	}
	for _, sm := range full.subMaps {
		for _, e := range decodeArrayEntries(sm) {
			full.memberIndex.Add(memberKey(e.member), e.score)
		}
	}
	return full
}
