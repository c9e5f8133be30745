package atompool

import "github.com/latticedb/flexset/hashindex"

// hashEntry is the per-id record the hash backend keeps; grounded on the
// refcount/free bookkeeping bloblru.entry uses to track a cached blob's
// outstanding references before eviction.
type hashEntry struct {
	data     []byte
	refcount uint64
}

// HashPool is the O(1) atom pool backend: a hashindex.Table keyed on the
// interned string content, plus a ordinary Go map from id to entry. Both
// are rebuilt wholesale on Reset.
type HashPool struct {
	seed       uint64
	byString   *hashindex.Table[string, uint64]
	byID       map[uint64]*hashEntry
	nextID     uint64
	freeIDs    []uint64
	totalBytes int
}

// NewHash returns an empty hash-backed Pool. seed feeds the injected hash
// function, matching spec.md §4.2/§4.3's `new(type, seed)`.
func NewHash(seed uint64) *HashPool {
	p := &HashPool{seed: seed, nextID: 1}
	p.reinit()
	return p
}

func (p *HashPool) reinit() {
	p.byString = hashindex.New[string, uint64](hashindex.StringHash(p.seed))
	p.byID = make(map[uint64]*hashEntry)
	p.freeIDs = nil
	p.nextID = 1
	p.totalBytes = 0
}

func (p *HashPool) allocID() uint64 {
	if n := len(p.freeIDs); n > 0 {
		id := p.freeIDs[n-1]
		p.freeIDs = p.freeIDs[:n-1]
		return id
	}
	id := p.nextID
	p.nextID++
	return id
}

func (p *HashPool) Intern(s []byte) uint64 {
	key := string(s)
	if id, ok := p.byString.Find(key); ok {
		p.byID[id].refcount++
		return id
	}
	id := p.allocID()
	data := append([]byte(nil), s...)
	p.byID[id] = &hashEntry{data: data, refcount: 1}
	p.byString.Add(key, id)
	p.totalBytes += len(data)
	return id
}

func (p *HashPool) GetID(s []byte) uint64 {
	id, ok := p.byString.Find(string(s))
	if !ok {
		return 0
	}
	return id
}

func (p *HashPool) Exists(s []byte) bool {
	return p.byString.Exists(string(s))
}

func (p *HashPool) Lookup(id uint64) ([]byte, bool) {
	e, ok := p.byID[id]
	if !ok {
		return nil, false
	}
	return e.data, true
}

func (p *HashPool) Retain(id uint64) {
	if e, ok := p.byID[id]; ok {
		e.refcount++
	}
}

func (p *HashPool) Release(id uint64) bool {
	e, ok := p.byID[id]
	if !ok {
		return false
	}
	e.refcount--
	if e.refcount == 0 {
		p.byString.Delete(string(e.data))
		delete(p.byID, id)
		p.freeIDs = append(p.freeIDs, id)
		p.totalBytes -= len(e.data)
		return true
	}
	return false
}

func (p *HashPool) Refcount(id uint64) uint64 {
	if e, ok := p.byID[id]; ok {
		return e.refcount
	}
	return 0
}

func (p *HashPool) Count() int { return len(p.byID) }
func (p *HashPool) Bytes() int { return p.totalBytes }

func (p *HashPool) Reset() { p.reinit() }
func (p *HashPool) Free()  { p.reinit() }
