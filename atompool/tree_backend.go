package atompool

import "math/rand"

// treeNode is a skip-list node keyed by interned string content, ranked
// by a random tower height (grounded on the skiplist package retrieved
// alongside this spec: fixed max-rank tower, root sentinel, per-level
// forward pointers).
type treeNode struct {
	next []*treeNode
	key  string
	id   uint64
	// refcount is stored 0-based: the first intern of a string leaves
	// refcount==0 here, translating to the external 1-based refcount of
	// 1 (spec.md §4.3's "Semantic note on refcount" compact encoding).
	refcount uint64
}

const defaultMaxRank = 20

// TreePool is the O(log n) atom pool backend: a skip list ordered by
// string content for Intern/GetID/Exists, plus a Go map from id to node
// for O(1) Lookup/Retain/Release/Refcount (ids are not part of the skip
// list's ordering key).
type TreePool struct {
	root       *treeNode
	maxRank    int
	byID       map[uint64]*treeNode
	nextID     uint64
	freeIDs    []uint64
	totalBytes int
	rng        *rand.Rand
}

// NewTree returns an empty tree-backed Pool. seed drives the tower-height
// randomness so pools built from identical operation sequences produce
// identical shapes (useful for tests and reproducible debugging).
func NewTree(seed int64) *TreePool {
	p := &TreePool{maxRank: defaultMaxRank, nextID: 1, rng: rand.New(rand.NewSource(seed))}
	p.reinit()
	return p
}

func (p *TreePool) reinit() {
	p.root = &treeNode{next: make([]*treeNode, p.maxRank)}
	p.byID = make(map[uint64]*treeNode)
	p.freeIDs = nil
	p.nextID = 1
	p.totalBytes = 0
}

// randomRank returns a tower height in [1, maxRank], geometrically
// biased toward 1, matching the niceyeti skiplist's rand_generator shape.
func (p *TreePool) randomRank() int {
	rank := 1
	for rank < p.maxRank && p.rng.Intn(2) == 0 {
		rank++
	}
	return rank
}

// search returns, for each rank, the last node strictly before key —
// the niceyeti skiplist's "pointees" vector used by both Insert and
// Delete to splice the target node in or out.
func (p *TreePool) search(key string) []*treeNode {
	pointees := make([]*treeNode, p.maxRank)
	node := p.root
	for rank := p.maxRank - 1; rank >= 0; rank-- {
		for node.next[rank] != nil && node.next[rank].key < key {
			node = node.next[rank]
		}
		pointees[rank] = node
	}
	return pointees
}

func (p *TreePool) allocID() uint64 {
	if n := len(p.freeIDs); n > 0 {
		id := p.freeIDs[n-1]
		p.freeIDs = p.freeIDs[:n-1]
		return id
	}
	id := p.nextID
	p.nextID++
	return id
}

func (p *TreePool) Intern(s []byte) uint64 {
	key := string(s)
	pointees := p.search(key)
	if existing := pointees[0].next[0]; existing != nil && existing.key == key {
		existing.refcount++
		return existing.id
	}

	id := p.allocID()
	height := p.randomRank()
	node := &treeNode{next: make([]*treeNode, height), key: key, id: id, refcount: 0}
	for i := 0; i < height; i++ {
		node.next[i] = pointees[i].next[i]
		pointees[i].next[i] = node
	}

	p.byID[id] = node
	p.totalBytes += len(key)
	return id
}

func (p *TreePool) GetID(s []byte) uint64 {
	key := string(s)
	pointees := p.search(key)
	if n := pointees[0].next[0]; n != nil && n.key == key {
		return n.id
	}
	return 0
}

func (p *TreePool) Exists(s []byte) bool {
	return p.GetID(s) != 0
}

func (p *TreePool) Lookup(id uint64) ([]byte, bool) {
	n, ok := p.byID[id]
	if !ok {
		return nil, false
	}
	return []byte(n.key), true
}

func (p *TreePool) Retain(id uint64) {
	if n, ok := p.byID[id]; ok {
		n.refcount++
	}
}

// Release decrements id's (1-based, externally) refcount. Internally
// refcount is 0-based, so a node at internal refcount 0 is the last
// reference: remove it from the skip list and free its id.
func (p *TreePool) Release(id uint64) bool {
	n, ok := p.byID[id]
	if !ok {
		return false
	}
	if n.refcount > 0 {
		n.refcount--
		return false
	}

	pointees := p.search(n.key)
	for i := 0; i < len(n.next); i++ {
		pointees[i].next[i] = n.next[i]
		n.next[i] = nil
	}
	delete(p.byID, id)
	p.freeIDs = append(p.freeIDs, id)
	p.totalBytes -= len(n.key)
	return true
}

// Refcount translates the internal 0-based counter back to the external
// 1-based value the Pool contract promises.
func (p *TreePool) Refcount(id uint64) uint64 {
	n, ok := p.byID[id]
	if !ok {
		return 0
	}
	return n.refcount + 1
}

func (p *TreePool) Count() int { return len(p.byID) }
func (p *TreePool) Bytes() int { return p.totalBytes }

// Reset is a documented no-op on the tree backend (spec.md §4.3): unlike
// the hash backend, dropping and rebuilding a skip list wholesale is not
// cheaper than walking it, so callers needing a true wipe should call
// Free and construct a new TreePool.
func (p *TreePool) Reset() {}

func (p *TreePool) Free() { p.reinit() }
