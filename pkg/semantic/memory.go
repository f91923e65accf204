package semantic

// Pool stores reference nodes in slots addressed by NodeID. Freed slots go on
// a free list and are handed out again before the store grows.
type Pool struct {
	slots []poolSlot
	free  []NodeID
	live  int

	allocs  int
	reuses  int
	compact int
}

type poolSlot struct {
	node ReferenceNode
	used bool
}

// PoolStats is a snapshot of the pool counters.
type PoolStats struct {
	Slots         int
	Live          int
	Free          int
	Allocations   int
	Reuses        int
	Compactions   int
	Fragmentation float64
}

// NewPool returns a pool with room for capacity nodes.
func NewPool(capacity int) *Pool {
	return &Pool{slots: make([]poolSlot, 0, capacity)}
}

// Alloc stores n and returns its id. The ID field of n is overwritten.
func (p *Pool) Alloc(n ReferenceNode) NodeID {
	p.allocs++
	p.live++
	if k := len(p.free); k > 0 {
		id := p.free[k-1]
		p.free = p.free[:k-1]
		p.reuses++
		n.ID = id
		p.slots[id] = poolSlot{node: n, used: true}
		return id
	}
	id := NodeID(len(p.slots))
	n.ID = id
	p.slots = append(p.slots, poolSlot{node: n, used: true})
	return id
}

// Free releases the slot of id. Freeing an unused slot is a no-op.
func (p *Pool) Free(id NodeID) {
	if !p.valid(id) {
		return
	}
	p.slots[id] = poolSlot{}
	p.free = append(p.free, id)
	p.live--
}

// Get returns the node stored under id.
func (p *Pool) Get(id NodeID) (*ReferenceNode, bool) {
	if !p.valid(id) {
		return nil, false
	}
	return &p.slots[id].node, true
}

func (p *Pool) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(p.slots) && p.slots[id].used
}

// Len is the number of slots, used or free.
func (p *Pool) Len() int { return len(p.slots) }

// Live is the number of used slots.
func (p *Pool) Live() int { return p.live }

// Fragmentation is the ratio of free slots to all slots.
func (p *Pool) Fragmentation() float64 {
	if len(p.slots) == 0 {
		return 0
	}
	return float64(len(p.free)) / float64(len(p.slots))
}

// Compact moves the live nodes to the front of the store, keeping their
// order, and drops the free list. It returns the old to new id mapping of
// every node that moved.
func (p *Pool) Compact() map[NodeID]NodeID {
	moved := make(map[NodeID]NodeID)
	next := 0
	for i := range p.slots {
		if !p.slots[i].used {
			continue
		}
		if i != next {
			slot := p.slots[i]
			slot.node.ID = NodeID(next)
			p.slots[next] = slot
			moved[NodeID(i)] = NodeID(next)
		}
		next++
	}
	clear(p.slots[next:])
	p.slots = p.slots[:next]
	p.free = p.free[:0]
	p.compact++
	return moved
}

// Each calls fn for every live node in id order.
func (p *Pool) Each(fn func(*ReferenceNode)) {
	for i := range p.slots {
		if p.slots[i].used {
			fn(&p.slots[i].node)
		}
	}
}

// Reset drops every node.
func (p *Pool) Reset() {
	p.slots = p.slots[:0]
	p.free = p.free[:0]
	p.live = 0
}

// Stats returns the pool counters.
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		Slots:         len(p.slots),
		Live:          p.live,
		Free:          len(p.free),
		Allocations:   p.allocs,
		Reuses:        p.reuses,
		Compactions:   p.compact,
		Fragmentation: p.Fragmentation(),
	}
}
