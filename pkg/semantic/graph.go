package semantic

import (
	"strconv"

	"github.com/shapestone/yamlref/pkg/ast"
	"github.com/shapestone/yamlref/pkg/yamlerr"
)

// NodeID identifies a reference node in the pool.
type NodeID int

// NoNode is the id of a node that is not in the graph.
const NoNode NodeID = -1

// NodeKind is the role of a reference node.
type NodeKind int

const (
	DocumentNode NodeKind = iota
	AnchorNode
	AliasNode
	CollectionNode
)

func (k NodeKind) String() string {
	switch k {
	case DocumentNode:
		return "document"
	case AnchorNode:
		return "anchor"
	case AliasNode:
		return "alias"
	case CollectionNode:
		return "collection"
	}
	return "NodeKind(" + strconv.Itoa(int(k)) + ")"
}

// ReferenceNode is one vertex of the reference graph. Scalars never take part
// in a cycle and are left out.
type ReferenceNode struct {
	ID       NodeID
	Kind     NodeKind
	Name     string
	Document int
	Pos      ast.Position
	Path     string
}

// EdgeKind is the relation an edge stands for.
type EdgeKind int

const (
	RootEdge EdgeKind = iota
	ChildEdge
	AliasEdge
)

func (k EdgeKind) String() string {
	switch k {
	case RootEdge:
		return "root"
	case ChildEdge:
		return "child"
	case AliasEdge:
		return "alias"
	}
	return "EdgeKind(" + strconv.Itoa(int(k)) + ")"
}

// Edge is a directed edge. Alias edges are critical: following one copies a
// whole subtree.
type Edge struct {
	To       NodeID
	Kind     EdgeKind
	Weight   int
	Priority int
	Critical bool
}

func newEdge(to NodeID, kind EdgeKind) Edge {
	switch kind {
	case AliasEdge:
		return Edge{To: to, Kind: kind, Weight: 2, Priority: 2, Critical: true}
	case RootEdge:
		return Edge{To: to, Kind: kind, Weight: 1, Priority: 1, Critical: true}
	}
	return Edge{To: to, Kind: kind, Weight: 1}
}

// Graph links documents, collections, anchors and aliases. Nodes live in a
// Pool; edges are kept per source node.
type Graph struct {
	pool  *Pool
	out   map[NodeID][]Edge
	in    map[NodeID]int
	edges int
}

// NewGraph returns an empty graph storing its nodes in pool.
func NewGraph(pool *Pool) *Graph {
	return &Graph{
		pool: pool,
		out:  make(map[NodeID][]Edge),
		in:   make(map[NodeID]int),
	}
}

// AddNode stores n and returns its id.
func (g *Graph) AddNode(n ReferenceNode) NodeID {
	return g.pool.Alloc(n)
}

// AddEdge links from to to.
func (g *Graph) AddEdge(from, to NodeID, kind EdgeKind) {
	g.out[from] = append(g.out[from], newEdge(to, kind))
	g.in[to]++
	g.edges++
}

// Node returns the node stored under id.
func (g *Graph) Node(id NodeID) (*ReferenceNode, bool) {
	return g.pool.Get(id)
}

// Edges returns the outgoing edges of id.
func (g *Graph) Edges(id NodeID) []Edge {
	return g.out[id]
}

// Degree is the number of edges touching id.
func (g *Graph) Degree(id NodeID) int {
	return len(g.out[id]) + g.in[id]
}

// Len is the number of live nodes.
func (g *Graph) Len() int { return g.pool.Live() }

// EdgeCount is the number of edges.
func (g *Graph) EdgeCount() int { return g.edges }

// RemoveDocument frees every node of document doc together with its edges.
func (g *Graph) RemoveDocument(doc int) int {
	var ids []NodeID
	g.pool.Each(func(n *ReferenceNode) {
		if n.Document == doc {
			ids = append(ids, n.ID)
		}
	})
	for _, id := range ids {
		for _, e := range g.out[id] {
			g.in[e.To]--
			g.edges--
		}
		delete(g.out, id)
	}
	for _, id := range ids {
		delete(g.in, id)
		g.pool.Free(id)
	}
	return len(ids)
}

// Compact compacts the pool and rewrites the edges to the new ids. It
// returns the old to new id mapping of every node that moved.
func (g *Graph) Compact() map[NodeID]NodeID {
	moved := g.pool.Compact()
	if len(moved) == 0 {
		return moved
	}
	remap := func(id NodeID) NodeID {
		if to, ok := moved[id]; ok {
			return to
		}
		return id
	}
	out := make(map[NodeID][]Edge, len(g.out))
	for from, edges := range g.out {
		for i := range edges {
			edges[i].To = remap(edges[i].To)
		}
		out[remap(from)] = edges
	}
	in := make(map[NodeID]int, len(g.in))
	for id, n := range g.in {
		in[remap(id)] = n
	}
	g.out, g.in = out, in
	return moved
}

// CheckAliasTargets reports every alias edge whose target is not a live
// anchor node.
func (g *Graph) CheckAliasTargets() []*yamlerr.Error {
	var errs []*yamlerr.Error
	g.pool.Each(func(n *ReferenceNode) {
		for _, e := range g.out[n.ID] {
			if e.Kind != AliasEdge {
				continue
			}
			target, ok := g.pool.Get(e.To)
			if !ok || target.Kind != AnchorNode || target.Name != n.Name {
				errs = append(errs, yamlerr.New(yamlerr.ReferenceTracking, n.Pos,
					"alias %q points at a missing anchor node", n.Name).WithDocument(n.Document).WithPath(n.Path))
			}
		}
	})
	return errs
}

// Reset drops every node and edge.
func (g *Graph) Reset() {
	g.pool.Reset()
	clear(g.out)
	clear(g.in)
	g.edges = 0
}
