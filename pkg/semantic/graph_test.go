package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shapestone/yamlref/pkg/ast"
	"github.com/shapestone/yamlref/pkg/yamlerr"
)

func TestPoolReusesFreedSlots(t *testing.T) {
	p := NewPool(4)
	a := p.Alloc(ReferenceNode{Name: "a"})
	b := p.Alloc(ReferenceNode{Name: "b"})
	c := p.Alloc(ReferenceNode{Name: "c"})
	assert.Equal(t, []NodeID{0, 1, 2}, []NodeID{a, b, c})

	p.Free(b)
	p.Free(b)
	p.Free(99)
	assert.Equal(t, 2, p.Live())
	assert.InDelta(t, 1.0/3, p.Fragmentation(), 1e-9)
	_, ok := p.Get(b)
	assert.False(t, ok)

	d := p.Alloc(ReferenceNode{Name: "d"})
	assert.Equal(t, b, d)
	n, ok := p.Get(d)
	require.True(t, ok)
	assert.Equal(t, "d", n.Name)
	assert.Equal(t, d, n.ID)

	s := p.Stats()
	assert.Equal(t, PoolStats{Slots: 3, Live: 3, Free: 0, Allocations: 4, Reuses: 1}, s)
}

func TestPoolCompact(t *testing.T) {
	p := NewPool(0)
	for _, name := range []string{"a", "b", "c", "d"} {
		p.Alloc(ReferenceNode{Name: name})
	}
	p.Free(0)
	p.Free(2)

	moved := p.Compact()
	assert.Equal(t, map[NodeID]NodeID{1: 0, 3: 1}, moved)
	assert.Equal(t, 2, p.Len())
	assert.Zero(t, p.Fragmentation())

	var names []string
	p.Each(func(n *ReferenceNode) { names = append(names, n.Name) })
	assert.Equal(t, []string{"b", "d"}, names)

	n, ok := p.Get(1)
	require.True(t, ok)
	assert.Equal(t, NodeID(1), n.ID)
	assert.Equal(t, 1, p.Stats().Compactions)

	assert.Equal(t, NodeID(2), p.Alloc(ReferenceNode{Name: "e"}))
}

func TestGraphRemoveDocumentAndCompact(t *testing.T) {
	g := NewGraph(NewPool(4))
	d0 := g.AddNode(ReferenceNode{Kind: DocumentNode, Document: 0})
	a0 := g.AddNode(ReferenceNode{Kind: AnchorNode, Name: "a", Document: 0})
	d1 := g.AddNode(ReferenceNode{Kind: DocumentNode, Document: 1})
	a1 := g.AddNode(ReferenceNode{Kind: AnchorNode, Name: "b", Document: 1})
	g.AddEdge(d0, a0, RootEdge)
	g.AddEdge(d1, a1, RootEdge)
	require.Equal(t, 2, g.EdgeCount())

	assert.Equal(t, 2, g.RemoveDocument(0))
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, 1, g.EdgeCount())
	assert.Empty(t, g.Edges(d0))

	g.Compact()
	edges := g.Edges(0)
	require.Len(t, edges, 1)
	assert.Equal(t, NodeID(1), edges[0].To)
	assert.Equal(t, RootEdge, edges[0].Kind)
	assert.True(t, edges[0].Critical)
	assert.Equal(t, 1, g.Degree(1))

	n, ok := g.Node(1)
	require.True(t, ok)
	assert.Equal(t, "b", n.Name)
}

func TestGraphCheckAliasTargets(t *testing.T) {
	g := NewGraph(NewPool(4))
	anchor := g.AddNode(ReferenceNode{Kind: AnchorNode, Name: "a"})
	coll := g.AddNode(ReferenceNode{Kind: CollectionNode})
	good := g.AddNode(ReferenceNode{Kind: AliasNode, Name: "a"})
	bad := g.AddNode(ReferenceNode{Kind: AliasNode, Name: "a", Document: 3, Path: "$.x"})
	g.AddEdge(good, anchor, AliasEdge)
	g.AddEdge(bad, coll, AliasEdge)

	errs := g.CheckAliasTargets()
	require.Len(t, errs, 1)
	assert.Equal(t, yamlerr.ReferenceTracking, errs[0].Kind)
	assert.Equal(t, 3, errs[0].Document)
	assert.Equal(t, "$.x", errs[0].Path)
}

// cycleGraph builds doc -> &a -> [ ... *a ].
func cycleGraph() (*Graph, NodeID, NodeID) {
	g := NewGraph(NewPool(8))
	doc := g.AddNode(ReferenceNode{Kind: DocumentNode})
	anchor := g.AddNode(ReferenceNode{Kind: AnchorNode, Name: "a"})
	seq := g.AddNode(ReferenceNode{Kind: CollectionNode})
	alias := g.AddNode(ReferenceNode{Kind: AliasNode, Name: "a", Pos: ast.Position{Line: 1, Column: 8}, Path: "$.x[0]"})
	g.AddEdge(doc, anchor, RootEdge)
	g.AddEdge(anchor, seq, ChildEdge)
	g.AddEdge(seq, alias, ChildEdge)
	g.AddEdge(alias, anchor, AliasEdge)
	return g, doc, alias
}

func TestFindCycles(t *testing.T) {
	g, doc, alias := cycleGraph()

	cycles := g.FindCycles(doc)
	require.Len(t, cycles, 1)
	c := cycles[0]
	assert.Equal(t, []NodeID{1, 2, alias}, c.Members)
	assert.Equal(t, []string{"a"}, c.Anchors)
	assert.Equal(t, SelfReference, c.Type)
	assert.Equal(t, "$.x[0]", c.Path)
	assert.Equal(t, 8, c.Pos.Column)
}

func TestFindCyclesIgnoresSharedTargets(t *testing.T) {
	g := NewGraph(NewPool(8))
	doc := g.AddNode(ReferenceNode{Kind: DocumentNode})
	root := g.AddNode(ReferenceNode{Kind: CollectionNode})
	anchor := g.AddNode(ReferenceNode{Kind: AnchorNode, Name: "a"})
	first := g.AddNode(ReferenceNode{Kind: AliasNode, Name: "a"})
	second := g.AddNode(ReferenceNode{Kind: AliasNode, Name: "a"})
	g.AddEdge(doc, root, RootEdge)
	g.AddEdge(root, anchor, ChildEdge)
	g.AddEdge(root, first, ChildEdge)
	g.AddEdge(root, second, ChildEdge)
	g.AddEdge(first, anchor, AliasEdge)
	g.AddEdge(second, anchor, AliasEdge)

	assert.Empty(t, g.FindCycles(doc))
}

func TestClassifyCycle(t *testing.T) {
	tests := []struct {
		anchors, length int
		degree          float64
		wantType        CycleType
		wantSeverity    Severity
	}{
		{1, 1, 0, SelfReference, Low},
		{1, 5, 2, SelfReference, Medium},
		{2, 6, 2, DirectCycle, High},
		{3, 8, 2, IndirectCycle, High},
		{5, 10, 2, IndirectCycle, Critical},
		{6, 20, 3, ComplexCycle, Critical},
	}
	for _, tt := range tests {
		typ, sev := classifyCycle(tt.anchors, tt.length, tt.degree)
		assert.Equal(t, tt.wantType, typ, "anchors=%d", tt.anchors)
		assert.Equal(t, tt.wantSeverity, sev, "anchors=%d length=%d degree=%v", tt.anchors, tt.length, tt.degree)
	}
}

func TestCycleDescribe(t *testing.T) {
	assert.Equal(t, "a -> b -> a", Cycle{Anchors: []string{"a", "b"}}.Describe())
	assert.Empty(t, Cycle{}.Describe())
	assert.Equal(t, "self-reference", SelfReference.String())
	assert.Equal(t, "critical", Critical.String())
	assert.Equal(t, "alias", AliasNode.String())
}
