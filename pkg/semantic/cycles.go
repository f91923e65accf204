package semantic

import (
	"strconv"
	"strings"

	"github.com/shapestone/yamlref/pkg/ast"
)

// CycleType classifies a cycle by the number of anchors it passes through.
type CycleType int

const (
	SelfReference CycleType = iota
	DirectCycle
	IndirectCycle
	ComplexCycle
)

func (t CycleType) String() string {
	switch t {
	case SelfReference:
		return "self-reference"
	case DirectCycle:
		return "direct"
	case IndirectCycle:
		return "indirect"
	case ComplexCycle:
		return "complex"
	}
	return "CycleType(" + strconv.Itoa(int(t)) + ")"
}

// Severity ranks how much damage expanding a cycle would do.
type Severity int

const (
	Low Severity = iota
	Medium
	High
	Critical
)

func (s Severity) String() string {
	switch s {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	case Critical:
		return "critical"
	}
	return "Severity(" + strconv.Itoa(int(s)) + ")"
}

// Cycle is a loop in the reference graph. Members are in traversal order,
// starting at the node the closing alias points back to. When the graph is
// compacted, members removed with their document become NoNode.
type Cycle struct {
	Document int
	Members  []NodeID
	Anchors  []string
	Type     CycleType
	Severity Severity
	// Pos and Path locate the alias that closes the cycle.
	Pos  ast.Position
	Path string
}

// Describe renders the anchors of the cycle as "a -> b -> a".
func (c Cycle) Describe() string {
	if len(c.Anchors) == 0 {
		return ""
	}
	return strings.Join(append(append([]string(nil), c.Anchors...), c.Anchors[0]), " -> ")
}

// classifyCycle derives the type from the anchor count and the severity from
// the cycle length and the average degree of its members.
func classifyCycle(anchors, length int, avgDegree float64) (CycleType, Severity) {
	var t CycleType
	switch {
	case anchors <= 1:
		t = SelfReference
	case anchors == 2:
		t = DirectCycle
	case anchors <= 5:
		t = IndirectCycle
	default:
		t = ComplexCycle
	}

	score := float64(anchors) + float64(length)/4 + avgDegree/2
	var s Severity
	switch {
	case score < 2.5:
		s = Low
	case score < 4:
		s = Medium
	case score < 7:
		s = High
	default:
		s = Critical
	}
	return t, s
}

type dfsFrame struct {
	id   NodeID
	next int
}

// FindCycles walks the graph depth first from root and returns every cycle
// closed by a back edge. The walk is iterative.
func (g *Graph) FindCycles(root NodeID) []Cycle {
	const (
		white = iota
		grey
		black
	)
	color := make(map[NodeID]int)
	onStack := make(map[NodeID]int)

	var cycles []Cycle
	stack := []dfsFrame{{id: root}}
	color[root] = grey
	onStack[root] = 0

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		edges := g.out[top.id]
		if top.next >= len(edges) {
			color[top.id] = black
			delete(onStack, top.id)
			stack = stack[:len(stack)-1]
			continue
		}
		e := edges[top.next]
		top.next++

		switch color[e.To] {
		case white:
			color[e.To] = grey
			onStack[e.To] = len(stack)
			stack = append(stack, dfsFrame{id: e.To})
		case grey:
			cycles = append(cycles, g.newCycle(stack[onStack[e.To]:]))
		}
	}
	return cycles
}

func (g *Graph) newCycle(frames []dfsFrame) Cycle {
	c := Cycle{Members: make([]NodeID, len(frames))}
	degree := 0
	for i, f := range frames {
		c.Members[i] = f.id
		degree += g.Degree(f.id)
		if n, ok := g.pool.Get(f.id); ok && n.Kind == AnchorNode {
			c.Anchors = append(c.Anchors, n.Name)
		}
	}
	if n, ok := g.pool.Get(frames[len(frames)-1].id); ok {
		c.Document = n.Document
		c.Pos = n.Pos
		c.Path = n.Path
	}
	avg := float64(degree) / float64(len(frames))
	c.Type, c.Severity = classifyCycle(len(c.Anchors), len(frames), avg)
	return c
}
