package ast

import "math"

// Visitor has one method per node variant. Adding a variant to the tree adds
// a method here, so every traversal must be updated.
type Visitor interface {
	VisitScalar(*Scalar) error
	VisitSequence(*Sequence) error
	VisitMapping(*Mapping) error
	VisitAnchor(*Anchor) error
	VisitAlias(*Alias) error
	VisitTagged(*Tagged) error
	VisitNull(*Null) error
}

// Inspect traverses the tree rooted at n in depth-first order. fn is called for
// each node before its children; when it returns false the children are
// skipped. Mapping keys are visited before their values.
func Inspect(n Node, fn func(Node) bool) {
	if n == nil {
		return
	}
	_ = n.Accept(inspector(fn))
}

type inspector func(Node) bool

func (f inspector) VisitScalar(n *Scalar) error {
	f(n)
	return nil
}

func (f inspector) VisitSequence(n *Sequence) error {
	if f(n) {
		for _, item := range n.Items {
			Inspect(item, f)
		}
	}
	return nil
}

func (f inspector) VisitMapping(n *Mapping) error {
	if f(n) {
		for _, p := range n.Pairs {
			Inspect(p.Key, f)
			Inspect(p.Value, f)
		}
	}
	return nil
}

func (f inspector) VisitAnchor(n *Anchor) error {
	if f(n) {
		Inspect(n.Node, f)
	}
	return nil
}

func (f inspector) VisitAlias(n *Alias) error {
	f(n)
	return nil
}

func (f inspector) VisitTagged(n *Tagged) error {
	if f(n) {
		Inspect(n.Node, f)
	}
	return nil
}

func (f inspector) VisitNull(n *Null) error {
	f(n)
	return nil
}

// Count returns the number of nodes in the tree rooted at n.
func Count(n Node) int {
	total := 0
	Inspect(n, func(Node) bool {
		total++
		return true
	})
	return total
}

// Depth returns the nesting depth of collections under n. Scalars have depth
// zero; anchors and tags do not add a level.
func Depth(n Node) int {
	switch v := n.(type) {
	case *Sequence:
		d := 0
		for _, item := range v.Items {
			d = max(d, Depth(item))
		}
		return d + 1
	case *Mapping:
		d := 0
		for _, p := range v.Pairs {
			d = max(d, Depth(p.Key), Depth(p.Value))
		}
		return d + 1
	case *Anchor:
		return Depth(v.Node)
	case *Tagged:
		return Depth(v.Node)
	}
	return 0
}

// Equal reports whether a and b have the same structure and values, ignoring
// positions and presentation styles.
func Equal(a, b Node) bool {
	switch x := a.(type) {
	case *Scalar:
		y, ok := b.(*Scalar)
		return ok && x.Kind == y.Kind && scalarValuesEqual(x.Value, y.Value)
	case *Null:
		_, ok := b.(*Null)
		return ok
	case *Alias:
		y, ok := b.(*Alias)
		return ok && x.Name == y.Name
	case *Anchor:
		y, ok := b.(*Anchor)
		return ok && x.Name == y.Name && Equal(x.Node, y.Node)
	case *Tagged:
		y, ok := b.(*Tagged)
		return ok && x.Shorthand() == y.Shorthand() && Equal(x.Node, y.Node)
	case *Sequence:
		y, ok := b.(*Sequence)
		if !ok || len(x.Items) != len(y.Items) {
			return false
		}
		for i := range x.Items {
			if !Equal(x.Items[i], y.Items[i]) {
				return false
			}
		}
		return true
	case *Mapping:
		y, ok := b.(*Mapping)
		if !ok || len(x.Pairs) != len(y.Pairs) {
			return false
		}
		for i := range x.Pairs {
			if !Equal(x.Pairs[i].Key, y.Pairs[i].Key) || !Equal(x.Pairs[i].Value, y.Pairs[i].Value) {
				return false
			}
		}
		return true
	case nil:
		return b == nil
	}
	return false
}

// scalarValuesEqual compares scalar values; two NaNs are equal.
func scalarValuesEqual(a, b any) bool {
	if x, ok := a.(float64); ok {
		if y, ok := b.(float64); ok && math.IsNaN(x) && math.IsNaN(y) {
			return true
		}
	}
	return a == b
}
