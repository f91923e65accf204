package ast

// Clone returns a deep copy of the tree rooted at n. Mutating the copy never
// affects the original.
func Clone(n Node) Node {
	if n == nil {
		return nil
	}
	var c cloner
	_ = n.Accept(&c)
	return c.out
}

type cloner struct {
	out Node
}

func (c *cloner) VisitScalar(n *Scalar) error {
	cp := *n
	c.out = &cp
	return nil
}

func (c *cloner) VisitSequence(n *Sequence) error {
	cp := &Sequence{Position: n.Position, Style: n.Style}
	if n.Items != nil {
		cp.Items = make([]Node, len(n.Items))
		for i, item := range n.Items {
			cp.Items[i] = Clone(item)
		}
	}
	c.out = cp
	return nil
}

func (c *cloner) VisitMapping(n *Mapping) error {
	cp := &Mapping{Position: n.Position, Style: n.Style}
	if n.Pairs != nil {
		cp.Pairs = make([]Pair, len(n.Pairs))
		for i, p := range n.Pairs {
			cp.Pairs[i] = Pair{Key: Clone(p.Key), Value: Clone(p.Value)}
		}
	}
	c.out = cp
	return nil
}

func (c *cloner) VisitAnchor(n *Anchor) error {
	c.out = &Anchor{Position: n.Position, Name: n.Name, Node: Clone(n.Node)}
	return nil
}

func (c *cloner) VisitAlias(n *Alias) error {
	cp := *n
	c.out = &cp
	return nil
}

func (c *cloner) VisitTagged(n *Tagged) error {
	cp := *n
	cp.Node = Clone(n.Node)
	c.out = &cp
	return nil
}

func (c *cloner) VisitNull(n *Null) error {
	cp := *n
	c.out = &cp
	return nil
}

// CloneDocument returns a deep copy of d.
func CloneDocument(d *Document) *Document {
	if d == nil {
		return nil
	}
	cp := *d
	cp.Root = Clone(d.Root)
	if d.TagHandles != nil {
		cp.TagHandles = make(map[string]string, len(d.TagHandles))
		for k, v := range d.TagHandles {
			cp.TagHandles[k] = v
		}
	}
	return &cp
}

// CloneStream returns a deep copy of s.
func CloneStream(s *Stream) *Stream {
	if s == nil {
		return nil
	}
	cp := &Stream{Documents: make([]*Document, len(s.Documents))}
	for i, d := range s.Documents {
		cp.Documents[i] = CloneDocument(d)
	}
	return cp
}
