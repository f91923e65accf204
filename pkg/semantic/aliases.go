package semantic

import (
	"github.com/shapestone/yamlref/pkg/ast"
	"github.com/shapestone/yamlref/pkg/yamlerr"
)

// expander builds the resolved copy of one document. Every alias is replaced
// by a deep copy of its anchor's expanded subtree.
//
// Two counters bound the work: expansions counts alias expansions in the
// document, including the ones a cached subtree stands for, and depth counts
// how many anchors are being expanded inside each other.
type expander struct {
	a          *Analyzer
	doc        int
	expansions int
	depth      int
	// copying is greater than zero while an anchor's content is copied.
	// Anchors inside a copy are dropped so that every name is defined once.
	copying int
	active  map[string]bool
	out     ast.Node
}

func (a *Analyzer) newExpander(doc int) *expander {
	return &expander{a: a, doc: doc, active: make(map[string]bool)}
}

// expand returns the resolved copy of n. n itself is not modified.
func (e *expander) expand(n ast.Node) (ast.Node, error) {
	if n == nil {
		return nil, nil
	}
	if err := n.Accept(e); err != nil {
		return nil, err
	}
	out := e.out
	e.out = nil
	return out, nil
}

func (e *expander) VisitScalar(n *ast.Scalar) error {
	cp := *n
	e.out = &cp
	return nil
}

func (e *expander) VisitNull(n *ast.Null) error {
	cp := *n
	e.out = &cp
	return nil
}

func (e *expander) VisitSequence(n *ast.Sequence) error {
	seq := &ast.Sequence{Position: n.Position, Style: n.Style, Items: make([]ast.Node, len(n.Items))}
	for i, item := range n.Items {
		resolved, err := e.expand(item)
		if err != nil {
			return err
		}
		seq.Items[i] = resolved
	}
	e.out = seq
	return nil
}

func (e *expander) VisitMapping(n *ast.Mapping) error {
	m := &ast.Mapping{Position: n.Position, Style: n.Style, Pairs: make([]ast.Pair, len(n.Pairs))}
	for i, p := range n.Pairs {
		key, err := e.expand(p.Key)
		if err != nil {
			return err
		}
		value, err := e.expand(p.Value)
		if err != nil {
			return err
		}
		m.Pairs[i] = ast.Pair{Key: key, Value: value}
	}
	if e.a.cfg.MergeKeys {
		merged, err := mergeKeys(m)
		if err != nil {
			return err.WithDocument(e.doc)
		}
		e.a.stats.MergedKeys += merged
	}
	e.out = m
	return nil
}

func (e *expander) VisitAnchor(n *ast.Anchor) error {
	child, err := e.expand(n.Node)
	if err != nil {
		return err
	}
	if e.copying > 0 {
		e.out = child
		return nil
	}
	e.out = &ast.Anchor{Position: n.Position, Name: n.Name, Node: child}
	return nil
}

func (e *expander) VisitTagged(n *ast.Tagged) error {
	child, err := e.expand(n.Node)
	if err != nil {
		return err
	}
	cp := *n
	cp.Node = child
	e.out = &cp
	return nil
}

func (e *expander) VisitAlias(n *ast.Alias) error {
	node, err := e.resolve(n)
	if err != nil {
		return err
	}
	e.out = node
	return nil
}

// resolve returns a fresh copy of the subtree the alias refers to.
func (e *expander) resolve(alias *ast.Alias) (ast.Node, error) {
	key := anchorKey{doc: e.doc, name: alias.Name}
	def, ok := e.a.anchors[key]
	if !ok || !def.Pos.Before(alias.Position) {
		return nil, yamlerr.New(yamlerr.UnresolvedAlias, alias.Position,
			"found undefined alias %q", alias.Name).WithDocument(e.doc)
	}
	if e.active[alias.Name] {
		return nil, yamlerr.New(yamlerr.CircularReference, alias.Position,
			"alias %q refers to the anchor that contains it", alias.Name).
			WithRelated(def.Pos).WithDocument(e.doc).WithPath(def.Path)
	}

	if entry, hit := e.a.cache.Get(key); hit {
		if err := e.charge(alias, 1+entry.expansions); err != nil {
			return nil, err
		}
		def.Resolutions++
		e.a.stats.AliasesResolved++
		return ast.Clone(entry.node), nil
	}

	e.depth++
	defer func() { e.depth-- }()
	if e.depth > e.a.cfg.MaxExpansionDepth {
		return nil, yamlerr.New(yamlerr.ExpansionLimitExceeded, alias.Position,
			"aliases nest deeper than %d levels", e.a.cfg.MaxExpansionDepth).WithDocument(e.doc)
	}

	before := e.expansions
	e.active[alias.Name] = true
	e.copying++
	node, err := e.expand(def.Node)
	e.copying--
	delete(e.active, alias.Name)
	if err != nil {
		return nil, err
	}
	nested := e.expansions - before
	if err := e.charge(alias, 1); err != nil {
		return nil, err
	}

	e.a.cache.Add(key, node, nested)
	def.Resolutions++
	e.a.stats.AliasesResolved++
	return ast.Clone(node), nil
}

// charge adds n expansions and fails once the document exceeds its budget.
func (e *expander) charge(alias *ast.Alias, n int) error {
	e.expansions += n
	e.a.stats.Expansions += n
	if e.expansions > e.a.cfg.MaxTotalExpansions {
		return yamlerr.New(yamlerr.ExpansionLimitExceeded, alias.Position,
			"expanding alias %q exceeds the limit of %d alias expansions", alias.Name, e.a.cfg.MaxTotalExpansions).
			WithDocument(e.doc)
	}
	return nil
}
