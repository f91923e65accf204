package semantic

import (
	"strconv"
	"strings"

	"github.com/shapestone/yamlref/pkg/ast"
	"github.com/shapestone/yamlref/pkg/yamlerr"
)

// AnchorDefinition is a registered anchor. Node is the anchored content in the
// analyzer's copy of the stream.
type AnchorDefinition struct {
	Name     string
	Node     ast.Node
	Pos      ast.Position
	Path     string
	Document int
	// ID is the anchor's graph node, NoNode once a compaction dropped it.
	ID NodeID
	// Resolutions counts the aliases that were replaced by this anchor.
	Resolutions int
}

// collector registers the anchors of one document and builds its part of the
// reference graph.
type collector struct {
	a        *Analyzer
	doc      int
	parent   NodeID
	edgeKind EdgeKind
	path     []string
	err      *yamlerr.Error
}

// collectAnchors walks doc and returns the first conflict found.
func (a *Analyzer) collectAnchors(doc int, d *ast.Document) *yamlerr.Error {
	root := a.graph.AddNode(ReferenceNode{Kind: DocumentNode, Document: doc, Pos: d.Position, Path: "$"})
	a.docNodes[doc] = root
	if d.Root == nil {
		return nil
	}
	c := &collector{a: a, doc: doc, parent: root}
	c.visit(d.Root, RootEdge)
	return c.err
}

func (c *collector) visit(n ast.Node, kind EdgeKind) {
	if n == nil || c.err != nil {
		return
	}
	saved := c.parent
	c.edgeKind = kind
	_ = n.Accept(c)
	c.parent = saved
}

func (c *collector) link(kind NodeKind, name string, pos ast.Position) NodeID {
	id := c.a.graph.AddNode(ReferenceNode{
		Kind:     kind,
		Name:     name,
		Document: c.doc,
		Pos:      pos,
		Path:     formatPath(c.path),
	})
	c.a.graph.AddEdge(c.parent, id, c.edgeKind)
	c.parent = id
	return id
}

func (c *collector) VisitScalar(*ast.Scalar) error { return nil }

func (c *collector) VisitNull(*ast.Null) error { return nil }

func (c *collector) VisitSequence(n *ast.Sequence) error {
	c.link(CollectionNode, "", n.Position)
	for i, item := range n.Items {
		c.path = append(c.path, "["+strconv.Itoa(i)+"]")
		c.visit(item, ChildEdge)
		c.path = c.path[:len(c.path)-1]
	}
	return nil
}

func (c *collector) VisitMapping(n *ast.Mapping) error {
	c.link(CollectionNode, "", n.Position)
	for _, p := range n.Pairs {
		c.path = append(c.path, keyLabel(p.Key))
		c.visit(p.Key, ChildEdge)
		c.visit(p.Value, ChildEdge)
		c.path = c.path[:len(c.path)-1]
	}
	return nil
}

func (c *collector) VisitAnchor(n *ast.Anchor) error {
	key := anchorKey{doc: c.doc, name: n.Name}
	if first, dup := c.a.anchors[key]; dup {
		c.err = yamlerr.New(yamlerr.ConflictingAnchor, n.Position,
			"anchor %q is already defined at %s", n.Name, first.Pos).
			WithRelated(first.Pos).WithDocument(c.doc).WithPath(formatPath(c.path))
		return nil
	}
	id := c.link(AnchorNode, n.Name, n.Position)
	def := &AnchorDefinition{
		Name:     n.Name,
		Node:     n.Node,
		Pos:      n.Position,
		Path:     formatPath(c.path),
		Document: c.doc,
		ID:       id,
	}
	c.a.anchors[key] = def
	c.a.anchorOrder = append(c.a.anchorOrder, def)
	c.a.stats.Anchors++
	c.visit(n.Node, ChildEdge)
	return nil
}

func (c *collector) VisitAlias(n *ast.Alias) error {
	id := c.link(AliasNode, n.Name, n.Position)
	c.a.stats.Aliases++
	// Only anchors defined earlier in the document can be referred to.
	if def, ok := c.a.anchors[anchorKey{doc: c.doc, name: n.Name}]; ok {
		c.a.graph.AddEdge(id, def.ID, AliasEdge)
	}
	return nil
}

func (c *collector) VisitTagged(n *ast.Tagged) error {
	c.visit(n.Node, c.edgeKind)
	return nil
}

// keyLabel renders a mapping key as a path element.
func keyLabel(key ast.Node) string {
	text, ok := ast.KeyText(key)
	if !ok {
		return "[?]"
	}
	if text == "" || strings.ContainsAny(text, ".[] ") {
		return "[" + strconv.Quote(text) + "]"
	}
	return "." + text
}

// formatPath joins path elements under the document root "$".
func formatPath(path []string) string {
	return "$" + strings.Join(path, "")
}
