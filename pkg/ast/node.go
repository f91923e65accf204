package ast

import (
	"strconv"
)

// Node is a node of the document tree. The set of implementations is closed:
// Scalar, Sequence, Mapping, Anchor, Alias, Tagged and Null.
type Node interface {
	// Pos is the position of the node's first token.
	Pos() Position
	// Accept dispatches to the visitor method for the node's variant.
	Accept(v Visitor) error

	node()
}

// ScalarStyle is the presentation style a scalar was written in.
type ScalarStyle int

const (
	Plain ScalarStyle = iota
	SingleQuoted
	DoubleQuoted
	Literal
	Folded
)

func (s ScalarStyle) String() string {
	switch s {
	case Plain:
		return "plain"
	case SingleQuoted:
		return "single-quoted"
	case DoubleQuoted:
		return "double-quoted"
	case Literal:
		return "literal"
	case Folded:
		return "folded"
	}
	return "ScalarStyle(" + strconv.Itoa(int(s)) + ")"
}

// IsQuoted reports whether the style is one of the two quoted flow styles.
func (s ScalarStyle) IsQuoted() bool {
	return s == SingleQuoted || s == DoubleQuoted
}

// CollectionStyle distinguishes indentation-based collections from bracketed ones.
type CollectionStyle int

const (
	Block CollectionStyle = iota
	Flow
)

func (s CollectionStyle) String() string {
	if s == Flow {
		return "flow"
	}
	return "block"
}

// ScalarKind is the type a scalar resolved to.
type ScalarKind int

const (
	StringKind ScalarKind = iota
	BoolKind
	IntKind
	FloatKind
)

func (k ScalarKind) String() string {
	switch k {
	case StringKind:
		return "string"
	case BoolKind:
		return "bool"
	case IntKind:
		return "int"
	case FloatKind:
		return "float"
	}
	return "ScalarKind(" + strconv.Itoa(int(k)) + ")"
}

// Scalar is a leaf value. Text holds the scalar content after unescaping and
// folding; Value holds the typed value: string, bool, int64 or float64.
type Scalar struct {
	Position Position
	Style    ScalarStyle
	Kind     ScalarKind
	Text     string
	Value    any
}

// NewString returns a string scalar.
func NewString(text string, style ScalarStyle, pos Position) *Scalar {
	return &Scalar{Position: pos, Style: style, Kind: StringKind, Text: text, Value: text}
}

// Sequence is an ordered list of nodes.
type Sequence struct {
	Position Position
	Style    CollectionStyle
	Items    []Node
}

// Len returns the number of items.
func (s *Sequence) Len() int { return len(s.Items) }

// Pair is one key/value entry of a mapping.
type Pair struct {
	Key   Node
	Value Node
}

// Mapping is an insertion-ordered list of key/value pairs. Keys may be any node.
type Mapping struct {
	Position Position
	Style    CollectionStyle
	Pairs    []Pair
}

// Len returns the number of pairs.
func (m *Mapping) Len() int { return len(m.Pairs) }

// Get returns the value of the first pair whose key is a scalar (or null) with
// the given text. Anchors and tags around the key are looked through.
func (m *Mapping) Get(key string) (Node, bool) {
	for _, p := range m.Pairs {
		if k, ok := KeyText(p.Key); ok && k == key {
			return p.Value, true
		}
	}
	return nil, false
}

// Keys returns the text of every scalar key in order.
func (m *Mapping) Keys() []string {
	keys := make([]string, 0, len(m.Pairs))
	for _, p := range m.Pairs {
		if k, ok := KeyText(p.Key); ok {
			keys = append(keys, k)
		}
	}
	return keys
}

// Anchor marks its child with a name that aliases can refer to.
type Anchor struct {
	Position Position
	Name     string
	Node     Node
}

// Alias refers to the node of a previously defined anchor.
type Alias struct {
	Position Position
	Name     string
}

// Tagged attaches an explicit tag to its child. Handle and Suffix are the
// shorthand as written (`!!int` has handle "!!" and suffix "int"); a verbatim
// tag has an empty handle. Tag is the fully resolved tag, filled in by the
// semantic analyzer.
type Tagged struct {
	Position Position
	Handle   string
	Suffix   string
	Verbatim bool
	Tag      string
	Node     Node
}

// Shorthand returns the tag as it appeared in the source.
func (t *Tagged) Shorthand() string {
	if t.Verbatim {
		return "!<" + t.Suffix + ">"
	}
	return t.Handle + t.Suffix
}

// Null is an explicit or implied null. Text is the source spelling, empty for
// implied nulls.
type Null struct {
	Position Position
	Text     string
}

func (n *Scalar) Pos() Position   { return n.Position }
func (n *Sequence) Pos() Position { return n.Position }
func (n *Mapping) Pos() Position  { return n.Position }
func (n *Anchor) Pos() Position   { return n.Position }
func (n *Alias) Pos() Position    { return n.Position }
func (n *Tagged) Pos() Position   { return n.Position }
func (n *Null) Pos() Position     { return n.Position }

func (n *Scalar) Accept(v Visitor) error   { return v.VisitScalar(n) }
func (n *Sequence) Accept(v Visitor) error { return v.VisitSequence(n) }
func (n *Mapping) Accept(v Visitor) error  { return v.VisitMapping(n) }
func (n *Anchor) Accept(v Visitor) error   { return v.VisitAnchor(n) }
func (n *Alias) Accept(v Visitor) error    { return v.VisitAlias(n) }
func (n *Tagged) Accept(v Visitor) error   { return v.VisitTagged(n) }
func (n *Null) Accept(v Visitor) error     { return v.VisitNull(n) }

func (*Scalar) node()   {}
func (*Sequence) node() {}
func (*Mapping) node()  {}
func (*Anchor) node()   {}
func (*Alias) node()    {}
func (*Tagged) node()   {}
func (*Null) node()     {}

// Unwrap strips any Anchor and Tagged wrappers and returns the content node.
func Unwrap(n Node) Node {
	for {
		switch w := n.(type) {
		case *Anchor:
			n = w.Node
		case *Tagged:
			n = w.Node
		default:
			return n
		}
	}
}

// KeyText returns the text of a scalar or null key, looking through anchors
// and tags.
func KeyText(n Node) (string, bool) {
	switch k := Unwrap(n).(type) {
	case *Scalar:
		return k.Text, true
	case *Null:
		return k.Text, true
	}
	return "", false
}
