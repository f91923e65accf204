// Package grammar holds the parsing context stack and the production
// selection rules of the block and flow grammars.
package grammar

import "strconv"

// ContextKind names the grammar context a node is parsed in.
type ContextKind int

const (
	Document   ContextKind = iota // top level of a document
	BlockIn                       // inside a block collection
	FlowIn                        // inside a flow collection
	BlockKey                      // implicit key of a block mapping
	FlowKey                       // key of a flow mapping
	BlockValue                    // value of a block mapping
	FlowValue                     // value of a flow mapping
)

func (k ContextKind) String() string {
	switch k {
	case Document:
		return "document"
	case BlockIn:
		return "block-in"
	case FlowIn:
		return "flow-in"
	case BlockKey:
		return "block-key"
	case FlowKey:
		return "flow-key"
	case BlockValue:
		return "block-value"
	case FlowValue:
		return "flow-value"
	}
	return "ContextKind(" + strconv.Itoa(int(k)) + ")"
}

// IsFlow reports whether the kind belongs to the flow grammar.
func (k ContextKind) IsFlow() bool {
	return k == FlowIn || k == FlowKey || k == FlowValue
}

// IsKey reports whether the kind is an implicit or flow key.
func (k ContextKind) IsKey() bool {
	return k == BlockKey || k == FlowKey
}

// Context is one entry of the stack. Indent is the 0-based column of the
// enclosing block collection (-1 at document level). Level is the flow
// nesting depth.
type Context struct {
	Kind   ContextKind
	Indent int
	Level  int
}

func (c Context) String() string {
	return c.Kind.String() + "(" + strconv.Itoa(c.Indent) + "," + strconv.Itoa(c.Level) + ")"
}

// Stack is the stack of contexts the parser is in. The bottom entry is the
// Document context and is never popped.
type Stack struct {
	items []Context
}

// NewStack returns a stack holding the Document context.
func NewStack() *Stack {
	return &Stack{items: []Context{{Kind: Document, Indent: -1}}}
}

// Push enters a context. Flow contexts inherit the indentation of their
// parent; FlowIn also increments the flow level.
func (s *Stack) Push(kind ContextKind, indent int) {
	cur := s.Current()
	ctx := Context{Kind: kind, Indent: indent, Level: cur.Level}
	if kind.IsFlow() {
		ctx.Indent = cur.Indent
	}
	if kind == FlowIn {
		ctx.Level++
	}
	s.items = append(s.items, ctx)
}

// Pop leaves the innermost context and returns it.
func (s *Stack) Pop() Context {
	if len(s.items) == 1 {
		return s.items[0]
	}
	top := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return top
}

// Current returns the innermost context.
func (s *Stack) Current() Context {
	return s.items[len(s.items)-1]
}

// Depth returns the number of contexts above the Document context.
func (s *Stack) Depth() int {
	return len(s.items) - 1
}

// FlowLevel returns the current flow nesting depth.
func (s *Stack) FlowLevel() int {
	return s.Current().Level
}

// InFlow reports whether the parser is inside a flow collection.
func (s *Stack) InFlow() bool {
	return s.FlowLevel() > 0
}

// BlockIndent returns the indentation of the innermost block context.
func (s *Stack) BlockIndent() int {
	return s.Current().Indent
}

// Reset drops every context but the Document one.
func (s *Stack) Reset() {
	s.items = s.items[:1]
}
