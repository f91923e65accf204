// Package tokenizer turns YAML source text into a position-tracked token stream.
package tokenizer

import (
	"fmt"

	"github.com/shapestone/yamlref/pkg/ast"
)

// Kind is the token type. Kinds correspond to the terminals of the YAML grammar.
type Kind string

const (
	// Stream and document structure
	TokenStreamStart = Kind("StreamStart")
	TokenStreamEnd   = Kind("StreamEnd")
	TokenDocStart    = Kind("DocStart") // ---
	TokenDocEnd      = Kind("DocEnd")   // ...

	// Indicators
	TokenBlockEntry   = Kind("BlockEntry")   // -
	TokenFlowSeqStart = Kind("FlowSeqStart") // [
	TokenFlowSeqEnd   = Kind("FlowSeqEnd")   // ]
	TokenFlowMapStart = Kind("FlowMapStart") // {
	TokenFlowMapEnd   = Kind("FlowMapEnd")   // }
	TokenFlowEntry    = Kind("FlowEntry")    // ,
	TokenKey          = Kind("Key")          // ?
	TokenValue        = Kind("Value")        // :

	// Content
	TokenScalar = Kind("Scalar")
	TokenAnchor = Kind("Anchor") // &name
	TokenAlias  = Kind("Alias")  // *name
	TokenTag    = Kind("Tag")    // !handle!suffix

	// Directives
	TokenVersionDirective  = Kind("VersionDirective")  // %YAML 1.2
	TokenTagDirective      = Kind("TagDirective")      // %TAG !e! prefix
	TokenReservedDirective = Kind("ReservedDirective") // %FOO ...

	// Layout
	TokenIndent    = Kind("Indent")
	TokenDedent    = Kind("Dedent")
	TokenLineBreak = Kind("LineBreak")
	TokenComment   = Kind("Comment")
)

// Chomping controls what happens to the final line breaks of a block scalar.
type Chomping int

const (
	ChompClip  Chomping = iota // single final break
	ChompStrip                 // "-": no final break
	ChompKeep                  // "+": every trailing break
)

func (c Chomping) String() string {
	switch c {
	case ChompStrip:
		return "strip"
	case ChompKeep:
		return "keep"
	}
	return "clip"
}

// Token is one lexical unit. Value holds scalar content, anchor and alias
// names, comment text and directive parameters. When a scalar needs no
// unescaping or folding Value is a substring of the input.
type Token struct {
	Kind  Kind
	Pos   ast.Position
	Len   int
	Value string

	// Style is set for scalars.
	Style ast.ScalarStyle

	// Handle and Suffix hold a tag, or the handle and prefix of a %TAG directive.
	Handle   string
	Suffix   string
	Verbatim bool

	// Indent is the column pushed by an Indent token, or the content
	// indentation of a block scalar.
	Indent int
	// Count is the number of levels closed by a Dedent token.
	Count int

	// LineStart is set on the first token of a line.
	LineStart bool

	// Block scalar header.
	Chomping        Chomping
	IndentIndicator int
}

// End returns the position just past the token, assuming it spans one line.
func (t Token) End() ast.Position {
	return ast.Position{Line: t.Pos.Line, Column: t.Pos.Column + t.Len, Offset: t.Pos.Offset + t.Len}
}

// IsLayout reports whether the token only carries layout information.
func (t Token) IsLayout() bool {
	switch t.Kind {
	case TokenIndent, TokenDedent, TokenLineBreak, TokenComment:
		return true
	}
	return false
}

// IsPlainScalar reports whether the token is an unquoted flow scalar.
func (t Token) IsPlainScalar() bool {
	return t.Kind == TokenScalar && t.Style == ast.Plain
}

// IsBlockScalar reports whether the token is a literal or folded scalar.
func (t Token) IsBlockScalar() bool {
	return t.Kind == TokenScalar && (t.Style == ast.Literal || t.Style == ast.Folded)
}

func (t Token) String() string {
	switch t.Kind {
	case TokenScalar:
		return fmt.Sprintf("%s(%s %q)", t.Kind, t.Style, t.Value)
	case TokenAnchor, TokenAlias, TokenComment, TokenVersionDirective, TokenReservedDirective:
		return fmt.Sprintf("%s(%q)", t.Kind, t.Value)
	case TokenTag, TokenTagDirective:
		return fmt.Sprintf("%s(%q %q)", t.Kind, t.Handle, t.Suffix)
	case TokenIndent:
		return fmt.Sprintf("%s(%d)", t.Kind, t.Indent)
	case TokenDedent:
		return fmt.Sprintf("%s(%d)", t.Kind, t.Count)
	}
	return string(t.Kind)
}

// Describe returns a short human description used in error messages.
func (t Token) Describe() string {
	switch t.Kind {
	case TokenStreamEnd:
		return "end of input"
	case TokenDocStart:
		return "document start '---'"
	case TokenDocEnd:
		return "document end '...'"
	case TokenBlockEntry:
		return "block entry '-'"
	case TokenFlowSeqStart:
		return "'['"
	case TokenFlowSeqEnd:
		return "']'"
	case TokenFlowMapStart:
		return "'{'"
	case TokenFlowMapEnd:
		return "'}'"
	case TokenFlowEntry:
		return "','"
	case TokenKey:
		return "'?'"
	case TokenValue:
		return "':'"
	case TokenScalar:
		return fmt.Sprintf("scalar %q", t.Value)
	case TokenAnchor:
		return "anchor &" + t.Value
	case TokenAlias:
		return "alias *" + t.Value
	case TokenTag:
		return "tag " + t.Handle + t.Suffix
	}
	return string(t.Kind)
}
