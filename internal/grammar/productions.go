package grammar

import "github.com/shapestone/yamlref/internal/tokenizer"

// Production is the grammar rule chosen for the next node.
type Production int

const (
	Invalid Production = iota
	Empty
	Scalar
	BlockScalar
	Alias
	Properties
	BlockSequence
	BlockMapping
	FlowSequence
	FlowMapping
)

var productionNames = [...]string{
	Invalid:       "invalid",
	Empty:         "empty",
	Scalar:        "scalar",
	BlockScalar:   "block-scalar",
	Alias:         "alias",
	Properties:    "properties",
	BlockSequence: "block-sequence",
	BlockMapping:  "block-mapping",
	FlowSequence:  "flow-sequence",
	FlowMapping:   "flow-mapping",
}

func (p Production) String() string {
	if int(p) < len(productionNames) {
		return productionNames[p]
	}
	return "invalid"
}

// Select chooses the production for a node starting with tok.
//
// Grammar:
//
//	BlockNode = Properties? ( BlockSequence | BlockMapping | BlockScalar | FlowNode ) ;
//	FlowNode  = Properties? ( FlowSequence | FlowMapping | Scalar | Alias ) | Empty ;
//
// startsMapping tells whether the token begins an implicit key followed by
// ':' on the same line; only the caller can see that far ahead. Block
// indicators are Invalid inside flow context.
func Select(tok tokenizer.Token, ctx Context, startsMapping bool) Production {
	switch tok.Kind {
	case tokenizer.TokenStreamEnd, tokenizer.TokenDocStart, tokenizer.TokenDocEnd,
		tokenizer.TokenVersionDirective, tokenizer.TokenTagDirective, tokenizer.TokenReservedDirective:
		return Empty
	case tokenizer.TokenAnchor, tokenizer.TokenTag:
		// Properties on the line of an implicit key belong to the key.
		if startsMapping && !ctx.Kind.IsFlow() && ctx.Level == 0 {
			return BlockMapping
		}
		return Properties
	case tokenizer.TokenAlias:
		if startsMapping && !ctx.Kind.IsFlow() && ctx.Level == 0 {
			return BlockMapping
		}
		return Alias
	}

	if ctx.Kind.IsFlow() || ctx.Level > 0 {
		switch tok.Kind {
		case tokenizer.TokenFlowEntry, tokenizer.TokenFlowSeqEnd, tokenizer.TokenFlowMapEnd, tokenizer.TokenValue:
			return Empty
		case tokenizer.TokenFlowSeqStart:
			return FlowSequence
		case tokenizer.TokenFlowMapStart:
			return FlowMapping
		case tokenizer.TokenScalar:
			if tok.IsBlockScalar() {
				return Invalid
			}
			return Scalar
		}
		return Invalid
	}

	switch tok.Kind {
	case tokenizer.TokenBlockEntry:
		return BlockSequence
	case tokenizer.TokenKey, tokenizer.TokenValue:
		return BlockMapping
	case tokenizer.TokenFlowSeqStart:
		if startsMapping {
			return BlockMapping
		}
		return FlowSequence
	case tokenizer.TokenFlowMapStart:
		if startsMapping {
			return BlockMapping
		}
		return FlowMapping
	case tokenizer.TokenScalar:
		if startsMapping {
			return BlockMapping
		}
		if tok.IsBlockScalar() {
			return BlockScalar
		}
		return Scalar
	}
	return Invalid
}

// Lookahead is what the parser saw between the previous plain scalar line
// and the next token.
type Lookahead struct {
	// Comment is set when a comment separates the two tokens.
	Comment bool
	// Key is set when next is followed by ':' on its own line.
	Key bool
}

// CanContinuePlainScalar reports whether next continues the multi-line plain
// scalar whose last line is prev.
//
// In flow context a continuation is any plain scalar on a later line that is
// not a key. In block context it must also start its line deeper than the
// enclosing block collection. Implicit keys never span lines, and a comment
// always ends the scalar.
func CanContinuePlainScalar(next, prev tokenizer.Token, ctx Context, la Lookahead) bool {
	if !next.IsPlainScalar() || la.Comment || la.Key || ctx.Kind.IsKey() {
		return false
	}
	if next.Pos.Line <= prev.Pos.Line {
		return false
	}
	if ctx.Kind.IsFlow() || ctx.Level > 0 {
		return true
	}
	return next.LineStart && next.Pos.Column-1 > ctx.Indent
}
