package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shapestone/yamlref/internal/tokenizer"
	"github.com/shapestone/yamlref/pkg/ast"
)

func TestStack(t *testing.T) {
	s := NewStack()
	assert.Equal(t, Document, s.Current().Kind)
	assert.Equal(t, -1, s.BlockIndent())
	assert.Equal(t, 0, s.FlowLevel())

	s.Push(BlockIn, 2)
	assert.Equal(t, 2, s.BlockIndent())
	assert.False(t, s.InFlow())

	s.Push(FlowIn, 0)
	s.Push(FlowIn, 0)
	assert.Equal(t, 2, s.FlowLevel())
	assert.Equal(t, 2, s.BlockIndent(), "flow contexts inherit the block indentation")
	assert.True(t, s.InFlow())

	s.Push(FlowKey, 0)
	assert.Equal(t, 2, s.FlowLevel())
	assert.Equal(t, 4, s.Depth())

	assert.Equal(t, FlowKey, s.Pop().Kind)
	s.Pop()
	s.Pop()
	assert.Equal(t, BlockIn, s.Current().Kind)

	s.Pop()
	assert.Equal(t, Document, s.Pop().Kind, "the document context is never popped")
	assert.Equal(t, 0, s.Depth())

	s.Push(BlockValue, 4)
	s.Reset()
	assert.Equal(t, Document, s.Current().Kind)
}

func scalarTok(style ast.ScalarStyle) tokenizer.Token {
	return tokenizer.Token{Kind: tokenizer.TokenScalar, Style: style}
}

func TestSelect(t *testing.T) {
	block := Context{Kind: BlockIn, Indent: 0}
	flow := Context{Kind: FlowIn, Indent: -1, Level: 1}

	tests := []struct {
		name          string
		tok           tokenizer.Token
		ctx           Context
		startsMapping bool
		want          Production
	}{
		{"block entry", tokenizer.Token{Kind: tokenizer.TokenBlockEntry}, block, false, BlockSequence},
		{"explicit key", tokenizer.Token{Kind: tokenizer.TokenKey}, block, false, BlockMapping},
		{"implicit key", scalarTok(ast.Plain), block, true, BlockMapping},
		{"plain scalar", scalarTok(ast.Plain), block, false, Scalar},
		{"literal scalar", scalarTok(ast.Literal), block, false, BlockScalar},
		{"alias", tokenizer.Token{Kind: tokenizer.TokenAlias}, block, false, Alias},
		{"alias key", tokenizer.Token{Kind: tokenizer.TokenAlias}, block, true, BlockMapping},
		{"anchor", tokenizer.Token{Kind: tokenizer.TokenAnchor}, block, false, Properties},
		{"anchored key", tokenizer.Token{Kind: tokenizer.TokenAnchor}, block, true, BlockMapping},
		{"flow sequence", tokenizer.Token{Kind: tokenizer.TokenFlowSeqStart}, block, false, FlowSequence},
		{"flow mapping", tokenizer.Token{Kind: tokenizer.TokenFlowMapStart}, block, false, FlowMapping},
		{"stream end", tokenizer.Token{Kind: tokenizer.TokenStreamEnd}, block, false, Empty},
		{"document start", tokenizer.Token{Kind: tokenizer.TokenDocStart}, block, false, Empty},
		{"stray flow end in block", tokenizer.Token{Kind: tokenizer.TokenFlowSeqEnd}, block, false, Invalid},

		{"block entry in flow", tokenizer.Token{Kind: tokenizer.TokenBlockEntry}, flow, false, Invalid},
		{"block scalar in flow", scalarTok(ast.Folded), flow, false, Invalid},
		{"comma in flow", tokenizer.Token{Kind: tokenizer.TokenFlowEntry}, flow, false, Empty},
		{"value in flow", tokenizer.Token{Kind: tokenizer.TokenValue}, flow, false, Empty},
		{"quoted in flow", scalarTok(ast.DoubleQuoted), flow, false, Scalar},
		{"nested flow", tokenizer.Token{Kind: tokenizer.TokenFlowSeqStart}, flow, false, FlowSequence},
		{"anchor in flow", tokenizer.Token{Kind: tokenizer.TokenAnchor}, flow, true, Properties},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Select(tt.tok, tt.ctx, tt.startsMapping))
		})
	}
}

func plainAt(line, col int, lineStart bool) tokenizer.Token {
	return tokenizer.Token{
		Kind:      tokenizer.TokenScalar,
		Style:     ast.Plain,
		Pos:       ast.Position{Line: line, Column: col},
		LineStart: lineStart,
	}
}

func TestCanContinuePlainScalar(t *testing.T) {
	prev := plainAt(1, 6, false)
	value := Context{Kind: BlockValue, Indent: 0}
	flow := Context{Kind: FlowIn, Indent: 0, Level: 1}

	tests := []struct {
		name string
		next tokenizer.Token
		ctx  Context
		la   Lookahead
		want bool
	}{
		{"deeper next line", plainAt(2, 3, true), value, Lookahead{}, true},
		{"same column as block", plainAt(2, 1, true), value, Lookahead{}, false},
		{"same line", plainAt(1, 9, false), value, Lookahead{}, false},
		{"next is a key", plainAt(2, 3, true), value, Lookahead{Key: true}, false},
		{"comment in between", plainAt(2, 3, true), value, Lookahead{Comment: true}, false},
		{"quoted next", tokenizer.Token{Kind: tokenizer.TokenScalar, Style: ast.SingleQuoted, Pos: ast.Position{Line: 2, Column: 3}, LineStart: true}, value, Lookahead{}, false},
		{"block entry next", tokenizer.Token{Kind: tokenizer.TokenBlockEntry, Pos: ast.Position{Line: 2, Column: 3}, LineStart: true}, value, Lookahead{}, false},
		{"implicit key context", plainAt(2, 3, true), Context{Kind: BlockKey, Indent: 0}, Lookahead{}, false},
		{"document level", plainAt(2, 1, true), Context{Kind: Document, Indent: -1}, Lookahead{}, true},
		{"flow any column", plainAt(2, 1, true), flow, Lookahead{}, true},
		{"flow key next", plainAt(2, 1, true), flow, Lookahead{Key: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanContinuePlainScalar(tt.next, prev, tt.ctx, tt.la))
		})
	}
}

func TestProductionString(t *testing.T) {
	assert.Equal(t, "block-mapping", BlockMapping.String())
	assert.Equal(t, "invalid", Production(99).String())
	assert.Equal(t, "flow-key", FlowKey.String())
}
