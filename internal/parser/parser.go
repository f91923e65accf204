// Package parser implements recursive descent parsing of YAML token streams
// into document trees. Each production of the block and flow grammars
// corresponds to a parse function; the grammar package decides which one
// applies to the next token.
package parser

import (
	"github.com/shapestone/yamlref/internal/grammar"
	"github.com/shapestone/yamlref/internal/tokenizer"
	"github.com/shapestone/yamlref/pkg/ast"
	"github.com/shapestone/yamlref/pkg/yamlerr"
)

// DefaultMaxDepth bounds the nesting of collections and node properties.
const DefaultMaxDepth = 512

// Parser builds documents from the tokens of one input. It is not safe for
// concurrent use.
type Parser struct {
	lex   *tokenizer.Lexer
	stack *grammar.Stack

	depth    int
	maxDepth int

	// prev is the last significant token consumed.
	prev tokenizer.Token
	// commentSeen is set when a comment was skipped since prev.
	commentSeen bool
}

// Option configures a Parser.
type Option func(*Parser)

// WithMaxDepth sets the nesting limit. Values below 1 keep the default.
func WithMaxDepth(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.maxDepth = n
		}
	}
}

// NewParser creates a parser for the given input string.
func NewParser(input string, opts ...Option) *Parser {
	p := &Parser{
		lex:      tokenizer.NewLexer(input),
		stack:    grammar.NewStack(),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses an input holding exactly one document and returns it.
func (p *Parser) Parse() (*ast.Document, error) {
	stream, err := p.ParseStream()
	if err != nil {
		return nil, err
	}
	switch len(stream.Documents) {
	case 0:
		return &ast.Document{Position: ast.StartPosition()}, nil
	case 1:
		return stream.Documents[0], nil
	}
	return nil, yamlerr.New(yamlerr.UnexpectedToken, stream.Documents[1].Position,
		"expected a single document in the stream, found %d", len(stream.Documents))
}

// position tracking

type mark struct {
	pos         int
	prev        tokenizer.Token
	commentSeen bool
}

func (p *Parser) mark() mark {
	return mark{pos: p.lex.Mark(), prev: p.prev, commentSeen: p.commentSeen}
}

func (p *Parser) reset(m mark) {
	p.lex.Reset(m.pos)
	p.prev = m.prev
	p.commentSeen = m.commentSeen
}

// peek returns the next significant token, consuming layout tokens on the way.
func (p *Parser) peek() (tokenizer.Token, error) {
	for {
		tok, err := p.lex.Peek()
		if err != nil {
			return tok, err
		}
		if !tok.IsLayout() {
			return tok, nil
		}
		if tok.Kind == tokenizer.TokenComment {
			p.commentSeen = true
		}
		if _, err := p.lex.Next(); err != nil {
			return tok, err
		}
	}
}

// next consumes the next significant token.
func (p *Parser) next() (tokenizer.Token, error) {
	tok, err := p.peek()
	if err != nil {
		return tok, err
	}
	if _, err := p.lex.Next(); err != nil {
		return tok, err
	}
	p.prev = tok
	p.commentSeen = false
	return tok, nil
}

// expect consumes a token of the given kind or fails with ExpectedToken.
func (p *Parser) expect(kind tokenizer.Kind, what string) (tokenizer.Token, error) {
	tok, err := p.peek()
	if err != nil {
		return tok, err
	}
	if tok.Kind != kind {
		return tok, yamlerr.New(yamlerr.ExpectedToken, tok.Pos, "did not find expected %s, found %s", what, tok.Describe())
	}
	return p.next()
}

// enter counts one level of nesting.
func (p *Parser) enter(pos ast.Position) error {
	p.depth++
	if p.depth > p.maxDepth {
		return yamlerr.New(yamlerr.RecursionLimitExceeded, pos, "exceeded max depth of %d", p.maxDepth)
	}
	return nil
}

func (p *Parser) leave() {
	p.depth--
}

// isEnd reports whether tok closes the current document.
func isEnd(tok tokenizer.Token) bool {
	switch tok.Kind {
	case tokenizer.TokenStreamEnd, tokenizer.TokenDocStart, tokenizer.TokenDocEnd,
		tokenizer.TokenVersionDirective, tokenizer.TokenTagDirective, tokenizer.TokenReservedDirective:
		return true
	}
	return false
}

// column returns the 0-based column of tok.
func column(tok tokenizer.Token) int {
	return tok.Pos.Column - 1
}

func unexpected(tok tokenizer.Token) *yamlerr.Error {
	if tok.Kind == tokenizer.TokenStreamEnd {
		return yamlerr.New(yamlerr.UnexpectedEOF, tok.Pos, "found unexpected end of input")
	}
	return yamlerr.New(yamlerr.UnexpectedToken, tok.Pos, "did not find expected node content, found %s", tok.Describe())
}

// followedByValue reports whether the token after the next one is a ':' on
// the same line, that is, whether the next token is an implicit key.
func (p *Parser) followedByValue() bool {
	m := p.mark()
	defer p.reset(m)

	tok, err := p.next()
	if err != nil {
		return false
	}
	after, err := p.peek()
	return err == nil && after.Kind == tokenizer.TokenValue && after.Pos.Line == tok.Pos.Line
}

// startsBlockMapping looks ahead for an implicit key: optional properties, a
// scalar, alias or flow collection, then ':' on the same line. Properties
// followed by a line break belong to the node below, not to a key.
func (p *Parser) startsBlockMapping() bool {
	m := p.mark()
	defer p.reset(m)

	tok, err := p.peek()
	if err != nil {
		return false
	}
	if tok.Kind == tokenizer.TokenKey || tok.Kind == tokenizer.TokenValue {
		return true
	}

	line := tok.Pos.Line
	for tok.Kind == tokenizer.TokenAnchor || tok.Kind == tokenizer.TokenTag {
		if _, err := p.next(); err != nil {
			return false
		}
		if tok, err = p.peek(); err != nil || tok.Pos.Line != line {
			return false
		}
	}

	line = tok.Pos.Line
	switch tok.Kind {
	case tokenizer.TokenScalar:
		if tok.IsBlockScalar() {
			return false
		}
		if _, err := p.next(); err != nil {
			return false
		}
	case tokenizer.TokenAlias:
		if _, err := p.next(); err != nil {
			return false
		}
	case tokenizer.TokenFlowSeqStart, tokenizer.TokenFlowMapStart:
		if !p.skipFlowCollection() {
			return false
		}
	default:
		return false
	}

	after, err := p.peek()
	return err == nil && after.Kind == tokenizer.TokenValue && after.Pos.Line == line
}

// skipFlowCollection consumes a balanced flow collection.
func (p *Parser) skipFlowCollection() bool {
	level := 0
	for {
		tok, err := p.next()
		if err != nil {
			return false
		}
		switch tok.Kind {
		case tokenizer.TokenFlowSeqStart, tokenizer.TokenFlowMapStart:
			level++
		case tokenizer.TokenFlowSeqEnd, tokenizer.TokenFlowMapEnd:
			level--
			if level == 0 {
				return true
			}
		case tokenizer.TokenStreamEnd:
			return false
		}
	}
}
