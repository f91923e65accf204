package parser

import (
	"github.com/shapestone/yamlref/internal/tokenizer"
	"github.com/shapestone/yamlref/pkg/ast"
	"github.com/shapestone/yamlref/pkg/yamlerr"
)

// ParseStream parses every document of the input.
//
// Grammar:
//
//	Stream   = StreamStart Document* StreamEnd ;
//	Document = Directive* ( "---" BlockNode? | BlockNode ) "..."? ;
//
// An input without content yields an empty stream. A stray "..." without a
// document before it is skipped.
func (p *Parser) ParseStream() (*ast.Stream, error) {
	if _, err := p.expect(tokenizer.TokenStreamStart, "stream start"); err != nil {
		return nil, err
	}

	stream := &ast.Stream{}
	for {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}
		if tok.Kind == tokenizer.TokenStreamEnd {
			return stream, nil
		}
		doc, err := p.ParseDocument()
		if err != nil {
			return nil, err
		}
		if doc != nil {
			stream.Documents = append(stream.Documents, doc)
		}
	}
}

// ParseDocument parses the next document. It returns nil without an error
// when only a document end marker or the end of the stream remains.
func (p *Parser) ParseDocument() (*ast.Document, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	doc := &ast.Document{Position: tok.Pos}

	directives, err := p.parseDirectives(doc)
	if err != nil {
		return nil, err
	}

	if tok, err = p.peek(); err != nil {
		return nil, err
	}
	switch {
	case tok.Kind == tokenizer.TokenDocStart:
		doc.ExplicitStart = true
		doc.Position = tok.Pos
		if _, err := p.next(); err != nil {
			return nil, err
		}
	case directives > 0:
		return nil, yamlerr.New(yamlerr.ExpectedToken, tok.Pos, "did not find expected <document start> after directives, found %s", tok.Describe())
	case tok.Kind == tokenizer.TokenDocEnd:
		_, err := p.next()
		return nil, err
	case tok.Kind == tokenizer.TokenStreamEnd:
		return nil, nil
	default:
		doc.Position = tok.Pos
	}

	p.stack.Reset()
	p.depth = 0
	if tok, err = p.peek(); err != nil {
		return nil, err
	}
	if !isEnd(tok) {
		root, err := p.parseBlockNode(-1, true, false)
		if err != nil {
			return nil, err
		}
		doc.Root = root
	}

	if tok, err = p.peek(); err != nil {
		return nil, err
	}
	switch tok.Kind {
	case tokenizer.TokenDocEnd:
		doc.ExplicitEnd = true
		if _, err := p.next(); err != nil {
			return nil, err
		}
	case tokenizer.TokenStreamEnd, tokenizer.TokenDocStart:
	case tokenizer.TokenVersionDirective, tokenizer.TokenTagDirective, tokenizer.TokenReservedDirective:
		return nil, yamlerr.New(yamlerr.InvalidDirective, tok.Pos, "directive must follow a document end marker '...'")
	default:
		return nil, yamlerr.New(yamlerr.UnexpectedToken, tok.Pos, "unexpected %s after document content", tok.Describe())
	}
	return doc, nil
}
