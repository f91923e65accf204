package parser

import (
	"github.com/shapestone/yamlref/internal/grammar"
	"github.com/shapestone/yamlref/internal/tokenizer"
	"github.com/shapestone/yamlref/pkg/ast"
	"github.com/shapestone/yamlref/pkg/yamlerr"
)

// parseBlockNode parses the node that follows an indicator (or the document
// start) in block context.
//
// Grammar:
//
//	BlockNode = Properties? ( BlockSequence | BlockMapping | BlockScalar | FlowNode ) | Empty ;
//
// parent is the column of the enclosing collection. A node starting a later
// line must be indented deeper than parent, except that a block sequence may
// sit at the column of the mapping key it belongs to (seqAtParent). compact
// allows a block collection to start on the indicator's own line, as in
// "- key: value" or "- - item".
func (p *Parser) parseBlockNode(parent int, compact, seqAtParent bool) (ast.Node, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if isEnd(tok) {
		return p.emptyNode(), nil
	}
	if tok.LineStart {
		col := column(tok)
		if col < parent || (col == parent && !(seqAtParent && tok.Kind == tokenizer.TokenBlockEntry)) {
			return p.emptyNode(), nil
		}
		compact = true
	}

	if err := p.enter(tok.Pos); err != nil {
		return nil, err
	}
	defer p.leave()

	prod := grammar.Select(tok, p.stack.Current(), p.startsBlockMapping())
	switch prod {
	case grammar.BlockMapping:
		if !compact {
			return nil, yamlerr.New(yamlerr.UnexpectedToken, tok.Pos, "mapping values are not allowed in this context")
		}
		return p.parseBlockMapping(column(tok))
	case grammar.BlockSequence:
		if !compact {
			return nil, yamlerr.New(yamlerr.UnexpectedToken, tok.Pos, "block sequence entries are not allowed in this context")
		}
		return p.parseBlockSequence(column(tok))
	case grammar.Properties:
		return p.parseBlockProperties(parent, compact, seqAtParent)
	case grammar.BlockScalar, grammar.Scalar:
		return p.parseScalar()
	case grammar.Alias:
		return p.parseAlias()
	case grammar.FlowSequence:
		return p.parseFlowSequence()
	case grammar.FlowMapping:
		return p.parseFlowMapping()
	case grammar.Empty:
		return p.emptyNode(), nil
	}
	return nil, unexpected(tok)
}

// parseBlockProperties parses an anchor and/or tag and the node they apply
// to. Properties followed by a line break apply to the node below them.
func (p *Parser) parseBlockProperties(parent int, compact, seqAtParent bool) (ast.Node, error) {
	props, err := p.parseProperties()
	if err != nil {
		return nil, err
	}

	tok, err := p.peek()
	if err != nil {
		return nil, err
	}

	var node ast.Node
	if tok.LineStart || isEnd(tok) {
		node, err = p.parseBlockNode(parent, compact, seqAtParent)
	} else {
		node, err = p.parseInlineNode()
	}
	if err != nil {
		return nil, err
	}
	return props.wrap(node)
}

// parseInlineNode parses the content that follows properties on the same line.
func (p *Parser) parseInlineNode() (ast.Node, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	switch grammar.Select(tok, p.stack.Current(), false) {
	case grammar.BlockScalar, grammar.Scalar:
		return p.parseScalar()
	case grammar.Alias:
		return p.parseAlias()
	case grammar.FlowSequence:
		return p.parseFlowSequence()
	case grammar.FlowMapping:
		return p.parseFlowMapping()
	case grammar.BlockSequence:
		return nil, yamlerr.New(yamlerr.UnexpectedToken, tok.Pos, "block sequence entries are not allowed in this context")
	case grammar.BlockMapping:
		return nil, yamlerr.New(yamlerr.UnexpectedToken, tok.Pos, "mapping values are not allowed in this context")
	case grammar.Empty:
		return p.emptyNode(), nil
	}
	return nil, unexpected(tok)
}

// parseBlockSequence parses a block sequence whose entries sit at col.
//
// Grammar:
//
//	BlockSequence = ( "-" BlockNode )+ ;
func (p *Parser) parseBlockSequence(col int) (ast.Node, error) {
	first, err := p.peek()
	if err != nil {
		return nil, err
	}
	seq := &ast.Sequence{Position: first.Pos, Style: ast.Block}

	p.stack.Push(grammar.BlockIn, col)
	defer p.stack.Pop()

	for {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}
		if tok.Kind != tokenizer.TokenBlockEntry {
			if len(seq.Items) > 0 && tok.LineStart && column(tok) > col {
				return nil, yamlerr.New(yamlerr.InvalidIndentation, tok.Pos,
					"did not find expected '-' indicator at column %d, found %s", col+1, tok.Describe())
			}
			return seq, nil
		}
		if len(seq.Items) > 0 {
			switch {
			case !tok.LineStart:
				return nil, yamlerr.New(yamlerr.UnexpectedToken, tok.Pos, "block sequence entries are not allowed in this context")
			case column(tok) < col:
				return seq, nil
			case column(tok) > col:
				return nil, yamlerr.New(yamlerr.InvalidIndentation, tok.Pos,
					"bad indentation of a sequence entry: expected column %d, found column %d", col+1, tok.Pos.Column)
			}
		}
		if _, err := p.next(); err != nil {
			return nil, err
		}

		item, err := p.parseBlockNode(col, true, false)
		if err != nil {
			return nil, err
		}
		seq.Items = append(seq.Items, item)
	}
}

// parseBlockMapping parses a block mapping whose keys sit at col.
//
// Grammar:
//
//	BlockMapping = ( ImplicitEntry | ExplicitEntry )+ ;
//	ImplicitEntry = FlowNode? ":" BlockNode ;
//	ExplicitEntry = "?" BlockNode ( ":" BlockNode )? ;
func (p *Parser) parseBlockMapping(col int) (ast.Node, error) {
	first, err := p.peek()
	if err != nil {
		return nil, err
	}
	m := &ast.Mapping{Position: first.Pos, Style: ast.Block}
	keys := newKeySet()

	p.stack.Push(grammar.BlockIn, col)
	defer p.stack.Pop()

	for {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}
		if isEnd(tok) {
			return m, nil
		}
		if len(m.Pairs) > 0 {
			switch {
			case !tok.LineStart:
				return nil, yamlerr.New(yamlerr.ExpectedToken, tok.Pos, "did not find expected key, found %s", tok.Describe())
			case column(tok) < col:
				return m, nil
			case column(tok) > col:
				return nil, yamlerr.New(yamlerr.InvalidIndentation, tok.Pos,
					"bad indentation of a mapping entry: expected column %d, found column %d", col+1, tok.Pos.Column)
			}
		}

		pair, err := p.parseBlockEntry(col)
		if err != nil {
			return nil, err
		}
		if err := keys.add(pair.Key); err != nil {
			return nil, err
		}
		m.Pairs = append(m.Pairs, pair)
	}
}

// parseBlockEntry parses one key/value pair of a block mapping at col.
func (p *Parser) parseBlockEntry(col int) (ast.Pair, error) {
	tok, err := p.peek()
	if err != nil {
		return ast.Pair{}, err
	}

	var key ast.Node
	switch tok.Kind {
	case tokenizer.TokenKey:
		if _, err := p.next(); err != nil {
			return ast.Pair{}, err
		}
		if key, err = p.parseBlockNode(col, true, false); err != nil {
			return ast.Pair{}, err
		}
		v, err := p.peek()
		if err != nil {
			return ast.Pair{}, err
		}
		if v.Kind != tokenizer.TokenValue || (v.LineStart && column(v) != col) {
			// "? key" without a value.
			return ast.Pair{Key: key, Value: &ast.Null{Position: v.Pos}}, nil
		}
		if _, err := p.next(); err != nil {
			return ast.Pair{}, err
		}
		value, err := p.parseBlockNode(col, true, false)
		if err != nil {
			return ast.Pair{}, err
		}
		return ast.Pair{Key: key, Value: value}, nil

	case tokenizer.TokenValue:
		key = &ast.Null{Position: tok.Pos}

	default:
		if !p.startsBlockMapping() {
			if tok.Kind == tokenizer.TokenBlockEntry {
				return ast.Pair{}, yamlerr.New(yamlerr.UnexpectedToken, tok.Pos, "block sequence entries are not allowed in this context")
			}
			return ast.Pair{}, yamlerr.New(yamlerr.ExpectedToken, tok.Pos, "could not find expected ':' after %s", tok.Describe())
		}
		p.stack.Push(grammar.BlockKey, col)
		key, err = p.parseImplicitKey()
		p.stack.Pop()
		if err != nil {
			return ast.Pair{}, err
		}
	}

	if _, err := p.expect(tokenizer.TokenValue, "':'"); err != nil {
		return ast.Pair{}, err
	}
	p.stack.Push(grammar.BlockValue, col)
	defer p.stack.Pop()
	value, err := p.parseBlockNode(col, false, true)
	if err != nil {
		return ast.Pair{}, err
	}
	return ast.Pair{Key: key, Value: value}, nil
}

// parseImplicitKey parses the single-line key of an implicit entry.
func (p *Parser) parseImplicitKey() (ast.Node, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if err := p.enter(tok.Pos); err != nil {
		return nil, err
	}
	defer p.leave()

	if tok.Kind == tokenizer.TokenAnchor || tok.Kind == tokenizer.TokenTag {
		props, err := p.parseProperties()
		if err != nil {
			return nil, err
		}
		node, err := p.parseInlineNode()
		if err != nil {
			return nil, err
		}
		return props.wrap(node)
	}
	return p.parseInlineNode()
}

// emptyNode returns the implied null for a missing node, positioned just past
// the last consumed token.
func (p *Parser) emptyNode() ast.Node {
	return &ast.Null{Position: p.prev.End()}
}
