package parser

import (
	"github.com/shapestone/yamlref/internal/grammar"
	"github.com/shapestone/yamlref/internal/tokenizer"
	"github.com/shapestone/yamlref/pkg/ast"
	"github.com/shapestone/yamlref/pkg/yamlerr"
)

// parseFlowNode parses a node inside a flow collection. A missing node (the
// next token is ',', ':' or a closing bracket) is an implied null.
//
// Grammar:
//
//	FlowNode = Properties? ( FlowSequence | FlowMapping | Scalar | Alias ) | Empty ;
func (p *Parser) parseFlowNode() (ast.Node, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if err := p.enter(tok.Pos); err != nil {
		return nil, err
	}
	defer p.leave()

	switch grammar.Select(tok, p.stack.Current(), false) {
	case grammar.Empty:
		if isEnd(tok) {
			return nil, yamlerr.New(yamlerr.UnexpectedEOF, tok.Pos, "did not find expected flow collection end, found %s", tok.Describe())
		}
		return &ast.Null{Position: tok.Pos}, nil
	case grammar.Properties:
		props, err := p.parseProperties()
		if err != nil {
			return nil, err
		}
		node, err := p.parseFlowNode()
		if err != nil {
			return nil, err
		}
		return props.wrap(node)
	case grammar.Scalar:
		return p.parseScalar()
	case grammar.Alias:
		return p.parseAlias()
	case grammar.FlowSequence:
		return p.parseFlowSequence()
	case grammar.FlowMapping:
		return p.parseFlowMapping()
	}
	if tok.Kind == tokenizer.TokenBlockEntry || tok.Kind == tokenizer.TokenKey {
		return nil, yamlerr.New(yamlerr.UnexpectedToken, tok.Pos, "%s is not allowed inside a flow collection", tok.Describe())
	}
	return nil, unexpected(tok)
}

// parseFlowSequence parses a bracketed sequence.
//
// Grammar:
//
//	FlowSequence = "[" ( FlowSeqEntry ( "," FlowSeqEntry )* ","? )? "]" ;
//	FlowSeqEntry = FlowNode | FlowPair ;
//	FlowPair     = ( "?" FlowNode? | FlowNode ) ":" FlowNode? ;
//
// A pair inside a sequence becomes a single-pair flow mapping.
func (p *Parser) parseFlowSequence() (ast.Node, error) {
	start, err := p.next()
	if err != nil {
		return nil, err
	}
	seq := &ast.Sequence{Position: start.Pos, Style: ast.Flow}

	p.stack.Push(grammar.FlowIn, 0)
	defer p.stack.Pop()

	expectEntry := true
	for {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}
		switch tok.Kind {
		case tokenizer.TokenFlowSeqEnd:
			_, err := p.next()
			return seq, err
		case tokenizer.TokenFlowEntry:
			if expectEntry {
				return nil, yamlerr.New(yamlerr.UnexpectedToken, tok.Pos, "did not find expected node content before ','")
			}
			if _, err := p.next(); err != nil {
				return nil, err
			}
			expectEntry = true
			continue
		case tokenizer.TokenFlowMapEnd:
			return nil, yamlerr.New(yamlerr.UnexpectedToken, tok.Pos, "did not find expected ',' or ']', found '}'")
		}
		if isEnd(tok) {
			return nil, yamlerr.New(yamlerr.UnexpectedEOF, tok.Pos, "did not find expected ',' or ']' for the sequence started at %s", start.Pos)
		}
		if !expectEntry {
			return nil, yamlerr.New(yamlerr.ExpectedToken, tok.Pos, "did not find expected ',' or ']', found %s", tok.Describe())
		}

		item, err := p.parseFlowSeqEntry()
		if err != nil {
			return nil, err
		}
		seq.Items = append(seq.Items, item)
		expectEntry = false
	}
}

func (p *Parser) parseFlowSeqEntry() (ast.Node, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}

	// Plain entries may span lines; only explicit keys take the key context.
	explicit := tok.Kind == tokenizer.TokenKey
	if explicit {
		if _, err := p.next(); err != nil {
			return nil, err
		}
		p.stack.Push(grammar.FlowKey, 0)
	}
	node, err := p.parseFlowNode()
	if explicit {
		p.stack.Pop()
	}
	if err != nil {
		return nil, err
	}

	next, err := p.peek()
	if err != nil {
		return nil, err
	}
	if next.Kind != tokenizer.TokenValue {
		if explicit {
			return &ast.Mapping{Position: tok.Pos, Style: ast.Flow, Pairs: []ast.Pair{{Key: node, Value: &ast.Null{Position: next.Pos}}}}, nil
		}
		return node, nil
	}
	if _, err := p.next(); err != nil {
		return nil, err
	}

	p.stack.Push(grammar.FlowValue, 0)
	value, err := p.parseFlowNode()
	p.stack.Pop()
	if err != nil {
		return nil, err
	}
	return &ast.Mapping{Position: tok.Pos, Style: ast.Flow, Pairs: []ast.Pair{{Key: node, Value: value}}}, nil
}

// parseFlowMapping parses a braced mapping. A key without ':' maps to null.
//
// Grammar:
//
//	FlowMapping = "{" ( FlowMapEntry ( "," FlowMapEntry )* ","? )? "}" ;
//	FlowMapEntry = "?"? FlowNode? ( ":" FlowNode? )? ;
func (p *Parser) parseFlowMapping() (ast.Node, error) {
	start, err := p.next()
	if err != nil {
		return nil, err
	}
	m := &ast.Mapping{Position: start.Pos, Style: ast.Flow}
	keys := newKeySet()

	p.stack.Push(grammar.FlowIn, 0)
	defer p.stack.Pop()

	expectEntry := true
	for {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}
		switch tok.Kind {
		case tokenizer.TokenFlowMapEnd:
			_, err := p.next()
			return m, err
		case tokenizer.TokenFlowEntry:
			if expectEntry {
				return nil, yamlerr.New(yamlerr.UnexpectedToken, tok.Pos, "did not find expected node content before ','")
			}
			if _, err := p.next(); err != nil {
				return nil, err
			}
			expectEntry = true
			continue
		case tokenizer.TokenFlowSeqEnd:
			return nil, yamlerr.New(yamlerr.UnexpectedToken, tok.Pos, "did not find expected ',' or '}', found ']'")
		}
		if isEnd(tok) {
			return nil, yamlerr.New(yamlerr.UnexpectedEOF, tok.Pos, "did not find expected ',' or '}' for the mapping started at %s", start.Pos)
		}
		if !expectEntry {
			return nil, yamlerr.New(yamlerr.ExpectedToken, tok.Pos, "did not find expected ',' or '}', found %s", tok.Describe())
		}

		pair, err := p.parseFlowMapEntry()
		if err != nil {
			return nil, err
		}
		if err := keys.add(pair.Key); err != nil {
			return nil, err
		}
		m.Pairs = append(m.Pairs, pair)
		expectEntry = false
	}
}

func (p *Parser) parseFlowMapEntry() (ast.Pair, error) {
	tok, err := p.peek()
	if err != nil {
		return ast.Pair{}, err
	}
	if tok.Kind == tokenizer.TokenKey {
		if _, err := p.next(); err != nil {
			return ast.Pair{}, err
		}
	}

	p.stack.Push(grammar.FlowKey, 0)
	key, err := p.parseFlowNode()
	p.stack.Pop()
	if err != nil {
		return ast.Pair{}, err
	}

	next, err := p.peek()
	if err != nil {
		return ast.Pair{}, err
	}
	if next.Kind != tokenizer.TokenValue {
		return ast.Pair{Key: key, Value: &ast.Null{Position: next.Pos}}, nil
	}
	if _, err := p.next(); err != nil {
		return ast.Pair{}, err
	}

	p.stack.Push(grammar.FlowValue, 0)
	value, err := p.parseFlowNode()
	p.stack.Pop()
	if err != nil {
		return ast.Pair{}, err
	}
	return ast.Pair{Key: key, Value: value}, nil
}

// keySet detects duplicate scalar keys within one mapping. Merge keys may
// repeat.
type keySet map[string]ast.Position

func newKeySet() keySet {
	return make(keySet)
}

func (s keySet) add(key ast.Node) error {
	var id, label string
	switch k := ast.Unwrap(key).(type) {
	case *ast.Scalar:
		if k.Text == "<<" && k.Style == ast.Plain {
			return nil
		}
		id, label = k.Kind.String()+":"+k.Text, k.Text
	case *ast.Null:
		id, label = "null", "null"
	default:
		return nil
	}
	if first, dup := s[id]; dup {
		return yamlerr.New(yamlerr.DuplicateKey, key.Pos(), "mapping key %q already defined at %s", label, first).WithRelated(first)
	}
	s[id] = key.Pos()
	return nil
}
