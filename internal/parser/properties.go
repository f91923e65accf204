package parser

import (
	"github.com/shapestone/yamlref/internal/tokenizer"
	"github.com/shapestone/yamlref/pkg/ast"
	"github.com/shapestone/yamlref/pkg/yamlerr"
)

// properties are the anchor and tag written in front of a node.
type properties struct {
	anchor *tokenizer.Token
	tag    *tokenizer.Token
}

// parseProperties consumes an anchor and a tag, in either order.
//
// Grammar:
//
//	Properties = Anchor Tag? | Tag Anchor? ;
func (p *Parser) parseProperties() (properties, error) {
	var props properties
	for {
		tok, err := p.peek()
		if err != nil {
			return props, err
		}
		switch tok.Kind {
		case tokenizer.TokenAnchor:
			if props.anchor != nil {
				return props, yamlerr.New(yamlerr.InvalidAnchor, tok.Pos, "node already has anchor &%s", props.anchor.Value)
			}
			props.anchor = &tok
		case tokenizer.TokenTag:
			if props.tag != nil {
				return props, yamlerr.New(yamlerr.InvalidTag, tok.Pos, "node already has tag %s", props.tag.Handle+props.tag.Suffix)
			}
			props.tag = &tok
		default:
			return props, nil
		}
		if _, err := p.next(); err != nil {
			return props, err
		}
	}
}

// wrap applies the properties to node: the tag directly around the node,
// the anchor around that. Aliases cannot carry properties.
func (pr properties) wrap(node ast.Node) (ast.Node, error) {
	if alias, ok := node.(*ast.Alias); ok {
		return nil, yamlerr.New(yamlerr.InvalidAlias, alias.Position, "alias *%s cannot have an anchor or a tag", alias.Name)
	}
	if pr.tag != nil {
		t := pr.tag
		tagged := &ast.Tagged{
			Position: t.Pos,
			Handle:   t.Handle,
			Suffix:   t.Suffix,
			Verbatim: t.Verbatim,
			Node:     node,
		}
		if t.Verbatim {
			tagged.Tag = t.Suffix
		}
		node = tagged
	}
	if pr.anchor != nil {
		node = &ast.Anchor{Position: pr.anchor.Pos, Name: pr.anchor.Value, Node: node}
	}
	return node, nil
}

// parseAlias consumes an alias.
func (p *Parser) parseAlias() (ast.Node, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	return &ast.Alias{Position: tok.Pos, Name: tok.Value}, nil
}
