package parser

import (
	"strconv"
	"strings"

	"github.com/shapestone/yamlref/internal/tokenizer"
	"github.com/shapestone/yamlref/pkg/ast"
	"github.com/shapestone/yamlref/pkg/yamlerr"
)

// parseDirectives consumes the directives in front of a document and records
// them on doc. It returns how many were read.
//
// Grammar:
//
//	Directive = "%YAML" Version | "%TAG" Handle Prefix | "%" Name Param* ;
//
// The %YAML major version must be 1; later minor versions are accepted. A
// second %YAML, or a second %TAG for the same handle, is an error. Reserved
// directives are ignored. Handles are scoped to the document they precede.
func (p *Parser) parseDirectives(doc *ast.Document) (int, error) {
	n := 0
	for {
		tok, err := p.peek()
		if err != nil {
			return n, err
		}
		switch tok.Kind {
		case tokenizer.TokenVersionDirective:
			if doc.Version != "" {
				return n, yamlerr.New(yamlerr.InvalidDirective, tok.Pos, "found duplicate %%YAML directive")
			}
			major, _, _ := strings.Cut(tok.Value, ".")
			if v, err := strconv.Atoi(major); err != nil || v != 1 {
				return n, yamlerr.New(yamlerr.InvalidDirective, tok.Pos, "found incompatible YAML document version %s", tok.Value)
			}
			doc.Version = tok.Value
		case tokenizer.TokenTagDirective:
			if _, dup := doc.TagHandles[tok.Handle]; dup {
				return n, yamlerr.New(yamlerr.InvalidDirective, tok.Pos, "found duplicate %%TAG directive for handle %s", tok.Handle)
			}
			if doc.TagHandles == nil {
				doc.TagHandles = make(map[string]string)
			}
			doc.TagHandles[tok.Handle] = tok.Suffix
		case tokenizer.TokenReservedDirective:
		default:
			return n, nil
		}
		if _, err := p.next(); err != nil {
			return n, err
		}
		n++
	}
}
