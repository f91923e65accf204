package parser

import (
	"strings"

	"github.com/shapestone/yamlref/internal/grammar"
	"github.com/shapestone/yamlref/internal/scalar"
	"github.com/shapestone/yamlref/internal/tokenizer"
	"github.com/shapestone/yamlref/pkg/ast"
)

// parseScalar parses a flow or block scalar. Plain scalars may continue on
// the following lines and resolve to a typed value; quoted and block scalars
// are always strings.
func (p *Parser) parseScalar() (ast.Node, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}

	switch tok.Style {
	case ast.Literal, ast.Folded:
		return ast.NewString(blockScalarValue(tok), tok.Style, tok.Pos), nil
	case ast.SingleQuoted, ast.DoubleQuoted:
		return ast.NewString(tok.Value, tok.Style, tok.Pos), nil
	}

	text, err := p.continuePlain(tok)
	if err != nil {
		return nil, err
	}
	return scalar.Infer(text, tok.Pos), nil
}

// continuePlain joins the continuation lines of a multi-line plain scalar.
// Lines separated by a single break join with a space; each empty line in
// between becomes a newline.
func (p *Parser) continuePlain(first tokenizer.Token) (string, error) {
	text := first.Value
	var sb *strings.Builder
	last := first
	for {
		next, err := p.peek()
		if err != nil {
			return "", err
		}
		la := grammar.Lookahead{Comment: p.commentSeen}
		if next.IsPlainScalar() {
			la.Key = p.followedByValue()
		}
		if !grammar.CanContinuePlainScalar(next, last, p.stack.Current(), la) {
			break
		}
		if sb == nil {
			sb = &strings.Builder{}
			sb.WriteString(text)
		}
		if gap := next.Pos.Line - last.Pos.Line; gap == 1 {
			sb.WriteByte(' ')
		} else {
			sb.WriteString(strings.Repeat("\n", gap-1))
		}
		sb.WriteString(next.Value)
		if last, err = p.next(); err != nil {
			return "", err
		}
	}
	if sb == nil {
		return text, nil
	}
	return sb.String(), nil
}

// blockScalarValue turns the raw body of a literal or folded scalar into its
// content: the indentation is stripped, folded scalars join lines, and the
// final line breaks are chomped.
//
// In a folded scalar a line break between two lines that both start without
// a blank becomes a space; empty lines become newlines; breaks around
// more-indented lines are kept. Chomping keeps no final break (strip), one
// (clip) or all of them (keep).
func blockScalarValue(tok tokenizer.Token) string {
	folded := tok.Style == ast.Folded
	indent := tok.Indent

	var (
		sb             strings.Builder
		leadingBreak   string
		trailingBreaks strings.Builder
		leadingBlank   bool
	)

	body := tok.Value
	for len(body) > 0 {
		line, hasBreak := body, false
		if i := strings.IndexAny(body, "\r\n"); i >= 0 {
			line = body[:i]
			hasBreak = true
			if body[i] == '\r' && i+1 < len(body) && body[i+1] == '\n' {
				body = body[i+2:]
			} else {
				body = body[i+1:]
			}
		} else {
			body = ""
		}

		n := 0
		for n < indent && n < len(line) && line[n] == ' ' {
			n++
		}
		content := line[n:]

		if content == "" {
			if hasBreak {
				trailingBreaks.WriteByte('\n')
			}
			continue
		}

		trailingBlank := content[0] == ' ' || content[0] == '\t'
		if folded && leadingBreak == "\n" && !leadingBlank && !trailingBlank {
			if trailingBreaks.Len() == 0 {
				sb.WriteByte(' ')
			}
		} else {
			sb.WriteString(leadingBreak)
		}
		leadingBreak = ""
		sb.WriteString(trailingBreaks.String())
		trailingBreaks.Reset()

		leadingBlank = trailingBlank
		sb.WriteString(content)
		if hasBreak {
			leadingBreak = "\n"
		}
	}

	if tok.Chomping != tokenizer.ChompStrip {
		sb.WriteString(leadingBreak)
	}
	if tok.Chomping == tokenizer.ChompKeep {
		sb.WriteString(trailingBreaks.String())
	}
	return sb.String()
}
