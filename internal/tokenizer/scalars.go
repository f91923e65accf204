package tokenizer

import (
	"strings"

	shapetokenizer "github.com/shapestone/shape-core/pkg/tokenizer"

	"github.com/shapestone/yamlref/pkg/ast"
	"github.com/shapestone/yamlref/pkg/yamlerr"
)

// scanPlain scans one line of a plain scalar. Continuation lines are
// separate tokens; the parser decides whether they join.
//
// A plain scalar ends at a line break, at " #", at ':' followed by a blank
// and, inside flow collections, at any flow indicator or ':' followed by one.
func (s *Scanner) scanPlain() error {
	c := s.c
	start := c.mark()
	end := start

	for !c.eof() {
		b := c.peek()
		if isBreak(b) {
			break
		}
		if b == ':' && (c.isBlankZAt(1) || (s.flowLevel > 0 && isFlowIndicator(c.peekAt(1)))) {
			break
		}
		if s.flowLevel > 0 && isFlowIndicator(b) {
			break
		}
		if isBlank(b) {
			n := 1
			for isBlank(c.peekAt(n)) {
				n++
			}
			next := c.peekAt(n)
			if next == '#' || isBreak(next) || c.pos.Offset+n >= len(c.src) {
				break
			}
			c.advanceN(n)
			continue
		}
		c.advance()
		end = c.mark()
	}

	if end.Offset == start.Offset {
		return yamlerr.New(yamlerr.UnexpectedCharacter, start, "found character %q that cannot start any token", c.peek())
	}
	c.reset(end)

	s.emitContent(Token{
		Kind:  TokenScalar,
		Pos:   start,
		Len:   end.Offset - start.Offset,
		Value: c.src[start.Offset:end.Offset],
		Style: ast.Plain,
	}, true)
	return nil
}

// scanSingleQuoted scans a single-quoted scalar. A doubled quote stands for one quote.
func (s *Scanner) scanSingleQuoted() error {
	c := s.c
	start := c.mark()
	c.advance()

	// Fast path: the closing quote is on the same line and nothing needs
	// unescaping, so the value is a substring of the input.
	if i := shapetokenizer.FindByte(c.rest(), '\''); i >= 0 && c.peekAt(i+1) != '\'' {
		if seg := c.rest()[:i]; !containsBreak(seg) {
			from := c.pos.Offset
			c.skipBytes(i + 1)
			s.emitQuoted(start, c.src[from:from+i], ast.SingleQuoted)
			return nil
		}
	}

	var sb strings.Builder
	for {
		if c.eof() {
			return yamlerr.New(yamlerr.UnterminatedString, start, "found unexpected end of input while scanning a quoted scalar")
		}
		b := c.peek()
		switch {
		case b == '\'':
			if c.peekAt(1) == '\'' {
				sb.WriteByte('\'')
				c.advanceN(2)
				continue
			}
			c.advance()
			s.emitQuoted(start, sb.String(), ast.SingleQuoted)
			return nil
		case isBlank(b) || isBreak(b):
			if err := s.foldQuoted(&sb, start); err != nil {
				return err
			}
		default:
			from := c.pos.Offset
			c.advance()
			sb.WriteString(c.src[from:c.pos.Offset])
		}
	}
}

// scanDoubleQuoted scans a double-quoted scalar, processing escapes.
func (s *Scanner) scanDoubleQuoted() error {
	c := s.c
	start := c.mark()
	c.advance()

	if i := shapetokenizer.FindEscapeOrQuote(c.rest()); i >= 0 && c.rest()[i] == '"' {
		if seg := c.rest()[:i]; !containsBreak(seg) {
			from := c.pos.Offset
			c.skipBytes(i + 1)
			s.emitQuoted(start, c.src[from:from+i], ast.DoubleQuoted)
			return nil
		}
	}

	var sb strings.Builder
	for {
		if c.eof() {
			return yamlerr.New(yamlerr.UnterminatedString, start, "found unexpected end of input while scanning a quoted scalar")
		}
		b := c.peek()
		switch {
		case b == '"':
			c.advance()
			s.emitQuoted(start, sb.String(), ast.DoubleQuoted)
			return nil
		case b == '\\' && c.isBreakAt(1):
			// An escaped line break joins the lines without a space.
			c.advance()
			c.advance()
			s.skipBlanks()
			for isBreak(c.peek()) {
				sb.WriteByte('\n')
				c.advance()
				s.skipBlanks()
			}
		case b == '\\':
			if err := s.scanEscape(&sb); err != nil {
				return err
			}
		case isBlank(b) || isBreak(b):
			if err := s.foldQuoted(&sb, start); err != nil {
				return err
			}
		default:
			from := c.pos.Offset
			c.advance()
			sb.WriteString(c.src[from:c.pos.Offset])
		}
	}
}

// foldQuoted consumes a run of blanks and line breaks inside a quoted scalar.
// Blanks inside a line are content. A single line break folds into a space,
// n+1 breaks fold into n newlines, and blanks around breaks are dropped.
func (s *Scanner) foldQuoted(sb *strings.Builder, start ast.Position) error {
	c := s.c
	from := c.pos.Offset
	s.skipBlanks()
	if !isBreak(c.peek()) {
		if !c.eof() {
			sb.WriteString(c.src[from:c.pos.Offset])
		}
		return nil
	}

	breaks := 0
	for isBreak(c.peek()) {
		c.advance()
		breaks++
		if s.atDocumentMarker() {
			return yamlerr.New(yamlerr.UnterminatedString, start, "found unexpected document indicator while scanning a quoted scalar")
		}
		s.skipBlanks()
	}
	if breaks == 1 {
		sb.WriteByte(' ')
	} else {
		sb.WriteString(strings.Repeat("\n", breaks-1))
	}
	return nil
}

func (s *Scanner) emitQuoted(start ast.Position, value string, style ast.ScalarStyle) {
	s.emitContent(Token{
		Kind:  TokenScalar,
		Pos:   start,
		Len:   s.c.pos.Offset - start.Offset,
		Value: value,
		Style: style,
	}, start.Line == s.c.pos.Line)
}

func containsBreak(b []byte) bool {
	return shapetokenizer.FindByte(b, '\n') >= 0 || shapetokenizer.FindByte(b, '\r') >= 0
}

// scanBlockScalar scans a literal or folded scalar: the header with its
// chomping and indentation indicators, then every body line as raw text.
// Token.Indent receives the content indentation; the parser strips it,
// folds and chomps.
func (s *Scanner) scanBlockScalar() error {
	c := s.c
	start := c.mark()
	style := ast.Literal
	if c.peek() == '>' {
		style = ast.Folded
	}
	c.advance()

	chomping := ChompClip
	indicator := 0
	for i := 0; i < 2; i++ {
		b := c.peek()
		switch {
		case (b == '+' || b == '-') && chomping == ChompClip:
			chomping = ChompKeep
			if b == '-' {
				chomping = ChompStrip
			}
			c.advance()
		case isDigit(b) && indicator == 0:
			if b == '0' {
				return yamlerr.New(yamlerr.InvalidIndentation, c.pos, "found an indentation indicator equal to 0")
			}
			indicator = int(b - '0')
			c.advance()
		}
	}

	s.skipBlanks()
	if c.peek() == '#' {
		for !c.eof() && !isBreak(c.peek()) {
			c.advance()
		}
	}
	if !c.eof() && !isBreak(c.peek()) {
		return yamlerr.New(yamlerr.UnexpectedCharacter, c.pos, "did not find expected comment or line break after block scalar header")
	}
	c.advance()

	parent := s.top()
	indent := 0
	if indicator > 0 {
		indent = indicator
		if parent >= 0 {
			indent = parent + indicator
		}
	} else {
		indent = s.detectBlockIndent(parent)
	}

	bodyStart := c.pos.Offset
	for !c.eof() {
		n := 0
		for c.peekAt(n) == ' ' {
			n++
		}
		b := c.peekAt(n)
		if c.pos.Offset+n >= len(c.src) {
			c.skipBytes(n)
			break
		}
		if isBreak(b) {
			c.skipBytes(n)
			c.advance()
			continue
		}
		if n < indent || (n == 0 && s.atDocumentMarker()) {
			break
		}
		for !c.eof() && !isBreak(c.peek()) {
			c.advance()
		}
		c.advance()
	}

	s.emit(Token{
		Kind:            TokenScalar,
		Pos:             start,
		Len:             c.pos.Offset - start.Offset,
		Value:           c.src[bodyStart:c.pos.Offset],
		Style:           style,
		Indent:          indent,
		Chomping:        chomping,
		IndentIndicator: indicator,
	})
	s.nodeCol = -1
	s.atLineStart = true
	return nil
}

// detectBlockIndent finds the content indentation of a block scalar without
// an indentation indicator: the largest of the indentation of the leading
// empty lines, the first non-empty line and one more than the parent level.
// At document level the content may start in the first column.
func (s *Scanner) detectBlockIndent(parent int) int {
	c := s.c
	indent := parent + 1
	off := c.pos.Offset
	for off < len(c.src) {
		n := 0
		for off+n < len(c.src) && c.src[off+n] == ' ' {
			n++
		}
		indent = max(indent, n)
		if off+n >= len(c.src) || !isBreak(c.src[off+n]) {
			break
		}
		off += n + 1
		if c.src[off-1] == '\r' && off < len(c.src) && c.src[off] == '\n' {
			off++
		}
	}
	return indent
}
