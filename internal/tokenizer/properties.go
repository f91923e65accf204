package tokenizer

import (
	"strings"

	"github.com/shapestone/yamlref/pkg/yamlerr"
)

// scanAnchor scans an anchor (&name) or an alias (*name).
//
// Grammar:
//
//	Anchor = "&" AnchorChar+ ;
//	Alias  = "*" AnchorChar+ ;
//
// An anchor character is any printable non-blank character except the flow
// indicators. A ':' followed by a blank ends the name.
func (s *Scanner) scanAnchor(kind Kind) error {
	c := s.c
	start := c.mark()
	c.advance()

	from := c.pos.Offset
	for !c.eof() {
		b := c.peek()
		if isBlank(b) || isBreak(b) || isFlowIndicator(b) {
			break
		}
		if b == ':' && c.isBlankZAt(1) {
			break
		}
		c.advance()
	}
	name := c.src[from:c.pos.Offset]

	if name == "" {
		errKind := yamlerr.InvalidAnchor
		what := "anchor"
		if kind == TokenAlias {
			errKind = yamlerr.InvalidAlias
			what = "alias"
		}
		return yamlerr.New(errKind, start, "did not find expected %s name", what)
	}

	tok := Token{Kind: kind, Pos: start, Len: c.pos.Offset - start.Offset, Value: name}
	if kind == TokenAnchor {
		if s.nodeCol < 0 {
			s.nodeCol = start.Column - 1
		}
		s.emit(tok)
		return nil
	}
	s.emitContent(tok, true)
	return nil
}

// scanTag scans a node tag.
//
// Grammar:
//
//	Tag = "!<" URIChar+ ">"          (verbatim)
//	    | "!" "!" TagChar+           (secondary handle)
//	    | "!" WordChar+ "!" TagChar+ (named handle)
//	    | "!" TagChar*               (primary handle, or the non-specific "!")
func (s *Scanner) scanTag() error {
	c := s.c
	start := c.mark()
	c.advance()

	tok := Token{Kind: TokenTag, Pos: start}

	if c.peek() == '<' {
		c.advance()
		from := c.pos.Offset
		for !c.eof() && c.peek() != '>' && !isBlank(c.peek()) && !isBreak(c.peek()) {
			c.advance()
		}
		if c.peek() != '>' {
			return yamlerr.New(yamlerr.InvalidTag, start, "did not find the expected '>' of a verbatim tag")
		}
		tok.Suffix = c.src[from:c.pos.Offset]
		tok.Verbatim = true
		c.advance()
		if tok.Suffix == "" {
			return yamlerr.New(yamlerr.InvalidTag, start, "verbatim tag must not be empty")
		}
	} else {
		word := s.scanWord()
		if c.peek() == '!' {
			c.advance()
			tok.Handle = "!" + word + "!"
			suffix, err := s.scanTagChars()
			if err != nil {
				return err
			}
			if suffix == "" {
				return yamlerr.New(yamlerr.InvalidTag, start, "did not find expected tag suffix after handle %s", tok.Handle)
			}
			tok.Suffix = suffix
		} else {
			rest, err := s.scanTagChars()
			if err != nil {
				return err
			}
			tok.Handle = "!"
			tok.Suffix = word + rest
		}
	}

	if !c.isBlankZAt(0) && !(s.flowLevel > 0 && isFlowIndicator(c.peek())) {
		return yamlerr.New(yamlerr.InvalidTag, c.pos, "did not find expected whitespace or line break after tag")
	}

	tok.Len = c.pos.Offset - start.Offset
	if s.nodeCol < 0 {
		s.nodeCol = start.Column - 1
	}
	s.emit(tok)
	return nil
}

// scanWord consumes alphanumeric characters and '-'.
func (s *Scanner) scanWord() string {
	c := s.c
	from := c.pos.Offset
	for isWordChar(c.peek()) {
		c.advance()
	}
	return c.src[from:c.pos.Offset]
}

// scanTagChars consumes URI characters allowed in a tag suffix, validating
// %-escapes.
func (s *Scanner) scanTagChars() (string, error) {
	c := s.c
	from := c.pos.Offset
	for !c.eof() {
		b := c.peek()
		if isBlank(b) || isBreak(b) || isFlowIndicator(b) || b == '!' {
			break
		}
		if b == '%' {
			if !isHex(c.peekAt(1)) || !isHex(c.peekAt(2)) {
				return "", yamlerr.New(yamlerr.InvalidTag, c.pos, "did not find URI escaped octet")
			}
			c.advanceN(3)
			continue
		}
		c.advance()
	}
	return c.src[from:c.pos.Offset], nil
}

func isWordChar(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '-'
}

// scanDirective scans a directive line starting with '%' in column 1.
//
// Grammar:
//
//	Directive = "%YAML" Blank+ Digit+ "." Digit+
//	          | "%TAG" Blank+ TagHandle Blank+ TagPrefix
//	          | "%" Name ( Blank+ Param )* ;
func (s *Scanner) scanDirective() error {
	c := s.c
	start := c.mark()
	c.advance()

	name := s.scanRun()
	if name == "" {
		return yamlerr.New(yamlerr.InvalidDirective, start, "did not find expected directive name")
	}

	tok := Token{Pos: start}
	switch name {
	case "YAML":
		version := s.scanParam()
		major, minor, ok := strings.Cut(version, ".")
		if !ok || !isDigits(major) || !isDigits(minor) {
			return yamlerr.New(yamlerr.InvalidDirective, start, "did not find expected version number in %%YAML directive")
		}
		tok.Kind = TokenVersionDirective
		tok.Value = version
	case "TAG":
		handle := s.scanParam()
		if !isTagHandle(handle) {
			return yamlerr.New(yamlerr.InvalidDirective, start, "did not find expected tag handle in %%TAG directive")
		}
		prefix := s.scanParam()
		if prefix == "" {
			return yamlerr.New(yamlerr.InvalidDirective, start, "did not find expected tag prefix in %%TAG directive")
		}
		tok.Kind = TokenTagDirective
		tok.Handle = handle
		tok.Suffix = prefix
	default:
		var params []string
		for p := s.scanParam(); p != ""; p = s.scanParam() {
			params = append(params, p)
		}
		tok.Kind = TokenReservedDirective
		tok.Value = name
		tok.Suffix = strings.Join(params, " ")
	}

	s.skipBlanks()
	if c.peek() == '#' {
		for !c.eof() && !isBreak(c.peek()) {
			c.advance()
		}
	}
	if !c.eof() && !isBreak(c.peek()) {
		return yamlerr.New(yamlerr.InvalidDirective, c.pos, "did not find expected comment or line break after directive")
	}

	tok.Len = c.pos.Offset - start.Offset
	s.emit(tok)
	return nil
}

// scanRun consumes a run of non-blank characters.
func (s *Scanner) scanRun() string {
	c := s.c
	from := c.pos.Offset
	for !c.eof() && !isBlank(c.peek()) && !isBreak(c.peek()) {
		c.advance()
	}
	return c.src[from:c.pos.Offset]
}

// scanParam skips blanks and consumes one directive parameter. A comment
// ends the parameter list.
func (s *Scanner) scanParam() string {
	s.skipBlanks()
	if s.c.peek() == '#' {
		return ""
	}
	return s.scanRun()
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

// isTagHandle reports whether h is "!", "!!" or "!word!".
func isTagHandle(h string) bool {
	if h == "!" || h == "!!" {
		return true
	}
	if len(h) < 3 || h[0] != '!' || h[len(h)-1] != '!' {
		return false
	}
	for i := 1; i < len(h)-1; i++ {
		if !isWordChar(h[i]) {
			return false
		}
	}
	return true
}
