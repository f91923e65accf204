package tokenizer

import (
	"strings"

	"github.com/shapestone/yamlref/pkg/yamlerr"
)

// singleEscapes maps the character after a backslash to its replacement.
var singleEscapes = map[byte]string{
	'0':  "\x00",
	'a':  "\a",
	'b':  "\b",
	't':  "\t",
	'\t': "\t",
	'n':  "\n",
	'v':  "\v",
	'f':  "\f",
	'r':  "\r",
	'e':  "\x1b",
	' ':  " ",
	'"':  "\"",
	'/':  "/",
	'\\': "\\",
	'N':  "\u0085",
	'_':  "\u00a0",
	'L':  "\u2028",
	'P':  "\u2029",
}

// scanEscape decodes one escape sequence of a double-quoted scalar.
//
// Grammar:
//
//	Escape = "\" ( SingleEscape | "x" Hex{2} | "u" Hex{4} | "U" Hex{8} ) ;
func (s *Scanner) scanEscape(sb *strings.Builder) error {
	c := s.c
	pos := c.mark()
	c.advance()
	if c.eof() {
		return yamlerr.New(yamlerr.UnterminatedString, pos, "found unexpected end of input in escape sequence")
	}

	b := c.peek()
	if r, ok := singleEscapes[b]; ok {
		sb.WriteString(r)
		c.advance()
		return nil
	}

	var width int
	switch b {
	case 'x':
		width = 2
	case 'u':
		width = 4
	case 'U':
		width = 8
	default:
		return yamlerr.New(yamlerr.InvalidEscape, pos, "found unknown escape character %q", b)
	}
	c.advance()

	var code uint32
	for i := 0; i < width; i++ {
		h := c.peek()
		if !isHex(h) {
			return yamlerr.New(yamlerr.InvalidEscape, pos, "did not find expected hexadecimal number in \\%c escape", b)
		}
		code = code<<4 | uint32(hexValue(h))
		c.advance()
	}
	if (code >= 0xD800 && code <= 0xDFFF) || code > 0x10FFFF {
		return yamlerr.New(yamlerr.InvalidEscape, pos, "found invalid Unicode character escape code %X", code)
	}
	sb.WriteRune(rune(code))
	return nil
}
