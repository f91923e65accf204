package tokenizer

import (
	"unicode/utf8"

	"github.com/shapestone/yamlref/pkg/ast"
)

// cursor walks the input one character at a time and keeps the position of
// the next unread character. Line breaks are "\n", "\r\n" or a lone "\r".
type cursor struct {
	src string
	buf []byte
	pos ast.Position
}

func newCursor(src string) *cursor {
	c := &cursor{src: src, buf: []byte(src), pos: ast.StartPosition()}
	// A leading byte order mark is not content.
	if len(src) >= 3 && src[0] == 0xEF && src[1] == 0xBB && src[2] == 0xBF {
		c.pos.Offset = 3
	}
	return c
}

func (c *cursor) eof() bool {
	return c.pos.Offset >= len(c.src)
}

// peek returns the byte at the cursor, or 0 at the end of input.
func (c *cursor) peek() byte {
	return c.peekAt(0)
}

// peekAt returns the byte n bytes ahead, or 0 past the end of input.
func (c *cursor) peekAt(n int) byte {
	i := c.pos.Offset + n
	if i < 0 || i >= len(c.src) {
		return 0
	}
	return c.src[i]
}

// rest returns the unread input as bytes.
func (c *cursor) rest() []byte {
	return c.buf[c.pos.Offset:]
}

// advance consumes one character. A line break moves to the next line.
func (c *cursor) advance() {
	if c.eof() {
		return
	}
	b := c.src[c.pos.Offset]
	switch {
	case b == '\r':
		c.pos.Offset++
		if c.peek() == '\n' {
			c.pos.Offset++
		}
		c.pos.Line++
		c.pos.Column = 1
	case b == '\n':
		c.pos.Offset++
		c.pos.Line++
		c.pos.Column = 1
	case b < utf8.RuneSelf:
		c.pos.Offset++
		c.pos.Column++
	default:
		_, size := utf8.DecodeRuneInString(c.src[c.pos.Offset:])
		c.pos.Offset += size
		c.pos.Column++
	}
}

// advanceN consumes n characters.
func (c *cursor) advanceN(n int) {
	for i := 0; i < n; i++ {
		c.advance()
	}
}

// skipBytes consumes n bytes known to contain no line breaks.
func (c *cursor) skipBytes(n int) {
	end := c.pos.Offset + n
	for c.pos.Offset < end && !c.eof() {
		c.advance()
	}
}

func (c *cursor) mark() ast.Position {
	return c.pos
}

func (c *cursor) reset(p ast.Position) {
	c.pos = p
}

// from returns the input between p and the cursor.
func (c *cursor) from(p ast.Position) string {
	return c.src[p.Offset:c.pos.Offset]
}

// column0 is the 0-based column of the cursor.
func (c *cursor) column0() int {
	return c.pos.Column - 1
}

func (c *cursor) isBreakAt(n int) bool {
	return isBreak(c.peekAt(n))
}

func (c *cursor) isBlankAt(n int) bool {
	return isBlank(c.peekAt(n))
}

// isBlankZAt reports whether the character n bytes ahead is a blank, a line
// break or the end of input.
func (c *cursor) isBlankZAt(n int) bool {
	if c.pos.Offset+n >= len(c.src) {
		return true
	}
	b := c.peekAt(n)
	return isBlank(b) || isBreak(b)
}

func isBreak(b byte) bool {
	return b == '\n' || b == '\r'
}

func isBlank(b byte) bool {
	return b == ' ' || b == '\t'
}

func isFlowIndicator(b byte) bool {
	switch b {
	case ',', '[', ']', '{', '}':
		return true
	}
	return false
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isHex(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func hexValue(b byte) int {
	switch {
	case b >= 'A' && b <= 'F':
		return int(b) - 'A' + 10
	case b >= 'a' && b <= 'f':
		return int(b) - 'a' + 10
	}
	return int(b) - '0'
}
