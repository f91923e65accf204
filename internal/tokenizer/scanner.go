package tokenizer

import (
	"github.com/shapestone/yamlref/pkg/ast"
	"github.com/shapestone/yamlref/pkg/yamlerr"
)

// Scanner produces tokens one at a time from an in-memory input.
//
// At the start of every line the leading spaces are compared against an
// indentation stack: a deeper line pushes a level and emits Indent, a
// shallower line pops levels and emits Dedent, and a line that lands between
// two levels is an InvalidIndentation error. Block entries, explicit keys and
// implicit keys found later on a line also open a level at their column.
// Inside flow collections the stack is not consulted.
//
// The scanner never panics on malformed input; every error is a *yamlerr.Error
// carrying the offending position. Once an error is returned, every further
// call returns the same error.
type Scanner struct {
	c     *cursor
	queue []Token
	err   error

	started bool
	done    bool

	flowLevel   int
	indents     []int
	atLineStart bool

	// lineStartPending marks the next significant token as the first of its line.
	lineStartPending bool
	// lastPlain is set while the last significant token is a plain scalar value,
	// so that a deeper next line may still continue it.
	lastPlain bool
	// nodeCol is the column of the first property (anchor or tag) of the node
	// being scanned, or -1.
	nodeCol int

	lastKind   Kind
	lastStyle  ast.ScalarStyle
	lastEndOff int
}

// NewScanner returns a scanner over input.
func NewScanner(input string) *Scanner {
	return &Scanner{
		c:           newCursor(input),
		indents:     []int{-1},
		atLineStart: true,
		nodeCol:     -1,
		lastEndOff:  -1,
	}
}

// Next returns the next token. After StreamEnd it keeps returning StreamEnd.
func (s *Scanner) Next() (Token, error) {
	for len(s.queue) == 0 {
		if s.err != nil {
			return Token{}, s.err
		}
		if s.done {
			return Token{Kind: TokenStreamEnd, Pos: s.c.pos}, nil
		}
		if err := s.fetch(); err != nil {
			s.err = err
			s.queue = s.queue[:0]
			return Token{}, err
		}
	}
	tok := s.queue[0]
	s.queue = s.queue[1:]
	return tok, nil
}

// FlowLevel returns the current flow nesting depth.
func (s *Scanner) FlowLevel() int {
	return s.flowLevel
}

// fetch scans at least one token into the queue.
func (s *Scanner) fetch() error {
	if !s.started {
		s.started = true
		s.emit(Token{Kind: TokenStreamStart, Pos: s.c.pos})
		return nil
	}

	if s.atLineStart {
		if err := s.scanLineStart(); err != nil {
			return err
		}
		if len(s.queue) > 0 || s.done {
			return nil
		}
	}

	s.skipBlanks()
	if s.c.eof() {
		s.finish()
		return nil
	}

	b := s.c.peek()
	switch {
	case isBreak(b):
		pos := s.c.mark()
		s.c.advance()
		s.emit(Token{Kind: TokenLineBreak, Pos: pos, Len: s.c.pos.Offset - pos.Offset})
		s.atLineStart = true
		return nil
	case b == '#':
		s.scanComment()
		return nil
	}
	return s.scanToken()
}

// scanLineStart consumes the indentation of a new line and updates the
// indentation stack when the line has content.
func (s *Scanner) scanLineStart() error {
	c := s.c
	for c.peek() == ' ' {
		c.advance()
	}
	if c.eof() {
		s.atLineStart = false
		return nil
	}

	b := c.peek()
	if b == '\t' {
		n := 0
		for isBlank(c.peekAt(n)) {
			n++
		}
		next := c.peekAt(n)
		blankLine := isBreak(next) || next == '#' || c.pos.Offset+n >= len(c.src)
		if !blankLine && s.flowLevel == 0 {
			return yamlerr.New(yamlerr.InvalidIndentation, c.pos,
				"found a tab character where an indentation space is expected")
		}
		s.skipBlanks()
		b = c.peek()
	}

	s.atLineStart = false
	if isBreak(b) || b == '#' {
		// Empty and comment-only lines do not take part in indentation.
		return nil
	}

	s.lineStartPending = true
	s.nodeCol = -1
	if s.flowLevel > 0 {
		return nil
	}

	col := c.column0()
	if col == 0 && (s.atDocumentMarker() || b == '%') {
		s.unwind(-1)
		s.lastPlain = false
		return nil
	}
	return s.measure(col)
}

// skipBlanks consumes spaces and tabs.
func (s *Scanner) skipBlanks() {
	for isBlank(s.c.peek()) {
		s.c.advance()
	}
}

// finish closes every open level and emits StreamEnd.
func (s *Scanner) finish() {
	s.unwind(-1)
	s.emit(Token{Kind: TokenStreamEnd, Pos: s.c.pos})
	s.done = true
}

// emit queues a token and records it as the last significant one.
func (s *Scanner) emit(tok Token) {
	if tok.IsLayout() {
		s.queue = append(s.queue, tok)
		return
	}
	if s.lineStartPending && tok.Kind != TokenStreamEnd {
		tok.LineStart = true
		s.lineStartPending = false
	}
	s.queue = append(s.queue, tok)
	s.lastKind = tok.Kind
	s.lastStyle = tok.Style
	s.lastEndOff = s.c.pos.Offset
	s.lastPlain = false
}

// scanToken dispatches on the first character of a token.
func (s *Scanner) scanToken() error {
	c := s.c
	b := c.peek()

	switch b {
	case '-':
		if s.lineStartPending && c.column0() == 0 && s.atDocumentMarker() {
			s.scanDocumentMarker(TokenDocStart)
			return nil
		}
		if c.isBlankZAt(1) {
			s.scanIndicator(TokenBlockEntry, true)
			return nil
		}
	case '.':
		if s.lineStartPending && c.column0() == 0 && s.atDocumentMarker() {
			s.scanDocumentMarker(TokenDocEnd)
			return nil
		}
	case '?':
		if c.isBlankZAt(1) || (s.flowLevel > 0 && isFlowIndicator(c.peekAt(1))) {
			s.scanIndicator(TokenKey, true)
			return nil
		}
	case ':':
		if s.atValueIndicator() {
			s.scanIndicator(TokenValue, false)
			return nil
		}
	case '[':
		s.scanFlowStart(TokenFlowSeqStart)
		return nil
	case '{':
		s.scanFlowStart(TokenFlowMapStart)
		return nil
	case ']':
		s.scanFlowEnd(TokenFlowSeqEnd)
		return nil
	case '}':
		s.scanFlowEnd(TokenFlowMapEnd)
		return nil
	case ',':
		s.scanIndicator(TokenFlowEntry, false)
		return nil
	case '&':
		return s.scanAnchor(TokenAnchor)
	case '*':
		return s.scanAnchor(TokenAlias)
	case '!':
		return s.scanTag()
	case '|', '>':
		if s.flowLevel > 0 {
			return yamlerr.New(yamlerr.UnexpectedCharacter, c.pos,
				"block scalar indicator %q is not allowed inside a flow collection", b)
		}
		return s.scanBlockScalar()
	case '\'':
		return s.scanSingleQuoted()
	case '"':
		return s.scanDoubleQuoted()
	case '%':
		if s.lineStartPending && c.column0() == 0 && s.flowLevel == 0 {
			return s.scanDirective()
		}
		return yamlerr.New(yamlerr.UnexpectedCharacter, c.pos, "found character '%%' that cannot start any token")
	case '@', '`':
		return yamlerr.New(yamlerr.UnexpectedCharacter, c.pos,
			"found reserved indicator %q that cannot start any token", b)
	}
	return s.scanPlain()
}

// atDocumentMarker reports whether the cursor is at "---" or "..." followed
// by a blank or the end of the line.
func (s *Scanner) atDocumentMarker() bool {
	c := s.c
	b := c.peek()
	if b != '-' && b != '.' {
		return false
	}
	return c.peekAt(1) == b && c.peekAt(2) == b && c.isBlankZAt(3)
}

// atValueIndicator reports whether the ':' at the cursor is a value indicator.
func (s *Scanner) atValueIndicator() bool {
	c := s.c
	if c.isBlankZAt(1) {
		return true
	}
	if s.flowLevel == 0 {
		return false
	}
	if isFlowIndicator(c.peekAt(1)) {
		return true
	}
	// JSON-like keys: a ':' right after a quoted scalar or a flow collection.
	if s.lastEndOff == c.pos.Offset {
		switch {
		case s.lastKind == TokenScalar && s.lastStyle.IsQuoted():
			return true
		case s.lastKind == TokenFlowSeqEnd || s.lastKind == TokenFlowMapEnd:
			return true
		}
	}
	return false
}

// followedByValue reports whether only blanks separate the cursor from a
// value indicator on the same line.
func (s *Scanner) followedByValue() bool {
	c := s.c
	n := 0
	for isBlank(c.peekAt(n)) {
		n++
	}
	return c.peekAt(n) == ':' && c.isBlankZAt(n+1)
}

func (s *Scanner) scanDocumentMarker(kind Kind) {
	pos := s.c.mark()
	s.c.advanceN(3)
	s.emit(Token{Kind: kind, Pos: pos, Len: 3})
	s.nodeCol = -1
}

// scanIndicator emits a one-character indicator. Block entries and explicit
// keys open an indentation level at their column.
func (s *Scanner) scanIndicator(kind Kind, opensBlock bool) {
	pos := s.c.mark()
	if opensBlock {
		s.openBlock(pos.Column-1, pos)
	}
	s.c.advance()
	s.emit(Token{Kind: kind, Pos: pos, Len: 1})
	s.nodeCol = -1
}

func (s *Scanner) scanFlowStart(kind Kind) {
	pos := s.c.mark()
	s.c.advance()
	s.flowLevel++
	s.emit(Token{Kind: kind, Pos: pos, Len: 1})
	s.nodeCol = -1
}

func (s *Scanner) scanFlowEnd(kind Kind) {
	pos := s.c.mark()
	s.c.advance()
	if s.flowLevel > 0 {
		s.flowLevel--
	}
	s.emit(Token{Kind: kind, Pos: pos, Len: 1})
	s.nodeCol = -1
}

func (s *Scanner) scanComment() {
	c := s.c
	pos := c.mark()
	c.advance()
	start := c.pos.Offset
	for !c.eof() && !isBreak(c.peek()) {
		c.advance()
	}
	s.emit(Token{Kind: TokenComment, Pos: pos, Len: c.pos.Offset - pos.Offset, Value: c.src[start:c.pos.Offset]})
	s.lastPlain = false
}

// keyColumn returns the column at which an implicit key starting at pos
// opens its mapping: the column of its first property, if any.
func (s *Scanner) keyColumn(pos ast.Position) int {
	if s.nodeCol >= 0 {
		return s.nodeCol
	}
	return pos.Column - 1
}

// emitContent queues a scalar or alias token. In block context a token
// followed by ':' on the same line is an implicit key and opens a level.
func (s *Scanner) emitContent(tok Token, singleLine bool) {
	isKey := false
	if s.flowLevel == 0 && singleLine && s.followedByValue() {
		isKey = true
		s.openBlock(s.keyColumn(tok.Pos), tok.Pos)
	}
	s.emit(tok)
	s.nodeCol = -1
	if tok.IsPlainScalar() && !isKey && s.flowLevel == 0 {
		s.lastPlain = true
	}
}
