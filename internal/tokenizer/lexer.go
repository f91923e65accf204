package tokenizer

import (
	"iter"
)

// Lexer buffers the scanner's tokens so the parser can look ahead and
// backtrack. Peek is idempotent, Mark and Reset save and restore the read
// position, and Restart replays the whole sequence from the first token.
type Lexer struct {
	scanner *Scanner
	tokens  []Token
	err     error
	pos     int
}

// NewLexer returns a lexer over input.
func NewLexer(input string) *Lexer {
	return &Lexer{scanner: NewScanner(input)}
}

// fill makes sure the token at index i is buffered. It returns the scan error
// if the input ends in an error before i.
func (l *Lexer) fill(i int) error {
	for len(l.tokens) <= i {
		if l.err != nil {
			return l.err
		}
		if n := len(l.tokens); n > 0 && l.tokens[n-1].Kind == TokenStreamEnd {
			l.tokens = append(l.tokens, l.tokens[n-1])
			continue
		}
		tok, err := l.scanner.Next()
		if err != nil {
			l.err = err
			return err
		}
		l.tokens = append(l.tokens, tok)
	}
	return nil
}

// Next consumes and returns the next token.
func (l *Lexer) Next() (Token, error) {
	if err := l.fill(l.pos); err != nil {
		return Token{}, err
	}
	tok := l.tokens[l.pos]
	if tok.Kind != TokenStreamEnd {
		l.pos++
	}
	return tok, nil
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() (Token, error) {
	return l.PeekN(0)
}

// PeekN returns the token n positions after the next one.
func (l *Lexer) PeekN(n int) (Token, error) {
	if err := l.fill(l.pos + n); err != nil {
		return Token{}, err
	}
	return l.tokens[l.pos+n], nil
}

// Mark returns the current read position.
func (l *Lexer) Mark() int {
	return l.pos
}

// Reset moves the read position back to a mark.
func (l *Lexer) Reset(mark int) {
	l.pos = mark
}

// Restart moves the read position back to the first token.
func (l *Lexer) Restart() {
	l.pos = 0
}

// Tokens returns the token sequence from the first token to StreamEnd. The
// sequence stops after yielding a scan error. Iterating does not move the
// lexer's read position.
func (l *Lexer) Tokens() iter.Seq2[Token, error] {
	return func(yield func(Token, error) bool) {
		for i := 0; ; i++ {
			if err := l.fill(i); err != nil {
				yield(Token{}, err)
				return
			}
			tok := l.tokens[i]
			if !yield(tok, nil) || tok.Kind == TokenStreamEnd {
				return
			}
		}
	}
}
