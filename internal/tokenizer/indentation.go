package tokenizer

import (
	"github.com/shapestone/yamlref/pkg/ast"
	"github.com/shapestone/yamlref/pkg/yamlerr"
)

// The indentation stack holds 0-based columns of the open block levels. The
// bottom entry is -1, the level of the document itself.
//
// Example:
//
//	Input:
//	  name: Alice
//	  children:
//	    - Bob
//	    - Carol
//	  age: 30
//
//	Layout tokens emitted:
//	  Indent(0) "name" ... Indent(2) "-" "Bob" ... "-" "Carol" ... Dedent(1) "age" ...

// top returns the innermost indentation level.
func (s *Scanner) top() int {
	return s.indents[len(s.indents)-1]
}

// Indent returns the innermost indentation level; -1 at document level.
func (s *Scanner) Indent() int {
	return s.top()
}

// measure compares the indentation of a content line against the stack.
func (s *Scanner) measure(col int) error {
	// A deeper line right after a plain scalar may continue it, so it neither
	// opens a level nor has to match one.
	continuation := s.lastPlain

	if col < s.top() {
		s.unwind(col)
		if s.top() < col && !continuation {
			return yamlerr.New(yamlerr.InvalidIndentation, s.c.pos,
				"inconsistent indentation: column %d does not match any enclosing block", col+1)
		}
		return nil
	}
	if col > s.top() && !continuation {
		s.pushIndent(col, s.c.pos)
	}
	return nil
}

// openBlock opens a level for a node that starts later on a line.
func (s *Scanner) openBlock(col int, pos ast.Position) {
	if s.flowLevel == 0 && col > s.top() {
		s.pushIndent(col, pos)
	}
}

func (s *Scanner) pushIndent(col int, pos ast.Position) {
	s.indents = append(s.indents, col)
	s.emit(Token{Kind: TokenIndent, Pos: pos, Indent: col})
}

// unwind pops every level deeper than col and emits one Dedent for them.
func (s *Scanner) unwind(col int) {
	count := 0
	for len(s.indents) > 1 && s.top() > col {
		s.indents = s.indents[:len(s.indents)-1]
		count++
	}
	if count > 0 {
		s.emit(Token{Kind: TokenDedent, Pos: s.c.pos, Count: count})
	}
}
