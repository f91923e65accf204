// Package yamlerr defines the typed errors reported while scanning, parsing
// and resolving YAML.
package yamlerr

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/shapestone/yamlref/pkg/ast"
)

// Error is a single diagnosed problem. Pos points at the offending construct;
// cross-document problems carry a Path instead. Related lists other positions
// involved, such as the first definition of a conflicting anchor.
type Error struct {
	Kind     Kind
	Pos      ast.Position
	Path     string
	Document int
	Message  string
	Related  []ast.Position
}

// New returns an error of the given kind at pos.
func New(kind Kind, pos ast.Position, format string, args ...any) *Error {
	return &Error{Kind: kind, Pos: pos, Message: fmt.Sprintf(format, args...), Document: -1}
}

// Error renders "yaml: line L, column C: message".
func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString("yaml: ")
	if e.Document >= 0 && e.Kind.Category() == Semantic {
		fmt.Fprintf(&sb, "document %d: ", e.Document)
	}
	if e.Pos.IsValid() {
		sb.WriteString(e.Pos.String())
		sb.WriteString(": ")
	} else if e.Path != "" {
		sb.WriteString(e.Path)
		sb.WriteString(": ")
	}
	sb.WriteString(e.Message)
	for _, rel := range e.Related {
		fmt.Fprintf(&sb, " (see %s)", rel)
	}
	return sb.String()
}

// WithPath sets the document path of the error and returns it.
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// WithDocument sets the index of the document the error belongs to.
func (e *Error) WithDocument(doc int) *Error {
	e.Document = doc
	return e
}

// WithRelated appends related positions.
func (e *Error) WithRelated(pos ...ast.Position) *Error {
	e.Related = append(e.Related, pos...)
	return e
}

// Is reports whether err, or any error it wraps, is an *Error of kind k.
func Is(err error, k Kind) bool {
	var list *List
	if errors.As(err, &list) {
		for _, e := range list.Errors {
			if e.Kind == k {
				return true
			}
		}
		return false
	}
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// As returns the first *Error found in err's chain.
func As(err error) (*Error, bool) {
	var list *List
	if errors.As(err, &list) && len(list.Errors) > 0 {
		return list.Errors[0], true
	}
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
