package yamlerr

import (
	"fmt"
	"strings"
)

// List accumulates errors instead of failing on the first one.
type List struct {
	Errors []*Error
}

// Add appends err to the list.
func (l *List) Add(err *Error) {
	l.Errors = append(l.Errors, err)
}

// Len returns the number of errors.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Errors)
}

// HasErrors reports whether the list is non-empty.
func (l *List) HasErrors() bool {
	return l.Len() > 0
}

// ByKind returns the errors of kind k.
func (l *List) ByKind(k Kind) []*Error {
	var out []*Error
	for _, e := range l.Errors {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

// ByDocument returns the errors reported for document doc.
func (l *List) ByDocument(doc int) []*Error {
	var out []*Error
	for _, e := range l.Errors {
		if e.Document == doc {
			out = append(out, e)
		}
	}
	return out
}

// Err returns the list as an error, or nil when it is empty.
func (l *List) Err() error {
	if !l.HasErrors() {
		return nil
	}
	return l
}

func (l *List) Error() string {
	switch len(l.Errors) {
	case 0:
		return "no errors"
	case 1:
		return l.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d errors occurred:", len(l.Errors))
	for _, e := range l.Errors {
		sb.WriteString("\n\t* ")
		sb.WriteString(e.Error())
	}
	return sb.String()
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (l *List) Unwrap() []error {
	out := make([]error, len(l.Errors))
	for i, e := range l.Errors {
		out[i] = e
	}
	return out
}
