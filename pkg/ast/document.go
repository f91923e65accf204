package ast

// Document is one YAML document of a stream. Root is nil for an empty document.
type Document struct {
	Root          Node
	ExplicitStart bool
	ExplicitEnd   bool
	Position      Position

	// Version is the %YAML directive value, empty when absent.
	Version string
	// TagHandles holds the %TAG directives declared for this document.
	TagHandles map[string]string
}

// Stream is the ordered list of documents parsed from one input.
type Stream struct {
	Documents []*Document
}

// Len returns the number of documents.
func (s *Stream) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Documents)
}
