package semantic

import (
	"fmt"

	"github.com/shapestone/yamlref/pkg/ast"
	"github.com/shapestone/yamlref/pkg/yamlerr"
)

// Diagnostic is a problem that does not stop resolution: an unused anchor, or
// an unknown tag under PermissiveTags.
type Diagnostic struct {
	Kind     yamlerr.Kind
	Document int
	Pos      ast.Position
	Path     string
	Message  string
}

func (d Diagnostic) String() string {
	loc := d.Path
	if d.Pos.IsValid() {
		loc = d.Pos.String()
	}
	return fmt.Sprintf("warning: document %d: %s: %s", d.Document, loc, d.Message)
}

func warningFrom(err *yamlerr.Error) Diagnostic {
	return Diagnostic{
		Kind:     err.Kind,
		Document: err.Document,
		Pos:      err.Pos,
		Path:     err.Path,
		Message:  err.Message,
	}
}
