package semantic

import (
	"github.com/shapestone/yamlref/pkg/ast"
	"github.com/shapestone/yamlref/pkg/yamlerr"
)

// MergeKey is the key whose value is merged into the enclosing mapping.
const MergeKey = "<<"

func isMergeKey(n ast.Node) bool {
	if t, ok := n.(*ast.Tagged); ok {
		return t.Tag == CoreTagPrefix+"merge"
	}
	s, ok := n.(*ast.Scalar)
	return ok && s.Style == ast.Plain && s.Text == MergeKey
}

// mergeKeys replaces every "<<" entry of m with the entries of the mapping, or
// sequence of mappings, it holds. Keys written in m win over merged ones, and
// earlier sources win over later ones. It returns the number of entries
// merged in.
func mergeKeys(m *ast.Mapping) (int, *yamlerr.Error) {
	hasMerge := false
	seen := make(map[string]bool, len(m.Pairs))
	for _, p := range m.Pairs {
		if isMergeKey(p.Key) {
			hasMerge = true
			continue
		}
		if id, ok := keyID(p.Key); ok {
			seen[id] = true
		}
	}
	if !hasMerge {
		return 0, nil
	}

	merged := 0
	out := make([]ast.Pair, 0, len(m.Pairs))
	for _, p := range m.Pairs {
		if !isMergeKey(p.Key) {
			out = append(out, p)
			continue
		}
		sources, err := mergeSources(p.Value)
		if err != nil {
			return 0, err
		}
		for _, src := range sources {
			for _, sp := range src.Pairs {
				id, ok := keyID(sp.Key)
				if ok && seen[id] {
					continue
				}
				if ok {
					seen[id] = true
				}
				out = append(out, sp)
				merged++
			}
		}
	}
	m.Pairs = out
	return merged, nil
}

func mergeSources(value ast.Node) ([]*ast.Mapping, *yamlerr.Error) {
	switch v := ast.Unwrap(value).(type) {
	case *ast.Mapping:
		return []*ast.Mapping{v}, nil
	case *ast.Sequence:
		sources := make([]*ast.Mapping, 0, len(v.Items))
		for _, item := range v.Items {
			m, ok := ast.Unwrap(item).(*ast.Mapping)
			if !ok {
				return nil, yamlerr.New(yamlerr.TypeMismatch, item.Pos(),
					"merge key expects a sequence of mappings, found a %s", describe(ast.Unwrap(item)))
			}
			sources = append(sources, m)
		}
		return sources, nil
	}
	return nil, yamlerr.New(yamlerr.TypeMismatch, value.Pos(),
		"merge key expects a mapping or a sequence of mappings, found a %s", describe(ast.Unwrap(value)))
}

// keyID identifies a scalar or null key by kind and text. Collection keys have
// no identity.
func keyID(n ast.Node) (string, bool) {
	switch k := ast.Unwrap(n).(type) {
	case *ast.Scalar:
		return k.Kind.String() + ":" + k.Text, true
	case *ast.Null:
		return "null", true
	}
	return "", false
}
