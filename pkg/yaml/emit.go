package yaml

import (
	"bytes"
	"slices"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/shapestone/yamlref/internal/scalar"
	"github.com/shapestone/yamlref/pkg/ast"
	"github.com/shapestone/yamlref/pkg/semantic"
)

// ToText renders a node, a document or a stream as YAML text with two space
// indentation. Documents after the first are separated by "---".
//
// Anchors, aliases and tags are kept, so an unresolved tree renders with its
// aliases. Strings that would read back as another type are quoted.
func ToText(v any) (string, error) {
	var docs []*ast.Document
	switch t := v.(type) {
	case *ast.Stream:
		if t != nil {
			docs = t.Documents
		}
	case *ast.Document:
		docs = []*ast.Document{t}
	case ast.Node:
		docs = []*ast.Document{{Root: t}}
	case nil:
		docs = []*ast.Document{{}}
	default:
		return "", errors.Errorf("yaml: cannot render %T", v)
	}

	docs = slices.DeleteFunc(slices.Clone(docs), func(d *ast.Document) bool { return d == nil })
	if len(docs) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	for _, d := range docs {
		if err := enc.Encode(toDocumentNode(d)); err != nil {
			return "", errors.Wrap(err, "yaml: render document")
		}
	}
	if err := enc.Close(); err != nil {
		return "", errors.Wrap(err, "yaml: render")
	}
	return buf.String(), nil
}

func toDocumentNode(d *ast.Document) *yaml.Node {
	return &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{toYAMLNode(d.Root)}}
}

// toYAMLNode converts a tree to the yaml.v3 node representation.
func toYAMLNode(n ast.Node) *yaml.Node {
	switch v := n.(type) {
	case *ast.Scalar:
		return scalarNode(v)
	case *ast.Null, nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case *ast.Sequence:
		out := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: make([]*yaml.Node, len(v.Items))}
		if v.Style == ast.Flow {
			out.Style = yaml.FlowStyle
		}
		for i, item := range v.Items {
			out.Content[i] = toYAMLNode(item)
		}
		return out
	case *ast.Mapping:
		out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Content: make([]*yaml.Node, 0, 2*len(v.Pairs))}
		if v.Style == ast.Flow {
			out.Style = yaml.FlowStyle
		}
		for _, p := range v.Pairs {
			out.Content = append(out.Content, toYAMLNode(p.Key), toYAMLNode(p.Value))
		}
		return out
	case *ast.Anchor:
		out := toYAMLNode(v.Node)
		out.Anchor = v.Name
		return out
	case *ast.Alias:
		return &yaml.Node{Kind: yaml.AliasNode, Value: v.Name}
	case *ast.Tagged:
		out := toYAMLNode(v.Node)
		if v.Tag != "" {
			out.Tag = v.Tag
		} else {
			out.Tag = v.Shorthand()
		}
		out.Style |= yaml.TaggedStyle
		return out
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}

// scalarNode renders typed scalars in their canonical spelling and strings
// in the style they were written in.
func scalarNode(s *ast.Scalar) *yaml.Node {
	out := &yaml.Node{Kind: yaml.ScalarNode}
	switch v := s.Value.(type) {
	case bool:
		out.Tag, out.Value = "!!bool", strconv.FormatBool(v)
	case int64:
		out.Tag, out.Value = "!!int", strconv.FormatInt(v, 10)
	case float64:
		out.Tag, out.Value = "!!float", scalar.FormatFloat(v)
	default:
		out.Tag, out.Value = "!!str", s.Text
		switch s.Style {
		case ast.Plain:
			if s.Text == semantic.MergeKey {
				out.Tag = "!!merge"
			} else if !readsAsString(s.Text) {
				out.Style = yaml.DoubleQuotedStyle
			}
		case ast.SingleQuoted:
			out.Style = yaml.SingleQuotedStyle
		case ast.DoubleQuoted:
			out.Style = yaml.DoubleQuotedStyle
		case ast.Literal:
			out.Style = yaml.LiteralStyle
		case ast.Folded:
			out.Style = yaml.FoldedStyle
		}
	}
	return out
}

// readsAsString reports whether text, written plain, loads back as a string.
func readsAsString(text string) bool {
	if scalar.IsNull(text) {
		return false
	}
	kind, _ := scalar.Resolve(text)
	return kind == ast.StringKind
}
