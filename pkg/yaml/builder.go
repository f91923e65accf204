package yaml

import (
	"github.com/shapestone/yamlref/pkg/ast"
)

// DocumentBuilder provides a fluent API for building YAML documents.
//
// Example:
//
//	doc := yaml.NewDocument().Object(func(o *yaml.ObjectBuilder) {
//	    o.Anchored("defaults", "base", map[string]any{"retries": 3})
//	    o.Object("service", func(s *yaml.ObjectBuilder) {
//	        s.Merge("base")
//	        s.Set("name", "api")
//	    })
//	}).Build()
type DocumentBuilder struct {
	root ast.Node
	err  error
}

// NewDocument creates a new YAML document builder.
func NewDocument() *DocumentBuilder {
	return &DocumentBuilder{}
}

// Object sets a mapping filled by fn as the root.
func (d *DocumentBuilder) Object(fn func(*ObjectBuilder)) *DocumentBuilder {
	b := NewObject()
	fn(b)
	d.root, d.err = b.Build(), b.err
	return d
}

// Sequence sets a sequence filled by fn as the root.
func (d *DocumentBuilder) Sequence(fn func(*SequenceBuilder)) *DocumentBuilder {
	b := NewSequence()
	fn(b)
	d.root, d.err = b.Build(), b.err
	return d
}

// Value sets the encoding of v as the root.
func (d *DocumentBuilder) Value(v any) *DocumentBuilder {
	d.root, d.err = InterfaceToNode(v)
	return d
}

// Build returns the document. Its nodes are numbered in document order, one
// line each, so that anchors precede the aliases written after them.
func (d *DocumentBuilder) Build() *ast.Document {
	line := 0
	ast.Inspect(d.root, func(n ast.Node) bool {
		line++
		pos := ast.Position{Line: line, Column: 1, Offset: line - 1}
		switch v := n.(type) {
		case *ast.Scalar:
			v.Position = pos
		case *ast.Null:
			v.Position = pos
		case *ast.Sequence:
			v.Position = pos
		case *ast.Mapping:
			v.Position = pos
		case *ast.Anchor:
			v.Position = pos
		case *ast.Alias:
			v.Position = pos
		case *ast.Tagged:
			v.Position = pos
		}
		return true
	})
	return &ast.Document{Root: d.root, Position: ast.StartPosition()}
}

// Err returns the first error met while encoding values.
func (d *DocumentBuilder) Err() error { return d.err }

// ToYAML renders the document.
func (d *DocumentBuilder) ToYAML() ([]byte, error) {
	if d.err != nil {
		return nil, d.err
	}
	text, err := ToText(d.Build())
	return []byte(text), err
}

// ObjectBuilder provides a fluent API for building mappings. Keys keep the
// order they were first set in.
type ObjectBuilder struct {
	m   *ast.Mapping
	err error
}

// NewObject creates a new object builder.
func NewObject() *ObjectBuilder {
	return &ObjectBuilder{m: &ast.Mapping{}}
}

// Set sets key to the encoding of value.
func (b *ObjectBuilder) Set(key string, value any) *ObjectBuilder {
	return b.setNode(key, b.encode(value))
}

// Object sets key to a nested mapping filled by fn.
func (b *ObjectBuilder) Object(key string, fn func(*ObjectBuilder)) *ObjectBuilder {
	nested := NewObject()
	fn(nested)
	b.keep(nested.err)
	return b.setNode(key, nested.Build())
}

// Sequence sets key to a nested sequence filled by fn.
func (b *ObjectBuilder) Sequence(key string, fn func(*SequenceBuilder)) *ObjectBuilder {
	nested := NewSequence()
	fn(nested)
	b.keep(nested.err)
	return b.setNode(key, nested.Build())
}

// Anchored sets key to the encoding of value under the anchor name.
func (b *ObjectBuilder) Anchored(key, name string, value any) *ObjectBuilder {
	return b.setNode(key, &ast.Anchor{Name: name, Node: b.encode(value)})
}

// Alias sets key to an alias of the anchor name.
func (b *ObjectBuilder) Alias(key, name string) *ObjectBuilder {
	return b.setNode(key, &ast.Alias{Name: name})
}

// Merge adds a "<<" entry merging the mapping anchored as name.
func (b *ObjectBuilder) Merge(name string) *ObjectBuilder {
	b.m.Pairs = append(b.m.Pairs, ast.Pair{
		Key:   ast.NewString("<<", ast.Plain, ast.Position{}),
		Value: &ast.Alias{Name: name},
	})
	return b
}

// Build returns the mapping.
func (b *ObjectBuilder) Build() *ast.Mapping {
	return b.m
}

func (b *ObjectBuilder) setNode(key string, value ast.Node) *ObjectBuilder {
	for i, p := range b.m.Pairs {
		if k, ok := ast.KeyText(p.Key); ok && k == key {
			b.m.Pairs[i].Value = value
			return b
		}
	}
	b.m.Pairs = append(b.m.Pairs, ast.Pair{Key: ast.NewString(key, ast.Plain, ast.Position{}), Value: value})
	return b
}

func (b *ObjectBuilder) encode(v any) ast.Node {
	n, err := InterfaceToNode(v)
	b.keep(err)
	if err != nil {
		return null()
	}
	return n
}

func (b *ObjectBuilder) keep(err error) {
	if b.err == nil {
		b.err = err
	}
}

// SequenceBuilder provides a fluent API for building sequences.
type SequenceBuilder struct {
	s   *ast.Sequence
	err error
}

// NewSequence creates a new sequence builder.
func NewSequence() *SequenceBuilder {
	return &SequenceBuilder{s: &ast.Sequence{}}
}

// Add appends the encoding of value.
func (b *SequenceBuilder) Add(value any) *SequenceBuilder {
	n, err := InterfaceToNode(value)
	if err != nil {
		b.keep(err)
		n = null()
	}
	b.s.Items = append(b.s.Items, n)
	return b
}

// AddObject appends a nested mapping filled by fn.
func (b *SequenceBuilder) AddObject(fn func(*ObjectBuilder)) *SequenceBuilder {
	nested := NewObject()
	fn(nested)
	b.keep(nested.err)
	b.s.Items = append(b.s.Items, nested.Build())
	return b
}

// AddSequence appends a nested sequence filled by fn.
func (b *SequenceBuilder) AddSequence(fn func(*SequenceBuilder)) *SequenceBuilder {
	nested := NewSequence()
	fn(nested)
	b.keep(nested.err)
	b.s.Items = append(b.s.Items, nested.Build())
	return b
}

// AddAlias appends an alias of the anchor name.
func (b *SequenceBuilder) AddAlias(name string) *SequenceBuilder {
	b.s.Items = append(b.s.Items, &ast.Alias{Name: name})
	return b
}

// Build returns the sequence.
func (b *SequenceBuilder) Build() *ast.Sequence {
	return b.s
}

func (b *SequenceBuilder) keep(err error) {
	if b.err == nil {
		b.err = err
	}
}
